package keyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jarvisb1/mcleece-go"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeypairFilesSimpleRoundtrip(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")

	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.Simple))

	if _, err := os.Stat(prefix + ".pk"); err != nil {
		t.Fatalf("public key file missing: %s", err)
	}
	if _, err := os.Stat(prefix + ".sk"); err != nil {
		t.Fatalf("private key file missing: %s", err)
	}

	pub, err := LoadPublicKey(prefix+".pk", mcleece.Simple)
	require.NoError(t, err)
	require.Equal(t, mcleece.Simple, pub.Profile)

	priv, err := LoadPrivateKey(prefix+".sk", []byte("password"), mcleece.Simple)
	require.NoError(t, err)
	defer priv.Wipe()
	require.NotEmpty(t, priv.KEMPrivate())
}

func TestLoadPrivateKeyWrongPasswordIsNoPerm(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")
	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.Simple))

	_, err := LoadPrivateKey(prefix+".sk", []byte("wrong"), mcleece.Simple)
	require.Error(t, err)
	require.Equal(t, mcleece.NoPerm, mcleece.KindOf(err))
}

func TestLoadPrivateKeyTamperedFileIsNoPerm(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")
	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.Simple))

	data, err := os.ReadFile(prefix + ".sk")
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(prefix+".sk", data, 0o600))

	_, err = LoadPrivateKey(prefix+".sk", []byte("password"), mcleece.Simple)
	require.Error(t, err)
	require.Equal(t, mcleece.NoPerm, mcleece.KindOf(err))
}

func TestLoadPublicKeyProfileMismatch(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")
	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.Simple))

	_, err := LoadPublicKey(prefix+".pk", mcleece.CBox)
	require.Error(t, err)
	require.Equal(t, mcleece.DataErr, mcleece.KindOf(err))
}

func TestLoadPrivateKeyMissingFileIsNoInput(t *testing.T) {
	_, err := LoadPrivateKey("/nonexistent/path.sk", []byte("password"), mcleece.Simple)
	require.Error(t, err)
	require.Equal(t, mcleece.NoInput, mcleece.KindOf(err))
}

func TestGenerateKeypairFilesCBoxRoundtrip(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")

	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.CBox))

	pub, err := LoadPublicKey(prefix+".pk", mcleece.CBox)
	require.NoError(t, err)
	require.Len(t, pub.ECDHPublic, 32)

	priv, err := LoadPrivateKey(prefix+".sk", []byte("password"), mcleece.CBox)
	require.NoError(t, err)
	defer priv.Wipe()
	require.Len(t, priv.ECDHPrivate(), 32)
	require.Len(t, priv.SigningKey(), 64)
	require.Len(t, priv.SigningPublicKey(), 32)

	verifyKey, err := LoadVerifyKey(prefix + ".vk")
	require.NoError(t, err)
	require.Equal(t, priv.SigningPublicKey(), verifyKey)
}

func TestGenerateKeypairFilesSimpleHasNoVerifyKeyFile(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "test")
	require.NoError(t, GenerateKeypairFiles(prefix, []byte("password"), mcleece.Simple))

	_, err := os.Stat(prefix + ".vk")
	require.True(t, os.IsNotExist(err))
}
