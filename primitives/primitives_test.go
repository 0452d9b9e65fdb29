package primitives

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretBoxRoundtrip(t *testing.T) {
	key := make([]byte, 32)
	nonce := make([]byte, 24)
	require.NoError(t, RandomBytes(key))
	require.NoError(t, RandomBytes(nonce))

	pt := []byte("hello world")
	ct, err := SecretBoxSeal(key, nonce, pt)
	require.NoError(t, err)
	require.Equal(t, len(pt)+16, len(ct))

	got, err := SecretBoxOpen(key, nonce, ct)
	require.NoError(t, err)
	require.True(t, bytes.Equal(pt, got))
}

func TestSecretBoxTamperDetected(t *testing.T) {
	key := make([]byte, 32)
	nonce := make([]byte, 24)
	require.NoError(t, RandomBytes(key))
	require.NoError(t, RandomBytes(nonce))

	ct, err := SecretBoxSeal(key, nonce, []byte("hello world"))
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff

	_, err = SecretBoxOpen(key, nonce, ct)
	require.ErrorIs(t, err, ErrAuth)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x42}, 16)
	k1, err := DeriveKey([]byte("password"), salt)
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("password"), salt)
	require.NoError(t, err)
	require.True(t, bytes.Equal(k1, k2))

	k3, err := DeriveKey([]byte("password2"), salt)
	require.NoError(t, err)
	require.False(t, bytes.Equal(k1, k3))
}

func TestDeriveKeyRejectsShortSalt(t *testing.T) {
	_, err := DeriveKey([]byte("password"), make([]byte, 8))
	require.Error(t, err)
}

func TestCombineKDFDeterministicAndDistinct(t *testing.T) {
	a, err := CombineKDF([]byte("kem-shared-secret-bytes"), []byte("ecdh-shared-point-bytes"))
	require.NoError(t, err)
	b, err := CombineKDF([]byte("kem-shared-secret-bytes"), []byte("ecdh-shared-point-bytes"))
	require.NoError(t, err)
	require.True(t, bytes.Equal(a, b))
	require.Len(t, a, 32)

	c, err := CombineKDF([]byte("other-kem-secret-bytes-"), []byte("ecdh-shared-point-bytes"))
	require.NoError(t, err)
	require.False(t, bytes.Equal(a, c))
}

func TestECDHAgreement(t *testing.T) {
	aPub, aPriv, err := Curve25519KeyPair()
	require.NoError(t, err)
	bPub, bPriv, err := Curve25519KeyPair()
	require.NoError(t, err)

	s1, err := ECDH(aPriv, bPub)
	require.NoError(t, err)
	s2, err := ECDH(bPriv, aPub)
	require.NoError(t, err)
	require.True(t, bytes.Equal(s1, s2))
}

func TestSignVerify(t *testing.T) {
	pub, priv, err := SigningKeyPair()
	require.NoError(t, err)

	msg := []byte("envelope bytes to authenticate")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	ok, err := Verify(pub, msg, sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Verify(pub, []byte("tampered"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}
