package framing

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/jarvisb1/mcleece-go"
	"github.com/stretchr/testify/require"
)

func testKeyNonce(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key := make([]byte, mcleece.KeyLength)
	n0 := make([]byte, mcleece.NonceLength)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(n0)
	require.NoError(t, err)
	return key, n0
}

func roundtrip(t *testing.T, plaintext []byte) []byte {
	t.Helper()
	key, n0 := testKeyNonce(t)

	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader(plaintext), key, n0, mcleece.MaxChunk))

	var out bytes.Buffer
	require.NoError(t, DecryptStream(&out, bytes.NewReader(ciphertext.Bytes()), key, n0))
	require.True(t, bytes.Equal(plaintext, out.Bytes()))

	return ciphertext.Bytes()
}

func TestRoundtripEmpty(t *testing.T) {
	ct := roundtrip(t, nil)
	// S6: one empty frame with tag.
	require.Len(t, ct, mcleece.MACLength)
}

func TestRoundtripShortMessage(t *testing.T) {
	pt := []byte("hello world")
	ct := roundtrip(t, pt)
	require.Len(t, ct, len(pt)+mcleece.MACLength)
}

func TestRoundtripExactlyOneChunk(t *testing.T) {
	pt := bytes.Repeat([]byte{0x42}, mcleece.MaxChunk)
	ct := roundtrip(t, pt)
	// S2: exactly one full frame, no trailing empty frame.
	require.Len(t, ct, mcleece.MaxChunk+mcleece.MACLength)
}

func TestRoundtripOneChunkPlusOneByte(t *testing.T) {
	pt := bytes.Repeat([]byte{0x7a}, mcleece.MaxChunk+1)
	ct := roundtrip(t, pt)
	// S3: a full frame followed by a one-byte frame.
	require.Len(t, ct, (mcleece.MaxChunk+mcleece.MACLength)+(1+mcleece.MACLength))
}

func TestRoundtripMultipleChunks(t *testing.T) {
	pt := bytes.Repeat([]byte{0x11}, mcleece.MaxChunk*2+17)
	ct := roundtrip(t, pt)
	require.Len(t, ct, 2*(mcleece.MaxChunk+mcleece.MACLength)+(17+mcleece.MACLength))
}

func TestDecryptTamperedFrameFails(t *testing.T) {
	key, n0 := testKeyNonce(t)
	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader([]byte("tamper me")), key, n0, mcleece.MaxChunk))

	ct := ciphertext.Bytes()
	ct[0] ^= 0xff

	var out bytes.Buffer
	err := DecryptStream(&out, bytes.NewReader(ct), key, n0)
	require.Error(t, err)
	require.Equal(t, mcleece.DataErr, mcleece.KindOf(err))
}

func TestDecryptRejectsFrameReordering(t *testing.T) {
	key, n0 := testKeyNonce(t)
	pt := bytes.Repeat([]byte{0x33}, mcleece.MaxChunk+5)
	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader(pt), key, n0, mcleece.MaxChunk))

	ct := ciphertext.Bytes()
	firstFrame := CiphertextFrame
	reordered := append(append([]byte(nil), ct[firstFrame:]...), ct[:firstFrame]...)

	var out bytes.Buffer
	err := DecryptStream(&out, bytes.NewReader(reordered), key, n0)
	require.Error(t, err)
	require.Equal(t, mcleece.DataErr, mcleece.KindOf(err))
}

func TestDecryptShortFinalFrameIsDataErr(t *testing.T) {
	key, n0 := testKeyNonce(t)
	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader([]byte("short final frame")), key, n0, mcleece.MaxChunk))

	ct := ciphertext.Bytes()
	// Truncate mid-tag: leave between 1 and MACLength-1 bytes of the frame.
	truncated := ct[:mcleece.MACLength-5]

	var out bytes.Buffer
	err := DecryptStream(&out, bytes.NewReader(truncated), key, n0)
	require.Error(t, err)
	require.Equal(t, mcleece.DataErr, mcleece.KindOf(err))
}

func TestDecryptAcceptsFrameBoundaryTruncation(t *testing.T) {
	key, n0 := testKeyNonce(t)
	pt := bytes.Repeat([]byte{0x55}, mcleece.MaxChunk*2)
	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader(pt), key, n0, mcleece.MaxChunk))

	ct := ciphertext.Bytes()
	// S8: drop the final full frame entirely; this looks like a complete,
	// shorter message and must decrypt without error.
	truncated := ct[:CiphertextFrame]

	var out bytes.Buffer
	require.NoError(t, DecryptStream(&out, bytes.NewReader(truncated), key, n0))
	require.True(t, bytes.Equal(pt[:mcleece.MaxChunk], out.Bytes()))
}

func TestDecryptAcceptsTruncationToZeroFrames(t *testing.T) {
	key, n0 := testKeyNonce(t)
	pt := bytes.Repeat([]byte{0x66}, mcleece.MaxChunk)
	var ciphertext bytes.Buffer
	require.NoError(t, EncryptStream(&ciphertext, bytes.NewReader(pt), key, n0, mcleece.MaxChunk))

	var out bytes.Buffer
	require.NoError(t, DecryptStream(&out, bytes.NewReader(nil), key, n0))
	require.Empty(t, out.Bytes())
}

func TestNonceCounterCarries(t *testing.T) {
	n0 := make([]byte, mcleece.NonceLength)
	n0[0] = 0xff
	n0[1] = 0xff

	n1 := nonceCounter(n0, 1)
	require.Equal(t, byte(0x00), n1[0])
	require.Equal(t, byte(0x00), n1[1])
	require.Equal(t, byte(0x01), n1[2])
	for i := 3; i < len(n1); i++ {
		require.Equal(t, byte(0x00), n1[i])
	}
}

func TestEncodeFrameRejectsOversizedChunk(t *testing.T) {
	key, n0 := testKeyNonce(t)
	enc := NewEncoder(key, n0)
	_, err := enc.EncodeFrame(make([]byte, mcleece.MaxChunk+1))
	require.Error(t, err)
	require.Equal(t, mcleece.DataErr, mcleece.KindOf(err))
}
