package primitives

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrAuth is returned by SecretBoxOpen when the Poly1305 tag does not
// validate — either the ciphertext was tampered with, or the wrong key/
// nonce was used. Per spec this is the same error regardless of which.
var ErrAuth = errors.New("primitives: secretbox authentication failed")

// SecretBoxSeal implements the secret_box_seal(k, nonce, pt) -> ct oracle.
// key must be KeyLength bytes and nonce NonceLength bytes.
func SecretBoxSeal(key, nonce, plaintext []byte) ([]byte, error) {
	var k [32]byte
	var n [24]byte
	if len(key) != len(k) {
		return nil, errors.New("primitives: bad secretbox key length")
	}
	if len(nonce) != len(n) {
		return nil, errors.New("primitives: bad secretbox nonce length")
	}
	copy(k[:], key)
	copy(n[:], nonce)
	return secretbox.Seal(nil, plaintext, &n, &k), nil
}

// SecretBoxOpen implements the secret_box_open(k, nonce, ct) -> pt oracle.
func SecretBoxOpen(key, nonce, ciphertext []byte) ([]byte, error) {
	var k [32]byte
	var n [24]byte
	if len(key) != len(k) {
		return nil, errors.New("primitives: bad secretbox key length")
	}
	if len(nonce) != len(n) {
		return nil, errors.New("primitives: bad secretbox nonce length")
	}
	copy(k[:], key)
	copy(n[:], nonce)

	pt, ok := secretbox.Open(nil, ciphertext, &n, &k)
	if !ok {
		return nil, ErrAuth
	}
	return pt, nil
}
