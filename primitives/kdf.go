package primitives

import (
	"errors"

	"golang.org/x/crypto/argon2"
)

// KDF parameter choices for the password-protected private key file.
// These are fixed at build time, as spec.md's kdf() oracle does not carry
// tunable cost parameters on the wire.
const (
	kdfTime    = 3
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	kdfKeyLen  = 32
)

// DeriveKey implements the kdf(password, salt) -> derived_key oracle using
// Argon2id, a memory-hard password hash.
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(salt) < 16 {
		return nil, errors.New("primitives: kdf salt shorter than 16 bytes")
	}
	return argon2.IDKey(password, salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen), nil
}
