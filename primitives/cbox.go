package primitives

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/curve25519"
)

// Curve25519KeyPair generates an ephemeral ECDH keypair for the CBOX
// profile, backed by golang.org/x/crypto/curve25519 (the "Curve25519-style
// crypto box" primitive spec.md §1 names).
func Curve25519KeyPair() (pub, priv []byte, err error) {
	priv = make([]byte, 32)
	if err = RandomBytes(priv); err != nil {
		return nil, nil, err
	}
	pubArr, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}
	return pubArr, priv, nil
}

// ECDH computes the shared point for the CBOX profile's ephemeral ECDH
// step.
func ECDH(priv, peerPub []byte) ([]byte, error) {
	return curve25519.X25519(priv, peerPub)
}

const cboxKDFLabel = "mcleece-cbox-v1"

// CombineKDF implements the CBOX kdf_combine(k_kem, ecdh_shared) -> k'
// step: an HMAC-SHA256 of the two secrets under a fixed domain-separation
// label, matching the teacher's ntor handshake KDF shape (HMAC keyed by a
// protocol-fixed string, mixing an ECDH output into a derived key).
func CombineKDF(kemShared, ecdhShared []byte) ([]byte, error) {
	if len(kemShared) == 0 || len(ecdhShared) == 0 {
		return nil, errors.New("primitives: combine kdf requires both inputs")
	}
	mac := hmac.New(sha256.New, []byte(cboxKDFLabel))
	mac.Write(kemShared)
	mac.Write(ecdhShared)
	return mac.Sum(nil), nil
}
