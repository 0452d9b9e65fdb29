package primitives

import (
	"crypto/rand"
	"errors"

	"github.com/agl/ed25519"
)

// SigningKeyPair generates the long-term ed25519 identity keypair used for
// CBOX sender authentication.
func SigningKeyPair() (pub, priv []byte, err error) {
	p, s, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return p[:], s[:], nil
}

// Sign authenticates the CBOX envelope (encap || nonce || ephemeral point)
// under the sender's long-term identity key.
func Sign(priv, message []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("primitives: bad signing key length")
	}
	var sk [ed25519.PrivateKeySize]byte
	copy(sk[:], priv)
	sig := ed25519.Sign(&sk, message)
	return sig[:], nil
}

// Verify checks a CBOX envelope signature against the sender's known
// verification key. A false return (or non-nil error) must be treated as
// DATAERR by the caller.
func Verify(pub, message, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, errors.New("primitives: bad verification key length")
	}
	if len(sig) != ed25519.SignatureSize {
		return false, errors.New("primitives: bad signature length")
	}
	var pk [ed25519.PublicKeySize]byte
	var s [ed25519.SignatureSize]byte
	copy(pk[:], pub)
	copy(s[:], sig)
	return ed25519.Verify(&pk, message, &s), nil
}
