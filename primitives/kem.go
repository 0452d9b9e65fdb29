// This file is the only place in the module that imports the liboqs cgo
// binding. Everything above primitives talks to the KEM through the
// KEMKeyGen/KEMEncap/KEMDecap/KEMSizes functions below, never
// through oqs directly, so a future swap of the underlying KEM library
// only touches this file.
package primitives

import (
	"fmt"

	oqs "github.com/open-quantum-safe/liboqs-go/oqs"
)

// KEMAlgorithm is the liboqs algorithm identifier bound to the SIMPLE and
// CBOX profiles' KEM oracle. Fixed at build time, per spec.md §6's "KEM =
// Classic-McEliece variant selected at build".
const KEMAlgorithm = "Classic-McEliece-460896"

// KEMKeyGen implements the kem_keygen() -> (pk, sk) oracle.
func KEMKeyGen() (pk, sk []byte, err error) {
	var kem oqs.KeyEncapsulation
	if err = kem.Init(KEMAlgorithm, nil); err != nil {
		return nil, nil, fmt.Errorf("primitives: kem init: %w", err)
	}
	defer kem.Clean()

	pub, err := kem.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("primitives: kem keygen: %w", err)
	}
	return pub, kem.ExportSecretKey(), nil
}

// KEMEncap implements the kem_encap(pk) -> (k, c) oracle. It returns an
// error if pk is malformed (wrong length, or rejected by the underlying
// scheme).
func KEMEncap(pk []byte) (sharedKey, ciphertext []byte, err error) {
	var kem oqs.KeyEncapsulation
	if err = kem.Init(KEMAlgorithm, nil); err != nil {
		return nil, nil, fmt.Errorf("primitives: kem init: %w", err)
	}
	defer kem.Clean()

	if len(pk) != kem.Details().LengthPublicKey {
		return nil, nil, fmt.Errorf("primitives: kem encap: malformed public key (got %d bytes, want %d)",
			len(pk), kem.Details().LengthPublicKey)
	}

	ct, ss, err := kem.EncapSecret(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("primitives: kem encap: %w", err)
	}
	return ss, ct, nil
}

// KEMDecap implements the kem_decap(sk, c) -> k oracle. Callers must treat
// any returned error as authentication/format failure, mapped to DATAERR
// at the codec boundary regardless of the specific underlying cause —
// liboqs itself is responsible for constant-time behavior with respect to
// ciphertext contents.
func KEMDecap(sk, ciphertext []byte) (sharedKey []byte, err error) {
	var kem oqs.KeyEncapsulation
	if err = kem.Init(KEMAlgorithm, sk); err != nil {
		return nil, fmt.Errorf("primitives: kem init: %w", err)
	}
	defer kem.Clean()

	ss, err := kem.DecapSecret(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("primitives: kem decap: %w", err)
	}
	return ss, nil
}

// KEMSizes reports the profile-fixed public key, private key, and
// encapsulation sizes for the bound KEM algorithm.
func KEMSizes() (pkLen, skLen, ctLen int) {
	var kem oqs.KeyEncapsulation
	if err := kem.Init(KEMAlgorithm, nil); err != nil {
		panic(fmt.Sprintf("primitives: kem init: %s", err))
	}
	defer kem.Clean()
	d := kem.Details()
	return d.LengthPublicKey, d.LengthSecretKey, d.LengthCiphertext
}
