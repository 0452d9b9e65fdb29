/*
 * Copyright (c) 2014, Yawning Angel <yawning at torproject dot org>
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *    this list of conditions and the following disclaimer.
 *
 *  * Redistributions in binary form must reproduce the above copyright notice,
 *    this list of conditions and the following disclaimer in the documentation
 *    and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 * AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 * IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 * ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
 * LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 * CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 * SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 * INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 * CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 * ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// Package keyfile implements keypair generation and the password-encrypted
// private key file format.
package keyfile

import (
	"fmt"
	"os"

	"github.com/jarvisb1/mcleece-go"
	"github.com/jarvisb1/mcleece-go/primitives"
)

// PublicKey is a profile tag plus the raw KEM public-key bytes, and for
// CBOX an additional curve25519 point used for ephemeral ECDH.
type PublicKey struct {
	Profile    mcleece.Profile
	KEMPublic  []byte
	ECDHPublic []byte // nil for Simple
}

// PrivateKey is a profile tag plus the raw KEM private-key bytes, and for
// CBOX the additional curve25519 scalar and ed25519 identity signing key.
// PrivateKey must be zeroized via Wipe() once the caller is done with it.
type PrivateKey struct {
	Profile     mcleece.Profile
	kemPrivate  *mcleece.Secret
	ecdhPrivate *mcleece.Secret // nil for Simple
	signingKey  *mcleece.Secret // nil for Simple
}

// KEMPrivate returns the raw KEM secret key bytes.
func (sk *PrivateKey) KEMPrivate() []byte { return sk.kemPrivate.Bytes() }

// ECDHPrivate returns the CBOX curve25519 scalar, or nil for Simple.
func (sk *PrivateKey) ECDHPrivate() []byte { return sk.ecdhPrivate.Bytes() }

// SigningKey returns the CBOX ed25519 identity private key, or nil for
// Simple.
func (sk *PrivateKey) SigningKey() []byte { return sk.signingKey.Bytes() }

// SigningPublicKey returns the CBOX ed25519 verification key that the
// sender must distribute to receivers out of band (spec.md's key file
// format carries no directory of identities). agl/ed25519 private keys
// are the 32-byte seed followed by the 32-byte public key, so this is
// simply the tail of the signing key.
func (sk *PrivateKey) SigningPublicKey() []byte {
	b := sk.signingKey.Bytes()
	if len(b) != 64 {
		return nil
	}
	return b[32:]
}

// Wipe zeroizes all secret material held by sk.
func (sk *PrivateKey) Wipe() {
	sk.kemPrivate.Wipe()
	sk.ecdhPrivate.Wipe()
	sk.signingKey.Wipe()
}

// Encode serializes pk to the public key file format:
// PROFILE_TAG(1) || RAW_PUBLIC_BYTES (|| ECDH_PUBLIC(32) for CBOX).
func (pk *PublicKey) Encode() []byte {
	out := make([]byte, 0, 1+len(pk.KEMPublic)+len(pk.ECDHPublic))
	out = append(out, pk.Profile.Tag())
	out = append(out, pk.KEMPublic...)
	out = append(out, pk.ECDHPublic...)
	return out
}

// DecodePublicKey parses the public key file format, checking that the
// embedded profile tag matches want.
func DecodePublicKey(data []byte, want mcleece.Profile) (*PublicKey, error) {
	if len(data) < 1 {
		return nil, mcleece.Wrap(mcleece.DataErr, "public key file empty", nil)
	}
	profile, err := mcleece.ProfileFromTag(data[0])
	if err != nil {
		return nil, err
	}
	if profile != want {
		return nil, mcleece.Wrap(mcleece.DataErr,
			fmt.Sprintf("public key profile %s does not match requested %s", profile, want), nil)
	}

	pkLen, _, _ := primitives.KEMSizes()
	body := data[1:]
	switch profile {
	case mcleece.Simple:
		if len(body) != pkLen {
			return nil, mcleece.Wrap(mcleece.DataErr, "malformed simple public key", nil)
		}
		return &PublicKey{Profile: profile, KEMPublic: body}, nil
	case mcleece.CBox:
		if len(body) != pkLen+32 {
			return nil, mcleece.Wrap(mcleece.DataErr, "malformed cbox public key", nil)
		}
		return &PublicKey{
			Profile:    profile,
			KEMPublic:  body[:pkLen],
			ECDHPublic: body[pkLen:],
		}, nil
	default:
		return nil, mcleece.Wrap(mcleece.DataErr, "unknown profile", nil)
	}
}

const (
	// fileMode matches the teacher's statefile.go convention of writing
	// secret-bearing files owner-read/write only.
	fileMode = 0o600
)

// Generate creates a fresh keypair for profile.
func Generate(profile mcleece.Profile) (*PublicKey, *PrivateKey, error) {
	kemPub, kemSk, err := primitives.KEMKeyGen()
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "kem keygen failed", err)
	}

	pub := &PublicKey{Profile: profile, KEMPublic: kemPub}
	priv := &PrivateKey{Profile: profile, kemPrivate: mcleece.NewSecret(kemSk)}

	if profile == mcleece.CBox {
		ecdhPub, ecdhPriv, err := primitives.Curve25519KeyPair()
		if err != nil {
			priv.Wipe()
			return nil, nil, mcleece.Wrap(mcleece.DataErr, "ecdh keygen failed", err)
		}
		signPub, signPriv, err := primitives.SigningKeyPair()
		if err != nil {
			priv.Wipe()
			return nil, nil, mcleece.Wrap(mcleece.DataErr, "signing keygen failed", err)
		}
		pub.ECDHPublic = ecdhPub
		// The verification key is not part of the public key file format
		// (Encode/DecodePublicKey above never touch it) and is not kept
		// separately here. Callers recover it from their own PrivateKey via
		// SigningPublicKey(); GenerateKeypairFiles writes it to
		// "<prefix>.vk" for out-of-band distribution, per SPEC_FULL.md §3.
		priv.ecdhPrivate = mcleece.NewSecret(ecdhPriv)
		priv.signingKey = mcleece.NewSecret(signPriv)
		_ = signPub // recovered from priv.signingKey's tail; see SigningPublicKey
	}

	return pub, priv, nil
}

// GenerateKeypairFiles implements KeyFiles::generate_keypair: it generates
// a fresh keypair and writes "<prefix>.pk" and "<prefix>.sk". For CBox it
// additionally writes "<prefix>.vk", the raw ed25519 verification key, so
// the key owner has a file to hand to receivers out of band (see
// LoadVerifyKey); this file carries no secret material.
func GenerateKeypairFiles(pathPrefix string, password []byte, profile mcleece.Profile) error {
	pub, priv, err := Generate(profile)
	if err != nil {
		return err
	}
	defer priv.Wipe()

	if err := writeFile(pathPrefix+".pk", pub.Encode()); err != nil {
		return mcleece.Wrap(mcleece.CantCreat, "writing public key file", err)
	}

	sealed, err := encodePrivateKey(priv, password)
	if err != nil {
		return err
	}
	if err := writeFile(pathPrefix+".sk", sealed); err != nil {
		return mcleece.Wrap(mcleece.CantCreat, "writing private key file", err)
	}

	if profile == mcleece.CBox {
		if err := writeFile(pathPrefix+".vk", priv.SigningPublicKey()); err != nil {
			return mcleece.Wrap(mcleece.CantCreat, "writing verification key file", err)
		}
	}
	return nil
}

// LoadVerifyKey reads a CBox verification key file written by
// GenerateKeypairFiles (or otherwise obtained out of band).
func LoadVerifyKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.NoInput, "reading verification key file", err)
	}
	if len(data) != 32 {
		return nil, mcleece.Wrap(mcleece.DataErr, "malformed verification key file", nil)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, fileMode)
}

// encodePrivateKey builds the private key file format:
// PROFILE_TAG(1) || SALT(16) || KDF_NONCE(24) || SEALED_SK, where SEALED_SK
// seals (kemPrivate || ecdhPrivate || signingKey) as one unit.
func encodePrivateKey(priv *PrivateKey, password []byte) ([]byte, error) {
	salt := make([]byte, mcleece.SaltLength)
	if err := primitives.RandomBytes(salt); err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "generating salt", err)
	}
	kdfNonce, err := primitives.NewNonce()
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "generating kdf nonce", err)
	}

	derived, err := primitives.DeriveKey(password, salt)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "deriving password key", err)
	}
	defer wipeSlice(derived)

	raw := make([]byte, 0, 128)
	raw = append(raw, priv.kemPrivate.Bytes()...)
	if priv.Profile == mcleece.CBox {
		raw = append(raw, priv.ecdhPrivate.Bytes()...)
		raw = append(raw, priv.signingKey.Bytes()...)
	}

	sealed, err := primitives.SecretBoxSeal(derived, kdfNonce, raw)
	wipeSlice(raw)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "sealing private key", err)
	}

	out := make([]byte, 0, 1+len(salt)+len(kdfNonce)+len(sealed))
	out = append(out, priv.Profile.Tag())
	out = append(out, salt...)
	out = append(out, kdfNonce...)
	out = append(out, sealed...)
	return out, nil
}

func wipeSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// LoadPublicKey implements PublicKey::load(path).
func LoadPublicKey(path string, want mcleece.Profile) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.NoInput, "reading public key file", err)
	}
	return DecodePublicKey(data, want)
}

// LoadPrivateKey implements PrivateKey::load(path, password). A bad
// password and a tampered file are both reported as NoPerm, per spec.
func LoadPrivateKey(path string, password []byte, want mcleece.Profile) (*PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.NoInput, "reading private key file", err)
	}

	minLen := 1 + mcleece.SaltLength + mcleece.NonceLength + mcleece.MACLength
	if len(data) < minLen {
		return nil, mcleece.Wrap(mcleece.NoPerm, "private key file truncated", nil)
	}

	profile, err := mcleece.ProfileFromTag(data[0])
	if err != nil {
		return nil, err
	}
	if profile != want {
		return nil, mcleece.Wrap(mcleece.DataErr,
			fmt.Sprintf("private key profile %s does not match requested %s", profile, want), nil)
	}

	off := 1
	salt := data[off : off+mcleece.SaltLength]
	off += mcleece.SaltLength
	kdfNonce := data[off : off+mcleece.NonceLength]
	off += mcleece.NonceLength
	sealed := data[off:]

	derived, err := primitives.DeriveKey(password, salt)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "deriving password key", err)
	}
	defer wipeSlice(derived)

	raw, err := primitives.SecretBoxOpen(derived, kdfNonce, sealed)
	if err != nil {
		// Wrong password and tamper are indistinguishable by design.
		return nil, mcleece.Wrap(mcleece.NoPerm, "private key authentication failed", err)
	}

	pkLen, skLen, _ := primitives.KEMSizes()
	_ = pkLen
	switch profile {
	case mcleece.Simple:
		if len(raw) != skLen {
			wipeSlice(raw)
			return nil, mcleece.Wrap(mcleece.DataErr, "malformed simple private key", nil)
		}
		return &PrivateKey{Profile: profile, kemPrivate: mcleece.NewSecret(raw)}, nil
	case mcleece.CBox:
		if len(raw) != skLen+32+64 {
			wipeSlice(raw)
			return nil, mcleece.Wrap(mcleece.DataErr, "malformed cbox private key", nil)
		}
		priv := &PrivateKey{
			Profile:     profile,
			kemPrivate:  mcleece.NewSecret(append([]byte(nil), raw[:skLen]...)),
			ecdhPrivate: mcleece.NewSecret(append([]byte(nil), raw[skLen:skLen+32]...)),
			signingKey:  mcleece.NewSecret(append([]byte(nil), raw[skLen+32:]...)),
		}
		wipeSlice(raw)
		return priv, nil
	default:
		wipeSlice(raw)
		return nil, mcleece.Wrap(mcleece.DataErr, "unknown profile", nil)
	}
}
