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

// Package envelope builds and parses the per-message SessionHeader: the
// encapsulated session key and nonce (plus, for CBOX, the ephemeral ECDH
// point and sender signature) that precede the framed ciphertext.
package envelope

import (
	"bytes"

	"github.com/jarvisb1/mcleece-go"
	"github.com/jarvisb1/mcleece-go/keyfile"
	"github.com/jarvisb1/mcleece-go/primitives"
)

// Session is the sender- or receiver-side result of building/parsing a
// SessionHeader: the derived secretbox key and the header nonce N0. Key
// must be zeroized via Wipe() when the message is done.
type Session struct {
	Key   *mcleece.Secret
	Nonce []byte
}

// Wipe zeroizes the session key.
func (s *Session) Wipe() {
	s.Key.Wipe()
}

// EncodedSize returns encoded_session_size() for profile: the fixed byte
// length of the SessionHeader on the wire.
func EncodedSize(profile mcleece.Profile) int {
	_, _, ctLen := primitives.KEMSizes()
	switch profile {
	case mcleece.Simple:
		return ctLen + mcleece.NonceLength
	case mcleece.CBox:
		return ctLen + mcleece.NonceLength + 32 + 64
	default:
		return 0
	}
}

// Build implements SessionEnvelope's Build(sender) for the SIMPLE profile:
// kem_encap(pk) plus a fresh nonce, returning the session and the encoded
// header bytes.
func Build(pub *keyfile.PublicKey) (*Session, []byte, error) {
	if pub.Profile != mcleece.Simple {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "Build called with non-simple public key", nil)
	}
	k, c, err := primitives.KEMEncap(pub.KEMPublic)
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "kem encapsulate failed", err)
	}
	nonce, err := primitives.NewNonce()
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "generating envelope nonce", err)
	}

	header := append(append([]byte(nil), c...), nonce...)
	return &Session{Key: mcleece.NewSecret(k), Nonce: nonce}, header, nil
}

// Parse implements SessionEnvelope's Parse(receiver) for the SIMPLE
// profile. buf must be at least EncodedSize(Simple) bytes; only that
// prefix is consumed, per spec.md's "must not over-read".
func Parse(priv *keyfile.PrivateKey, buf []byte) (*Session, error) {
	if priv.Profile != mcleece.Simple {
		return nil, mcleece.Wrap(mcleece.DataErr, "Parse called with non-simple private key", nil)
	}
	_, _, ctLen := primitives.KEMSizes()
	need := ctLen + mcleece.NonceLength
	if len(buf) < need {
		return nil, mcleece.Wrap(mcleece.DataErr, "session header truncated", nil)
	}

	c := buf[:ctLen]
	nonce := append([]byte(nil), buf[ctLen:need]...)

	k, err := primitives.KEMDecap(priv.KEMPrivate(), c)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "kem decapsulate failed", err)
	}
	return &Session{Key: mcleece.NewSecret(k), Nonce: nonce}, nil
}

// BuildCBox implements Build(sender) for the CBOX profile: SIMPLE's
// kem_encap plus an ephemeral ECDH keypair, combined via CombineKDF, with
// the whole header authenticated by the sender's long-term ed25519
// identity key (see SPEC_FULL.md §3).
func BuildCBox(pub *keyfile.PublicKey, signingKey []byte) (*Session, []byte, error) {
	if pub.Profile != mcleece.CBox {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "BuildCBox called with non-cbox public key", nil)
	}

	kemShared, c, err := primitives.KEMEncap(pub.KEMPublic)
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "kem encapsulate failed", err)
	}
	nonce, err := primitives.NewNonce()
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "generating envelope nonce", err)
	}
	ephPub, ephPriv, err := primitives.Curve25519KeyPair()
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "generating ephemeral ecdh keypair", err)
	}
	ecdhShared, err := primitives.ECDH(ephPriv, pub.ECDHPublic)
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "ecdh agreement failed", err)
	}
	combined, err := primitives.CombineKDF(kemShared, ecdhShared)
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "combining session keys failed", err)
	}

	var buf bytes.Buffer
	buf.Write(c)
	buf.Write(nonce)
	buf.Write(ephPub)

	sig, err := primitives.Sign(signingKey, buf.Bytes())
	if err != nil {
		return nil, nil, mcleece.Wrap(mcleece.DataErr, "signing envelope failed", err)
	}
	buf.Write(sig)

	return &Session{Key: mcleece.NewSecret(combined), Nonce: nonce}, buf.Bytes(), nil
}

// ParseCBox implements Parse(receiver) for the CBOX profile. verifyKey is
// the sender's long-term ed25519 verification key, obtained out of band.
func ParseCBox(priv *keyfile.PrivateKey, buf, verifyKey []byte) (*Session, error) {
	if priv.Profile != mcleece.CBox {
		return nil, mcleece.Wrap(mcleece.DataErr, "ParseCBox called with non-cbox private key", nil)
	}
	need := EncodedSize(mcleece.CBox)
	if len(buf) < need {
		return nil, mcleece.Wrap(mcleece.DataErr, "session header truncated", nil)
	}

	_, _, ctLen := primitives.KEMSizes()
	off := 0
	c := buf[off : off+ctLen]
	off += ctLen
	nonce := append([]byte(nil), buf[off:off+mcleece.NonceLength]...)
	off += mcleece.NonceLength
	ephPub := buf[off : off+32]
	off += 32
	sig := buf[off : off+64]
	off += 64

	ok, err := primitives.Verify(verifyKey, buf[:ctLen+mcleece.NonceLength+32], sig)
	if err != nil || !ok {
		return nil, mcleece.Wrap(mcleece.DataErr, "envelope signature verification failed", err)
	}

	kemShared, err := primitives.KEMDecap(priv.KEMPrivate(), c)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "kem decapsulate failed", err)
	}
	ecdhShared, err := primitives.ECDH(priv.ECDHPrivate(), ephPub)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "ecdh agreement failed", err)
	}
	combined, err := primitives.CombineKDF(kemShared, ecdhShared)
	if err != nil {
		return nil, mcleece.Wrap(mcleece.DataErr, "combining session keys failed", err)
	}

	return &Session{Key: mcleece.NewSecret(combined), Nonce: nonce}, nil
}
