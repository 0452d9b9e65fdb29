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

// Package mcleece implements hybrid post-quantum/classical file and stream
// encryption: a Classic McEliece KEM protects an ephemeral session key that
// authenticates and encrypts the payload via a NaCl secretbox.
package mcleece

import "fmt"

// Profile selects the envelope and authentication scheme used for a
// message. It is fixed at keygen time and must match at encrypt/decrypt
// time.
type Profile uint8

const (
	// Simple is the one-shot KEM-per-message, sender-anonymous profile.
	Simple Profile = iota
	// CBox is the crypto-box profile: ephemeral ECDH combined with the KEM
	// for hybrid security, with sender authentication.
	CBox
)

func (p Profile) String() string {
	switch p {
	case Simple:
		return "simple"
	case CBox:
		return "cbox"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// Tag is the single byte persisted as the leading byte of key files and
// used to detect profile mismatches on load.
func (p Profile) Tag() byte {
	return byte(p)
}

// ProfileFromTag parses the leading profile byte of a key file.
func ProfileFromTag(tag byte) (Profile, error) {
	switch Profile(tag) {
	case Simple:
		return Simple, nil
	case CBox:
		return CBox, nil
	default:
		return 0, &KindError{Kind: DataErr, Msg: fmt.Sprintf("mcleece: unknown profile tag %d", tag)}
	}
}

const (
	// KeyLength is the length in bytes of a session/secretbox key.
	KeyLength = 32
	// NonceLength is the length in bytes of an envelope nonce.
	NonceLength = 24
	// MACLength is the secretbox authentication tag overhead.
	MACLength = 16
	// MaxChunk is the maximum plaintext payload carried by one frame.
	MaxChunk = 0x100000
	// SaltLength is the minimum password KDF salt size.
	SaltLength = 16
)
