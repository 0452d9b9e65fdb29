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

// Package framing chunks a plaintext stream into fixed-maximum frames and
// seals each one independently with a NaCl secretbox, deriving per-frame
// nonces from a counter rather than transmitting one per frame. This is
// the wire format described in spec.md §4.4, adapted from the per-frame
// secretbox sealing the teacher's framing package uses for obfs4 link
// records.
package framing

import (
	"errors"
	"io"

	"github.com/jarvisb1/mcleece-go"
	"github.com/jarvisb1/mcleece-go/primitives"
)

const (
	// CiphertextFrame is the ciphertext length of every frame except
	// possibly the last.
	CiphertextFrame = mcleece.MaxChunk + mcleece.MACLength
)

// ErrShortFinalFrame is returned (wrapped) by DecryptStream when a trailing frame has
// between 1 and MACLength-1 bytes: too short to be a valid secretbox, and
// too long to be the clean end of the stream.
var ErrShortFinalFrame = errors.New("framing: short final frame")

// nonceCounter derives the per-frame nonce Ni = N0 + i, where N0 and the
// result are interpreted as little-endian 192-bit integers, per spec.md
// §4.4.
func nonceCounter(n0 []byte, i uint64) []byte {
	out := make([]byte, len(n0))
	copy(out, n0)

	carry := i
	for pos := 0; pos < len(out) && carry != 0; pos++ {
		sum := uint64(out[pos]) + (carry & 0xff)
		out[pos] = byte(sum)
		carry = (carry >> 8) + (sum >> 8)
	}
	return out
}

// Encoder seals a plaintext stream into frames under a fixed session key
// and envelope nonce.
type Encoder struct {
	key   []byte
	n0    []byte
	index uint64
}

// NewEncoder builds an Encoder bound to the given session key (exactly
// mcleece.KeyLength bytes) and envelope nonce N0 (exactly
// mcleece.NonceLength bytes).
func NewEncoder(key, n0 []byte) *Encoder {
	return &Encoder{key: key, n0: n0}
}

// EncodeFrame seals one frame's worth of plaintext (at most
// mcleece.MaxChunk bytes). It is the caller's responsibility to chunk the
// input stream; see EncryptStream for the full stream loop.
func (e *Encoder) EncodeFrame(plaintext []byte) ([]byte, error) {
	if len(plaintext) > mcleece.MaxChunk {
		return nil, mcleece.Wrap(mcleece.DataErr, "frame payload exceeds MaxChunk", nil)
	}
	nonce := nonceCounter(e.n0, e.index)
	e.index++
	return primitives.SecretBoxSeal(e.key, nonce, plaintext)
}

// EncryptStream implements FrameCodec's Encrypt(stream) loop: it reads up
// to maxLength bytes at a time from r, seals each chunk as an independent
// frame, and writes the ciphertext to w. A short read ends the message;
// the subsequent read must confirm EOF. The very first frame is always
// emitted even if the input is empty, so that an empty message still
// produces one authenticated (tag-only) frame — see spec.md scenario S6 —
// rather than a bare SessionHeader with no frames at all.
func EncryptStream(w io.Writer, r io.Reader, key, n0 []byte, maxLength int) error {
	enc := NewEncoder(key, n0)
	buf := make([]byte, maxLength)
	first := true

	for {
		n, err := io.ReadFull(r, buf)
		switch {
		case err == nil:
			if sealErr := emitFrame(w, enc, buf[:n]); sealErr != nil {
				return sealErr
			}
			first = false
			continue
		case errors.Is(err, io.EOF):
			if !first {
				// A prior full-length frame was already the last one.
				return nil
			}
			if sealErr := emitFrame(w, enc, buf[:n]); sealErr != nil {
				return sealErr
			}
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			if sealErr := emitFrame(w, enc, buf[:n]); sealErr != nil {
				return sealErr
			}
			// A short read ends the message; confirm EOF follows.
			if _, werr := io.ReadFull(r, buf[:1]); werr != io.EOF {
				if werr == nil {
					return mcleece.Wrap(mcleece.NoInput, "plaintext stream grew after short read", nil)
				}
				return mcleece.Wrap(mcleece.NoInput, "confirming end of plaintext stream", werr)
			}
			return nil
		default:
			return mcleece.Wrap(mcleece.NoInput, "reading plaintext stream", err)
		}
	}
}

func emitFrame(w io.Writer, enc *Encoder, plaintext []byte) error {
	frame, err := enc.EncodeFrame(plaintext)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return mcleece.Wrap(mcleece.CantCreat, "writing ciphertext frame", err)
	}
	return nil
}

// Decoder opens frames sealed under a fixed session key and envelope
// nonce.
type Decoder struct {
	key   []byte
	n0    []byte
	index uint64
}

// NewDecoder builds a Decoder bound to the given session key and envelope
// nonce N0.
func NewDecoder(key, n0 []byte) *Decoder {
	return &Decoder{key: key, n0: n0}
}

// DecodeFrame authenticates and opens one frame's ciphertext.
func (d *Decoder) DecodeFrame(ciphertext []byte) ([]byte, error) {
	nonce := nonceCounter(d.n0, d.index)
	d.index++
	return primitives.SecretBoxOpen(d.key, nonce, ciphertext)
}

// DecryptStream implements FrameCodec's Decrypt(stream) loop (the
// per-frame half; the caller has already consumed and parsed the
// SessionHeader). It reads CiphertextFrame-sized chunks from r, opens
// each as an independent frame, and writes the recovered plaintext to w.
func DecryptStream(w io.Writer, r io.Reader, key, n0 []byte) error {
	dec := NewDecoder(key, n0)
	buf := make([]byte, CiphertextFrame)

	for {
		n, err := io.ReadFull(r, buf)
		switch {
		case err == nil:
			pt, derr := dec.DecodeFrame(buf[:n])
			if derr != nil {
				return mcleece.Wrap(mcleece.DataErr, "frame authentication failed", derr)
			}
			if _, werr := w.Write(pt); werr != nil {
				return mcleece.Wrap(mcleece.CantCreat, "writing plaintext", werr)
			}
			continue
		case errors.Is(err, io.EOF):
			// Clean end of message: no bytes were read for this frame.
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			if n < mcleece.MACLength {
				return mcleece.Wrap(mcleece.DataErr, "short final frame", ErrShortFinalFrame)
			}
			pt, derr := dec.DecodeFrame(buf[:n])
			if derr != nil {
				return mcleece.Wrap(mcleece.DataErr, "frame authentication failed", derr)
			}
			if _, werr := w.Write(pt); werr != nil {
				return mcleece.Wrap(mcleece.CantCreat, "writing plaintext", werr)
			}
			// A short frame must be the last: confirm EOF follows.
			var one [1]byte
			if _, werr := io.ReadFull(r, one[:]); werr != io.EOF {
				if werr == nil {
					return mcleece.Wrap(mcleece.DataErr, "data after short final frame", nil)
				}
				return mcleece.Wrap(mcleece.DataErr, "reading past short final frame", werr)
			}
			return nil
		default:
			return mcleece.Wrap(mcleece.NoInput, "reading ciphertext stream", err)
		}
	}
}
