// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package transcript implements the append-only byte stream that the signing
// session serializes the transaction prefix into and derives challenges from.
package transcript

import (
	"encoding/binary"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/crypto"
)

// Stream accumulates bytes. The zero value is an empty stream.
type Stream struct {
	buf []byte
}

// New returns a stream seeded with the given byte slices.
func New(seed ...[]byte) *Stream {
	s := &Stream{}
	for _, b := range seed {
		s.Append(b)
	}
	return s
}

// Append writes b to the stream.
func (s *Stream) Append(b []byte) {
	s.buf = append(s.buf, b...)
}

// AppendByte writes a single byte.
func (s *Stream) AppendByte(b byte) {
	s.buf = append(s.buf, b)
}

// AppendUint writes v as a CryptoNote varint (unsigned LEB128).
func (s *Stream) AppendUint(v uint64) {
	s.buf = binary.AppendUvarint(s.buf, v)
}

// Len returns the number of bytes written since the last Reset.
func (s *Stream) Len() int { return len(s.buf) }

// Bytes returns a copy of the accumulated bytes.
func (s *Stream) Bytes() []byte {
	return append([]byte(nil), s.buf...)
}

// Reset empties the stream, keeping the allocated buffer.
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
}

// Wipe zeroes the accumulated bytes and empties the stream. Use it on
// streams that held secret material.
func (s *Stream) Wipe() {
	crypto.ZeroBytes(s.buf[:cap(s.buf)])
	s.buf = s.buf[:0]
}

// Digest returns the Keccak-256 hash of the accumulated bytes.
func (s *Stream) Digest() cncrypto.Hash {
	return cncrypto.FastHash(s.buf)
}

// Scalar returns Hs of the accumulated bytes.
func (s *Stream) Scalar() *edwards25519.Scalar {
	return cncrypto.HashToScalar(s.buf)
}

// Point returns Hp of the accumulated bytes.
func (s *Stream) Point() *edwards25519.Point {
	return cncrypto.HashToPoint(s.buf)
}

// Varint returns the CryptoNote varint encoding of v.
func Varint(v uint64) []byte {
	return binary.AppendUvarint(nil, v)
}
