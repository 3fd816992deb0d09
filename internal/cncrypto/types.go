// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package cncrypto provides the CryptoNote-family primitives used by the
// signing device: fixed-width key types, Keccak hashing, scalar reduction,
// hash-to-point, key images and the Schnorr signature over the H basepoint.
//
// Arithmetic is done with filippo.io/edwards25519. Values crossing package
// boundaries are plain 32-byte arrays so they can be compared with == and
// sent over the wire without conversion.
package cncrypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Size is the width of every key, scalar and hash handled by this package.
const Size = 32

var (
	// ErrInvalidPoint indicates bytes that do not decode to a curve point
	ErrInvalidPoint = errors.New("invalid curve point")

	// ErrInvalidScalar indicates bytes that are not a canonical scalar
	ErrInvalidScalar = errors.New("invalid scalar")
)

// Hash is a Keccak-256 digest.
type Hash [Size]byte

// PublicKey is an encoded curve point.
type PublicKey [Size]byte

// SecretKey is an encoded scalar modulo the group order.
type SecretKey [Size]byte

// KeyImage is the encoded point a·Hp(P) for a spent output P.
type KeyImage [Size]byte

// Scalar is an encoded scalar that is safe to reveal, such as a challenge or
// a signature response.
type Scalar [Size]byte

// Signature is a (c, r) Schnorr pair.
type Signature struct {
	C Scalar `json:"c"`
	R Scalar `json:"r"`
}

func (h Hash) String() string      { return hex.EncodeToString(h[:]) }
func (k PublicKey) String() string { return hex.EncodeToString(k[:]) }
func (k KeyImage) String() string  { return hex.EncodeToString(k[:]) }
func (s Scalar) String() string    { return hex.EncodeToString(s[:]) }

// String never prints scalar bytes; secret keys end up in error messages and
// traces otherwise.
func (k SecretKey) String() string { return "<secret>" }

// IsZero reports whether the hash is all zero bytes.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) MarshalText() ([]byte, error)      { return marshalHex(h[:]), nil }
func (k PublicKey) MarshalText() ([]byte, error) { return marshalHex(k[:]), nil }
func (k SecretKey) MarshalText() ([]byte, error) { return marshalHex(k[:]), nil }
func (k KeyImage) MarshalText() ([]byte, error)  { return marshalHex(k[:]), nil }
func (s Scalar) MarshalText() ([]byte, error)    { return marshalHex(s[:]), nil }

func (h *Hash) UnmarshalText(text []byte) error      { return unmarshalHex(h[:], text) }
func (k *PublicKey) UnmarshalText(text []byte) error { return unmarshalHex(k[:], text) }
func (k *SecretKey) UnmarshalText(text []byte) error { return unmarshalHex(k[:], text) }
func (k *KeyImage) UnmarshalText(text []byte) error  { return unmarshalHex(k[:], text) }
func (s *Scalar) UnmarshalText(text []byte) error    { return unmarshalHex(s[:], text) }

// ParseHash decodes a 64-character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	err := unmarshalHex(h[:], []byte(s))
	return h, err
}

func marshalHex(b []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)
	return out
}

func unmarshalHex(dst []byte, text []byte) error {
	if hex.DecodedLen(len(text)) != len(dst) {
		return fmt.Errorf("expected %d hex characters, got %d", 2*len(dst), len(text))
	}
	if _, err := hex.Decode(dst, text); err != nil {
		return fmt.Errorf("failed to decode hex: %w", err)
	}
	return nil
}
