// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package cncrypto

import (
	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

// FastHash is Keccak-256 with the original (pre-SHA3) padding over the
// concatenation of data.
func FastHash(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// ReduceScalar reduces 32 little-endian bytes modulo the group order.
func ReduceScalar(b [Size]byte) *edwards25519.Scalar {
	var wide [64]byte
	copy(wide[:], b[:])
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		// SetUniformBytes only fails on a wrong input length
		panic(err)
	}
	return s
}

// HashToScalar is Hs: FastHash followed by reduction modulo the group order.
func HashToScalar(data ...[]byte) *edwards25519.Scalar {
	return ReduceScalar(FastHash(data...))
}
