// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package cncrypto

import (
	"encoding/binary"
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

// SecretKeyToPublicKey returns s·G.
func SecretKeyToPublicKey(s *edwards25519.Scalar) *edwards25519.Point {
	return new(edwards25519.Point).ScalarBaseMult(s)
}

// SecretKeysToPublicKey returns a·G + s·H, the public key of an output whose
// secret is split between an audit part a and a spend part s.
func SecretKeysToPublicKey(a, s *edwards25519.Scalar) *edwards25519.Point {
	sH := new(edwards25519.Point).ScalarMult(s, basepointH)
	return new(edwards25519.Point).Add(SecretKeyToPublicKey(a), sH)
}

// GenerateKeyImage returns a·Hp(P).
func GenerateKeyImage(p PublicKey, a *edwards25519.Scalar) KeyImage {
	return KeyImageOf(new(edwards25519.Point).ScalarMult(a, HashToPoint(p[:])))
}

// GenerateHDSecretKey derives the audit secret of subaddress index from the
// audit base secret: Hs(A_plus_sH ‖ varint(index))·base.
func GenerateHDSecretKey(base *edwards25519.Scalar, aPlusSH PublicKey, index uint64) *edwards25519.Scalar {
	buf := make([]byte, 0, Size+binary.MaxVarintLen64)
	buf = append(buf, aPlusSH[:]...)
	buf = binary.AppendUvarint(buf, index)
	return edwards25519.NewScalar().Multiply(HashToScalar(buf), base)
}

// RandomScalar reads 64 bytes from r and reduces them to a uniform scalar.
func RandomScalar(r io.Reader) (*edwards25519.Scalar, error) {
	var wide [64]byte
	if _, err := io.ReadFull(r, wide[:]); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}
	return edwards25519.NewScalar().SetUniformBytes(wide[:])
}
