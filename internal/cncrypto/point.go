// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package cncrypto

import (
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

// hHex is the encoding of the second basepoint H used for amount and
// spend-key commitments.
const hHex = "8b655970153799af2aeadc9ff1add0ea6c7251d54154cfa92c173a0dd39c1f94"

var basepointH *edwards25519.Point

// Constants of the Elligator-style map from a field element to a point.
// They are computed rather than tabulated; the final sign normalisation
// makes the result independent of which square roots are picked.
var (
	feOne    = new(field.Element).One()
	feZero   = new(field.Element).Zero()
	feMA     *field.Element // -A
	feMA2    *field.Element // -A^2
	feSqrtM1 *field.Element // sqrt(-1)
	feFFFB1  *field.Element // sqrt(-2 * A * (A + 2))
	feFFFB2  *field.Element // sqrt(2 * A * (A + 2))
	feFFFB3  *field.Element // sqrt(-sqrt(-1) * A * (A + 2))
	feFFFB4  *field.Element // sqrt(sqrt(-1) * A * (A + 2))
)

func init() {
	b, err := hex.DecodeString(hHex)
	if err != nil {
		panic(err)
	}
	basepointH, err = new(edwards25519.Point).SetBytes(b)
	if err != nil {
		panic(fmt.Sprintf("cncrypto: invalid H basepoint: %v", err))
	}

	a := new(field.Element).Mult32(feOne, 486662)
	feMA = new(field.Element).Negate(a)
	feMA2 = new(field.Element).Negate(new(field.Element).Square(a))

	minusOne := new(field.Element).Negate(feOne)
	feSqrtM1 = mustSqrt(minusOne)

	aa2 := new(field.Element).Add(a, new(field.Element).Mult32(feOne, 2))
	aa2.Multiply(aa2, a)
	twoAA2 := new(field.Element).Add(aa2, aa2)
	feFFFB1 = mustSqrt(new(field.Element).Negate(twoAA2))
	feFFFB2 = mustSqrt(twoAA2)
	iAA2 := new(field.Element).Multiply(feSqrtM1, aa2)
	feFFFB3 = mustSqrt(new(field.Element).Negate(iAA2))
	feFFFB4 = mustSqrt(iAA2)
}

func mustSqrt(x *field.Element) *field.Element {
	r, wasSquare := new(field.Element).SqrtRatio(x, feOne)
	if wasSquare != 1 {
		panic("cncrypto: map constant is not a square")
	}
	return r
}

// BasepointH returns a copy of H.
func BasepointH() *edwards25519.Point {
	return new(edwards25519.Point).Set(basepointH)
}

// ParsePoint decodes k as a curve point.
func ParsePoint(k PublicKey) (*edwards25519.Point, error) {
	p, err := new(edwards25519.Point).SetBytes(k[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPoint, k)
	}
	return p, nil
}

// ParseScalar decodes k as a canonical scalar.
func ParseScalar(k SecretKey) (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(k[:])
	if err != nil {
		return nil, ErrInvalidScalar
	}
	return s, nil
}

// Decode parses s as a canonical scalar.
func (s Scalar) Decode() (*edwards25519.Scalar, error) {
	return ParseScalar(SecretKey(s))
}

// PublicScalar encodes s as a revealable scalar.
func PublicScalar(s *edwards25519.Scalar) Scalar {
	var out Scalar
	copy(out[:], s.Bytes())
	return out
}

// PointKey encodes p.
func PointKey(p *edwards25519.Point) PublicKey {
	var k PublicKey
	copy(k[:], p.Bytes())
	return k
}

// ScalarKey encodes s.
func ScalarKey(s *edwards25519.Scalar) SecretKey {
	var k SecretKey
	copy(k[:], s.Bytes())
	return k
}

// KeyImageOf encodes p as a key image.
func KeyImageOf(p *edwards25519.Point) KeyImage {
	var k KeyImage
	copy(k[:], p.Bytes())
	return k
}

// IsZeroScalar reports whether s is zero.
func IsZeroScalar(s *edwards25519.Scalar) bool {
	return s.Equal(edwards25519.NewScalar()) == 1
}

// HashToPoint is Hp: FastHash of data mapped onto the curve and multiplied
// by the cofactor, so the result lies in the prime-order subgroup.
func HashToPoint(data ...[]byte) *edwards25519.Point {
	h := FastHash(data...)
	return new(edwards25519.Point).MultByCofactor(pointFromField(h))
}

// pointFromField maps 32 bytes interpreted as a field element to a curve
// point. The top bit is ignored and non-canonical values are accepted.
func pointFromField(b Hash) *edwards25519.Point {
	u, err := new(field.Element).SetBytes(b[:])
	if err != nil {
		panic(err)
	}

	v := new(field.Element).Square(u)
	v.Add(v, v) // 2u^2
	w := new(field.Element).Add(v, feOne)
	x := new(field.Element).Square(w)
	y := new(field.Element).Multiply(feMA2, v)
	x.Add(x, y) // w^2 - 2A^2u^2

	rx := divPowM1(w, x)
	y.Square(rx)
	x.Multiply(y, x)
	y.Subtract(w, x)
	z := new(field.Element).Set(feMA)

	var sign int
	switch {
	case y.Equal(feZero) == 1:
		rx.Multiply(rx, feFFFB2)
		rx.Multiply(rx, u)
		z.Multiply(z, v)
	case new(field.Element).Add(w, x).Equal(feZero) == 1:
		rx.Multiply(rx, feFFFB1)
		rx.Multiply(rx, u)
		z.Multiply(z, v)
	default:
		x.Multiply(x, feSqrtM1)
		y.Subtract(w, x)
		if y.Equal(feZero) == 1 {
			rx.Multiply(rx, feFFFB4)
		} else {
			rx.Multiply(rx, feFFFB3)
		}
		sign = 1
	}
	if rx.IsNegative() != sign {
		rx.Negate(rx)
	}

	rz := new(field.Element).Add(z, w)
	ry := new(field.Element).Subtract(z, w)
	rx.Multiply(rx, rz)

	zInv := new(field.Element).Invert(rz)
	ax := new(field.Element).Multiply(rx, zInv)
	ay := new(field.Element).Multiply(ry, zInv)
	t := new(field.Element).Multiply(ax, ay)
	p, err := new(edwards25519.Point).SetExtendedCoordinates(ax, ay, new(field.Element).One(), t)
	if err != nil {
		// rz is zero only for a negligible set of inputs
		return edwards25519.NewIdentityPoint()
	}
	return p
}

// divPowM1 returns u * v^3 * (u * v^7)^((p-5)/8).
func divPowM1(u, v *field.Element) *field.Element {
	v3 := new(field.Element).Square(v)
	v3.Multiply(v3, v)
	uv7 := new(field.Element).Square(v3)
	uv7.Multiply(uv7, v)
	uv7.Multiply(uv7, u)
	r := new(field.Element).Pow22523(uv7)
	r.Multiply(r, v3)
	return r.Multiply(r, u)
}
