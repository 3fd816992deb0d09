// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"fmt"
	"io"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
)

// orderMinusOne is ℓ−1 little endian. (ℓ−1)·I + I is the identity exactly
// when I has no torsion component.
var orderMinusOne = [32]byte{
	0xec, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
	0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0x10,
}

var scalarOrderMinusOne = func() *edwards25519.Scalar {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(orderMinusOne[:])
	if err != nil {
		panic(err)
	}
	return s
}()

// parseKeyImage decodes a key image and rejects points with a small-order
// component, which would let one output be spent under several images.
func parseKeyImage(ki cncrypto.KeyImage) (*edwards25519.Point, error) {
	p, err := cncrypto.ParsePoint(cncrypto.PublicKey(ki))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKeyImage, err)
	}
	check := new(edwards25519.Point).ScalarMult(scalarOrderMinusOne, p)
	check.Add(check, p)
	if check.Equal(edwards25519.NewIdentityPoint()) != 1 {
		return nil, fmt.Errorf("%w: %s has a torsion component", ErrBadKeyImage, ki)
	}
	return p, nil
}

func parseRing(keys []cncrypto.PublicKey) ([]*edwards25519.Point, error) {
	ring := make([]*edwards25519.Point, len(keys))
	for i, k := range keys {
		p, err := cncrypto.ParsePoint(k)
		if err != nil {
			return nil, fmt.Errorf("%w: ring member %d: %v", ErrMalformed, i, err)
		}
		ring[i] = p
	}
	return ring, nil
}

// GenerateRingSignature signs prefixHash with secret, the key of
// outputKeys[realIndex], producing key image secret·Hp(P).
func GenerateRingSignature(prefixHash cncrypto.Hash, outputKeys []cncrypto.PublicKey, realIndex int, secret *edwards25519.Scalar, rand io.Reader) (RingSignature, cncrypto.KeyImage, error) {
	if realIndex < 0 || realIndex >= len(outputKeys) {
		return nil, cncrypto.KeyImage{}, fmt.Errorf("%w: real index %d out of ring of %d", ErrMalformed, realIndex, len(outputKeys))
	}
	if cncrypto.PointKey(cncrypto.SecretKeyToPublicKey(secret)) != outputKeys[realIndex] {
		return nil, cncrypto.KeyImage{}, fmt.Errorf("%w: secret does not match ring member %d", ErrMalformed, realIndex)
	}
	ring, err := parseRing(outputKeys)
	if err != nil {
		return nil, cncrypto.KeyImage{}, err
	}
	keyImage := cncrypto.GenerateKeyImage(outputKeys[realIndex], secret)
	I, err := cncrypto.ParsePoint(cncrypto.PublicKey(keyImage))
	if err != nil {
		return nil, cncrypto.KeyImage{}, err
	}

	buf := make([][]byte, 0, 1+2*len(ring))
	buf = append(buf, prefixHash[:])
	sig := make(RingSignature, len(ring))
	sum := edwards25519.NewScalar()
	var k *edwards25519.Scalar

	for i, P := range ring {
		hp := cncrypto.HashToPoint(outputKeys[i][:])
		var L, R *edwards25519.Point
		if i == realIndex {
			if k, err = cncrypto.RandomScalar(rand); err != nil {
				return nil, cncrypto.KeyImage{}, err
			}
			L = new(edwards25519.Point).ScalarBaseMult(k)
			R = new(edwards25519.Point).ScalarMult(k, hp)
		} else {
			q, err := cncrypto.RandomScalar(rand)
			if err != nil {
				return nil, cncrypto.KeyImage{}, err
			}
			w, err := cncrypto.RandomScalar(rand)
			if err != nil {
				return nil, cncrypto.KeyImage{}, err
			}
			L = new(edwards25519.Point).VarTimeDoubleScalarBaseMult(w, P, q)
			R = new(edwards25519.Point).VarTimeMultiScalarMult([]*edwards25519.Scalar{q, w}, []*edwards25519.Point{hp, I})
			sig[i] = cncrypto.Signature{C: cncrypto.PublicScalar(w), R: cncrypto.PublicScalar(q)}
			sum.Add(sum, w)
		}
		buf = append(buf, L.Bytes(), R.Bytes())
	}

	// c = h − Σc_i, r = k − c·x
	c := cncrypto.HashToScalar(buf...)
	c.Subtract(c, sum)
	r := edwards25519.NewScalar().Multiply(c, secret)
	r.Subtract(k, r)
	sig[realIndex] = cncrypto.Signature{C: cncrypto.PublicScalar(c), R: cncrypto.PublicScalar(r)}
	return sig, keyImage, nil
}

// CheckRingSignature verifies a classic ring signature.
func CheckRingSignature(prefixHash cncrypto.Hash, keyImage cncrypto.KeyImage, outputKeys []cncrypto.PublicKey, sig RingSignature) error {
	if len(outputKeys) == 0 || len(sig) != len(outputKeys) {
		return fmt.Errorf("%w: %d signatures for %d ring members", ErrMalformed, len(sig), len(outputKeys))
	}
	I, err := parseKeyImage(keyImage)
	if err != nil {
		return err
	}
	ring, err := parseRing(outputKeys)
	if err != nil {
		return err
	}

	buf := make([][]byte, 0, 1+2*len(ring))
	buf = append(buf, prefixHash[:])
	sum := edwards25519.NewScalar()
	for i, P := range ring {
		c, err := sig[i].C.Decode()
		if err != nil {
			return fmt.Errorf("%w: c[%d]: %v", ErrMalformed, i, err)
		}
		r, err := sig[i].R.Decode()
		if err != nil {
			return fmt.Errorf("%w: r[%d]: %v", ErrMalformed, i, err)
		}
		hp := cncrypto.HashToPoint(outputKeys[i][:])
		L := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, P, r)
		R := new(edwards25519.Point).VarTimeMultiScalarMult([]*edwards25519.Scalar{r, c}, []*edwards25519.Point{hp, I})
		buf = append(buf, L.Bytes(), R.Bytes())
		sum.Add(sum, c)
	}
	if cncrypto.HashToScalar(buf...).Equal(sum) != 1 {
		return ErrBadSignature
	}
	return nil
}
