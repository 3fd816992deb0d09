// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"fmt"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/transcript"
)

// input holds the decoded public values of one signed input.
type input struct {
	I      *edwards25519.Point
	b      *edwards25519.Point // Hp(I)
	gPlusB *edwards25519.Point
	p      *edwards25519.Point
	ring   []*edwards25519.Point
	hp     []*edwards25519.Point // Hp(P_k)
	diff   []*edwards25519.Point // P_k − p
}

func newInput(keyImage cncrypto.KeyImage, outputKeys []cncrypto.PublicKey, p cncrypto.PublicKey) (*input, error) {
	I, err := parseKeyImage(keyImage)
	if err != nil {
		return nil, err
	}
	ring, err := parseRing(outputKeys)
	if err != nil {
		return nil, err
	}
	P, err := cncrypto.ParsePoint(p)
	if err != nil {
		return nil, fmt.Errorf("%w: p: %v", ErrMalformed, err)
	}
	in := &input{
		I:    I,
		b:    cncrypto.HashToPoint(keyImage[:]),
		p:    P,
		ring: ring,
		hp:   make([]*edwards25519.Point, len(ring)),
		diff: make([]*edwards25519.Point, len(ring)),
	}
	in.gPlusB = new(edwards25519.Point).Add(edwards25519.NewGeneratorPoint(), in.b)
	for k, Pk := range ring {
		in.hp[k] = cncrypto.HashToPoint(outputKeys[k][:])
		in.diff[k] = new(edwards25519.Point).Subtract(Pk, P)
	}
	return in, nil
}

// step advances the challenge over ring member k:
// x = ra·(G+b) + c·(P_k − p), y = ra·Hp(P_k) + c·I, next c = Hs(x ‖ y).
func (in *input) step(k int, ra, c *edwards25519.Scalar) *edwards25519.Scalar {
	x := new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{ra, c}, []*edwards25519.Point{in.gPlusB, in.diff[k]})
	y := new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{ra, c}, []*edwards25519.Point{in.hp[k], in.I})
	return challenge(x, y)
}

func challenge(x, y *edwards25519.Point) *edwards25519.Scalar {
	return cncrypto.HashToScalar(x.Bytes(), y.Bytes())
}

// commitment returns z = rb·H + rc·b + c0·p.
func (in *input) commitment(rb, rc, c0 *edwards25519.Scalar) *edwards25519.Point {
	return new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{rb, rc, c0},
		[]*edwards25519.Point{cncrypto.BasepointH(), in.b, in.p})
}

func decodeScalars(what string, in []cncrypto.Scalar) ([]*edwards25519.Scalar, error) {
	out := make([]*edwards25519.Scalar, len(in))
	for i, s := range in {
		d, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformed, what, i, err)
		}
		out[i] = d
	}
	return out, nil
}

// CheckAmethyst verifies the signature of all inputs of a transaction.
// keyImages and outputKeys are indexed by input.
func CheckAmethyst(prefixHash cncrypto.Hash, keyImages []cncrypto.KeyImage, outputKeys [][]cncrypto.PublicKey, sig Amethyst) error {
	n := len(keyImages)
	if n == 0 || len(outputKeys) != n || len(sig.P) != n || len(sig.RA) != n || len(sig.RB) != n || len(sig.RC) != n {
		return fmt.Errorf("%w: dimensions do not match %d inputs", ErrMalformed, n)
	}
	c0, err := sig.C0.Decode()
	if err != nil {
		return fmt.Errorf("%w: c0: %v", ErrMalformed, err)
	}
	rb, err := decodeScalars("rb", sig.RB)
	if err != nil {
		return err
	}
	rc, err := decodeScalars("rc", sig.RC)
	if err != nil {
		return err
	}

	buf := transcript.New(prefixHash[:])
	for i := range keyImages {
		if len(outputKeys[i]) == 0 || len(sig.RA[i]) != len(outputKeys[i]) {
			return fmt.Errorf("%w: input %d has %d responses for %d ring members", ErrMalformed, i, len(sig.RA[i]), len(outputKeys[i]))
		}
		in, err := newInput(keyImages[i], outputKeys[i], sig.P[i])
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		ra, err := decodeScalars("ra", sig.RA[i])
		if err != nil {
			return err
		}

		buf.Append(sig.P[i][:])
		buf.Append(in.commitment(rb[i], rc[i], c0).Bytes())
		c := c0
		for k := range ra {
			c = in.step(k, ra[k], c)
		}
		buf.Append(c.Bytes())
	}
	if buf.Scalar().Equal(c0) != 1 {
		return ErrBadSignature
	}
	return nil
}
