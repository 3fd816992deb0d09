// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package cncrypto

import (
	"io"

	"filippo.io/edwards25519"
)

// GenerateSignatureH signs prefix with secret s whose public key is
// sH = s·H. The nonce is drawn from rand.
//
//	K = k·H, c = Hs(prefix ‖ sH ‖ K), r = k − c·s
func GenerateSignatureH(prefix Hash, sH PublicKey, s *edwards25519.Scalar, rand io.Reader) (Signature, error) {
	k, err := RandomScalar(rand)
	if err != nil {
		return Signature{}, err
	}
	K := new(edwards25519.Point).ScalarMult(k, basepointH)
	kb := K.Bytes()
	c := HashToScalar(prefix[:], sH[:], kb)

	r := edwards25519.NewScalar().Multiply(c, s)
	r.Subtract(k, r)
	return Signature{C: PublicScalar(c), R: PublicScalar(r)}, nil
}

// CheckSignatureH verifies a signature produced by GenerateSignatureH.
func CheckSignatureH(prefix Hash, sH PublicKey, sig Signature) bool {
	pub, err := ParsePoint(sH)
	if err != nil {
		return false
	}
	c, err := sig.C.Decode()
	if err != nil {
		return false
	}
	r, err := sig.R.Decode()
	if err != nil {
		return false
	}
	// K' = r·H + c·sH
	K := new(edwards25519.Point).ScalarMult(r, basepointH)
	K.Add(K, new(edwards25519.Point).ScalarMult(c, pub))
	return HashToScalar(prefix[:], sH[:], K.Bytes()).Equal(c) == 1
}
