// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package ringsig verifies the ring signatures produced by a signing
// device, builds complete signed transactions by driving a hardware.Wallet
// through the session protocol, and checks batches of signatures in
// parallel.
package ringsig

import (
	"errors"

	"github.com/Armor-Network/armor/internal/cncrypto"
)

var (
	// ErrBadSignature indicates a signature that does not verify
	ErrBadSignature = errors.New("bad ring signature")

	// ErrMalformed indicates signature or ring dimensions that do not match
	ErrMalformed = errors.New("malformed ring signature")

	// ErrBadKeyImage indicates a key image outside the prime-order subgroup
	ErrBadKeyImage = errors.New("bad key image")
)

// RingSignature is a classic CryptoNote ring signature, one (c, r) pair per
// ring member.
type RingSignature []cncrypto.Signature

// Amethyst is the ring signature of all inputs of a transaction signed by
// the device. P, RB and RC have one entry per input; RA has one entry per
// ring member of every input.
type Amethyst struct {
	P  []cncrypto.PublicKey `json:"p"`
	C0 cncrypto.Scalar      `json:"c0"`
	RA [][]cncrypto.Scalar  `json:"ra"`
	RB []cncrypto.Scalar    `json:"rb"`
	RC []cncrypto.Scalar    `json:"rc"`
}

// RingSignatureArg is one classic input to verify.
type RingSignatureArg struct {
	TxPrefixHash           cncrypto.Hash        `json:"tx_prefix_hash"`
	NewestReferencedHeight uint64               `json:"newest_referenced_height"`
	KeyImage               cncrypto.KeyImage    `json:"key_image"`
	OutputKeys             []cncrypto.PublicKey `json:"output_keys"`
	Signature              RingSignature        `json:"signature"`
}

// RingSignatureArgA is the Amethyst signature of one transaction to verify.
type RingSignatureArgA struct {
	TxPrefixHash           cncrypto.Hash          `json:"tx_prefix_hash"`
	NewestReferencedHeight uint64                 `json:"newest_referenced_height"`
	KeyImages              []cncrypto.KeyImage    `json:"key_images"`
	OutputKeys             [][]cncrypto.PublicKey `json:"output_keys"`
	Signature              Amethyst               `json:"signature"`
}
