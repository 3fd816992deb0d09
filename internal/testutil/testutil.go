// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package testutil provides reusable test infrastructure and utilities.
package testutil

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
	"github.com/Armor-Network/armor/internal/ringsig"
)

// Reference BIP39 phrases. Both pass the checksum.
const (
	Mnemonic      = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	OtherMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"
)

// NewEmulator creates an emulator over Mnemonic with deterministic session
// seeds unless opts override it.
func NewEmulator(t *testing.T, opts ...hardware.Option) *hardware.Emulator {
	t.Helper()
	return NewEmulatorFrom(t, Mnemonic, opts...)
}

// NewEmulatorFrom is NewEmulator for another phrase.
func NewEmulatorFrom(t *testing.T, phrase string, opts ...hardware.Option) *hardware.Emulator {
	t.Helper()
	all := append([]hardware.Option{hardware.WithRandomSource(hardware.ZeroSeed{})}, opts...)
	e, err := hardware.NewEmulator(phrase, all...)
	if err != nil {
		t.Fatalf("Failed to create emulator: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// OwnedOutput is an output paying one of the wallet's subaddresses together
// with the inverse output secret hash the wallet needs to spend it.
type OwnedOutput = ringsig.Owned

// NewOwnedOutput creates an output to subaddress addressIndex of w as some
// other sender would, then recovers the spend data the way a wallet scanning
// the chain does.
func NewOwnedOutput(t *testing.T, w hardware.Wallet, addressIndex uint64) OwnedOutput {
	t.Helper()

	dst, err := w.PrepareAddress(addressIndex)
	if err != nil {
		t.Fatalf("PrepareAddress: %v", err)
	}
	var senderSeed, inputsHash cncrypto.Hash
	if _, err := rand.Read(senderSeed[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(inputsHash[:]); err != nil {
		t.Fatal(err)
	}
	out, err := outputs.Compute(senderSeed, inputsHash, 0, dst)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	owned, err := ringsig.Scan(w, inputsHash, 0, out, addressIndex)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return owned
}

// RandomPublicKey returns a random point, usable as a decoy ring member.
func RandomPublicKey(t *testing.T) cncrypto.PublicKey {
	t.Helper()
	s, err := cncrypto.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return cncrypto.PointKey(cncrypto.SecretKeyToPublicKey(s))
}

// ForeignDestination returns an unlinkable address nobody in the test owns.
func ForeignDestination(t *testing.T) outputs.Destination {
	t.Helper()
	S := RandomPublicKey(t)
	p, _ := cncrypto.ParsePoint(S)
	v, err := cncrypto.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return outputs.Destination{
		Tag: outputs.AddressUnlinkable,
		S:   S,
		Sv:  cncrypto.PointKey(new(edwards25519.Point).ScalarMult(v, p)),
	}
}

// AssertErrorIs checks err against a sentinel; a nil want expects success.
func AssertErrorIs(t *testing.T, err error, want error, msgContains string) {
	t.Helper()

	if want == nil {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		return
	}
	if !errors.Is(err, want) {
		t.Errorf("Expected error %v, got %v", want, err)
		return
	}
	if msgContains != "" && !strings.Contains(err.Error(), msgContains) {
		t.Errorf("Error message %q should contain %q", err.Error(), msgContains)
	}
}
