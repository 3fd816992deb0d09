// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"errors"
	"strings"
	"testing"

	"github.com/Armor-Network/armor/internal/cncrypto"
)

const (
	testMnemonic  = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	otherMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"
)

func TestDeriveKeysDeterministic(t *testing.T) {
	k1, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatalf("deriveKeys: %v", err)
	}
	k2, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatalf("deriveKeys: %v", err)
	}

	if k1.view.Equal(k2.view) != 1 || k1.auditBase.Equal(k2.auditBase) != 1 || k1.spend.Equal(k2.spend) != 1 {
		t.Error("secret scalars differ between derivations")
	}
	if k1.txDerivationSeed != k2.txDerivationSeed || k1.walletKey != k2.walletKey {
		t.Error("seeds differ between derivations")
	}
	if k1.aPlusSH != k2.aPlusSH || k1.vMulAPlusSH != k2.vMulAPlusSH || k1.viewPublic != k2.viewPublic {
		t.Error("public values differ between derivations")
	}

	// Secrets are domain separated
	if k1.view.Equal(k1.spend) == 1 || k1.view.Equal(k1.auditBase) == 1 || k1.auditBase.Equal(k1.spend) == 1 {
		t.Error("secrets should be pairwise distinct")
	}
	if k1.txDerivationSeed == k1.walletKey {
		t.Error("tx derivation seed and wallet key should differ")
	}

	other, err := deriveKeys(otherMnemonic)
	if err != nil {
		t.Fatalf("deriveKeys: %v", err)
	}
	if other.walletKey == k1.walletKey || other.aPlusSH == k1.aPlusSH {
		t.Error("different mnemonics should give different keys")
	}
}

func TestDeriveKeysNormalizesPhrase(t *testing.T) {
	k1, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := deriveKeys("  " + strings.ToUpper(testMnemonic) + "\n")
	if err != nil {
		t.Fatal(err)
	}
	if k1.walletKey != k2.walletKey {
		t.Error("case and whitespace should not change the keys")
	}
}

func TestDeriveKeysInvalidMnemonic(t *testing.T) {
	tests := []string{
		"",
		strings.Repeat("abandon ", 12),
		"abandon abandon abandon",
		strings.Replace(testMnemonic, "about", "notaword", 1),
	}
	for _, phrase := range tests {
		if _, err := deriveKeys(phrase); !errors.Is(err, ErrInvalidMnemonic) {
			t.Errorf("deriveKeys(%q): expected ErrInvalidMnemonic, got %v", phrase, err)
		}
	}
}

func TestPrepareAddressCache(t *testing.T) {
	k, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatal(err)
	}

	first := cncrypto.ScalarKey(k.prepareAddress(1))
	second := cncrypto.ScalarKey(k.prepareAddress(2))
	again := cncrypto.ScalarKey(k.prepareAddress(1))

	if first != again {
		t.Fatal("subaddress secret should be a pure function of the index")
	}
	if first == second {
		t.Fatal("different indexes should give different secrets")
	}
	if k.lastIndex != 1 || !k.lastValid {
		t.Fatalf("cache should hold index 1, holds %d", k.lastIndex)
	}
	want := cncrypto.ScalarKey(cncrypto.GenerateHDSecretKey(k.auditBase, k.aPlusSH, 1))
	if first != want {
		t.Fatal("cached secret differs from a fresh derivation")
	}

	// Index 0 must not be mistaken for a warm cache
	fresh, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatal(err)
	}
	want0 := cncrypto.ScalarKey(cncrypto.GenerateHDSecretKey(fresh.auditBase, fresh.aPlusSH, 0))
	if got := cncrypto.ScalarKey(fresh.prepareAddress(0)); got != want0 {
		t.Fatal("index 0 on a cold cache returned a stale secret")
	}
}

func TestAddressComponents(t *testing.T) {
	k, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatal(err)
	}
	dst := k.address(5)

	S, err := cncrypto.ParsePoint(dst.S)
	if err != nil {
		t.Fatal(err)
	}
	Sv, err := cncrypto.ParsePoint(dst.Sv)
	if err != nil {
		t.Fatal(err)
	}
	if Sv.Equal(S.ScalarMult(k.view, S)) != 1 {
		t.Error("Sv should equal view·S")
	}
}

func TestWipe(t *testing.T) {
	k, err := deriveKeys(testMnemonic)
	if err != nil {
		t.Fatal(err)
	}
	k.prepareAddress(3)
	k.wipe()

	for name, s := range map[string]cncrypto.SecretKey{
		"view":       cncrypto.ScalarKey(k.view),
		"audit base": cncrypto.ScalarKey(k.auditBase),
		"spend":      cncrypto.ScalarKey(k.spend),
		"last audit": cncrypto.ScalarKey(k.lastAudit),
	} {
		if s != (cncrypto.SecretKey{}) {
			t.Errorf("%s secret not wiped", name)
		}
	}
	if !k.txDerivationSeed.IsZero() || !k.walletKey.IsZero() {
		t.Error("seeds not wiped")
	}
	if k.lastValid {
		t.Error("cache should be invalidated")
	}
}

func TestAddAmount(t *testing.T) {
	sum := uint64(0)
	if err := addAmount(&sum, ^uint64(0)); err != nil {
		t.Fatalf("max amount should fit: %v", err)
	}
	if err := addAmount(&sum, 0); err != nil {
		t.Fatalf("adding zero should never overflow: %v", err)
	}
	if err := addAmount(&sum, 1); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
	if sum != ^uint64(0) {
		t.Fatal("failed addition must not modify the sum")
	}
}

func TestStateString(t *testing.T) {
	if StateExpectStepAMoreData.String() != "expect_step_a_more_data" {
		t.Errorf("unexpected name %q", StateExpectStepAMoreData)
	}
	if State(99).String() != "state(99)" {
		t.Errorf("unexpected name %q", State(99))
	}
}
