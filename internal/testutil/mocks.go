// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package testutil

import (
	"errors"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
)

// ErrMockFailure is returned by MockWallet operations listed in Fail
var ErrMockFailure = errors.New("mock wallet failure")

// MockWallet wraps a Wallet and tampers with selected operations, for
// testing proxy mirroring. Operation names are the protocol names, e.g.
// "sign_step_a".
type MockWallet struct {
	hardware.Wallet

	// Flip lists operations whose first result byte gets one bit flipped.
	Flip map[string]bool

	// Fail lists operations that return ErrMockFailure.
	Fail map[string]bool

	// Calls counts invocations per operation.
	Calls map[string]int
}

// NewMockWallet wraps inner without tampering.
func NewMockWallet(inner hardware.Wallet) *MockWallet {
	return &MockWallet{
		Wallet: inner,
		Flip:   make(map[string]bool),
		Fail:   make(map[string]bool),
		Calls:  make(map[string]int),
	}
}

func (m *MockWallet) enter(op string) error {
	m.Calls[op]++
	if m.Fail[op] {
		return ErrMockFailure
	}
	return nil
}

func flip(b []byte) { b[0] ^= 1 }

func (m *MockWallet) HardwareType() string { return "Mock" }

func (m *MockWallet) APlusSH() cncrypto.PublicKey {
	k := m.Wallet.APlusSH()
	if m.Flip["a_plus_sh"] {
		flip(k[:])
	}
	return k
}

func (m *MockWallet) WalletKey() cncrypto.Hash {
	k := m.Wallet.WalletKey()
	if m.Flip["wallet_key"] {
		flip(k[:])
	}
	return k
}

func (m *MockWallet) PrepareAddress(index uint64) (outputs.Destination, error) {
	if err := m.enter("prepare_address"); err != nil {
		return outputs.Destination{}, err
	}
	d, err := m.Wallet.PrepareAddress(index)
	if m.Flip["prepare_address"] {
		flip(d.S[:])
	}
	return d, err
}

func (m *MockWallet) MulByViewSecretKey(keys []cncrypto.PublicKey) ([]cncrypto.PublicKey, error) {
	if err := m.enter("mul_by_view_secret_key"); err != nil {
		return nil, err
	}
	res, err := m.Wallet.MulByViewSecretKey(keys)
	if m.Flip["mul_by_view_secret_key"] && len(res) > 0 {
		flip(res[0][:])
	}
	return res, err
}

func (m *MockWallet) GenerateKeyImage(outputKey cncrypto.PublicKey, invHash cncrypto.SecretKey, addressIndex uint64) (cncrypto.KeyImage, error) {
	if err := m.enter("generate_keyimage"); err != nil {
		return cncrypto.KeyImage{}, err
	}
	ki, err := m.Wallet.GenerateKeyImage(outputKey, invHash, addressIndex)
	if m.Flip["generate_keyimage"] {
		flip(ki[:])
	}
	return ki, err
}

func (m *MockWallet) GenerateOutputSeed(txInputsHash cncrypto.Hash, index uint64) (cncrypto.PublicKey, error) {
	if err := m.enter("generate_output_seed"); err != nil {
		return cncrypto.PublicKey{}, err
	}
	k, err := m.Wallet.GenerateOutputSeed(txInputsHash, index)
	if m.Flip["generate_output_seed"] {
		flip(k[:])
	}
	return k, err
}

func (m *MockWallet) ExportViewOnly(viewOutgoing bool) (hardware.ViewOnlyExport, error) {
	if err := m.enter("export_view_only"); err != nil {
		return hardware.ViewOnlyExport{}, err
	}
	v, err := m.Wallet.ExportViewOnly(viewOutgoing)
	if m.Flip["export_view_only"] {
		flip(v.ViewSecret[:])
	}
	return v, err
}

func (m *MockWallet) SignStart(version, unlockTime, inputs, outputsSize, extra uint64) error {
	if err := m.enter("sign_start"); err != nil {
		return err
	}
	return m.Wallet.SignStart(version, unlockTime, inputs, outputsSize, extra)
}

func (m *MockWallet) SignAddInput(amount uint64, outputIndexes []uint64, invHash cncrypto.SecretKey, addressIndex uint64) error {
	if err := m.enter("sign_add_input"); err != nil {
		return err
	}
	return m.Wallet.SignAddInput(amount, outputIndexes, invHash, addressIndex)
}

func (m *MockWallet) SignAddOutput(change bool, amount uint64, changeIndex uint64, dst outputs.Destination) (outputs.Output, error) {
	if err := m.enter("sign_add_output"); err != nil {
		return outputs.Output{}, err
	}
	out, err := m.Wallet.SignAddOutput(change, amount, changeIndex, dst)
	if m.Flip["sign_add_output"] {
		flip(out.PublicKey[:])
	}
	return out, err
}

func (m *MockWallet) SignAddExtra(chunk []byte) error {
	if err := m.enter("sign_add_extra"); err != nil {
		return err
	}
	return m.Wallet.SignAddExtra(chunk)
}

func (m *MockWallet) SignStepA(invHash cncrypto.SecretKey, addressIndex uint64) (hardware.StepA, error) {
	if err := m.enter("sign_step_a"); err != nil {
		return hardware.StepA{}, err
	}
	res, err := m.Wallet.SignStepA(invHash, addressIndex)
	if m.Flip["sign_step_a"] {
		flip(res.X[:])
	}
	return res, err
}

func (m *MockWallet) SignStepAMoreData(data []byte) error {
	if err := m.enter("sign_step_a_more_data"); err != nil {
		return err
	}
	return m.Wallet.SignStepAMoreData(data)
}

func (m *MockWallet) SignGetC0() (cncrypto.Scalar, error) {
	if err := m.enter("sign_get_c0"); err != nil {
		return cncrypto.Scalar{}, err
	}
	c0, err := m.Wallet.SignGetC0()
	if m.Flip["sign_get_c0"] {
		flip(c0[:])
	}
	return c0, err
}

func (m *MockWallet) SignStepB(invHash cncrypto.SecretKey, addressIndex uint64, myC cncrypto.Scalar) (hardware.StepB, error) {
	if err := m.enter("sign_step_b"); err != nil {
		return hardware.StepB{}, err
	}
	res, err := m.Wallet.SignStepB(invHash, addressIndex, myC)
	if m.Flip["sign_step_b"] {
		flip(res.RB[:])
	}
	return res, err
}

func (m *MockWallet) ProofStart(data []byte) error {
	if err := m.enter("proof_start"); err != nil {
		return err
	}
	return m.Wallet.ProofStart(data)
}
