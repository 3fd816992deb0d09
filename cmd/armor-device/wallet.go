// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"fmt"
	"sync"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
)

// deviceWallet is the wallet the daemon serves. It applies the export
// policy and lets the emulator be replaced when the mnemonic file changes.
// Every call holds mu, so a swap waits for the running call to finish.
type deviceWallet struct {
	mu           sync.Mutex
	current      *hardware.Emulator
	viewOutgoing bool
}

var _ hardware.Wallet = (*deviceWallet)(nil)

func newDeviceWallet(e *hardware.Emulator, viewOutgoing bool) *deviceWallet {
	return &deviceWallet{current: e, viewOutgoing: viewOutgoing}
}

// swap installs e and returns the emulator it replaced. Any session in
// progress is lost.
func (d *deviceWallet) swap(e *hardware.Emulator) *hardware.Emulator {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.current
	d.current = e
	return old
}

// emulator returns the current emulator
func (d *deviceWallet) emulator() *hardware.Emulator {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *deviceWallet) HardwareType() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.HardwareType()
}

func (d *deviceWallet) APlusSH() cncrypto.PublicKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.APlusSH()
}

func (d *deviceWallet) VMulAPlusSH() cncrypto.PublicKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.VMulAPlusSH()
}

func (d *deviceWallet) ViewPublicKey() cncrypto.PublicKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.ViewPublicKey()
}

func (d *deviceWallet) WalletKey() cncrypto.Hash {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.WalletKey()
}

// Session reports the current emulator's session, for the console's
// session() over a local wallet
func (d *deviceWallet) Session() hardware.SessionInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.Session()
}

func (d *deviceWallet) PrepareAddress(index uint64) (outputs.Destination, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.PrepareAddress(index)
}

func (d *deviceWallet) MulByViewSecretKey(keys []cncrypto.PublicKey) ([]cncrypto.PublicKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.MulByViewSecretKey(keys)
}

func (d *deviceWallet) GenerateKeyImage(outputKey cncrypto.PublicKey, invHash cncrypto.SecretKey, addressIndex uint64) (cncrypto.KeyImage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.GenerateKeyImage(outputKey, invHash, addressIndex)
}

func (d *deviceWallet) GenerateOutputSeed(txInputsHash cncrypto.Hash, index uint64) (cncrypto.PublicKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.GenerateOutputSeed(txInputsHash, index)
}

// ExportViewOnly refuses exports with the tx derivation seed unless the
// config allows them.
func (d *deviceWallet) ExportViewOnly(viewOutgoing bool) (hardware.ViewOnlyExport, error) {
	if viewOutgoing && !d.viewOutgoing {
		return hardware.ViewOnlyExport{}, fmt.Errorf("%w: view_outgoing exports are disabled in config", hardware.ErrUserRejected)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.ExportViewOnly(viewOutgoing)
}

func (d *deviceWallet) SignStart(version, unlockTime, inputs, outputsSize, extra uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignStart(version, unlockTime, inputs, outputsSize, extra)
}

func (d *deviceWallet) SignAddInput(amount uint64, outputIndexes []uint64, invHash cncrypto.SecretKey, addressIndex uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignAddInput(amount, outputIndexes, invHash, addressIndex)
}

func (d *deviceWallet) SignAddOutput(change bool, amount uint64, changeIndex uint64, dst outputs.Destination) (outputs.Output, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignAddOutput(change, amount, changeIndex, dst)
}

func (d *deviceWallet) SignAddExtra(chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignAddExtra(chunk)
}

func (d *deviceWallet) SignStepA(invHash cncrypto.SecretKey, addressIndex uint64) (hardware.StepA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignStepA(invHash, addressIndex)
}

func (d *deviceWallet) SignStepAMoreData(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignStepAMoreData(data)
}

func (d *deviceWallet) SignGetC0() (cncrypto.Scalar, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignGetC0()
}

func (d *deviceWallet) SignStepB(invHash cncrypto.SecretKey, addressIndex uint64, myC cncrypto.Scalar) (hardware.StepB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.SignStepB(invHash, addressIndex, myC)
}

func (d *deviceWallet) ProofStart(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.ProofStart(data)
}
