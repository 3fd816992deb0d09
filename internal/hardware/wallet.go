// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package hardware implements the signing co-processor of a hardware wallet:
// the key hierarchy derived from a mnemonic and the interactive session that
// signs a transaction without the spend secret leaving the device.
//
// A session is driven through a fixed sequence of calls:
//
//	SignStart
//	SignAddInput      × inputs
//	SignAddOutput     × outputs
//	SignAddExtra      until extra bytes are consumed
//	SignStepA, SignStepAMoreData  × inputs
//	SignGetC0
//	SignStepB         × inputs
//
// ProofStart replaces the first four steps for signing an opaque message
// with a single input.
package hardware

import (
	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/outputs"
)

// Wallet is the operation set of a signing device. The Emulator implements
// it and can mirror every call onto another Wallet, usually a real device
// reached through internal/remote.
type Wallet interface {
	HardwareType() string

	// Values fixed at construction.
	APlusSH() cncrypto.PublicKey
	VMulAPlusSH() cncrypto.PublicKey
	ViewPublicKey() cncrypto.PublicKey
	WalletKey() cncrypto.Hash

	PrepareAddress(index uint64) (outputs.Destination, error)
	MulByViewSecretKey(keys []cncrypto.PublicKey) ([]cncrypto.PublicKey, error)
	GenerateKeyImage(outputKey cncrypto.PublicKey, invHash cncrypto.SecretKey, addressIndex uint64) (cncrypto.KeyImage, error)
	GenerateOutputSeed(txInputsHash cncrypto.Hash, index uint64) (cncrypto.PublicKey, error)
	ExportViewOnly(viewOutgoing bool) (ViewOnlyExport, error)

	SignStart(version, unlockTime, inputs, outputs, extra uint64) error
	SignAddInput(amount uint64, outputIndexes []uint64, invHash cncrypto.SecretKey, addressIndex uint64) error
	SignAddOutput(change bool, amount uint64, changeIndex uint64, dst outputs.Destination) (outputs.Output, error)
	SignAddExtra(chunk []byte) error
	SignStepA(invHash cncrypto.SecretKey, addressIndex uint64) (StepA, error)
	SignStepAMoreData(data []byte) error
	SignGetC0() (cncrypto.Scalar, error)
	SignStepB(invHash cncrypto.SecretKey, addressIndex uint64, myC cncrypto.Scalar) (StepB, error)
	ProofStart(data []byte) error
}

// StepA is the first-round commitment for one input.
type StepA struct {
	SigP cncrypto.PublicKey `json:"sig_p"`
	X    cncrypto.PublicKey `json:"x"`
	Y    cncrypto.PublicKey `json:"y"`
}

// StepB is the second-round response for one input.
type StepB struct {
	RA cncrypto.Scalar `json:"ra"`
	RB cncrypto.Scalar `json:"rb"`
	RC cncrypto.Scalar `json:"rc"`
}

// ViewOnlyExport carries the secrets a view-only wallet needs and a proof
// that the exporter holds the spend key. TxDerivationSeed is zero unless
// the user agreed to let the view wallet see outgoing payments.
type ViewOnlyExport struct {
	AuditKeyBaseSecret   cncrypto.SecretKey `json:"audit_key_base_secret_key"`
	ViewSecret           cncrypto.SecretKey `json:"view_secret_key"`
	TxDerivationSeed     cncrypto.Hash      `json:"tx_derivation_seed"`
	ViewSecretsSignature cncrypto.Signature `json:"view_secrets_signature"`
}

// ViewSecretsHash is the message signed by ExportViewOnly.
func (v ViewOnlyExport) ViewSecretsHash() cncrypto.Hash {
	return cncrypto.FastHash(v.AuditKeyBaseSecret[:], v.ViewSecret[:])
}

// Verify checks the export signature against sH = spend·H, which the
// caller obtains as A_plus_sH − audit_base·G.
func (v ViewOnlyExport) Verify(aPlusSH cncrypto.PublicKey) bool {
	sH, err := v.SpendPublicH(aPlusSH)
	if err != nil {
		return false
	}
	return cncrypto.CheckSignatureH(v.ViewSecretsHash(), sH, v.ViewSecretsSignature)
}

// SpendPublicH recovers sH from A_plus_sH and the exported audit base secret.
func (v ViewOnlyExport) SpendPublicH(aPlusSH cncrypto.PublicKey) (cncrypto.PublicKey, error) {
	audit, err := cncrypto.ParseScalar(v.AuditKeyBaseSecret)
	if err != nil {
		return cncrypto.PublicKey{}, err
	}
	sum, err := cncrypto.ParsePoint(aPlusSH)
	if err != nil {
		return cncrypto.PublicKey{}, err
	}
	sum.Subtract(sum, cncrypto.SecretKeyToPublicKey(audit))
	return cncrypto.PointKey(sum), nil
}
