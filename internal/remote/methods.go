// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package remote exposes a hardware.Wallet over JSON-RPC and implements
// hardware.Wallet on top of such a connection, so an emulator in one
// process can mirror a device served by another.
package remote

import (
	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
)

// Methods served for every device
const (
	MethodGetInfo            = "get_info"
	MethodPrepareAddress     = "prepare_address"
	MethodMulByViewSecretKey = "mul_by_view_secret_key"
	MethodGenerateKeyImage   = "generate_keyimage"
	MethodGenerateOutputSeed = "generate_output_seed"
	MethodExportViewOnly     = "export_view_only"
	MethodSignStart          = "sign_start"
	MethodSignAddInput       = "sign_add_input"
	MethodSignAddOutput      = "sign_add_output"
	MethodSignAddExtra       = "sign_add_extra"
	MethodSignStepA          = "sign_step_a"
	MethodSignStepAMoreData  = "sign_step_a_more_data"
	MethodSignGetC0          = "sign_get_c0"
	MethodSignStepB          = "sign_step_b"
	MethodProofStart         = "proof_start"
)

// Info carries the values fixed at device construction
type Info struct {
	HardwareType  string             `json:"hardware_type"`
	APlusSH       cncrypto.PublicKey `json:"A_plus_sH"`
	VMulAPlusSH   cncrypto.PublicKey `json:"v_mul_A_plus_sH"`
	ViewPublicKey cncrypto.PublicKey `json:"view_public_key"`
	WalletKey     cncrypto.Hash      `json:"wallet_key"`
}

// InfoOf reads the construction values of w
func InfoOf(w hardware.Wallet) Info {
	return Info{
		HardwareType:  w.HardwareType(),
		APlusSH:       w.APlusSH(),
		VMulAPlusSH:   w.VMulAPlusSH(),
		ViewPublicKey: w.ViewPublicKey(),
		WalletKey:     w.WalletKey(),
	}
}

type indexParams struct {
	Index uint64 `json:"index"`
}

type keysParams struct {
	Keys []cncrypto.PublicKey `json:"keys"`
}

type keyImageParams struct {
	OutputKey    cncrypto.PublicKey `json:"output_key"`
	InvHash      cncrypto.SecretKey `json:"inv_hash"`
	AddressIndex uint64             `json:"address_index"`
}

type outputSeedParams struct {
	TxInputsHash cncrypto.Hash `json:"tx_inputs_hash"`
	Index        uint64        `json:"index"`
}

type exportParams struct {
	ViewOutgoing bool `json:"view_outgoing"`
}

type signStartParams struct {
	Version    uint64 `json:"version"`
	UnlockTime uint64 `json:"ut"`
	Inputs     uint64 `json:"inputs_size"`
	Outputs    uint64 `json:"outputs_size"`
	Extra      uint64 `json:"extra_size"`
}

type addInputParams struct {
	Amount        uint64             `json:"amount"`
	OutputIndexes []uint64           `json:"output_indexes"`
	InvHash       cncrypto.SecretKey `json:"inv_hash"`
	AddressIndex  uint64             `json:"address_index"`
}

type addOutputParams struct {
	Change      bool                `json:"change"`
	Amount      uint64              `json:"amount"`
	ChangeIndex uint64              `json:"change_address_index"`
	Destination outputs.Destination `json:"destination"`
}

type dataParams struct {
	Data []byte `json:"data"`
}

type stepParams struct {
	InvHash      cncrypto.SecretKey `json:"inv_hash"`
	AddressIndex uint64             `json:"address_index"`
}

type stepBParams struct {
	InvHash      cncrypto.SecretKey `json:"inv_hash"`
	AddressIndex uint64             `json:"address_index"`
	MyC          cncrypto.Scalar    `json:"my_c"`
}
