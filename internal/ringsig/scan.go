// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package ringsig

import (
	"fmt"

	"filippo.io/edwards25519"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
)

// Owned is an output of the wallet together with what the device needs to
// spend it.
type Owned struct {
	Output       outputs.Output     `json:"output"`
	InvHash      cncrypto.SecretKey `json:"inv_hash"`
	AddressIndex uint64             `json:"address_index"`
}

// Scan checks whether output index of a transaction pays subaddress
// addressIndex of w and recovers the inverse output secret hash. It returns
// outputs.ErrNotOurs otherwise.
func Scan(w hardware.Wallet, txInputsHash cncrypto.Hash, index uint64, out outputs.Output, addressIndex uint64) (Owned, error) {
	dst, err := w.PrepareAddress(addressIndex)
	if err != nil {
		return Owned{}, err
	}
	vP, err := w.MulByViewSecretKey([]cncrypto.PublicKey{out.PublicKey})
	if err != nil {
		return Owned{}, err
	}
	if len(vP) != 1 {
		return Owned{}, fmt.Errorf("device returned %d points for one key", len(vP))
	}
	S, h, err := outputs.UnlinkableUnderive(vP[0], txInputsHash, index, out)
	if err != nil {
		return Owned{}, err
	}
	if S != dst.S {
		return Owned{}, outputs.ErrNotOurs
	}
	return Owned{
		Output:       out,
		InvHash:      cncrypto.ScalarKey(edwards25519.NewScalar().Invert(h)),
		AddressIndex: addressIndex,
	}, nil
}
