// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/Armor-Network/armor/internal/ringsig"
)

// signedTransaction is what signTransaction returns to scripts
type signedTransaction struct {
	*ringsig.Transaction
	Hash       string `json:"hash"`
	InputsHash string `json:"inputs_hash"`
}

// signTransaction({version, unlock_time, spends, payments, extra}) -> tx
//
// spends: [{amount, output_indexes, ring, real_index, inv_hash, address_index}]
// payments: [{amount, destination}] or [{change: true, amount, change_index}]
// extra: base64
func (a *API) jsSignTransaction(call goja.FunctionCall) goja.Value {
	a.arg(call, 0, "signTransaction() requires a request object")
	var req ringsig.Request
	a.fromJS(call.Arguments[0], &req, "request")
	if req.Version == 0 {
		req.Version = 2
	}

	tx, err := ringsig.NewSigner(a.wallet, a.signer...).SignTransaction(req)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(signedTransaction{
		Transaction: tx,
		Hash:        tx.Hash().String(),
		InputsHash:  tx.InputsHash().String(),
	})
}

// signProof(data, spend) -> {tx_prefix_hash, key_images, output_keys, signature}
func (a *API) jsSignProof(call goja.FunctionCall) goja.Value {
	a.arg(call, 1, "signProof() requires data and a spend object")
	data := []byte(call.Arguments[0].String())
	var sp ringsig.Spend
	a.fromJS(call.Arguments[1], &sp, "spend")

	arg, err := ringsig.NewSigner(a.wallet, a.signer...).SignProof(data, sp)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(arg)
}

// verify(tx) -> true, or throws with the reason
func (a *API) jsVerify(call goja.FunctionCall) goja.Value {
	a.arg(call, 0, "verify() requires a transaction")
	var tx ringsig.Transaction
	a.fromJS(call.Arguments[0], &tx, "transaction")
	arg := tx.Arg()
	if err := ringsig.CheckAmethyst(arg.TxPrefixHash, arg.KeyImages, arg.OutputKeys, arg.Signature); err != nil {
		a.throw(err)
	}
	return a.runtime.ToValue(true)
}

// verifyProof(data, proof) -> true, or throws with the reason
func (a *API) jsVerifyProof(call goja.FunctionCall) goja.Value {
	a.arg(call, 1, "verifyProof() requires data and a proof")
	var arg ringsig.RingSignatureArgA
	a.fromJS(call.Arguments[1], &arg, "proof")
	if arg.TxPrefixHash != ringsig.ProofPrefixHash([]byte(call.Arguments[0].String())) {
		a.throw(ringsig.ErrBadSignature)
	}
	if err := ringsig.CheckAmethyst(arg.TxPrefixHash, arg.KeyImages, arg.OutputKeys, arg.Signature); err != nil {
		a.throw(err)
	}
	return a.runtime.ToValue(true)
}
