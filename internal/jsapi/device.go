// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsapi

import (
	"crypto/rand"
	"errors"

	"github.com/dop251/goja"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/outputs"
	"github.com/Armor-Network/armor/internal/remote"
	"github.com/Armor-Network/armor/internal/ringsig"
)

// sessionReporter is implemented by local emulators
type sessionReporter interface {
	Session() hardware.SessionInfo
}

// hardwareType() -> "Emulator"
func (a *API) jsHardwareType(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.wallet.HardwareType())
}

// info() -> {hardware_type, A_plus_sH, v_mul_A_plus_sH, view_public_key}
// The wallet key is left out; it encrypts wallet files.
func (a *API) jsInfo(call goja.FunctionCall) goja.Value {
	info := remote.InfoOf(a.wallet)
	return a.toJS(map[string]interface{}{
		"hardware_type":   info.HardwareType,
		"A_plus_sH":       info.APlusSH,
		"v_mul_A_plus_sH": info.VMulAPlusSH,
		"view_public_key": info.ViewPublicKey,
	})
}

// session() -> public state of the current signing session
func (a *API) jsSession(call goja.FunctionCall) goja.Value {
	r, ok := a.wallet.(sessionReporter)
	if !ok {
		a.throw(errors.New("session state is only available on a local emulator"))
	}
	return a.toJS(r.Session())
}

// address(index) -> {tag, s, sv, address}
func (a *API) jsAddress(call goja.FunctionCall) goja.Value {
	index := a.index(a.arg(call, 0, "address() requires an index"), "address index")
	dst, err := a.wallet.PrepareAddress(index)
	if err != nil {
		a.throw(err)
	}
	return a.destination(dst)
}

// decodeAddress(string) -> {tag, s, sv, address}
func (a *API) jsDecodeAddress(call goja.FunctionCall) goja.Value {
	dst, err := outputs.DecodeAddress(a.arg(call, 0, "decodeAddress() requires an address string").String())
	if err != nil {
		a.throw(err)
	}
	return a.destination(dst)
}

func (a *API) destination(dst outputs.Destination) goja.Value {
	v := a.toJS(dst)
	if obj, ok := v.(*goja.Object); ok {
		_ = obj.Set("address", dst.String())
	}
	return v
}

// mulByViewSecretKey([keys]) -> [keys]
func (a *API) jsMulByViewSecretKey(call goja.FunctionCall) goja.Value {
	a.arg(call, 0, "mulByViewSecretKey() requires an array of keys")
	var keys []cncrypto.PublicKey
	a.fromJS(call.Arguments[0], &keys, "keys")
	result, err := a.wallet.MulByViewSecretKey(keys)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(result)
}

// keyImage(outputKey, invHash, addressIndex) -> key image
// keyImage(owned) accepts the object returned by receive()
func (a *API) jsKeyImage(call goja.FunctionCall) goja.Value {
	var owned ringsig.Owned
	switch len(call.Arguments) {
	case 1:
		a.fromJS(call.Arguments[0], &owned, "owned output")
	case 3:
		a.fromJS(call.Arguments[0], &owned.Output.PublicKey, "output key")
		a.fromJS(call.Arguments[1], &owned.InvHash, "inverse hash")
		owned.AddressIndex = a.index(call.Arguments[2], "address index")
	default:
		panic(a.runtime.NewTypeError("keyImage() requires (owned) or (outputKey, invHash, addressIndex)"))
	}
	ki, err := a.wallet.GenerateKeyImage(owned.Output.PublicKey, owned.InvHash, owned.AddressIndex)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(ki)
}

// outputSeed(inputsHash, index) -> public seed key
func (a *API) jsOutputSeed(call goja.FunctionCall) goja.Value {
	a.arg(call, 1, "outputSeed() requires inputsHash and index")
	var inputsHash cncrypto.Hash
	a.fromJS(call.Arguments[0], &inputsHash, "inputs hash")
	seed, err := a.wallet.GenerateOutputSeed(inputsHash, a.index(call.Arguments[1], "output index"))
	if err != nil {
		a.throw(err)
	}
	return a.toJS(seed)
}

// exportViewOnly(viewOutgoing?) -> export with signature
func (a *API) jsExportViewOnly(call goja.FunctionCall) goja.Value {
	viewOutgoing := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
	export, err := a.wallet.ExportViewOnly(viewOutgoing)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(export)
}

// randomKey() -> a random public key, usable as a decoy
func (a *API) jsRandomKey(call goja.FunctionCall) goja.Value {
	s, err := cncrypto.RandomScalar(rand.Reader)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(cncrypto.PointKey(cncrypto.SecretKeyToPublicKey(s)))
}

// receive(addressIndex) -> owned output
//
// Simulates another wallet paying subaddress addressIndex and scans the
// result, returning what signTransaction needs to spend it.
func (a *API) jsReceive(call goja.FunctionCall) goja.Value {
	index := a.index(a.arg(call, 0, "receive() requires an address index"), "address index")

	dst, err := a.wallet.PrepareAddress(index)
	if err != nil {
		a.throw(err)
	}
	var senderSeed, inputsHash cncrypto.Hash
	if _, err := rand.Read(senderSeed[:]); err != nil {
		a.throw(err)
	}
	if _, err := rand.Read(inputsHash[:]); err != nil {
		a.throw(err)
	}
	out, err := outputs.Compute(senderSeed, inputsHash, 0, dst)
	if err != nil {
		a.throw(err)
	}
	owned, err := ringsig.Scan(a.wallet, inputsHash, 0, out, index)
	if err != nil {
		a.throw(err)
	}
	return a.toJS(owned)
}
