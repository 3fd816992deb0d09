// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package jsapi provides JavaScript bindings for a hardware wallet.
//
// Functions are organized into files:
//   - api.go: API struct, registration, output
//   - device.go: addresses, view key, key images, exports
//   - signing.go: transaction and proof signing, verification
//   - helpers.go: conversion between Go and JS values
package jsapi

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/ringsig"
)

// API provides JavaScript bindings for a wallet.
type API struct {
	wallet  hardware.Wallet
	runtime *goja.Runtime
	output  func(string)
	signer  []ringsig.SignerOption
}

// NewAPI creates a new JavaScript API instance. Signer options apply to
// signTransaction and signProof.
func NewAPI(w hardware.Wallet, output func(string), opts ...ringsig.SignerOption) *API {
	return &API{
		wallet: w,
		output: output,
		signer: opts,
	}
}

// RegisterAll registers all API functions on the given Goja runtime.
func (a *API) RegisterAll(vm *goja.Runtime) error {
	a.runtime = vm

	functions := []struct {
		name string
		fn   func(goja.FunctionCall) goja.Value
	}{
		{"print", a.jsPrint},
		{"log", a.jsLog},

		{"hardwareType", a.jsHardwareType},
		{"info", a.jsInfo},
		{"session", a.jsSession},
		{"address", a.jsAddress},
		{"decodeAddress", a.jsDecodeAddress},
		{"mulByViewSecretKey", a.jsMulByViewSecretKey},
		{"keyImage", a.jsKeyImage},
		{"outputSeed", a.jsOutputSeed},
		{"exportViewOnly", a.jsExportViewOnly},
		{"randomKey", a.jsRandomKey},
		{"receive", a.jsReceive},

		{"signTransaction", a.jsSignTransaction},
		{"signProof", a.jsSignProof},
		{"verify", a.jsVerify},
		{"verifyProof", a.jsVerifyProof},
	}
	for _, f := range functions {
		if err := vm.Set(f.name, f.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// print(...args) writes its arguments separated by spaces
func (a *API) jsPrint(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = arg.String()
	}
	a.output(strings.Join(parts, " "))
	return goja.Undefined()
}

// log(...args) is print with JSON formatting of objects
func (a *API) jsLog(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = a.format(arg)
	}
	a.output(strings.Join(parts, " "))
	return goja.Undefined()
}
