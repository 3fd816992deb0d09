// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsapi_test

import (
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/jsapi"
	"github.com/Armor-Network/armor/internal/testutil"
)

func newVM(t *testing.T, w hardware.Wallet) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	api := jsapi.NewAPI(w, func(string) {})
	if err := api.RegisterAll(vm); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	return vm
}

func run(t *testing.T, vm *goja.Runtime, code string) goja.Value {
	t.Helper()
	v, err := vm.RunString(code)
	if err != nil {
		t.Fatalf("RunString(%q): %v", code, err)
	}
	return v
}

func TestInfo(t *testing.T) {
	e := testutil.NewEmulator(t)
	vm := newVM(t, e)

	info := run(t, vm, "info()").Export().(map[string]interface{})
	if info["hardware_type"] != "Emulator" {
		t.Errorf("hardware_type = %v", info["hardware_type"])
	}
	if info["A_plus_sH"] != e.APlusSH().String() {
		t.Errorf("A_plus_sH = %v", info["A_plus_sH"])
	}
	if info["view_public_key"] != e.ViewPublicKey().String() {
		t.Errorf("view_public_key = %v", info["view_public_key"])
	}
	if _, ok := info["wallet_key"]; ok {
		t.Error("info() exposes the wallet key")
	}
}

func TestAddress(t *testing.T) {
	e := testutil.NewEmulator(t)
	vm := newVM(t, e)

	dst, err := e.PrepareAddress(5)
	if err != nil {
		t.Fatal(err)
	}
	if got := run(t, vm, "address(5).address").String(); got != dst.String() {
		t.Errorf("address(5) = %q, want %q", got, dst.String())
	}
	if got := run(t, vm, "address(5).s").String(); got != dst.S.String() {
		t.Errorf("address(5).s = %q", got)
	}
	if !run(t, vm, "decodeAddress(address(5).address).sv === address(5).sv").ToBoolean() {
		t.Error("decodeAddress did not restore sv")
	}
	if _, err := vm.RunString(`decodeAddress("not an address")`); err == nil {
		t.Error("decodeAddress accepted garbage")
	}
}

func TestKeyImageForms(t *testing.T) {
	vm := newVM(t, testutil.NewEmulator(t))
	run(t, vm, "var o = receive(2)")
	if !run(t, vm, "keyImage(o) === keyImage(o.output.public_key, o.inv_hash, o.address_index)").ToBoolean() {
		t.Error("keyImage forms disagree")
	}
	if _, err := vm.RunString("keyImage(o.output.public_key, o.inv_hash, 3)"); err == nil {
		t.Error("keyImage accepted the wrong address index")
	}
	if _, err := vm.RunString("keyImage(o, 1)"); err == nil {
		t.Error("keyImage accepted two arguments")
	}
}

func TestViewKeyOperations(t *testing.T) {
	e := testutil.NewEmulator(t)
	vm := newVM(t, e)

	if n := run(t, vm, "mulByViewSecretKey([randomKey(), randomKey(), randomKey()]).length").ToInteger(); n != 3 {
		t.Errorf("mulByViewSecretKey returned %d keys", n)
	}

	inputsHash := strings.Repeat("ab", 32)
	seed, err := e.GenerateOutputSeed(hashFromHex(t, inputsHash), 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := run(t, vm, `outputSeed("`+inputsHash+`", 4)`).String(); got != seed.String() {
		t.Errorf("outputSeed = %s, want %s", got, seed)
	}

	export := run(t, vm, "exportViewOnly(false)").Export().(map[string]interface{})
	for _, field := range []string{"view_secret_key", "audit_key_base_secret_key", "view_secrets_signature"} {
		if _, ok := export[field]; !ok {
			t.Errorf("export lacks %s", field)
		}
	}
}

func TestSessionNeedsEmulator(t *testing.T) {
	vm := newVM(t, testutil.NewMockWallet(testutil.NewEmulator(t)))
	if _, err := vm.RunString("session()"); err == nil {
		t.Error("session() succeeded on a wallet that does not report sessions")
	}

	vm = newVM(t, testutil.NewEmulator(t))
	if got := run(t, vm, "session().state").Export(); got == nil {
		t.Error("session() has no state")
	}
}

func TestIndexArguments(t *testing.T) {
	vm := newVM(t, testutil.NewEmulator(t))
	tests := []struct {
		code string
		want string
	}{
		{"address(-1)", "cannot be negative"},
		{"address(1.5)", "must be an integer"},
		{"address(NaN)", "must be an integer"},
		{"address(Math.pow(2, 60))", "too large"},
		{"address()", "requires an index"},
		{`outputSeed("00")`, "requires inputsHash and index"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := vm.RunString(tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("%s = %v, want error containing %q", tt.code, err, tt.want)
			}
		})
	}
}
