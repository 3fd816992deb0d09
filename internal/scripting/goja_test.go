// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package scripting

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Armor-Network/armor/internal/testutil"
)

func newRunner(t *testing.T) (*GojaRunner, *[]string) {
	t.Helper()
	r := NewGojaRunner(testutil.NewEmulator(t))
	var out []string
	r.SetOutput(func(s string) { out = append(out, s) })
	return r, &out
}

func TestRunResult(t *testing.T) {
	r, _ := newRunner(t)

	tests := []struct {
		name  string
		code  string
		empty bool
		want  interface{}
	}{
		{"number", "1 + 2", false, int64(3)},
		{"string", "hardwareType()", false, "Emulator"},
		{"undefined", "var x = 1", true, nil},
		{"null", "null", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Run(tt.code)
			if err != nil {
				t.Fatalf("Run(%q): %v", tt.code, err)
			}
			if res.IsEmpty != tt.empty {
				t.Errorf("IsEmpty = %v, want %v", res.IsEmpty, tt.empty)
			}
			if !tt.empty && res.Value != tt.want {
				t.Errorf("Value = %#v, want %#v", res.Value, tt.want)
			}
		})
	}
}

func TestRunKeepsState(t *testing.T) {
	r, _ := newRunner(t)
	if _, err := r.Run("var a = address(2)"); err != nil {
		t.Fatal(err)
	}
	res, err := r.Run("a.address === decodeAddress(a.address).address")
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != true {
		t.Errorf("address did not round trip: %v", res.Value)
	}
}

func TestPrintOutput(t *testing.T) {
	r, out := newRunner(t)
	if _, err := r.Run(`print("fee", 50); log({a: 1})`); err != nil {
		t.Fatal(err)
	}
	if len(*out) != 2 {
		t.Fatalf("got %d lines of output, want 2", len(*out))
	}
	if (*out)[0] != "fee 50" {
		t.Errorf("print wrote %q", (*out)[0])
	}
	if !strings.Contains((*out)[1], `"a": 1`) {
		t.Errorf("log wrote %q", (*out)[1])
	}

	r.SetOutput(nil)
	if _, err := r.Run(`print("dropped")`); err != nil {
		t.Fatal(err)
	}
}

func TestScriptErrors(t *testing.T) {
	r, _ := newRunner(t)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"throw", `throw new Error("boom")`, "boom"},
		{"missing argument", `address()`, "requires an index"},
		{"device error", `signProof("x", {})`, ""},
		{"syntax", `var = ;`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(tt.code)
			if err == nil {
				t.Fatalf("Run(%q) succeeded", tt.code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}

	_, err := r.Run(`throw new Error("boom")`)
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Errorf("exception returned %T, want *ScriptError", err)
	}
}

func TestSignAndVerify(t *testing.T) {
	r, out := newRunner(t)
	code := `
var o = receive(0);
var tx = signTransaction({
	spends: [{amount: 1000, output_indexes: [4, 1], ring: [randomKey(), o.output.public_key], real_index: 1,
		inv_hash: o.inv_hash, address_index: o.address_index}],
	payments: [{amount: 600, destination: address(3)}, {change: true, amount: 350, change_index: 0}]
});
print(session().fee);
verify(tx)
`
	res, err := r.Run(code)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Value != true {
		t.Errorf("verify returned %v", res.Value)
	}
	if len(*out) != 1 || (*out)[0] != "50" {
		t.Errorf("fee output = %v, want [50]", *out)
	}

	// A signature over a different prefix must not verify
	_, err = r.Run(`tx.unlock_time = 7; verify(tx)`)
	if err == nil {
		t.Error("tampered transaction verified")
	}
}

func TestSignProof(t *testing.T) {
	r, _ := newRunner(t)
	code := `
var o = receive(1);
var proof = signProof("reserve proof", {amount: 0, output_indexes: [9], ring: [o.output.public_key],
	inv_hash: o.inv_hash, address_index: 1});
verifyProof("reserve proof", proof)
`
	res, err := r.Run(code)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Value != true {
		t.Errorf("verifyProof returned %v", res.Value)
	}
	if _, err := r.Run(`verifyProof("other data", proof)`); err == nil {
		t.Error("proof verified against other data")
	}
}

func TestRunContext(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := RunContext(ctx, r, "for (;;) {}")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunContext = %v, want deadline exceeded", err)
	}

	// The runtime is usable after an interrupt
	res, err := RunContext(context.Background(), r, "2 * 21")
	if err != nil {
		t.Fatalf("Run after interrupt: %v", err)
	}
	if res.Value != int64(42) {
		t.Errorf("Value = %v", res.Value)
	}
}

func TestInterrupt(t *testing.T) {
	r, _ := newRunner(t)
	timer := time.AfterFunc(20*time.Millisecond, r.Interrupt)
	defer timer.Stop()

	_, err := r.Run("for (;;) {}")
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) || !scriptErr.Interrupted {
		t.Fatalf("Run = %v, want an interrupted ScriptError", err)
	}
}

func TestGlobals(t *testing.T) {
	r, _ := newRunner(t)
	if _, err := r.Run("var answer = 42"); err != nil {
		t.Fatal(err)
	}
	names := r.Globals()
	if !slices.IsSorted(names) {
		t.Errorf("Globals() not sorted: %v", names)
	}
	if !slices.Contains(names, "signTransaction") {
		t.Errorf("Globals() = %v, lacks signTransaction", names)
	}
	if slices.Contains(names, "answer") {
		t.Error("Globals() lists a non-function")
	}
}
