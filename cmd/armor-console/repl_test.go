// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Armor-Network/armor/internal/scripting"
	"github.com/Armor-Network/armor/internal/testutil"
)

func newConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r := scripting.NewGojaRunner(testutil.NewEmulator(t))
	r.SetOutput(func(msg string) { out.WriteString(msg + "\n") })
	return &console{runner: r, out: &out}, &out
}

func TestConsoleLines(t *testing.T) {
	c, out := newConsole(t)

	if more, err := c.line("var a = 1 + \\"); err != nil || !more {
		t.Fatalf("continuation line: more=%v err=%v", more, err)
	}
	if more, err := c.line("41"); err != nil || more {
		t.Fatalf("final line: more=%v err=%v", more, err)
	}
	out.Reset()
	if _, err := c.line("a"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "42" {
		t.Errorf("a = %q, want 42", got)
	}

	out.Reset()
	if _, err := c.line("  "); err != nil || out.Len() != 0 {
		t.Errorf("blank line: err=%v output=%q", err, out.String())
	}
}

func TestConsoleCommands(t *testing.T) {
	c, out := newConsole(t)

	if _, err := c.line(".help"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "signTransaction(request)") {
		t.Error(".help does not list signTransaction")
	}

	if _, err := c.line(".exit"); !errors.Is(err, errExit) {
		t.Errorf(".exit = %v, want errExit", err)
	}
	if _, err := c.line(".frobnicate"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf(".frobnicate = %v", err)
	}

	script := filepath.Join(t.TempDir(), "addr.js")
	if err := os.WriteFile(script, []byte(`print(hardwareType())`), 0600); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if _, err := c.line(".load " + script); err != nil {
		t.Fatalf(".load: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Emulator" {
		t.Errorf(".load output = %q", out.String())
	}
}

func TestConsoleInterruptDropsPending(t *testing.T) {
	c, out := newConsole(t)
	if _, err := c.line("throw new Error('never') \\"); err != nil {
		t.Fatal(err)
	}
	c.reset()
	if _, err := c.line("print('fresh')"); err != nil {
		t.Fatalf("line after reset: %v", err)
	}
	if strings.TrimSpace(out.String()) != "fresh" {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name string
		res  scripting.Result
		want string
	}{
		{"empty", scripting.Result{IsEmpty: true}, ""},
		{"scalar", scripting.Result{Value: int64(7)}, "7\n"},
		{"object", scripting.Result{Value: map[string]interface{}{"fee": 50}}, "{\n  \"fee\": 50\n}\n"},
		{"array", scripting.Result{Value: []interface{}{"a"}}, "[\n  \"a\"\n]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.res)
			if buf.String() != tt.want {
				t.Errorf("printResult = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	c, _ := newConsole(t)
	var buf bytes.Buffer
	if err := runOnce(c.runner, "address(0).tag", 0, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		t.Error("runOnce printed nothing")
	}
	if err := runOnce(c.runner, "nosuchfunction()", 0, &buf); err == nil {
		t.Error("runOnce ignored a ReferenceError")
	}
}

func TestCompleter(t *testing.T) {
	r := scripting.NewGojaRunner(testutil.NewEmulator(t))
	names := globals(r)
	found := false
	for _, n := range names {
		if n == "signTransaction" {
			found = true
		}
	}
	if !found {
		t.Fatalf("globals() = %v, lacks signTransaction", names)
	}
	if newCompleter(names) == nil {
		t.Error("newCompleter returned nil")
	}
}
