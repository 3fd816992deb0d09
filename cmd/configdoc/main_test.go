// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Armor-Network/armor/internal/util"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"| `mnemonic_file` | string | `mnemonic.sealed` |",
		"| `passphrase_command` | list of string | none |",
		"| `passphrase_env` | map of string | none |",
		"| `extra_chunk_size` | integer | `128` |",
		"`ARMOR_PASSPHRASE`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestOptionsDocumented(t *testing.T) {
	for _, o := range options(reflect.TypeOf(util.DeviceConfig{})) {
		if o.desc == "" {
			t.Errorf("%s has no description", o.key)
		}
	}
}

// The default tags must agree with DefaultDeviceConfig
func TestDefaultTags(t *testing.T) {
	def := reflect.ValueOf(util.DefaultDeviceConfig())
	typ := def.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag, ok := typ.Field(i).Tag.Lookup("default")
		if !ok {
			if !def.Field(i).IsZero() {
				t.Errorf("%s has a default value but no default tag", typ.Field(i).Name)
			}
			continue
		}
		if got := fmt.Sprint(def.Field(i).Interface()); got != tag {
			t.Errorf("%s: default tag %q, DefaultDeviceConfig has %q", typ.Field(i).Name, tag, got)
		}
	}
}
