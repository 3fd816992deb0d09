// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// configdoc prints the config.yaml and environment reference in markdown.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/Armor-Network/armor/internal/security"
	"github.com/Armor-Network/armor/internal/util"
)

type option struct {
	key, kind, def, desc string
}

type envVar struct {
	name, desc, usedBy string
}

var envVars = []envVar{
	{util.DataDirEnv, "Data directory holding config, mnemonic, socket and audit log", "armor-device, armor-console"},
	{util.DebugEnv, "Any value enables debug logging", "armor-device, armor-console"},
	{util.PassphraseEnv, "Mnemonic passphrase; skips the helper and the prompt", "armor-device, armor-console"},
	{security.NoMemoryLockEnv, "Any value skips mlockall", "armor-device"},
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: configdoc > doc/CONFIG_REFERENCE.md")
	}
	flag.Parse()
	if err := render(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func render(w io.Writer) error {
	p := &printer{w: w}
	p.line("# Configuration Reference")
	p.line("")
	p.line("Generated by `cmd/configdoc` from the `DeviceConfig` struct tags.")
	p.line("")
	p.line("## config.yaml")
	p.line("")
	p.line("Read from the data directory (`-d`, `$%s`, or `~/.armor`). A missing file means defaults.", util.DataDirEnv)
	p.line("")
	p.line("| Key | Type | Default | Description |")
	p.line("|-----|------|---------|-------------|")
	for _, o := range options(reflect.TypeOf(util.DeviceConfig{})) {
		p.line("| `%s` | %s | %s | %s |", o.key, o.kind, o.def, o.desc)
	}
	p.line("")
	p.line("## Environment")
	p.line("")
	p.line("| Variable | Description | Used by |")
	p.line("|----------|-------------|---------|")
	for _, e := range envVars {
		p.line("| `%s` | %s | %s |", e.name, e.desc, e.usedBy)
	}
	p.line("")
	p.line("## Mnemonic passphrase")
	p.line("")
	p.line("A sealed mnemonic file is opened with the first passphrase available from:")
	p.line("")
	p.line("1. `$%s`", util.PassphraseEnv)
	p.line("2. the `passphrase_command` helper, called with the argument `read`")
	p.line("3. a terminal prompt")
	return p.err
}

// options lists the yaml keys of t in field order
func options(t reflect.Type) []option {
	var out []option
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if key == "" || key == "-" {
			continue
		}
		def := "none"
		if d, ok := f.Tag.Lookup("default"); ok {
			def = "`" + d + "`"
		}
		out = append(out, option{
			key:  key,
			kind: kindName(f.Type),
			def:  def,
			desc: f.Tag.Get("description"),
		})
	}
	return out
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "list of " + kindName(t.Elem())
	case reflect.Map:
		return "map of " + kindName(t.Elem())
	case reflect.Int, reflect.Int64, reflect.Uint64:
		return "integer"
	default:
		return t.Kind().String()
	}
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
