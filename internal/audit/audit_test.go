// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/testutil"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLoggerEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	var prefix cncrypto.Hash
	prefix[0] = 0x42
	l.LogDeviceStart("Emulator")
	l.LogClientConnected("@")
	l.SessionStarted(hardware.KindTransaction)
	l.SessionFinished(hardware.SessionInfo{
		Kind:         hardware.KindTransaction,
		InputsSize:   2,
		OutputsSize:  2,
		InputsAmount: 1000,
		DstAmount:    900,
		Fee:          100,
		TxPrefixHash: prefix,
	})
	l.SessionAborted(hardware.KindProof, fmt.Errorf("%w: sign_step_b", hardware.ErrProtocolOrder))
	l.ProxyMismatch("sign_get_c0")
	l.LogDeviceStop()
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	want := []EventType{DeviceStart, ClientConnected, SessionStarted, SessionFinished, SessionAborted, ProxyMismatch, DeviceStop}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Event != want[i] {
			t.Errorf("entry %d: event %s, want %s", i, e.Event, want[i])
		}
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}

	finished := entries[3]
	if finished.Fee != 100 || finished.InputsAmount != 1000 || finished.TxPrefixHash == nil || *finished.TxPrefixHash != prefix {
		t.Errorf("unexpected finished entry %+v", finished)
	}
	if !strings.Contains(entries[4].Reason, "sign_step_b") {
		t.Errorf("abort reason = %q", entries[4].Reason)
	}
	if entries[5].Operation != "sign_get_c0" {
		t.Errorf("mismatch operation = %q", entries[5].Operation)
	}
	if entries[0].HardwareType != "Emulator" {
		t.Errorf("hardware type = %q", entries[0].HardwareType)
	}
}

func TestLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	for i := 0; i < 2; i++ {
		l, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		l.LogDeviceStart("Emulator")
		_ = l.Close()
	}
	if n := len(readEntries(t, path)); n != 2 {
		t.Errorf("got %d entries after reopening", n)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
}

func TestLoggerRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	l.LogDeviceStart("Emulator")
	l.ProxyMismatch("prepare_address")
	if err := l.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	l.LogDeviceStop()

	backups, err := filepath.Glob(filepath.Join(dir, "audit-*.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %v", backups)
	}
	if n := len(readEntries(t, backups[0])); n != 2 {
		t.Errorf("backup holds %d entries, want 2", n)
	}
	current := readEntries(t, path)
	if len(current) != 1 || current[0].Event != DeviceStop {
		t.Errorf("unexpected current entries %+v", current)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("rotated log mode = %v", info.Mode().Perm())
	}
}

func TestLoggerReopensAfterLostFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	l.LogDeviceStart("Emulator")
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := l.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	l.LogDeviceStop()

	entries := readEntries(t, path)
	if len(entries) != 1 || entries[0].Event != DeviceStop {
		t.Fatalf("entry after rotation lost: %+v", entries)
	}
}

func TestOpenUnwritable(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "audit.jsonl"))
	if err == nil || !strings.Contains(err.Error(), "failed to open audit log") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestLoggerObservesEmulator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	e := testutil.NewEmulator(t, hardware.WithObserver(l))
	if err := e.ProofStart([]byte("proof of reserve")); err != nil {
		t.Fatal(err)
	}
	// wrong step for a proof session
	if err := e.SignStepAMoreData(nil); err == nil {
		t.Fatal("expected protocol error")
	}
	_ = l.Close()

	entries := readEntries(t, path)
	if len(entries) != 2 || entries[0].Event != SessionStarted || entries[1].Event != SessionAborted {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Kind != hardware.KindProof {
		t.Errorf("kind = %q", entries[1].Kind)
	}
}
