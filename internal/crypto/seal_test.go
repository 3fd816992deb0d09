// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// cheap costs keep the tests fast
var testKDF = KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}

const phrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSealRoundTrip(t *testing.T) {
	sealed, err := SealWith([]byte(phrase), []byte("pass"), testKDF)
	if err != nil {
		t.Fatalf("SealWith: %v", err)
	}
	if bytes.Contains(sealed, []byte("abandon")) {
		t.Fatal("envelope contains the plaintext")
	}
	if !IsSealed(sealed) {
		t.Fatal("IsSealed should recognize the envelope")
	}

	got, err := Open(sealed, []byte("pass"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(got) != phrase {
		t.Errorf("got %q", got)
	}
}

func TestSealRandomized(t *testing.T) {
	a, err := SealWith([]byte(phrase), []byte("pass"), testKDF)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SealWith([]byte(phrase), []byte("pass"), testKDF)
	if err != nil {
		t.Fatal(err)
	}
	var ea, eb Envelope
	if err := json.Unmarshal(a, &ea); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, &eb); err != nil {
		t.Fatal(err)
	}
	if ea.Salt == eb.Salt || ea.Nonce == eb.Nonce || ea.Ciphertext == eb.Ciphertext {
		t.Error("two seals of the same secret should not share salt, nonce or ciphertext")
	}
	if ea.KDF != testKDF || ea.Version != SealVersion {
		t.Errorf("unexpected header %+v", ea)
	}
}

func TestOpenErrors(t *testing.T) {
	sealed, err := SealWith([]byte(phrase), []byte("pass"), testKDF)
	if err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		t.Fatal(err)
	}
	mutate := func(f func(*Envelope)) []byte {
		e := env
		f(&e)
		data, err := json.Marshal(e)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	tests := []struct {
		name       string
		data       []byte
		passphrase string
		want       error
	}{
		{"wrong passphrase", sealed, "other", ErrWrongPassphrase},
		{"empty passphrase", sealed, "", ErrWrongPassphrase},
		{"not json", []byte(phrase), "pass", ErrNotSealed},
		{"future version", mutate(func(e *Envelope) { e.Version = 9 }), "pass", ErrNotSealed},
		{"missing kdf", mutate(func(e *Envelope) { e.KDF = KDFParams{} }), "pass", ErrNotSealed},
		{"tampered ciphertext", mutate(func(e *Envelope) { e.Ciphertext = env.Nonce + e.Ciphertext[16:] }), "pass", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data, []byte(tt.passphrase))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSealInvalidKDF(t *testing.T) {
	if _, err := SealWith([]byte(phrase), []byte("pass"), KDFParams{Time: 1}); err == nil {
		t.Fatal("expected error for zero memory cost")
	}
}

func TestIsSealed(t *testing.T) {
	for _, data := range []string{"", phrase, `{"version":0}`, `{"version":1}`, `[1,2]`} {
		if IsSealed([]byte(data)) {
			t.Errorf("IsSealed(%q) = true", data)
		}
	}
}

func TestSecretFiles(t *testing.T) {
	dir := t.TempDir()
	sealedPath := filepath.Join(dir, "mnemonic.sealed")
	if err := WriteSealedFile(sealedPath, []byte(phrase), []byte("pass"), testKDF); err != nil {
		t.Fatalf("WriteSealedFile: %v", err)
	}
	info, err := os.Stat(sealedPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
	if _, err := os.Stat(sealedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	asked := 0
	ask := func() ([]byte, error) {
		asked++
		return []byte("pass"), nil
	}
	got, err := ReadSecretFile(sealedPath, ask)
	if err != nil || string(got) != phrase || asked != 1 {
		t.Fatalf("sealed read: %q, %v, asked %d", got, err, asked)
	}

	plainPath := filepath.Join(dir, "mnemonic.txt")
	if err := os.WriteFile(plainPath, []byte(phrase), 0600); err != nil {
		t.Fatal(err)
	}
	got, err = ReadSecretFile(plainPath, ask)
	if err != nil || string(got) != phrase || asked != 1 {
		t.Fatalf("plain read: %q, %v, asked %d", got, err, asked)
	}

	errNoTTY := errors.New("no terminal")
	_, err = ReadSecretFile(sealedPath, func() ([]byte, error) { return nil, errNoTTY })
	if !errors.Is(err, errNoTTY) {
		t.Errorf("expected prompt error, got %v", err)
	}
	if _, err := ReadSecretFile(filepath.Join(dir, "missing"), ask); err == nil {
		t.Error("expected error for missing file")
	}
}
