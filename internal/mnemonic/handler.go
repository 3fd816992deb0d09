// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package mnemonic turns recovery phrases into seed bytes.
package mnemonic

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownFamily is returned by GetHandler for unregistered schemes
var ErrUnknownFamily = errors.New("unknown mnemonic family")

// Handler is one phrase scheme. armor-device only registers BIP39, which
// the key hierarchy requires.
type Handler interface {
	Family() string

	// GenerateMnemonic returns words, their seed (empty passphrase) and the
	// entropy they encode
	GenerateMnemonic() (words string, seed []byte, entropy []byte, err error)

	// SeedFromMnemonic checks words and derives the seed
	SeedFromMnemonic(words []string, passphrase string) ([]byte, error)

	EntropyToMnemonic(entropy []byte) (string, error)
	ValidateWordCount(wordCount int) error

	// WordCount is the length of generated phrases
	WordCount() int
}

var (
	handlersMu sync.RWMutex
	handlers   = map[string]Handler{}
)

// Register adds h under its family. The first registration wins.
func Register(h Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	family := strings.ToLower(h.Family())
	if _, ok := handlers[family]; !ok {
		handlers[family] = h
	}
}

// GetHandler looks family up case-insensitively
func GetHandler(family string) (Handler, error) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[strings.ToLower(family)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return h, nil
}

// Families lists the registered families in order
func Families() []string {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	out := make([]string, 0, len(handlers))
	for f := range handlers {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Normalize lowercases phrase and separates the words by single spaces
func Normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
