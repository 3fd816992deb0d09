// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package mnemonic

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

// ErrChecksum is returned when the words are not a valid BIP39 phrase
var ErrChecksum = errors.New("mnemonic checksum failed")

// FamilyBIP39 is the registry name of the BIP39 handler
const FamilyBIP39 = "bip39"

// entropyBits is the strength of generated phrases (24 words)
const entropyBits = 256

// BIP39Handler implements Handler for the English BIP39 wordlist
type BIP39Handler struct{}

// Family returns the algorithm family this handler supports
func (h *BIP39Handler) Family() string {
	return FamilyBIP39
}

// GenerateMnemonic generates a fresh 24-word phrase
func (h *BIP39Handler) GenerateMnemonic() (words string, seed []byte, entropy []byte, err error) {
	entropy, err = bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	words, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return words, bip39.NewSeed(words, ""), entropy, nil
}

// SeedFromMnemonic checks the phrase checksum and returns the 64-byte
// PBKDF2 seed
func (h *BIP39Handler) SeedFromMnemonic(words []string, passphrase string) ([]byte, error) {
	if err := h.ValidateWordCount(len(words)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	phrase := Normalize(strings.Join(words, " "))
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	return seed, nil
}

// EntropyToMnemonic converts 128 to 256 bits of entropy to words
func (h *BIP39Handler) EntropyToMnemonic(entropy []byte) (string, error) {
	words, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to encode entropy: %w", err)
	}
	return words, nil
}

// ValidateWordCount accepts the five BIP39 lengths
func (h *BIP39Handler) ValidateWordCount(wordCount int) error {
	switch wordCount {
	case 12, 15, 18, 21, 24:
		return nil
	}
	return fmt.Errorf("bip39 requires 12, 15, 18, 21 or 24 words, got %d", wordCount)
}

// WordCount returns the number of words in generated phrases
func (h *BIP39Handler) WordCount() int {
	return entropyBits / 32 * 3
}

// IsValid reports whether phrase passes the BIP39 checksum.
func IsValid(phrase string) bool {
	return bip39.IsMnemonicValid(Normalize(phrase))
}

var registerBIP39HandlerOnce sync.Once

// RegisterBIP39Handler registers the BIP39 mnemonic handler.
// This is idempotent and safe to call multiple times.
func RegisterBIP39Handler() {
	registerBIP39HandlerOnce.Do(func() {
		Register(&BIP39Handler{})
	})
}
