// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Armor-Network/armor/internal/crypto"
	"github.com/Armor-Network/armor/internal/mnemonic"
)

// kdf is the sealing cost for new mnemonic files
var kdf = crypto.DefaultKDF

var errMnemonicExists = errors.New("mnemonic file already exists")

// createMnemonic generates a fresh phrase and seals it into path. It
// returns the words so the user can write them down.
func createMnemonic(path string, passphrase []byte) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", errMnemonicExists, path)
	}
	mnemonic.RegisterBIP39Handler()
	handler, err := mnemonic.GetHandler(mnemonic.FamilyBIP39)
	if err != nil {
		return "", err
	}
	words, seed, entropy, err := handler.GenerateMnemonic()
	if err != nil {
		return "", err
	}
	crypto.ZeroBytes(seed)
	crypto.ZeroBytes(entropy)

	if err := crypto.WriteSealedFile(path, []byte(words), passphrase, kdf); err != nil {
		return "", err
	}
	return words, nil
}

// sealMnemonicFile seals the plain phrase in src into dst
func sealMnemonicFile(src, dst string, passphrase []byte) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	defer crypto.ZeroBytes(data)

	if crypto.IsSealed(data) {
		return fmt.Errorf("%s is already sealed", src)
	}
	phrase := mnemonic.Normalize(string(data))
	if !mnemonic.IsValid(phrase) {
		return fmt.Errorf("%s does not hold a valid BIP39 mnemonic", src)
	}
	if src != dst {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("%w: %s", errMnemonicExists, dst)
		}
	}
	return crypto.WriteSealedFile(dst, []byte(phrase), passphrase, kdf)
}

func runNew(path string) error {
	passphrase, err := readPassphrase(true)
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(passphrase)

	words, err := createMnemonic(path, passphrase)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Mnemonic sealed to %s\n", path)
	fmt.Println()
	fmt.Println("Write these words down. They are the only backup of this wallet:")
	fmt.Println()
	fmt.Printf("    %s\n", words)
	fmt.Println()
	return nil
}

func runSeal(src, dst string) error {
	passphrase, err := readPassphrase(true)
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(passphrase)

	if err := sealMnemonicFile(src, dst, passphrase); err != nil {
		return err
	}
	fmt.Printf("✓ Mnemonic sealed to %s\n", dst)
	if src != dst {
		fmt.Printf("  Remove the plain copy at %s once you have verified the device starts.\n", src)
	}
	return nil
}
