// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package util

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/Armor-Network/armor/internal/crypto"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

// ReadPassphrase prompts on stderr and reads a line from the terminal
// without echo. With confirm set the user types it twice.
func ReadPassphrase(prompt string, confirm bool) ([]byte, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 - file descriptors are small integers
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	pass1, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	if !confirm {
		return pass1, nil
	}

	fmt.Fprint(os.Stderr, "Confirm: ")
	pass2, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	defer crypto.ZeroBytes(pass2)
	if err != nil {
		crypto.ZeroBytes(pass1)
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}
	if !bytes.Equal(pass1, pass2) {
		crypto.ZeroBytes(pass1)
		return nil, fmt.Errorf("passphrases do not match")
	}
	if len(pass1) == 0 {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	return pass1, nil
}
