// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package util

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Armor-Network/armor/internal/crypto"
)

const (
	// DefaultPassphraseTimeout bounds one helper run
	DefaultPassphraseTimeout = 5 * time.Second

	// maxPassphraseOutput caps helper stdout
	maxPassphraseOutput = 8 * 1024
)

// PassphraseEnv holds the mnemonic passphrase for unattended runs
const PassphraseEnv = "ARMOR_PASSPHRASE"

// ErrPassphraseCommand wraps every passphrase helper failure
var ErrPassphraseCommand = errors.New("passphrase_command")

// PassphraseCommand runs a helper program that prints the passphrase of the
// sealed mnemonic, for starting the device without a terminal.
//
// The helper is run as argv[0] "read" argv[1:] with only Env in its
// environment. One trailing newline is stripped from its output. Output
// starting with "base64:" or "hex:" is decoded.
type PassphraseCommand struct {
	Argv    []string
	Env     map[string]string
	Timeout time.Duration
}

// Check verifies that argv[0] is an absolute path to an executable that
// only its owner can modify.
func (c *PassphraseCommand) Check() error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("%w: empty argv", ErrPassphraseCommand)
	}
	path := c.Argv[0]
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q is not an absolute path", ErrPassphraseCommand, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPassphraseCommand, err)
	}
	perm := info.Mode().Perm()
	switch {
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrPassphraseCommand, path)
	case perm&0111 == 0:
		return fmt.Errorf("%w: %s is not executable (mode %04o)", ErrPassphraseCommand, path, perm)
	case perm&0022 != 0:
		return fmt.Errorf("%w: %s is group or world writable (mode %04o)", ErrPassphraseCommand, path, perm)
	}
	return nil
}

// Read runs the helper and returns the passphrase. The caller zeroes it.
func (c *PassphraseCommand) Read(ctx context.Context) ([]byte, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultPassphraseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"read"}, c.Argv[1:]...)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...) //nolint:gosec // checked above
	cmd.Env = make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	// Kill the whole process group so grandchildren do not outlive the timeout
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	var stdout capped
	defer stdout.wipe()
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timed out after %s", ErrPassphraseCommand, timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrPassphraseCommand, err)
	}
	if stdout.overflow {
		return nil, fmt.Errorf("%w: output exceeds %d bytes", ErrPassphraseCommand, maxPassphraseOutput)
	}
	return decodePassphrase(stdout.buf.Bytes())
}

// decodePassphrase returns a fresh copy of the passphrase in out
func decodePassphrase(out []byte) ([]byte, error) {
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = bytes.TrimSuffix(out[:n-1], []byte("\r"))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrPassphraseCommand)
	}
	if bytes.IndexByte(out, 0) >= 0 {
		return nil, fmt.Errorf("%w: output contains NUL bytes", ErrPassphraseCommand)
	}

	var (
		decoded []byte
		n       int
		err     error
	)
	switch {
	case bytes.HasPrefix(out, []byte("base64:")):
		enc := out[len("base64:"):]
		decoded = make([]byte, base64.StdEncoding.DecodedLen(len(enc)))
		n, err = base64.StdEncoding.Decode(decoded, enc)
	case bytes.HasPrefix(out, []byte("hex:")):
		enc := out[len("hex:"):]
		decoded = make([]byte, hex.DecodedLen(len(enc)))
		n, err = hex.Decode(decoded, enc)
	default:
		decoded = make([]byte, len(out))
		n = copy(decoded, out)
	}
	if err != nil {
		crypto.ZeroBytes(decoded)
		return nil, fmt.Errorf("%w: invalid encoded output: %v", ErrPassphraseCommand, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrPassphraseCommand)
	}
	return decoded[:n], nil
}

// capped collects at most maxPassphraseOutput bytes and swallows the rest,
// so the helper never sees a short write.
type capped struct {
	buf      bytes.Buffer
	overflow bool
}

func (c *capped) Write(p []byte) (int, error) {
	room := maxPassphraseOutput - c.buf.Len()
	if len(p) > room {
		c.overflow = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *capped) wipe() {
	crypto.ZeroBytes(c.buf.Bytes())
	c.buf.Reset()
}

// ObtainPassphrase returns the mnemonic passphrase from ARMOR_PASSPHRASE,
// the configured helper or the terminal, in that order.
func (c *DeviceConfig) ObtainPassphrase(ctx context.Context) ([]byte, error) {
	if env := os.Getenv(PassphraseEnv); env != "" {
		return []byte(env), nil
	}
	if helper := c.PassphraseHelper(); helper != nil {
		return helper.Read(ctx)
	}
	return ReadPassphrase("Mnemonic passphrase: ", false)
}
