// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/argon2"
)

// SealVersion is the envelope version written by Seal
const SealVersion = 1

const (
	saltLen = 32
	keyLen  = 32 // AES-256

	// additional data of every envelope
	sealAAD = "armor sealed mnemonic"
)

var (
	ErrNotSealed       = errors.New("data is not a sealed envelope")
	ErrWrongPassphrase = errors.New("incorrect passphrase or corrupted envelope")
)

// KDFParams are the Argon2id cost parameters stored with each envelope
type KDFParams struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

// DefaultKDF follows the OWASP Argon2id recommendation
var DefaultKDF = KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

// Envelope is the on-disk form of a sealed secret
type Envelope struct {
	Version    int       `json:"version"`
	KDF        KDFParams `json:"kdf"`
	Salt       string    `json:"salt"`       // base64
	Nonce      string    `json:"nonce"`      // base64, AES-GCM
	Ciphertext string    `json:"ciphertext"` // base64
	Created    string    `json:"created,omitempty"`
}

// DeriveKey derives the envelope key. Caller zeroes the result.
func DeriveKey(passphrase, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(passphrase, salt, p.Time, p.MemoryKiB, p.Threads, keyLen)
}

// IsSealed reports whether data parses as an envelope
func IsSealed(data []byte) bool {
	var env Envelope
	return json.Unmarshal(data, &env) == nil && env.Version > 0 && env.Ciphertext != ""
}

// Seal encrypts plaintext under passphrase with DefaultKDF
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	return SealWith(plaintext, passphrase, DefaultKDF)
}

// SealWith is Seal with explicit KDF costs
func SealWith(plaintext, passphrase []byte, p KDFParams) ([]byte, error) {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		return nil, fmt.Errorf("invalid KDF parameters %+v", p)
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := DeriveKey(passphrase, salt, p)
	defer ZeroBytes(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := Envelope{
		Version:    SealVersion,
		KDF:        p,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, []byte(sealAAD))),
		Created:    time.Now().UTC().Format(time.RFC3339),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Open decrypts an envelope produced by Seal
func Open(data, passphrase []byte) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSealed, err)
	}
	if env.Version != SealVersion {
		return nil, fmt.Errorf("%w: envelope version %d not supported", ErrNotSealed, env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if env.KDF.Time == 0 || env.KDF.MemoryKiB == 0 || env.KDF.Threads == 0 {
		return nil, fmt.Errorf("%w: missing KDF parameters", ErrNotSealed)
	}

	key := DeriveKey(passphrase, salt, env.KDF)
	defer ZeroBytes(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrNotSealed, len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(sealAAD))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// WriteSealedFile seals plaintext into path with mode 0600. An existing
// file is replaced atomically.
func WriteSealedFile(path string, plaintext, passphrase []byte, p KDFParams) error {
	data, err := SealWith(plaintext, passphrase, p)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadSecretFile returns the contents of path, opening it with passphrase
// when it is sealed. needPassphrase is called only for sealed files.
func ReadSecretFile(path string, needPassphrase func() ([]byte, error)) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !IsSealed(data) {
		return data, nil
	}
	defer ZeroBytes(data)

	passphrase, err := needPassphrase()
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(passphrase)
	return Open(data, passphrase)
}
