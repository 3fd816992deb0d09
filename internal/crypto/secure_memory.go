// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package crypto seals secrets at rest and wipes them from memory.
package crypto

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// ZeroBytes overwrites b with zeros
func ZeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	runtime.KeepAlive(b)
}

// Secret holds a passphrase or mnemonic until Destroy is called.
// It never prints its contents.
type Secret struct {
	data []byte
	lock sync.RWMutex
}

// NewSecret copies b; the caller may zero its own copy afterwards
func NewSecret(b []byte) *Secret {
	if b == nil {
		return &Secret{}
	}
	data := make([]byte, len(b))
	copy(data, b)
	return &Secret{data: data}
}

// WithBytes gives fn read access to the secret. fn must not retain the
// slice.
func (s *Secret) WithBytes(fn func([]byte) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return fn(s.data)
}

// Destroy zeroes the secret. Later calls see an empty secret.
func (s *Secret) Destroy() {
	s.lock.Lock()
	defer s.lock.Unlock()
	ZeroBytes(s.data)
	s.data = nil
}

func (s *Secret) IsEmpty() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.data) == 0
}

func (s *Secret) String() string { return "<secret>" }
