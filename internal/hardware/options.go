// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/outputs"
)

// RandomSource supplies the per-session random seed that the signing nonces
// are derived from.
type RandomSource interface {
	// Seed returns a fresh session seed.
	Seed() (cncrypto.Hash, error)

	// Deterministic reports whether every call returns the same seed. Only
	// then are nonce-dependent values comparable with a proxy.
	Deterministic() bool
}

// SystemRandom draws seeds from crypto/rand. It is the default.
type SystemRandom struct{}

func (SystemRandom) Seed() (cncrypto.Hash, error) {
	var h cncrypto.Hash
	if _, err := io.ReadFull(rand.Reader, h[:]); err != nil {
		return h, fmt.Errorf("failed to read session seed: %w", err)
	}
	return h, nil
}

func (SystemRandom) Deterministic() bool { return false }

// ZeroSeed always returns the all-zero seed. It makes signatures
// reproducible for tests and proxy parity runs and must not be used to sign
// real transactions: two sessions over the same inputs reuse nonces.
type ZeroSeed struct{}

func (ZeroSeed) Seed() (cncrypto.Hash, error) { return cncrypto.Hash{}, nil }
func (ZeroSeed) Deterministic() bool          { return true }

// Tracer receives public intermediate values of the signing protocol.
// Implementations must not expect secrets; none are ever passed.
type Tracer interface {
	Trace(event string, attrs ...slog.Attr)
}

type nopTracer struct{}

func (nopTracer) Trace(string, ...slog.Attr) {}

// SlogTracer writes trace events at debug level.
type SlogTracer struct {
	Logger *slog.Logger
}

func (t SlogTracer) Trace(event string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, event, attrs...)
}

// Observer is notified of session lifecycle events, e.g. for metrics.
// SessionFinished receives the public state of the completed session.
type Observer interface {
	SessionStarted(kind string)
	SessionFinished(info SessionInfo)
	SessionAborted(kind string, err error)
	ProxyMismatch(op string)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(string)        {}
func (nopObserver) SessionFinished(SessionInfo)  {}
func (nopObserver) SessionAborted(string, error) {}
func (nopObserver) ProxyMismatch(string)         {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (os Observers) SessionStarted(kind string) {
	for _, o := range os {
		o.SessionStarted(kind)
	}
}

func (os Observers) SessionFinished(info SessionInfo) {
	for _, o := range os {
		o.SessionFinished(info)
	}
}

func (os Observers) SessionAborted(kind string, err error) {
	for _, o := range os {
		o.SessionAborted(kind, err)
	}
}

func (os Observers) ProxyMismatch(op string) {
	for _, o := range os {
		o.ProxyMismatch(op)
	}
}

// Confirmation is what the user is asked to approve once all outputs of a
// transaction are known.
type Confirmation struct {
	Destination    outputs.Destination
	HasDestination bool
	Amount         uint64
	Change         uint64
	Fee            uint64
}

// Confirmer approves or declines a transaction before it is signed.
type Confirmer interface {
	Confirm(c Confirmation) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(c Confirmation) (bool, error)

func (f ConfirmFunc) Confirm(c Confirmation) (bool, error) { return f(c) }

// Option configures an Emulator
type Option func(*Emulator) error

// WithProxy mirrors every operation on proxy and compares the results
func WithProxy(proxy Wallet) Option {
	return func(e *Emulator) error {
		e.proxy = proxy
		return nil
	}
}

// WithRandomSource replaces SystemRandom
func WithRandomSource(r RandomSource) Option {
	return func(e *Emulator) error {
		if r == nil {
			return fmt.Errorf("%w: nil random source", ErrInvalidArgument)
		}
		e.random = r
		return nil
	}
}

// WithTracer sets the trace sink
func WithTracer(t Tracer) Option {
	return func(e *Emulator) error {
		if t != nil {
			e.tracer = t
		}
		return nil
	}
}

// WithObserver sets the lifecycle observer
func WithObserver(o Observer) Option {
	return func(e *Emulator) error {
		if o != nil {
			e.observer = o
		}
		return nil
	}
}

// WithConfirmer asks c before a transaction's extra data is accepted
func WithConfirmer(c Confirmer) Option {
	return func(e *Emulator) error {
		e.confirmer = c
		return nil
	}
}
