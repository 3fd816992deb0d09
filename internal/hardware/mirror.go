// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import (
	"errors"
	"fmt"
)

// errValueDiffers marks a comparison failure inside a mirror callback, as
// opposed to an error returned by the proxy itself.
var errValueDiffers = errors.New("differs")

func errDiffers(what string) error {
	return fmt.Errorf("%s %w", what, errValueDiffers)
}

// mirror repeats an operation on the attached proxy. call performs the
// proxy operation and compares its result; any error it returns, from the
// proxy or from the comparison, is reported as ErrDeviceMismatch.
func (e *Emulator) mirror(op string, call func(Wallet) error) error {
	if e.proxy == nil {
		return nil
	}
	err := call(e.proxy)
	if err == nil {
		return nil
	}
	e.observer.ProxyMismatch(op)
	if errors.Is(err, errValueDiffers) {
		return fmt.Errorf("%w: %s: %v", ErrDeviceMismatch, op, err)
	}
	return fmt.Errorf("%w: %s: proxy failed: %v", ErrDeviceMismatch, op, err)
}

// mirrorSession is mirror for session operations; a mismatch aborts the
// session.
func (e *Emulator) mirrorSession(op string, call func(Wallet) error) error {
	if err := e.mirror(op, call); err != nil {
		return e.abort(err)
	}
	return nil
}

func (e *Emulator) mismatch(op, what string) error {
	e.observer.ProxyMismatch(op)
	return fmt.Errorf("%w: %s: %s differs", ErrDeviceMismatch, op, what)
}
