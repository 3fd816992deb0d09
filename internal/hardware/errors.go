// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package hardware

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic failed its checksum
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrProtocolOrder indicates a call made in the wrong session state
	ErrProtocolOrder = errors.New("protocol order violation")

	// ErrAmountOverflow indicates an amount sum exceeding uint64
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrNegativeFee indicates outputs worth more than inputs
	ErrNegativeFee = errors.New("outputs exceed inputs")

	// ErrInconsistentDestination indicates a second non-change destination
	ErrInconsistentDestination = errors.New("inconsistent destination")

	// ErrDeviceMismatch indicates the attached proxy disagreed or failed
	ErrDeviceMismatch = errors.New("device mismatch")

	// ErrInvariant indicates an internal self-check failed
	ErrInvariant = errors.New("invariant violated")

	// ErrInvalidArgument indicates a malformed session shape, scalar or point
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUserRejected indicates the confirmer declined the transaction
	ErrUserRejected = errors.New("rejected by user")

	// ErrSessionReplaced is reported to the observer for an unfinished
	// session discarded by a new start
	ErrSessionReplaced = errors.New("session replaced")
)
