// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package remote

import (
	"errors"
	"fmt"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/jsonrpc"
)

// Device error codes, counting down from jsonrpc.ServerErrorBase
const (
	CodeDeviceError             = jsonrpc.ServerErrorBase
	CodeProtocolOrder           = jsonrpc.ServerErrorBase - 1
	CodeAmountOverflow          = jsonrpc.ServerErrorBase - 2
	CodeNegativeFee             = jsonrpc.ServerErrorBase - 3
	CodeInconsistentDestination = jsonrpc.ServerErrorBase - 4
	CodeDeviceMismatch          = jsonrpc.ServerErrorBase - 5
	CodeInvariant               = jsonrpc.ServerErrorBase - 6
	CodeInvalidArgument         = jsonrpc.ServerErrorBase - 7
	CodeUserRejected            = jsonrpc.ServerErrorBase - 8
	CodeInvalidMnemonic         = jsonrpc.ServerErrorBase - 9
)

var codeErrors = []struct {
	code int
	err  error
}{
	{CodeProtocolOrder, hardware.ErrProtocolOrder},
	{CodeAmountOverflow, hardware.ErrAmountOverflow},
	{CodeNegativeFee, hardware.ErrNegativeFee},
	{CodeInconsistentDestination, hardware.ErrInconsistentDestination},
	{CodeDeviceMismatch, hardware.ErrDeviceMismatch},
	{CodeInvariant, hardware.ErrInvariant},
	{CodeInvalidArgument, hardware.ErrInvalidArgument},
	{CodeUserRejected, hardware.ErrUserRejected},
	{CodeInvalidMnemonic, hardware.ErrInvalidMnemonic},
}

// ErrRemote wraps device errors without a known sentinel
var ErrRemote = errors.New("remote device error")

// toRPCError maps a wallet error to its wire code
func toRPCError(err error) *jsonrpc.Error {
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return &jsonrpc.Error{Code: ce.code, Message: err.Error()}
		}
	}
	return &jsonrpc.Error{Code: CodeDeviceError, Message: err.Error()}
}

// fromRPCError restores the hardware sentinel of a wire error so that
// errors.Is works across the connection
func fromRPCError(method string, err error) error {
	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) {
		return fmt.Errorf("%s: %w", method, err)
	}
	for _, ce := range codeErrors {
		if rpcErr.Code == ce.code {
			return fmt.Errorf("%w: remote: %s", ce.err, rpcErr.Message)
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrRemote, method, rpcErr.Message)
}
