// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package scripting runs JavaScript against a hardware wallet.
package scripting

import "context"

// ScriptError is a JS exception or an interrupted script. Host errors
// such as hardware.ErrProtocolOrder reach the caller as the exception
// message.
type ScriptError struct {
	Message     string
	Interrupted bool
}

func (e *ScriptError) Error() string { return e.Message }

// Result is the completion value of a script. IsEmpty marks undefined and
// null, which the console does not print.
type Result struct {
	Value   interface{}
	IsEmpty bool
}

// Runner keeps interpreter state between calls to Run, so the console can
// bind a variable on one line and read it on the next.
type Runner interface {
	Run(code string) (Result, error)
	SetOutput(fn func(string))

	// Interrupt may be called from any goroutine
	Interrupt()
}

// RunContext runs code on r and interrupts it when ctx is done, returning
// ctx.Err() in that case.
func RunContext(ctx context.Context, r Runner, code string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	stop := context.AfterFunc(ctx, r.Interrupt)
	defer stop()

	res, err := r.Run(code)
	if err != nil && ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	return res, err
}
