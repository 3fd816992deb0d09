// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package scripting

import (
	"errors"
	"slices"
	"sync"

	"github.com/dop251/goja"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/jsapi"
	"github.com/Armor-Network/armor/internal/ringsig"
)

// GojaRunner is a Runner on one goja runtime bound to a wallet
type GojaRunner struct {
	vm *goja.Runtime

	mu     sync.Mutex
	output func(string)
}

var _ Runner = (*GojaRunner)(nil)

// NewGojaRunner exposes w to scripts. opts configure signTransaction and
// signProof.
func NewGojaRunner(w hardware.Wallet, opts ...ringsig.SignerOption) *GojaRunner {
	r := &GojaRunner{vm: goja.New()}
	r.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	api := jsapi.NewAPI(w, r.print, opts...)
	if err := api.RegisterAll(r.vm); err != nil {
		// Registration only fails on a name clash in jsapi
		panic("scripting: " + err.Error())
	}
	return r
}

func (r *GojaRunner) print(msg string) {
	r.mu.Lock()
	out := r.output
	r.mu.Unlock()
	if out != nil {
		out(msg)
	}
}

func (r *GojaRunner) Run(code string) (Result, error) {
	v, err := r.vm.RunString(code)
	if err != nil {
		return Result{}, scriptError(r.vm, err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return Result{IsEmpty: true}, nil
	}
	return Result{Value: v.Export()}, nil
}

func scriptError(vm *goja.Runtime, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		vm.ClearInterrupt()
		return &ScriptError{Message: interrupted.String(), Interrupted: true}
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return &ScriptError{Message: exc.String()}
	}
	// Syntax errors are plain errors
	return err
}

// SetOutput routes print() and log(); nil discards them
func (r *GojaRunner) SetOutput(fn func(string)) {
	r.mu.Lock()
	r.output = fn
	r.mu.Unlock()
}

func (r *GojaRunner) Interrupt() {
	r.vm.Interrupt("script interrupted")
}

// Globals lists the callable global names in order. Not safe while Run is
// in progress.
func (r *GojaRunner) Globals() []string {
	global := r.vm.GlobalObject()
	var names []string
	for _, name := range global.Keys() {
		if _, ok := goja.AssertFunction(global.Get(name)); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
