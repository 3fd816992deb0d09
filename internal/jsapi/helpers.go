// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsapi

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dop251/goja"
)

// arg returns argument i or throws usage
func (a *API) arg(call goja.FunctionCall, i int, usage string) goja.Value {
	if len(call.Arguments) <= i {
		panic(a.runtime.NewTypeError(usage))
	}
	return call.Arguments[i]
}

// throw raises err as a JS exception
func (a *API) throw(err error) {
	panic(a.runtime.NewGoError(err))
}

// maxSafeInteger is the largest integer a JS number holds exactly
const maxSafeInteger = 1<<53 - 1

// index converts a JS number to a device index. Fractions, negatives and
// values past 2^53 throw.
func (a *API) index(v goja.Value, what string) uint64 {
	f := v.ToFloat()
	switch {
	case math.IsNaN(f) || f != math.Trunc(f):
		panic(a.runtime.NewTypeError("%s must be an integer", what))
	case f < 0:
		panic(a.runtime.NewTypeError("%s cannot be negative", what))
	case f > maxSafeInteger:
		panic(a.runtime.NewTypeError("%s is too large", what))
	}
	return uint64(f)
}

// toJS converts v to plain JS objects through its JSON form, so keys and
// scalars appear as hex strings.
func (a *API) toJS(v interface{}) goja.Value {
	data, err := json.Marshal(v)
	if err != nil {
		a.throw(err)
	}
	var plain interface{}
	if err := json.Unmarshal(data, &plain); err != nil {
		a.throw(err)
	}
	return a.runtime.ToValue(plain)
}

// fromJS fills out from a JS value through its JSON form
func (a *API) fromJS(v goja.Value, out interface{}, what string) {
	data, err := json.Marshal(v.Export())
	if err != nil {
		a.throw(fmt.Errorf("invalid %s: %w", what, err))
	}
	if err := json.Unmarshal(data, out); err != nil {
		a.throw(fmt.Errorf("invalid %s: %w", what, err))
	}
}

// format renders a value for log()
func (a *API) format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if _, ok := v.(*goja.Object); !ok {
		return v.String()
	}
	data, err := json.MarshalIndent(v.Export(), "", "  ")
	if err != nil {
		return v.String()
	}
	return string(data)
}
