// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsonrpc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("sign_start", map[string]uint64{"inputs": 1}, 7)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"jsonrpc":"2.0","method":"sign_start","params":{"inputs":1},"id":7}`
	if string(data) != want {
		t.Errorf("encoded %s, want %s", data, want)
	}
	if req.IsNotification() {
		t.Error("request with id reported as notification")
	}

	note, err := NewNotification("shutdown", nil)
	if err != nil {
		t.Fatal(err)
	}
	data, _ = json.Marshal(note)
	if string(data) != `{"jsonrpc":"2.0","method":"shutdown"}` || !note.IsNotification() {
		t.Errorf("notification encoded as %s", data)
	}

	if _, err := NewRequest("m", make(chan int), 1); err == nil {
		t.Error("expected marshal error")
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"numeric id", `{"jsonrpc":"2.0","method":"sign_step_a","id":1}`, nil},
		{"string id", `{"jsonrpc":"2.0","method":"sign_step_a","id":"req-1"}`, nil},
		{"null id", `{"jsonrpc":"2.0","method":"sign_step_a","id":null}`, nil},
		{"notification", `{"jsonrpc":"2.0","method":"shutdown"}`, nil},
		{"old version", `{"jsonrpc":"1.0","method":"sign_step_a","id":1}`, errVersion},
		{"no method", `{"jsonrpc":"2.0","id":1}`, errNoMethod},
		{"bool id", `{"jsonrpc":"2.0","method":"m","id":true}`, errBadID},
		{"object id", `{"jsonrpc":"2.0","method":"m","id":{}}`, errBadID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.line), &req); err != nil {
				t.Fatal(err)
			}
			err := req.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRequestParseParams(t *testing.T) {
	var req Request
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"m","params":{"index":7},"id":3}`), &req); err != nil {
		t.Fatal(err)
	}
	var params struct {
		Index uint64 `json:"index"`
	}
	if err := req.ParseParams(&params); err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if params.Index != 7 {
		t.Errorf("Index = %d, want 7", params.Index)
	}

	empty := Request{Jsonrpc: "2.0", Method: "m"}
	params.Index = 9
	if err := empty.ParseParams(&params); err != nil || params.Index != 9 {
		t.Errorf("ParseParams on empty params: %v, index %d", err, params.Index)
	}

	bad := Request{Params: json.RawMessage(`{"index":"seven"}`)}
	if err := bad.ParseParams(&params); err == nil {
		t.Error("expected error for mistyped params")
	}
}

func TestResponse(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","result":"abc","id":42}`), &resp); err != nil {
		t.Fatal(err)
	}
	var s string
	if err := resp.ParseResult(&s); err != nil || s != "abc" {
		t.Errorf("ParseResult = %q, %v", s, err)
	}
	if id, ok := resp.callID(); !ok || id != 42 {
		t.Errorf("callID = %d, %v", id, ok)
	}

	if err := (&Response{}).ParseResult(&s); !errors.Is(err, errNoResult) {
		t.Errorf("ParseResult on empty response = %v", err)
	}
	if _, ok := (&Response{ID: json.RawMessage(`"x"`)}).callID(); ok {
		t.Error("string id read back as a call id")
	}
}

func TestErrorResponseEncoding(t *testing.T) {
	data, err := json.Marshal(errorResponse(nil, &Error{Code: ServerErrorBase - 1, Message: "protocol order violation"}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "result") || !strings.Contains(string(data), `"id":null`) {
		t.Errorf("error response encoded as %s", data)
	}
	e := &Error{Code: MethodNotFound, Message: "method not found: x"}
	if e.Error() != "RPC error -32601: method not found: x" {
		t.Errorf("Error() = %q", e.Error())
	}
}
