// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package jsonrpc implements line-delimited JSON-RPC 2.0 over a byte stream
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Version is the only protocol version accepted
const Version = "2.0"

// Request is one call. ID is kept raw so the server echoes it unchanged; an
// absent ID marks a notification.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response carries either Result or Error
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a protocol or application error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	// ServerErrorBase is the first application code; applications count
	// down from it
	ServerErrorBase = -32000
)

var (
	errVersion  = errors.New("jsonrpc must be \"2.0\"")
	errNoMethod = errors.New("method is required")
	errBadID    = errors.New("id must be a number, a string or null")
	errNoResult = errors.New("response has no result")
)

func marshalParams(params interface{}) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	return raw, nil
}

// NewRequest builds a call with a numeric id
func NewRequest(method string, params interface{}, id uint64) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{
		Jsonrpc: Version,
		Method:  method,
		Params:  raw,
		ID:      strconv.AppendUint(nil, id, 10),
	}, nil
}

// NewNotification builds a call that gets no response
func NewNotification(method string, params interface{}) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{Jsonrpc: Version, Method: method, Params: raw}, nil
}

// Validate checks the envelope, not the params
func (r *Request) Validate() error {
	if r.Jsonrpc != Version {
		return fmt.Errorf("%w, got %q", errVersion, r.Jsonrpc)
	}
	if r.Method == "" {
		return errNoMethod
	}
	if r.IsNotification() {
		return nil
	}
	var id interface{}
	if err := json.Unmarshal(r.ID, &id); err != nil {
		return errBadID
	}
	switch id.(type) {
	case nil, float64, string:
		return nil
	}
	return errBadID
}

func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// ParseParams decodes params into v; absent params leave v untouched
func (r *Request) ParseParams(v interface{}) error {
	if len(r.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Params, v); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return nil
}

// ParseResult decodes the result into v
func (r *Response) ParseResult(v interface{}) error {
	if len(r.Result) == 0 {
		return errNoResult
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// callID reads back an id produced by NewRequest
func (r *Response) callID() (uint64, bool) {
	id, err := strconv.ParseUint(string(bytes.TrimSpace(r.ID)), 10, 64)
	return id, err == nil
}
