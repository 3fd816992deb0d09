// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsonrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// HandlerFunc serves one method. A returned *Error is sent unchanged; any
// other error goes through the server's ErrorMapper.
type HandlerFunc func(ctx context.Context, req *Request) (interface{}, error)

// ErrorMapper converts a handler error into a protocol error
type ErrorMapper func(err error) *Error

// Server dispatches requests read from a stream. Requests on one stream are
// handled strictly in order.
type Server struct {
	mu       sync.RWMutex
	methods  map[string]HandlerFunc
	mapError ErrorMapper
}

// NewServer creates a server with no methods
func NewServer() *Server {
	return &Server{
		methods: make(map[string]HandlerFunc),
		mapError: func(err error) *Error {
			return &Error{Code: InternalError, Message: err.Error()}
		},
	}
}

// Register adds or replaces a method
func (s *Server) Register(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[method] = h
}

// SetErrorMapper replaces the default mapping to InternalError
func (s *Server) SetErrorMapper(m ErrorMapper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapError = m
}

// ServeStream reads requests from r and writes responses to w until r ends
// or ctx is cancelled.
func (s *Server) ServeStream(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.Handle(ctx, line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}

// Handle processes one encoded request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nullID, &Error{Code: ParseError, Message: err.Error()})
	}
	if err := req.Validate(); err != nil {
		id := req.ID
		if errors.Is(err, errBadID) {
			id = nullID
		}
		return errorResponse(id, &Error{Code: InvalidRequest, Message: err.Error()})
	}

	s.mu.RLock()
	h, ok := s.methods[req.Method]
	mapError := s.mapError
	s.mu.RUnlock()

	var resp *Response
	if !ok {
		resp = errorResponse(req.ID, &Error{Code: MethodNotFound, Message: "method not found: " + req.Method})
	} else if result, err := h(ctx, &req); err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			rpcErr = mapError(err)
		}
		resp = errorResponse(req.ID, rpcErr)
	} else if raw, err := json.Marshal(result); err != nil {
		resp = errorResponse(req.ID, &Error{Code: InternalError, Message: "failed to marshal result: " + err.Error()})
	} else {
		resp = &Response{Jsonrpc: Version, Result: raw, ID: req.ID}
	}

	if req.IsNotification() {
		return nil
	}
	return resp
}

// nullID answers requests whose id could not be read.
var nullID = json.RawMessage("null")

func errorResponse(id json.RawMessage, e *Error) *Response {
	return &Response{Jsonrpc: Version, Error: e, ID: id}
}

// InvalidParamsError wraps a parameter decoding failure
func InvalidParamsError(err error) *Error {
	return &Error{Code: InvalidParams, Message: err.Error()}
}
