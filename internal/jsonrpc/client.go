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
	"sync/atomic"
)

// maxLineSize bounds one message in either direction
const maxLineSize = 1 << 20

// ErrClosed fails calls that are pending or made after the stream ended
var ErrClosed = errors.New("jsonrpc: connection closed")

// Client multiplexes calls over one stream. Responses may arrive in any
// order; each is routed by id.
type Client struct {
	r io.Reader

	wmu sync.Mutex
	enc *json.Encoder

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan *Response
	done    bool
	err     error
}

// NewClient reads responses from r and writes requests to w. Call Start
// before the first call.
func NewClient(r io.Reader, w io.Writer) *Client {
	return &Client{
		r:       r,
		enc:     json.NewEncoder(w),
		pending: make(map[uint64]chan *Response),
	}
}

// Start reads responses in a goroutine until the stream ends
func (c *Client) Start() {
	go c.receive()
}

// Call sends method and waits for its response or for ctx. A server error
// is returned as *Error; result may be nil to discard the result.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	id := c.nextID.Add(1)
	req, err := NewRequest(method, params, id)
	if err != nil {
		return err
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return c.closedErr()
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	if err := c.write(req); err != nil {
		return err
	}

	select {
	case resp, ok := <-ch:
		switch {
		case !ok:
			return c.closedErr()
		case resp.Error != nil:
			return resp.Error
		case result == nil:
			return nil
		}
		return resp.ParseResult(result)
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// Notify sends method without waiting
func (c *Client) Notify(method string, params interface{}) error {
	req, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	return c.write(req)
}

func (c *Client) write(req *Request) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("failed to send %s: %w", req.Method, err)
	}
	return nil
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) receive() {
	scanner := bufio.NewScanner(c.r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		id, ok := resp.callID()
		if !ok {
			continue
		}
		c.mu.Lock()
		ch := c.pending[id]
		c.mu.Unlock()
		if ch != nil {
			// Buffered; a duplicate response is dropped
			select {
			case ch <- &resp:
			default:
			}
		}
	}
	c.finish(scanner.Err())
}

func (c *Client) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done, c.err = true, err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, c.err)
	}
	return ErrClosed
}

// Close fails pending calls. The stream itself is the caller's to close.
func (c *Client) Close() {
	c.finish(nil)
}
