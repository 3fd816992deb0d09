// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/jsonrpc"
)

// handler adapts one typed wallet call to a JSON-RPC method
func handler[P any](call func(p *P) (interface{}, error)) jsonrpc.HandlerFunc {
	return func(ctx context.Context, req *jsonrpc.Request) (interface{}, error) {
		var p P
		if err := req.ParseParams(&p); err != nil {
			return nil, jsonrpc.InvalidParamsError(err)
		}
		return call(&p)
	}
}

// ok is the result of calls without a return value
type ok struct{}

// NewServer returns a JSON-RPC server exposing w. The server does not lock
// w; serve one stream at a time.
func NewServer(w hardware.Wallet) *jsonrpc.Server {
	s := jsonrpc.NewServer()
	s.SetErrorMapper(toRPCError)

	s.Register(MethodGetInfo, handler(func(*struct{}) (interface{}, error) {
		return InfoOf(w), nil
	}))
	s.Register(MethodPrepareAddress, handler(func(p *indexParams) (interface{}, error) {
		return w.PrepareAddress(p.Index)
	}))
	s.Register(MethodMulByViewSecretKey, handler(func(p *keysParams) (interface{}, error) {
		return w.MulByViewSecretKey(p.Keys)
	}))
	s.Register(MethodGenerateKeyImage, handler(func(p *keyImageParams) (interface{}, error) {
		return w.GenerateKeyImage(p.OutputKey, p.InvHash, p.AddressIndex)
	}))
	s.Register(MethodGenerateOutputSeed, handler(func(p *outputSeedParams) (interface{}, error) {
		return w.GenerateOutputSeed(p.TxInputsHash, p.Index)
	}))
	s.Register(MethodExportViewOnly, handler(func(p *exportParams) (interface{}, error) {
		return w.ExportViewOnly(p.ViewOutgoing)
	}))
	s.Register(MethodSignStart, handler(func(p *signStartParams) (interface{}, error) {
		return ok{}, w.SignStart(p.Version, p.UnlockTime, p.Inputs, p.Outputs, p.Extra)
	}))
	s.Register(MethodSignAddInput, handler(func(p *addInputParams) (interface{}, error) {
		return ok{}, w.SignAddInput(p.Amount, p.OutputIndexes, p.InvHash, p.AddressIndex)
	}))
	s.Register(MethodSignAddOutput, handler(func(p *addOutputParams) (interface{}, error) {
		return w.SignAddOutput(p.Change, p.Amount, p.ChangeIndex, p.Destination)
	}))
	s.Register(MethodSignAddExtra, handler(func(p *dataParams) (interface{}, error) {
		return ok{}, w.SignAddExtra(p.Data)
	}))
	s.Register(MethodSignStepA, handler(func(p *stepParams) (interface{}, error) {
		return w.SignStepA(p.InvHash, p.AddressIndex)
	}))
	s.Register(MethodSignStepAMoreData, handler(func(p *dataParams) (interface{}, error) {
		return ok{}, w.SignStepAMoreData(p.Data)
	}))
	s.Register(MethodSignGetC0, handler(func(*struct{}) (interface{}, error) {
		return w.SignGetC0()
	}))
	s.Register(MethodSignStepB, handler(func(p *stepBParams) (interface{}, error) {
		return w.SignStepB(p.InvHash, p.AddressIndex, p.MyC)
	}))
	s.Register(MethodProofStart, handler(func(p *dataParams) (interface{}, error) {
		return ok{}, w.ProofStart(p.Data)
	}))
	return s
}

// ConnHook is told about clients coming and going, e.g. an audit log
type ConnHook interface {
	LogClientConnected(remoteAddr string)
	LogClientDisconnected(remoteAddr string)
}

// Serve accepts connections on l and serves w on each in turn until ctx is
// cancelled. Connections are handled one at a time, which serializes access
// to w.
func Serve(ctx context.Context, l net.Listener, w hardware.Wallet, logger *slog.Logger, hooks ...ConnHook) error {
	srv := NewServer(w)

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		addr := conn.RemoteAddr().String()
		logger.Info("Client connected", "remote", addr)
		for _, h := range hooks {
			h.LogClientConnected(addr)
		}
		err = serveConn(ctx, srv, conn)
		switch {
		case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			logger.Info("Client disconnected", "remote", addr)
		default:
			logger.Warn("Client connection failed", "remote", addr, "error", err)
		}
		for _, h := range hooks {
			h.LogClientDisconnected(addr)
		}
	}
}

func serveConn(ctx context.Context, srv *jsonrpc.Server, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	return srv.ServeStream(ctx, conn, conn)
}
