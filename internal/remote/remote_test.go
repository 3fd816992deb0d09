// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package remote_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/remote"
	"github.com/Armor-Network/armor/internal/ringsig"
	"github.com/Armor-Network/armor/internal/testutil"
)

// serve exposes w over an in-memory connection and returns the client side.
func serve(t *testing.T, w hardware.Wallet) *remote.Device {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	srv := remote.NewServer(w)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.ServeStream(context.Background(), serverConn, serverConn)
	}()

	d, err := remote.NewDevice(clientConn, 5*time.Second)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
		_ = serverConn.Close()
		<-done
	})
	return d
}

func TestDeviceInfo(t *testing.T) {
	e := testutil.NewEmulator(t)
	d := serve(t, e)

	if d.HardwareType() != e.HardwareType() {
		t.Errorf("HardwareType = %q, want %q", d.HardwareType(), e.HardwareType())
	}
	if d.APlusSH() != e.APlusSH() || d.VMulAPlusSH() != e.VMulAPlusSH() {
		t.Error("construction keys differ")
	}
	if d.ViewPublicKey() != e.ViewPublicKey() || d.WalletKey() != e.WalletKey() {
		t.Error("view key or wallet key differs")
	}
}

func TestDeviceParity(t *testing.T) {
	local := testutil.NewEmulator(t)
	d := serve(t, testutil.NewEmulator(t))

	for _, index := range []uint64{0, 1, 9} {
		want, err := local.PrepareAddress(index)
		if err != nil {
			t.Fatal(err)
		}
		got, err := d.PrepareAddress(index)
		if err != nil {
			t.Fatalf("PrepareAddress(%d): %v", index, err)
		}
		if got != want {
			t.Errorf("PrepareAddress(%d) = %+v, want %+v", index, got, want)
		}
	}

	keys := []cncrypto.PublicKey{testutil.RandomPublicKey(t), testutil.RandomPublicKey(t)}
	want, err := local.MulByViewSecretKey(keys)
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.MulByViewSecretKey(keys)
	if err != nil {
		t.Fatalf("MulByViewSecretKey: %v", err)
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Error("MulByViewSecretKey results differ")
	}

	in := testutil.NewOwnedOutput(t, local, 3)
	kiLocal, err := local.GenerateKeyImage(in.Output.PublicKey, in.InvHash, 3)
	if err != nil {
		t.Fatal(err)
	}
	kiRemote, err := d.GenerateKeyImage(in.Output.PublicKey, in.InvHash, 3)
	if err != nil {
		t.Fatalf("GenerateKeyImage: %v", err)
	}
	if kiLocal != kiRemote {
		t.Error("key images differ")
	}

	var inputsHash cncrypto.Hash
	inputsHash[5] = 9
	seedLocal, _ := local.GenerateOutputSeed(inputsHash, 2)
	seedRemote, err := d.GenerateOutputSeed(inputsHash, 2)
	if err != nil || seedLocal != seedRemote {
		t.Errorf("output seeds differ: %v", err)
	}

	export, err := d.ExportViewOnly(true)
	if err != nil {
		t.Fatalf("ExportViewOnly: %v", err)
	}
	localExport, _ := local.ExportViewOnly(true)
	if export.ViewSecret != localExport.ViewSecret || export.TxDerivationSeed != localExport.TxDerivationSeed {
		t.Error("exported secrets differ")
	}
	if !export.Verify(d.APlusSH()) {
		t.Error("export signature does not verify against the remote device key")
	}
}

func TestDeviceErrors(t *testing.T) {
	e := testutil.NewEmulator(t)
	d := serve(t, e)
	in := testutil.NewOwnedOutput(t, e, 2)

	_, err := d.SignStepA(in.InvHash, 2)
	testutil.AssertErrorIs(t, err, hardware.ErrProtocolOrder, "remote")

	_, err = d.GenerateKeyImage(in.Output.PublicKey, in.InvHash, 3)
	testutil.AssertErrorIs(t, err, hardware.ErrInvariant, "")

	var bad cncrypto.SecretKey
	for i := range bad {
		bad[i] = 0xff
	}
	_, err = d.GenerateKeyImage(in.Output.PublicKey, bad, 2)
	testutil.AssertErrorIs(t, err, hardware.ErrInvalidArgument, "")

	testutil.AssertErrorIs(t, d.SignStart(2, 0, 0, 1, 0), hardware.ErrInvalidArgument, "")
}

func TestSignTransactionRemote(t *testing.T) {
	e := testutil.NewEmulator(t)
	d := serve(t, e)
	in := testutil.NewOwnedOutput(t, e, 0)

	req := ringsig.Request{
		Version: 2,
		Spends: []ringsig.Spend{{
			Amount:        1000,
			OutputIndexes: []uint64{3},
			Ring:          []cncrypto.PublicKey{in.Output.PublicKey},
			InvHash:       in.InvHash,
			AddressIndex:  in.AddressIndex,
		}},
		Payments: []ringsig.Payment{
			{Amount: 700, Destination: testutil.ForeignDestination(t)},
			{Change: true, Amount: 250, ChangeIndex: 1},
		},
		Extra: []byte("memo"),
	}
	tx, err := ringsig.NewSigner(d).SignTransaction(req)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	if tx.Hash() != e.Session().TxPrefixHash {
		t.Error("prefix hash differs from the serving device")
	}
	if e.Session().Fee != 50 {
		t.Errorf("fee = %d, want 50", e.Session().Fee)
	}
}

func TestProxyOverConnection(t *testing.T) {
	served := testutil.NewEmulator(t)
	d := serve(t, served)
	e := testutil.NewEmulator(t, hardware.WithProxy(d))
	if e.HardwareType() != "Emulator connected to Emulator" {
		t.Errorf("HardwareType = %q", e.HardwareType())
	}

	in := testutil.NewOwnedOutput(t, e, 1)
	req := ringsig.Request{
		Version: 2,
		Spends: []ringsig.Spend{{
			Amount:        500,
			OutputIndexes: []uint64{1, 2, 3},
			Ring:          []cncrypto.PublicKey{testutil.RandomPublicKey(t), in.Output.PublicKey, testutil.RandomPublicKey(t)},
			RealIndex:     1,
			InvHash:       in.InvHash,
			AddressIndex:  in.AddressIndex,
		}},
		Payments: []ringsig.Payment{
			{Amount: 450, Destination: testutil.ForeignDestination(t)},
		},
	}
	if _, err := ringsig.NewSigner(e).SignTransaction(req); err != nil {
		t.Fatalf("SignTransaction through proxy: %v", err)
	}
	if served.Session().State != hardware.StateFinished {
		t.Errorf("served device state = %v", served.Session().State)
	}
}

type connCounter struct {
	mu                      sync.Mutex
	connected, disconnected int
}

func (c *connCounter) LogClientConnected(string) {
	c.mu.Lock()
	c.connected++
	c.mu.Unlock()
}

func (c *connCounter) LogClientDisconnected(string) {
	c.mu.Lock()
	c.disconnected++
	c.mu.Unlock()
}

func TestServe(t *testing.T) {
	e := testutil.NewEmulator(t)
	path := filepath.Join(t.TempDir(), "device.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	counter := &connCounter{}
	done := make(chan error, 1)
	go func() { done <- remote.Serve(ctx, l, e, logger, counter) }()

	// Two clients in turn
	for i := 0; i < 2; i++ {
		d, err := remote.DialUnix(ctx, path, time.Second)
		if err != nil {
			t.Fatalf("DialUnix: %v", err)
		}
		if d.WalletKey() != e.WalletKey() {
			t.Error("wallet key differs")
		}
		_ = d.Close()
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	if counter.connected != 2 || counter.disconnected != 2 {
		t.Errorf("hooks saw %d connects, %d disconnects", counter.connected, counter.disconnected)
	}
}
