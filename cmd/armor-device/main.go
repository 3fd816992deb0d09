// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// armor-device serves a hardware wallet emulator on a Unix socket.
//
// Usage:
//
//	armor-device [-d dir] [serve]      serve the wallet in the data directory
//	armor-device [-d dir] new          generate and seal a new mnemonic
//	armor-device [-d dir] seal <file>  seal an existing plain mnemonic file
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Armor-Network/armor/internal/audit"
	"github.com/Armor-Network/armor/internal/crypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/metrics"
	"github.com/Armor-Network/armor/internal/remote"
	"github.com/Armor-Network/armor/internal/security"
	"github.com/Armor-Network/armor/internal/util"
	"github.com/Armor-Network/armor/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] [serve | new | seal <plain-mnemonic-file>]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (or set ARMOR_DATA, default ~/.armor)")
	flag.Usage = usage
	flag.Parse()
	if *printVersion {
		fmt.Println(version.Line("armor-device"))
		os.Exit(0)
	}

	dir := util.GetDataDir(*dataDir)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "Error: no data directory; use -d or set ARMOR_DATA")
		os.Exit(1)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := util.LoadDeviceConfig(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	switch {
	case command == "serve" && len(args) == 0:
		err = runServe(cfg)
	case command == "new" && len(args) == 0:
		err = runNew(cfg.MnemonicFile)
	case command == "seal" && len(args) == 1:
		err = runSeal(args[0], cfg.MnemonicFile)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readPassphrase asks on the terminal, for the setup commands
func readPassphrase(confirm bool) ([]byte, error) {
	return util.ReadPassphrase("Mnemonic passphrase: ", confirm)
}

// daemon holds what serve needs to build and rebuild the emulator
type daemon struct {
	cfg       util.DeviceConfig
	reloadMu  sync.Mutex // serializes reloads
	mu        sync.Mutex // guards secret
	secret    *crypto.Secret
	observers hardware.Observers
	audit     *audit.Logger
	proxy     hardware.Wallet
	wallet    *deviceWallet
}

// passphrase returns a copy of the mnemonic passphrase, obtaining it the
// first time.
func (d *daemon) passphrase() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.secret.IsEmpty() {
		var p []byte
		_ = d.secret.WithBytes(func(b []byte) error {
			p = append([]byte(nil), b...)
			return nil
		})
		return p, nil
	}

	p, err := d.cfg.ObtainPassphrase(context.Background())
	if err != nil {
		return nil, err
	}
	d.secret = crypto.NewSecret(p)
	return p, nil
}

// loadEmulator reads the mnemonic file and builds an emulator over it
func (d *daemon) loadEmulator() (*hardware.Emulator, error) {
	phrase, err := crypto.ReadSecretFile(d.cfg.MnemonicFile, d.passphrase)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(phrase)

	opts := []hardware.Option{hardware.WithObserver(d.observers)}
	if d.cfg.Trace {
		opts = append(opts, hardware.WithTracer(hardware.SlogTracer{Logger: util.Logger}))
	}
	if d.proxy != nil {
		opts = append(opts, hardware.WithProxy(d.proxy))
	}
	return hardware.NewEmulator(string(phrase), opts...)
}

// reload replaces the served emulator after the mnemonic file changed
func (d *daemon) reload() error {
	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()

	e, err := d.loadEmulator()
	if err != nil {
		return err
	}
	old := d.wallet.swap(e)
	changed := old.WalletKey() != e.WalletKey()
	_ = old.Close()

	reason := "mnemonic file rewritten"
	if changed {
		reason = "mnemonic replaced"
	}
	if d.audit != nil {
		d.audit.LogMnemonicReload(reason)
	}
	util.Logger.Info("Mnemonic reloaded", "wallet_changed", changed)
	return nil
}

// listenUnix listens on path, replacing a stale socket, with mode 0600
func listenUnix(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	return l, nil
}

func runServe(cfg util.DeviceConfig) error {
	util.InitDaemonLogger(os.Stderr)

	report := security.Harden()
	for _, w := range report.Warnings {
		util.Logger.Warn("Reduced memory protection", "detail", w)
	}
	util.Logger.Info("Memory protection", "core_dumps_disabled", report.CoreDumpsDisabled, "memory_locked", report.MemoryLocked)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := &daemon{cfg: cfg, secret: crypto.NewSecret(nil)}
	defer d.secret.Destroy()

	reg := prometheus.NewRegistry()
	d.observers = hardware.Observers{metrics.New(reg)}
	var hooks []remote.ConnHook
	if cfg.AuditLog != "" {
		a, err := audit.Open(cfg.AuditLog)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		d.audit = a
		d.observers = append(d.observers, a)
		hooks = append(hooks, a)
	}

	if cfg.ProxySocket != "" {
		timeout, err := cfg.ProxyTimeoutDuration()
		if err != nil {
			return err
		}
		proxy, err := remote.DialUnix(ctx, cfg.ProxySocket, timeout)
		if err != nil {
			return err
		}
		defer func() { _ = proxy.Close() }()
		d.proxy = proxy
		util.Logger.Info("Mirroring on proxy device", "socket", cfg.ProxySocket, "hardware_type", proxy.HardwareType())
	}

	e, err := d.loadEmulator()
	if err != nil {
		return err
	}
	d.wallet = newDeviceWallet(e, cfg.ViewOutgoing)
	defer func() { _ = d.wallet.emulator().Close() }()

	l, err := listenUnix(cfg.SocketPath)
	if err != nil {
		return err
	}
	if err := watchMnemonic(ctx, cfg.MnemonicFile, d.reload); err != nil {
		util.Logger.Warn("Mnemonic changes will not be picked up", "error", err)
	}

	if d.audit != nil {
		d.audit.LogDeviceStart(e.HardwareType())
		defer d.audit.LogDeviceStop()
	}
	util.Logger.Info("Device ready",
		"hardware_type", e.HardwareType(),
		"socket", cfg.SocketPath,
		"view_public_key", e.ViewPublicKey().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return remote.Serve(gctx, l, d.wallet, util.Logger, hooks...)
	})
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			util.Logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	util.Logger.Info("Shutdown complete")
	return err
}
