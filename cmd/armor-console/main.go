// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// armor-console runs JavaScript against a hardware wallet: the armor-device
// daemon, or with -local an emulator over the mnemonic file.
//
// Usage:
//
//	armor-console [flags]               interactive console
//	armor-console [flags] -e <expr>     evaluate one expression
//	armor-console [flags] <script.js>   run a script file ("-" for stdin)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Armor-Network/armor/internal/crypto"
	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/remote"
	"github.com/Armor-Network/armor/internal/ringsig"
	"github.com/Armor-Network/armor/internal/scripting"
	"github.com/Armor-Network/armor/internal/util"
	"github.com/Armor-Network/armor/internal/version"
)

// options are the command line settings that pick the wallet
type options struct {
	local  bool
	socket string
	proxy  string
	yes    bool
}

func main() {
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (or set ARMOR_DATA, default ~/.armor)")
	var opts options
	flag.BoolVar(&opts.local, "local", false, "Run an emulator over the mnemonic file instead of connecting to armor-device")
	flag.StringVar(&opts.socket, "socket", "", "Device socket (default: socket_path from config)")
	flag.StringVar(&opts.proxy, "proxy", "", "With -local, mirror every operation on the device at this socket")
	flag.BoolVar(&opts.yes, "yes", false, "With -local, sign without asking for confirmation")
	expr := flag.String("e", "", "Evaluate a JavaScript expression and exit")
	timeout := flag.Duration("timeout", 0, "Interrupt scripts running longer than this (0 means no limit)")
	flag.Parse()
	if *printVersion {
		fmt.Println(version.Line("armor-console"))
		os.Exit(0)
	}

	util.InitLogger()
	cfg, err := util.LoadDeviceConfig(util.GetDataDir(*dataDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w, closeWallet, err := openWallet(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeWallet()
	util.Debug("Wallet opened", "hardware", w.HardwareType())

	runner := scripting.NewGojaRunner(w, ringsig.WithExtraChunkSize(cfg.ExtraChunkSize))
	runner.SetOutput(func(msg string) {
		fmt.Println(msg)
	})

	switch {
	case *expr != "":
		err = runOnce(runner, *expr, *timeout, os.Stdout)
	case flag.NArg() == 1:
		err = runScript(runner, flag.Arg(0), *timeout)
	case flag.NArg() == 0:
		startREPL(runner, w, *timeout)
	default:
		flag.Usage()
		closeWallet()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeWallet()
		os.Exit(1)
	}
}

// openWallet connects to the daemon or builds a local emulator
func openWallet(cfg util.DeviceConfig, opts options) (hardware.Wallet, func(), error) {
	timeout, err := cfg.ProxyTimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()

	if !opts.local {
		socket := opts.socket
		if socket == "" {
			socket = cfg.SocketPath
		}
		d, err := remote.DialUnix(ctx, socket, timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("%w (is armor-device running? use -local for an in-process emulator)", err)
		}
		return d, func() { _ = d.Close() }, nil
	}

	phrase, err := crypto.ReadSecretFile(cfg.MnemonicFile, func() ([]byte, error) {
		return cfg.ObtainPassphrase(ctx)
	})
	if err != nil {
		return nil, nil, err
	}
	defer crypto.ZeroBytes(phrase)

	var emuOpts []hardware.Option
	if !opts.yes {
		emuOpts = append(emuOpts, hardware.WithConfirmer(terminalConfirmer{}))
	}
	if cfg.Trace {
		emuOpts = append(emuOpts, hardware.WithTracer(hardware.SlogTracer{Logger: util.Logger}))
	}
	var proxy *remote.Device
	if opts.proxy != "" {
		if proxy, err = remote.DialUnix(ctx, opts.proxy, timeout); err != nil {
			return nil, nil, err
		}
		emuOpts = append(emuOpts, hardware.WithProxy(proxy))
	}

	e, err := hardware.NewEmulator(string(phrase), emuOpts...)
	if err != nil {
		if proxy != nil {
			_ = proxy.Close()
		}
		return nil, nil, err
	}
	return e, func() {
		_ = e.Close()
		if proxy != nil {
			_ = proxy.Close()
		}
	}, nil
}

// runOnce evaluates code and prints a non-empty result to out
func runOnce(r scripting.Runner, code string, timeout time.Duration, out io.Writer) error {
	res, err := evaluate(r, code, timeout)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

// runScript runs a file, or stdin for "-"
func runScript(r scripting.Runner, path string, timeout time.Duration) error {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	_, err = evaluate(r, string(content), timeout)
	return err
}
