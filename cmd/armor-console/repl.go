// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/scripting"
)

const (
	prompt             = "\033[32marmor>\033[0m "
	continuationPrompt = "\033[32m  ...\033[0m "
)

const helpText = `Lines are JavaScript. End a line with \ to continue it on the next.

Device
  hardwareType()                     device description
  info()                             public construction keys
  address(index)                     subaddress {tag, s, sv, address}
  decodeAddress(text)                parse an address string
  mulByViewSecretKey([keys])         multiply keys by the view secret
  keyImage(owned)                    key image of an output from receive()
  outputSeed(inputsHash, index)      output seed of a transaction
  exportViewOnly(viewOutgoing)       signed view-only export
  session()                          state of the last session (local only)

Signing
  receive(index)                     make an owned output paying a subaddress
  randomKey()                        random decoy key
  signTransaction(request)           sign {spends, payments, extra}
  signProof(data, spend)             prove control of an output
  verify(tx), verifyProof(data, p)   check signatures

Console
  print(...), log(...)               output
  .load <file>                       run a script file
  .help                              this text
  .exit                              quit`

// evaluate runs code until it finishes, timeout passes, or the user
// presses Ctrl+C
func evaluate(r scripting.Runner, code string, timeout time.Duration) (scripting.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return scripting.RunContext(ctx, r, code)
}

// printResult writes objects as indented JSON and other values as text
func printResult(out io.Writer, res scripting.Result) {
	if res.IsEmpty {
		return
	}
	switch v := res.Value.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			fmt.Fprintln(out, string(data))
			return
		}
	}
	fmt.Fprintln(out, res.Value)
}

// globals lists the functions registered on the runtime, for completion
func globals(r *scripting.GojaRunner) []string {
	return r.Globals()
}

func newCompleter(names []string) *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(names)+3)
	for _, name := range names {
		items = append(items, readline.PcItem(name+"("))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".exit"),
		readline.PcItem(".load"),
	)
	return readline.NewPrefixCompleter(items...)
}

// console reads lines, joins continuations, and handles dot commands
type console struct {
	runner  scripting.Runner
	timeout time.Duration
	out     io.Writer
	pending strings.Builder
}

// errExit ends the session
var errExit = errors.New("exit")

// line processes one input line. It reports whether the next line
// continues a statement.
func (c *console) line(text string) (bool, error) {
	if c.pending.Len() == 0 {
		trimmed := strings.TrimSpace(text)
		switch {
		case trimmed == "":
			return false, nil
		case trimmed == ".exit" || trimmed == ".quit":
			return false, errExit
		case trimmed == ".help":
			fmt.Fprintln(c.out, helpText)
			return false, nil
		case strings.HasPrefix(trimmed, ".load "):
			path := strings.TrimSpace(strings.TrimPrefix(trimmed, ".load "))
			content, err := os.ReadFile(path)
			if err != nil {
				return false, err
			}
			return false, c.run(string(content))
		case strings.HasPrefix(trimmed, "."):
			return false, fmt.Errorf("unknown command %s (try .help)", trimmed)
		}
	}

	if strings.HasSuffix(text, "\\") {
		c.pending.WriteString(strings.TrimSuffix(text, "\\"))
		c.pending.WriteString("\n")
		return true, nil
	}
	c.pending.WriteString(text)
	code := c.pending.String()
	c.pending.Reset()
	return false, c.run(code)
}

// reset drops a half-entered statement
func (c *console) reset() {
	c.pending.Reset()
}

func (c *console) run(code string) error {
	res, err := evaluate(c.runner, code, c.timeout)
	if err != nil {
		return err
	}
	printResult(c.out, res)
	return nil
}

func startREPL(r *scripting.GojaRunner, w hardware.Wallet, timeout time.Duration) {
	fmt.Println("armor-console - hardware wallet console")
	fmt.Printf("Device: %s\n", w.HardwareType())
	fmt.Println("Type '.help' for available functions or '.exit' to quit")

	c := &console{runner: r, timeout: timeout, out: os.Stdout}

	homeDir, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       filepath.Join(homeDir, ".armor_history"),
		HistoryLimit:      1000,
		AutoComplete:      newCompleter(globals(r)),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(c)
		return
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				c.reset()
				rl.SetPrompt(prompt)
				if len(line) == 0 {
					fmt.Println("Use '.exit' to quit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		more, err := c.line(line)
		if errors.Is(err, errExit) {
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if more {
			rl.SetPrompt(continuationPrompt)
		} else {
			rl.SetPrompt(prompt)
		}
	}
}

func startBasicREPL(c *console) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("armor> ")
		if !scanner.Scan() {
			return
		}
		_, err := c.line(scanner.Text())
		if errors.Is(err, errExit) {
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
