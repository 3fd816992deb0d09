// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package audit keeps an append-only JSON log of device sessions. Entries
// carry public values only.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Armor-Network/armor/internal/cncrypto"
	"github.com/Armor-Network/armor/internal/hardware"
)

// EventType names what an entry records
type EventType string

const (
	DeviceStart        EventType = "DEVICE_START"
	DeviceStop         EventType = "DEVICE_STOP"
	MnemonicReload     EventType = "MNEMONIC_RELOAD"
	ClientConnected    EventType = "CLIENT_CONNECTED"
	ClientDisconnected EventType = "CLIENT_DISCONNECTED"
	SessionStarted     EventType = "SESSION_STARTED"
	SessionFinished    EventType = "SESSION_FINISHED"
	SessionAborted     EventType = "SESSION_ABORTED"
	ProxyMismatch      EventType = "PROXY_MISMATCH"
)

// Entry is one line of the log
type Entry struct {
	Timestamp    time.Time      `json:"timestamp"`
	Event        EventType      `json:"event"`
	Kind         string         `json:"kind,omitempty"` // session kind
	HardwareType string         `json:"hardware_type,omitempty"`
	Inputs       uint64         `json:"inputs,omitempty"`
	Outputs      uint64         `json:"outputs,omitempty"`
	InputsAmount uint64         `json:"inputs_amount,omitempty"`
	DstAmount    uint64         `json:"dst_amount,omitempty"`
	ChangeAmount uint64         `json:"change_amount,omitempty"`
	Fee          uint64         `json:"fee,omitempty"`
	TxPrefixHash *cncrypto.Hash `json:"tx_prefix_hash,omitempty"`
	Operation    string         `json:"operation,omitempty"` // proxy operation
	RemoteAddr   string         `json:"remote_addr,omitempty"`
	Reason       string         `json:"reason,omitempty"`
}

// Logger appends entries to a size-rotated file, one JSON object per line.
// It implements hardware.Observer.
type Logger struct {
	out *lumberjack.Logger
}

var _ hardware.Observer = (*Logger)(nil)

// Rotation limits of the log file. Backups are named
// <name>-<timestamp>.<ext> next to it.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
)

// Open opens path for appending, creating it with mode 0600
func Open(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Logger{out: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
	}}, nil
}

// Log writes an entry. Failures are reported on stderr; auditing never
// fails a device operation. A failed rotation leaves no file open and the
// next entry reopens the log.
func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to marshal audit entry: %v\n", err)
		return
	}
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write audit entry: %v\n", err)
	}
}

// Rotate moves the current log aside and starts a new one
func (l *Logger) Rotate() error {
	return l.out.Rotate()
}

// Close closes the log file
func (l *Logger) Close() error {
	return l.out.Close()
}

func (l *Logger) SessionStarted(kind string) {
	l.Log(Entry{Event: SessionStarted, Kind: kind})
}

func (l *Logger) SessionFinished(info hardware.SessionInfo) {
	entry := Entry{
		Event:        SessionFinished,
		Kind:         info.Kind,
		Inputs:       info.InputsSize,
		Outputs:      info.OutputsSize,
		InputsAmount: info.InputsAmount,
		DstAmount:    info.DstAmount,
		ChangeAmount: info.ChangeAmount,
		Fee:          info.Fee,
	}
	hash := info.TxPrefixHash
	entry.TxPrefixHash = &hash
	l.Log(entry)
}

func (l *Logger) SessionAborted(kind string, err error) {
	l.Log(Entry{Event: SessionAborted, Kind: kind, Reason: err.Error()})
}

func (l *Logger) ProxyMismatch(op string) {
	l.Log(Entry{Event: ProxyMismatch, Operation: op})
}

// LogDeviceStart records the daemon coming up with the given device chain
func (l *Logger) LogDeviceStart(hardwareType string) {
	l.Log(Entry{Event: DeviceStart, HardwareType: hardwareType})
}

func (l *Logger) LogDeviceStop() {
	l.Log(Entry{Event: DeviceStop})
}

// LogMnemonicReload records a reload; reason is empty on success
func (l *Logger) LogMnemonicReload(reason string) {
	l.Log(Entry{Event: MnemonicReload, Reason: reason})
}

func (l *Logger) LogClientConnected(remoteAddr string) {
	l.Log(Entry{Event: ClientConnected, RemoteAddr: remoteAddr})
}

func (l *Logger) LogClientDisconnected(remoteAddr string) {
	l.Log(Entry{Event: ClientDisconnected, RemoteAddr: remoteAddr})
}
