// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv enables debug logging when set to any value
const DebugEnv = "ARMOR_DEBUG"

var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func logLevel() slog.Level {
	if os.Getenv(DebugEnv) != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitLogger sets Logger up for interactive use: stdout, no time or level
// attributes.
func InitLogger() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	Logger = slog.New(handler)
}

// InitDaemonLogger sets Logger up for a long-running process writing to w
func InitDaemonLogger(w io.Writer) {
	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel()}))
}

// Debug logs a debug message (only shown when ARMOR_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
