// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package version reports how an armor binary was built.
//
//	go build -ldflags "-X github.com/Armor-Network/armor/internal/version.Version=1.0.0" ./cmd/...
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags -X. Commit and BuildTime fall back to the VCS stamp
// the go tool embeds.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

func vcs() (commit, when string) {
	commit, when = GitCommit, BuildTime
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, when
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case s.Key == "vcs.time" && when == "":
			when = s.Value
		}
	}
	return commit, when
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// String is the version with commit, build time and platform
func String() string {
	commit, when := vcs()
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)",
		Version, orUnknown(commit), orUnknown(when), runtime.GOOS, runtime.GOARCH)
}

// Line is the -version output of the binary called name
func Line(name string) string {
	return name + " " + String()
}
