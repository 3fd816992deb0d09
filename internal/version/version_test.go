// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package version

import (
	"strings"
	"testing"
)

func TestLine(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	got := Line("armor-device")
	if !strings.HasPrefix(got, "armor-device 1.2.3 (commit: ") {
		t.Errorf("Line = %q", got)
	}
}

func TestStringUsesLinkerValues(t *testing.T) {
	oldCommit, oldTime := GitCommit, BuildTime
	GitCommit, BuildTime = "abc123", "2026-01-02T03:04:05Z"
	defer func() { GitCommit, BuildTime = oldCommit, oldTime }()

	got := String()
	if !strings.Contains(got, "commit: abc123, built: 2026-01-02T03:04:05Z") {
		t.Errorf("String = %q", got)
	}
}
