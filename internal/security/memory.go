// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

// Package security keeps device secrets out of swap and core files.
package security

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// NoMemoryLockEnv skips LockMemory when set, for debugging
const NoMemoryLockEnv = "ARMOR_NO_MLOCK"

// minMemlock is the smallest RLIMIT_MEMLOCK under which locking future
// pages is safe; the sealing KDF alone allocates 64 MiB.
const minMemlock = 256 << 20

// Report records which protections are in place
type Report struct {
	CoreDumpsDisabled bool
	MemoryLocked      bool
	Warnings          []string
}

// LockMemory locks current and future pages so keys are never swapped
func LockMemory() error {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &lim); err != nil {
		return fmt.Errorf("failed to read RLIMIT_MEMLOCK: %w", err)
	}
	if lim.Cur != unix.RLIM_INFINITY && lim.Cur < minMemlock {
		return fmt.Errorf("RLIMIT_MEMLOCK is %d bytes, need at least %d (raise it with ulimit -l or LimitMEMLOCK=)", lim.Cur, minMemlock)
	}
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall failed: %w (grant it with: sudo setcap cap_ipc_lock+ep %s)", err, os.Args[0])
	}
	return nil
}

// DisableCoreDumps sets RLIMIT_CORE to zero
func DisableCoreDumps() error {
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{}); err != nil {
		return fmt.Errorf("failed to disable core dumps: %w", err)
	}
	return nil
}

// Harden applies both protections. Failures become warnings; the device
// still runs without them.
func Harden() Report {
	var r Report
	if err := DisableCoreDumps(); err != nil {
		r.Warnings = append(r.Warnings, err.Error())
	} else {
		r.CoreDumpsDisabled = true
	}
	if os.Getenv(NoMemoryLockEnv) != "" {
		r.Warnings = append(r.Warnings, "memory locking disabled by "+NoMemoryLockEnv)
		return r
	}
	if err := LockMemory(); err != nil {
		r.Warnings = append(r.Warnings, err.Error())
	} else {
		r.MemoryLocked = true
	}
	return r
}
