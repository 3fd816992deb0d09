// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Armor-Network/armor/internal/util"
)

// reloadDebounce collapses the burst of events one save produces
const reloadDebounce = 500 * time.Millisecond

// watchMnemonic calls reload when the mnemonic file is written or replaced.
// The directory is watched so that editors saving through a rename are seen.
func watchMnemonic(ctx context.Context, path string, reload func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := reload(); err != nil {
						util.Logger.Warn("Mnemonic reload failed", "error", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Logger.Warn("File watcher error", "error", err)
			}
		}
	}()
	return nil
}
