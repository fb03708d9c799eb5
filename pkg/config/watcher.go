package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors save config files atomically, which surfaces as a Create rather
// than a Write and often as a short burst of events. Each burst collapses
// into one notification after this quiet period.
const watchDebounce = 500 * time.Millisecond

// WatchConfig watches the given files and emits on the returned channel
// once per settled change. The watcher goroutine exits when ctx is
// canceled.
func WatchConfig(ctx context.Context, files ...string) <-chan struct{} {
	changes := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create config watcher", "error", err)
		return changes
	}

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("Cannot resolve watch path", "file", file)
			continue
		}
		if err := watcher.Add(abs); err != nil {
			slog.Warn("Cannot watch config file", "file", file, "error", err)
			continue
		}
		slog.Debug("Watching configuration file", "file", abs)
	}

	go func() {
		defer watcher.Close()
		defer close(changes)

		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(watchDebounce, func() {
					slog.Info("Configuration change detected", "file", event.Name)
					select {
					case changes <- struct{}{}:
					default: // a reload is already queued
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()

	return changes
}
