package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/runlens/runlens/internal/logging"
)

// debounceInterval coalesces the event bursts editors produce per save.
const debounceInterval = 200 * time.Millisecond

// Watch delivers a freshly loaded Config whenever the file at path
// changes. The parent directory is watched rather than the file itself so
// rename-based saves keep working. Unparsable intermediate saves are
// logged and skipped. The channel closes when ctx ends.
func Watch(ctx context.Context, path string) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer watcher.Close()
		defer close(out)

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				debounce = time.After(debounceInterval)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("config watcher error", "error", err)

			case <-debounce:
				debounce = nil
				cfg, err := Load(path)
				if err != nil {
					logging.Warn("config reload skipped", "error", err)
					continue
				}
				logging.Info("config reloaded", "path", path)
				// Replace any unconsumed reload with the newest one.
				select {
				case <-out:
				default:
				}
				out <- cfg
			}
		}
	}()

	return out, nil
}
