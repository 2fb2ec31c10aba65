package backend

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchSources watches the backend source directory for changes in dev mode.
// On change, onChange(filename) fires (debounced) so the shell can tell the
// UI the running backend is stale. It never restarts the child — restarting
// is the developer's call.
func WatchSources(ctx context.Context, dir string, onChange func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go runWatcher(ctx, watcher, onChange)

	slog.Info("backend source watcher started", "dir", dir)
	return nil
}

// isSourceFile filters watcher events down to backend source changes.
func isSourceFile(name string) bool {
	return filepath.Ext(name) == ".py"
}

// runWatcher is the main loop for the fsnotify watcher.
func runWatcher(ctx context.Context, watcher *fsnotify.Watcher, onChange func(name string)) {
	defer watcher.Close()

	// Debounce: coalesce events for the same file within 200ms
	var debounceMu sync.Mutex
	pending := make(map[string]*time.Timer)

	trigger := func(name string) {
		debounceMu.Lock()
		defer debounceMu.Unlock()

		if timer, ok := pending[name]; ok {
			timer.Stop()
		}
		pending[name] = time.AfterFunc(200*time.Millisecond, func() {
			debounceMu.Lock()
			delete(pending, name)
			debounceMu.Unlock()

			slog.Debug("backend source changed", "file", name)
			if onChange != nil {
				onChange(name)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			// Cancel all pending timers
			debounceMu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			debounceMu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			if !isSourceFile(name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger(name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("backend source watcher error", "err", err)
		}
	}
}
