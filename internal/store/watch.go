package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever its file is written, replaced or removed
// by another process. onChange only fires when the contents differ from the
// last load or save. It returns once the watcher is installed; watching stops
// when ctx is cancelled. onChange may be nil.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// The directory is watched because atomic saves replace the file.
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				changed, err := s.reload()
				if err != nil {
					logger.Warn("store reload failed", "path", s.path, "error", err)
					continue
				}
				// Our own saves leave the file equal to what we wrote.
				if !changed {
					continue
				}
				logger.Debug("store reloaded", "path", s.path, "op", ev.Op.String(), "keys", s.Len())
				if onChange != nil {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("store watcher error", "error", err)
			}
		}
	}()
	return nil
}
