// Package watcher rebuilds the hazard snapshot when the plans table changes
// on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the burst of write events most tools emit while
// replacing a file.
const debounce = 500 * time.Millisecond

// Watcher watches one dataset file and invokes a rebuild callback after
// writes settle. A failed rebuild is logged and counted; the previously
// published snapshot keeps serving.
type Watcher struct {
	path    string
	rebuild func(ctx context.Context) error
	logger  *slog.Logger
}

// New creates a watcher for the file at path.
func New(path string, rebuild func(ctx context.Context) error, logger *slog.Logger) *Watcher {
	return &Watcher{path: path, rebuild: rebuild, logger: logger}
}

// Run watches until the context is cancelled. The parent directory is
// watched rather than the file itself: atomic-replace writes (rename over)
// would otherwise drop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching dataset", "path", w.path)

	base := filepath.Base(w.path)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("dataset changed, rebuilding snapshot", "path", w.path)
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("snapshot rebuild failed, keeping previous snapshot", "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
