package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// defaultSettle is how long the source must be quiet after a change
	// before a pass is requested.
	defaultSettle = 2 * time.Second

	watchTick = 250 * time.Millisecond
)

// SourceWatcher requests an early pass when the source directory
// changes. Only the directory itself is watched; changes inside
// subdirectories are not synchronized and are ignored.
type SourceWatcher struct {
	dir     string
	trigger func()
	settle  time.Duration
	logger  *slog.Logger
}

// NewSourceWatcher creates a watcher that calls trigger once changes to
// dir have settled. A zero settle uses defaultSettle.
func NewSourceWatcher(dir string, trigger func(), settle time.Duration, logger *slog.Logger) *SourceWatcher {
	if settle <= 0 {
		settle = defaultSettle
	}

	return &SourceWatcher{dir: dir, trigger: trigger, settle: settle, logger: logger}
}

// Watch blocks until ctx is cancelled.
func (w *SourceWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.logger.Info("source watcher started", slog.String("dir", w.dir))

	var lastChange time.Time

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed unexpectedly")
			}

			if w.shouldIgnore(event) {
				continue
			}

			lastChange = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed unexpectedly")
			}
			// Non-fatal; the interval still drives passes.
			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			if lastChange.IsZero() || time.Since(lastChange) < w.settle {
				continue
			}

			lastChange = time.Time{}

			w.logger.Debug("source changed, requesting pass", slog.String("dir", w.dir))
			w.trigger()
		}
	}
}

// shouldIgnore drops chmod-only events and anything that is not a direct
// child of the source directory.
func (w *SourceWatcher) shouldIgnore(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}

	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return true
	}

	return strings.HasPrefix(filepath.Base(event.Name), tempPrefix)
}
