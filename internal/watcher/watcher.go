// Package watcher reloads the event file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called with the watched path after it settles
type ReloadFunc func(ctx context.Context, path string) error

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange ReloadFunc
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange ReloadFunc) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch blocks until ctx is cancelled, calling onChange once per burst of
// writes to the file. Reloads run on the watching goroutine, one at a time;
// a failed reload is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", w.path, err)
	}

	// Watch the directory so that editors replacing the file are seen
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("watcher: watching %s for changes", abs)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			log.Printf("watcher: file changed: %s", abs)
			if err := w.onChange(ctx, abs); err != nil {
				log.Printf("watcher: reload failed: %v", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}
