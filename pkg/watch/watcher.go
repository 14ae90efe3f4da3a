// Package watch re-runs analysis when trace files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors trace files and triggers re-analysis on append.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	mu       sync.RWMutex
	debounce time.Duration

	// OnChange is invoked, debounced, after a watched file is written.
	OnChange func(path string) error

	// OnError receives re-analysis failures; the watch loop continues.
	OnError func(path string, err error)
}

// NewWatcher creates a watcher. Serial capture appends in bursts, so
// change notifications are debounced before re-analysis fires.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]struct{}),
		debounce: debounce,
	}, nil
}

// Watch registers a trace file. The containing directory is watched;
// fsnotify handles editors that replace rather than append.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: resolve path: %w", err)
	}

	w.mu.Lock()
	w.files[absPath] = struct{}{}
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch: add directory: %w", err)
	}
	return nil
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			_, watched := w.files[absPath]
			w.mu.RUnlock()
			if !watched {
				continue
			}

			timerMu.Lock()
			if timer, exists := timers[absPath]; exists {
				timer.Stop()
			}
			timers[absPath] = time.AfterFunc(w.debounce, func() {
				w.fire(absPath)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) fire(path string) {
	if w.OnChange == nil {
		return
	}
	if err := w.OnChange(path); err != nil && w.OnError != nil {
		w.OnError(path, err)
	}
}
