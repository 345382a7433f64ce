// Package watcher reports changes to library files made by other processes.
// Editors and atomic writers replace files rather than writing in place, so
// the parent directory is watched and events are filtered by name.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
)

// DefaultDebounce is how long a target must stay quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches library locations for changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	closed  bool
	targets map[string]bool // absolute target -> is a directory
	dirs    map[string]int  // watched directory -> number of targets using it
	timers  map[string]*time.Timer
	fired   chan string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reports every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = max(d, 0) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		debounce: DefaultDebounce,
		logger:   logging.Get("watcher"),
		targets:  make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		fired:    make(chan string, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts watching target. A file target is watched through its parent
// directory, so it does not need to exist yet. A directory target, such as a
// database directory, reports changes to anything directly inside it.
func (w *Watcher) Watch(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	isDir := false
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		isDir = true
	}
	dir := abs
	if !isDir {
		dir = filepath.Dir(abs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	if _, ok := w.targets[abs]; ok {
		return nil
	}

	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("failed to add watch", "path", dir, "error", err)
			return err
		}
	}
	w.dirs[dir]++
	w.targets[abs] = isDir
	w.logger.Debug("watching", "target", abs, "dir", dir)
	return nil
}

// Unwatch stops watching target.
func (w *Watcher) Unwatch(target string) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	isDir, ok := w.targets[abs]
	if w.closed || !ok {
		return
	}
	delete(w.targets, abs)
	if t, ok := w.timers[abs]; ok {
		t.Stop()
		delete(w.timers, abs)
	}

	dir := abs
	if !isDir {
		dir = filepath.Dir(abs)
	}
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		_ = w.watcher.Remove(dir)
		delete(w.dirs, dir)
	}
}

// Targets returns the number of watched targets.
func (w *Watcher) Targets() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.targets)
}

// Run starts the event loop. It blocks until the context is cancelled or the
// watcher is closed. onChange is called from Run's goroutine once per burst of
// events on a target, with the target as given to Watch made absolute.
func (w *Watcher) Run(ctx context.Context, onChange func(target string)) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case target := <-w.fired:
			if onChange != nil {
				onChange(target)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent maps an event to the target it affects and schedules a report.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.match(event.Name)
	if !ok {
		return
	}
	w.logger.Debug("change detected", "target", target, "op", event.Op.String())

	if w.debounce == 0 {
		w.fire(target)
		return
	}
	// A timer that already fired is left to report and a new one started.
	if t, ok := w.timers[target]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[target] == t {
			delete(w.timers, target)
		}
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.fire(target)
		}
	})
	w.timers[target] = t
}

func (w *Watcher) fire(target string) {
	select {
	case w.fired <- target:
	default:
		w.logger.Warn("dropping change notification", "target", target)
	}
}

// match returns the target name refers to. Callers hold w.mu.
func (w *Watcher) match(name string) (string, bool) {
	if _, ok := w.targets[name]; ok {
		return name, true
	}
	if parent := filepath.Dir(name); w.targets[parent] {
		return parent, true
	}
	return "", false
}

// Close stops all watches. Pending reports are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.targets = make(map[string]bool)
	w.dirs = make(map[string]int)
	return w.watcher.Close()
}
