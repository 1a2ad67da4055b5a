// Package watcher emits debounced file system change events for the
// workspace, filtered through the exclude matcher. Rapid successive writes
// to the same file collapse into a single event.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Config holds configuration for the file system watcher.
type Config struct {
	Paths           []string
	ExcludePatterns []string
	// Debounce overrides the default debounce window when positive.
	Debounce time.Duration
}

const defaultDebounce = 100 * time.Millisecond

// Watcher watches workspace paths for changes and emits debounced events.
type Watcher struct {
	cfg     Config
	matcher *ExcludeMatcher

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	closed bool
}

// New creates a file system watcher with the given configuration.
func New(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	return &Watcher{
		cfg:     cfg,
		matcher: NewExcludeMatcher(cfg.ExcludePatterns),
	}
}

// Start begins watching configured paths and returns a channel of debounced
// events. The channel is closed when the context is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, root := range w.cfg.Paths {
		if err := w.addRecursive(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Event, 100)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !info.IsDir() {
			return nil
		}
		if w.matcher.Match(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	var mu sync.Mutex
	type pending struct {
		event Event
		timer *time.Timer
	}
	pendingEvents := make(map[string]*pending)

	emit := func(evt Event) {
		select {
		case out <- evt:
		case <-ctx.Done():
		}
	}

	// schedule records an event for path, restarting its debounce timer.
	schedule := func(path string, evt Event) {
		mu.Lock()
		defer mu.Unlock()
		if p, exists := pendingEvents[path]; exists {
			p.timer.Stop()
			p.event = evt
		} else {
			pendingEvents[path] = &pending{event: evt}
		}
		p := pendingEvents[path]
		p.timer = time.AfterFunc(w.cfg.Debounce, func() {
			mu.Lock()
			e := pendingEvents[path]
			delete(pendingEvents, path)
			mu.Unlock()
			if e != nil {
				emit(e.event)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, p := range pendingEvents {
				p.timer.Stop()
			}
			mu.Unlock()
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.matcher.Match(fsEvent.Name) {
				continue
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// New directories must be added to the watch set.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(fsw, fsEvent.Name)
					continue
				}
			}

			schedule(fsEvent.Name, Event{Path: fsEvent.Name, Op: op, Time: time.Now()})

		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
