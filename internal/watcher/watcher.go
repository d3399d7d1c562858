package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"suitectl/pkg/logging"
)

// DefaultDebounce is used when New is given a zero interval.
const DefaultDebounce = 500 * time.Millisecond

// Operation is what happened to a suite file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Event reports a change to one suite file.
type Event struct {
	Name      string
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Watcher watches a suites directory for changes to suite files.
// Rapid successive changes to one file are reported as a single event.
type Watcher struct {
	mu sync.Mutex

	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	pending  map[string]*pendingEvent
	stopCh   chan struct{}
	running  bool

	// generation numbers scheduled events so stale timers can be told apart.
	generation uint64
}

type pendingEvent struct {
	event      Event
	timer      *time.Timer
	generation uint64
}

// New creates a watcher for dir.
func New(dir string, debounce time.Duration) *Watcher {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		pending:  make(map[string]*pendingEvent),
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. Events are sent to events until ctx is done or
// Stop is called; when events is full the event is dropped.
func (w *Watcher) Start(ctx context.Context, events chan<- Event) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}

	w.fsw = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx, fsw, events)

	logging.Info("Watcher", "Started watching %s for suite changes", w.dir)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			w.cleanupPending()
			if err := w.Stop(); err != nil {
				logging.Error("Watcher", err, "Failed to close filesystem watcher")
			}
			return

		case <-w.stopCh:
			w.cleanupPending()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(event, events)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, events chan<- Event) {
	name := w.suiteName(event.Name)
	if name == "" {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OperationCreate
	case event.Has(fsnotify.Write):
		op = OperationUpdate
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// a rename's new name arrives as its own create
		op = OperationDelete
	default:
		return
	}

	w.schedule(Event{Name: name, Path: event.Name, Operation: op, Timestamp: time.Now()}, events)
}

func (w *Watcher) schedule(event Event, events chan<- Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := event.Name
	if entry, ok := w.pending[key]; ok {
		entry.timer.Stop()
		event.Operation = mergeOperations(entry.event.Operation, event.Operation)
	}

	w.generation++
	gen := w.generation
	timer := time.AfterFunc(w.debounce, func() { w.fire(key, gen, events) })
	w.pending[key] = &pendingEvent{event: event, timer: timer, generation: gen}
}

// fire emits the pending event for key if it is still the one scheduled
// as gen. A timer that lost the race with a newer schedule does nothing.
func (w *Watcher) fire(key string, gen uint64, events chan<- Event) {
	w.mu.Lock()
	entry, ok := w.pending[key]
	if ok && entry.generation == gen {
		delete(w.pending, key)
	} else {
		ok = false
	}
	w.mu.Unlock()

	if !ok {
		return
	}
	select {
	case events <- entry.event:
		logging.Debug("Watcher", "Emitted %s event for suite %s", entry.event.Operation, entry.event.Name)
	default:
		logging.Warn("Watcher", "Event channel full, dropping %s event for suite %s", entry.event.Operation, entry.event.Name)
	}
}

// mergeOperations folds two successive operations on one file.
func mergeOperations(old, new Operation) Operation {
	if old == OperationCreate && new != OperationDelete {
		return OperationCreate
	}
	return new
}

// suiteName returns the suite name for a suite file directly inside the
// watched directory, or "" for anything else. Dotfiles are the
// repository's temporary files.
func (w *Watcher) suiteName(path string) string {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(w.dir) {
		return ""
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), ".xml") {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (w *Watcher) cleanupPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, entry := range w.pending {
		entry.timer.Stop()
	}
	w.pending = make(map[string]*pendingEvent)
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	err := w.fsw.Close()
	w.fsw = nil
	logging.Info("Watcher", "Stopped watching %s", w.dir)
	return err
}
