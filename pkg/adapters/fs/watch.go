package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/tilth/pkg/core"
)

// DefaultDebounce coalesces the burst of events an atomic write produces.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changes to entry files below a root directory. Only files
// named exactly Filename are reported; ids are their directory relative to
// Root.
type Watcher struct {
	Root     string
	Filename string
	Debounce time.Duration
	Logger   *slog.Logger
	// ErrorHandler receives runtime watcher failures. They are logged
	// otherwise.
	ErrorHandler func(error)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]core.ChangeType
	closed  bool
	stop    chan struct{}
}

// NewWatcher creates a watcher for files named filename below root.
func NewWatcher(root, filename string, logger *slog.Logger) *Watcher {
	return &Watcher{
		Root:     root,
		Filename: filename,
		Debounce: DefaultDebounce,
		Logger:   logger,
	}
}

// Start begins watching. The returned channel is closed once ctx is done.
func (w *Watcher) Start(ctx context.Context) (<-chan core.ChangeEvent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.addRecursive(watcher, w.Root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w.mu.Lock()
	w.timers = make(map[string]*time.Timer)
	w.pending = make(map[string]core.ChangeType)
	w.closed = false
	w.stop = make(chan struct{})
	w.mu.Unlock()

	out := make(chan core.ChangeEvent, 64)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.shutdown(out)
		defer watcher.Close()
		return w.loop(ctx, watcher, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("watcher panic: %w", err))
	}))

	return out, nil
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- core.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, watcher, event, out)

		case err, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, out chan<- core.ChangeEvent) {
	if w.Logger != nil {
		w.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.reportError(err)
			}
			// Files written before the watch was added produce no event.
			w.scanNew(ctx, event.Name, out)
			return
		}
	}

	if name != w.Filename {
		return
	}

	var typ core.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		typ = core.ChangeCreate
	case event.Has(fsnotify.Write):
		typ = core.ChangeModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.ChangeDelete
	default:
		return
	}

	if id, ok := w.id(event.Name); ok {
		w.schedule(ctx, id, typ, out)
	}
}

// id maps an entry file to the id of its directory.
func (w *Watcher) id(file string) (string, bool) {
	rel, err := filepath.Rel(w.Root, filepath.Dir(file))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

// scanNew reports entry files already present in a newly watched
// directory as created.
func (w *Watcher) scanNew(ctx context.Context, dir string, out chan<- core.ChangeEvent) {
	_ = filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != w.Filename {
			return nil
		}
		if id, ok := w.id(path); ok {
			w.schedule(ctx, id, core.ChangeCreate, out)
		}
		return nil
	})
}

// schedule debounces per id. A create followed by writes is reported once
// as a create.
func (w *Watcher) schedule(ctx context.Context, id string, typ core.ChangeType, out chan<- core.ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if prev, ok := w.pending[id]; ok && prev == core.ChangeCreate && typ == core.ChangeModify {
		typ = core.ChangeCreate
	}
	w.pending[id] = typ

	if t, ok := w.timers[id]; ok {
		t.Stop()
	}
	w.timers[id] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		typ := w.pending[id]
		delete(w.pending, id)
		delete(w.timers, id)

		select {
		case out <- core.ChangeEvent{Type: typ, ID: id, Timestamp: time.Now().Unix()}:
		case <-ctx.Done():
		case <-w.stop:
		}
	})
}

func (w *Watcher) shutdown(out chan core.ChangeEvent) {
	close(w.stop)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	close(out)
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) reportError(err error) {
	if w.ErrorHandler != nil {
		w.ErrorHandler(err)
		return
	}
	if w.Logger != nil {
		w.Logger.Error("watcher error", "error", err)
	}
}
