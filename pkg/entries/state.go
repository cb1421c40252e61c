package entries

import (
	"context"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tilth/pkg/adapters/fs"
	"github.com/aretw0/tilth/pkg/core"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Root          string            `json:"root"`
	Extension     string            `json:"extension"`
	ReadOnly      bool              `json:"read_only"`
	CacheEnabled  bool              `json:"cache_enabled"`
	Operations    map[string]uint64 `json:"operations"`
	WatcherActive bool              `json:"watcher_active"`
	LastChange    *time.Time        `json:"last_change,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make(map[string]uint64, len(s.counts))
	for kind, n := range s.counts {
		ops[string(kind)] = n
	}

	return StoreState{
		Root:          s.Root,
		Extension:     s.Extension(),
		ReadOnly:      s.config.ReadOnly,
		CacheEnabled:  s.cache.Enabled(),
		Operations:    ops,
		WatcherActive: s.watcherActive,
		LastChange:    s.lastChange,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "entry_store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

// Watch reports changes to entry files below the root until ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan core.ChangeEvent, error) {
	w := fs.NewWatcher(s.Root, s.Filename(), s.logger)
	events, err := w.Start(ctx)
	if err != nil {
		return nil, err
	}
	s.setWatcherActive(true)

	out := make(chan core.ChangeEvent)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatcherActive(false)
		for e := range events {
			s.recordChange()
			select {
			case out <- e:
			case <-ctx.Done():
				// Drain so the watcher can shut down.
				for range events {
				}
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Store) recordChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastChange = &now
}
