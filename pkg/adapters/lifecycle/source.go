// Package lifecycle turns entry change notifications into typed
// lifecycle events so a supervisor can route them alongside its other
// event sources.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tilth/pkg/core"
)

// Change carries the entry a lifecycle event is about.
type Change struct {
	ID string
	At time.Time
}

// EntryCreated is emitted when an entry file appears.
type EntryCreated struct{ Change }

// EntryModified is emitted when an entry file is rewritten.
type EntryModified struct{ Change }

// EntryDeleted is emitted when an entry file disappears.
type EntryDeleted struct{ Change }

func (e EntryCreated) String() string  { return "created " + e.ID }
func (e EntryModified) String() string { return "modified " + e.ID }
func (e EntryDeleted) String() string  { return "deleted " + e.ID }

// Translate maps a watcher change to its lifecycle event, or nil for a
// change type it does not know.
func Translate(e core.ChangeEvent) lifecycle.Event {
	c := Change{ID: e.ID}
	if e.Timestamp != 0 {
		c.At = time.Unix(e.Timestamp, 0)
	}
	switch e.Type {
	case core.ChangeCreate:
		return EntryCreated{c}
	case core.ChangeModify:
		return EntryModified{c}
	case core.ChangeDelete:
		return EntryDeleted{c}
	default:
		return nil
	}
}

// Option narrows what a source emits.
type Option func(*changeSource)

// WithCollection keeps only changes to id and the entries below it.
func WithCollection(id string) Option {
	return func(s *changeSource) { s.collection = strings.Trim(id, "/") }
}

// WithKinds keeps only the given change types.
func WithKinds(kinds ...core.ChangeType) Option {
	return func(s *changeSource) {
		s.kinds = make(map[core.ChangeType]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
}

type changeSource struct {
	changes    <-chan core.ChangeEvent
	out        chan lifecycle.Event
	collection string
	kinds      map[core.ChangeType]bool
}

// NewSource wraps the change channel of Store.Watch as a lifecycle.Source.
func NewSource(changes <-chan core.ChangeEvent, opts ...Option) lifecycle.Source {
	s := &changeSource{changes: changes, out: make(chan lifecycle.Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) accepts(e core.ChangeEvent) bool {
	if s.kinds != nil && !s.kinds[e.Type] {
		return false
	}
	if s.collection == "" {
		return true
	}
	return e.ID == s.collection || strings.HasPrefix(e.ID, s.collection+"/")
}

// Start translates changes until ctx is done or the change channel
// closes, then closes Events.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			var change core.ChangeEvent
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.changes:
				if !ok {
					return nil
				}
				change = e
			}

			if !s.accepts(change) {
				continue
			}
			ev := Translate(change)
			if ev == nil {
				continue
			}
			select {
			case s.out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})
	return nil
}
