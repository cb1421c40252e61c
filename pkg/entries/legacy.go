package entries

import (
	"context"

	"github.com/aretw0/tilth/pkg/core"
)

// Legacy exposes the store with boolean and empty-map outcomes: every
// failure, NotFound and PreconditionFailed alike, reads as false or as an
// empty map. Errors are logged, not returned.
type Legacy struct {
	Store *Store
}

// NewLegacy wraps s.
func NewLegacy(s *Store) *Legacy {
	return &Legacy{Store: s}
}

func (l *Legacy) FetchSingle(id string) map[string]any {
	data, err := l.Store.FetchSingle(context.Background(), id)
	if err != nil {
		l.Store.logger.Warn("fetch failed", "id", id, "error", err)
		return map[string]any{}
	}
	return data
}

func (l *Legacy) FetchCollection(id string, filter core.Filter) map[string]map[string]any {
	c, err := l.Store.FetchCollection(context.Background(), id, filter)
	if err != nil {
		l.Store.logger.Warn("fetch collection failed", "id", id, "error", err)
		return map[string]map[string]any{}
	}
	out := make(map[string]map[string]any, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Fetch returns map[string]map[string]any when collection is true and
// map[string]any otherwise.
func (l *Legacy) Fetch(id string, collection bool, filter core.Filter) any {
	if collection {
		return l.FetchCollection(id, filter)
	}
	return l.FetchSingle(id)
}

func (l *Legacy) Has(id string) bool {
	return l.Store.Has(context.Background(), id)
}

func (l *Legacy) Create(id string, data map[string]any) bool {
	return l.outcome("create", id)(l.Store.Create(context.Background(), id, data))
}

func (l *Legacy) Update(id string, data map[string]any) bool {
	return l.outcome("update", id)(l.Store.Update(context.Background(), id, data))
}

func (l *Legacy) Delete(id string) bool {
	return l.outcome("delete", id)(l.Store.Delete(context.Background(), id))
}

func (l *Legacy) Move(id, newID string) bool {
	return l.outcome("move", id)(l.Store.Move(context.Background(), id, newID))
}

func (l *Legacy) Copy(id, newID string) bool {
	return l.outcome("copy", id)(l.Store.Copy(context.Background(), id, newID))
}

func (l *Legacy) outcome(op, id string) func(core.Result, error) bool {
	return func(r core.Result, err error) bool {
		if err != nil {
			l.Store.logger.Warn("entry operation failed", "op", op, "id", id, "error", err)
			return false
		}
		return r.OK()
	}
}
