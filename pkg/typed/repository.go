// Package typed maps entries onto Go structs. Front matter fields are
// converted with the struct's `yaml` tags; the body is kept apart in
// Entry.Content.
package typed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tilth/pkg/core"
)

// ErrNotFound is returned by Get when the entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Store is the subset of the entry store the typed view needs.
// *entries.Store implements it.
type Store interface {
	FetchSingle(ctx context.Context, id string) (core.Data, error)
	FetchCollection(ctx context.Context, id string, filter core.Filter) (core.Collection, error)
	Has(ctx context.Context, id string) bool
	Create(ctx context.Context, id string, data core.Data) (core.Result, error)
	Update(ctx context.Context, id string, data core.Data) (core.Result, error)
	Delete(ctx context.Context, id string) (core.Result, error)
}

// Entry is a typed view of an entry.
type Entry[T any] struct {
	ID      string
	Content string
	Data    T
	Saver   Saver[T] // Active Record reference
}

// Saver persists typed entries.
type Saver[T any] interface {
	Save(ctx context.Context, e *Entry[T]) error
}

// Save persists the entry through the repository it was loaded from.
func (e *Entry[T]) Save(ctx context.Context) error {
	if e.Saver == nil {
		return fmt.Errorf("entry is detached (missing Saver)")
	}
	return e.Saver.Save(ctx, e)
}

// Repository wraps a Store to provide type-safe access.
type Repository[T any] struct {
	store Store
}

// NewRepository creates a typed view over store.
func NewRepository[T any](store Store) *Repository[T] {
	return &Repository[T]{store: store}
}

// Get returns the entry at id, or ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id string) (*Entry[T], error) {
	data, err := r.store.FetchSingle(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 && !r.store.Has(ctx, id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fromData(id, data, r)
}

// List returns the entries below id sorted by id.
func (r *Repository[T]) List(ctx context.Context, id string, filter core.Filter) ([]*Entry[T], error) {
	c, err := r.store.FetchCollection(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(c))
	for entryID := range c {
		ids = append(ids, entryID)
	}
	sort.Strings(ids)

	result := make([]*Entry[T], 0, len(ids))
	for _, entryID := range ids {
		e, err := fromData(entryID, c[entryID], r)
		if err != nil {
			return nil, fmt.Errorf("failed to process entry %s: %w", entryID, err)
		}
		result = append(result, e)
	}
	return result, nil
}

// Create writes e as a new entry.
func (r *Repository[T]) Create(ctx context.Context, e *Entry[T]) (core.Result, error) {
	data, err := toData(e)
	if err != nil {
		return core.Result{}, err
	}
	if e.Saver == nil {
		e.Saver = r
	}
	return r.store.Create(ctx, e.ID, data)
}

// Update merges the fields of e over the stored entry.
func (r *Repository[T]) Update(ctx context.Context, e *Entry[T]) (core.Result, error) {
	data, err := toData(e)
	if err != nil {
		return core.Result{}, err
	}
	return r.store.Update(ctx, e.ID, data)
}

// Save creates e, or updates it when it already exists.
func (r *Repository[T]) Save(ctx context.Context, e *Entry[T]) error {
	var (
		res core.Result
		err error
	)
	if r.store.Has(ctx, e.ID) {
		res, err = r.Update(ctx, e)
	} else {
		res, err = r.Create(ctx, e)
	}
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("save %s: %s: %s", e.ID, res.Status, res.Reason)
	}
	return nil
}

// Delete removes the entry at id.
func (r *Repository[T]) Delete(ctx context.Context, id string) (core.Result, error) {
	return r.store.Delete(ctx, id)
}

func toData[T any](e *Entry[T]) (core.Data, error) {
	raw, err := yaml.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	data := core.Data{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}
	data[core.ContentKey] = e.Content
	return data, nil
}

func fromData[T any](id string, data core.Data, saver Saver[T]) (*Entry[T], error) {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		if k != core.ContentKey {
			fields[k] = v
		}
	}

	raw, err := yaml.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("metadata marshal failed: %w", err)
	}
	var typed T
	if err := yaml.Unmarshal(raw, &typed); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &Entry[T]{
		ID:      id,
		Content: data.Content(),
		Data:    typed,
		Saver:   saver,
	}, nil
}
