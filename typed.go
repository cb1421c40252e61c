package tilth

import (
	"github.com/aretw0/tilth/pkg/typed"
)

// Entry is an entry whose front matter is decoded into T.
type Entry[T any] = typed.Entry[T]

// TypedRepository converts between entries and T.
type TypedRepository[T any] = typed.Repository[T]

// NewTyped creates a type-safe view over a store.
// T is the struct the front matter of each entry decodes into.
func NewTyped[T any](s *Store) *TypedRepository[T] {
	return typed.NewRepository[T](s)
}

// OpenTyped creates a store at root and wraps it in a typed view.
func OpenTyped[T any](root string, opts ...Option) (*TypedRepository[T], error) {
	s, err := New(root, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewRepository[T](s), nil
}
