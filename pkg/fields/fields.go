// Package fields provides the built-in entry fields. Each field is a
// listener on the create and update notifications of the entry store and
// is only registered when "entries.fields.<name>.enabled" is true.
package fields

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/settings"
)

// Field keys.
const (
	CreatedBy  = "created_by"
	CreatedAt  = "created_at"
	ModifiedAt = "modified_at"
	UUID       = "uuid"
	Title      = "title"
)

// Registrar accepts listeners. *events.Dispatcher implements it.
type Registrar interface {
	On(event core.EventName, l core.Listener) (remove func())
}

// Fields holds the sources the listeners draw values from.
type Fields struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewID returns a fresh identifier. Defaults to a random UUID.
	NewID func() string
}

// Option configures Fields.
type Option func(*Fields)

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fields) { f.Now = now }
}

// WithIDGenerator sets the generator used for the uuid field.
func WithIDGenerator(next func() string) Option {
	return func(f *Fields) { f.NewID = next }
}

// New creates Fields with the given options.
func New(opts ...Option) *Fields {
	f := &Fields{Now: time.Now, NewID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register subscribes every field enabled in s. The returned function
// removes them all.
func (f *Fields) Register(r Registrar, s core.Settings) (remove func()) {
	var removers []func()
	on := func(name string, event core.EventName, l core.Listener) {
		if enabled, _ := s.Get(settings.FieldEnabled(name)).(bool); enabled {
			removers = append(removers, r.On(event, l))
		}
	}

	on(CreatedBy, core.EventEntryCreate, f.createdBy)
	on(CreatedAt, core.EventEntryCreate, f.createdAt)
	on(ModifiedAt, core.EventEntryCreate, f.modifiedAt)
	on(ModifiedAt, core.EventEntryUpdate, f.modifiedAt)
	on(UUID, core.EventEntryCreate, f.assignUUID)
	// An update patch cannot see the stored title, so title is create-only.
	on(Title, core.EventEntryCreate, f.title)

	return func() {
		for _, rm := range removers {
			rm()
		}
	}
}

func ensureData(op *core.Operation) core.Data {
	if op.Data == nil {
		op.Data = core.Data{}
	}
	return op.Data
}

// createdBy keeps a supplied author and defaults it to "" otherwise.
func (f *Fields) createdBy(_ context.Context, op *core.Operation) error {
	d := ensureData(op)
	if _, ok := d[CreatedBy]; !ok {
		d[CreatedBy] = ""
	}
	return nil
}

func (f *Fields) createdAt(_ context.Context, op *core.Operation) error {
	d := ensureData(op)
	if _, ok := d[CreatedAt]; !ok {
		d[CreatedAt] = f.Now().UTC().Format(time.RFC3339)
	}
	return nil
}

func (f *Fields) modifiedAt(_ context.Context, op *core.Operation) error {
	ensureData(op)[ModifiedAt] = f.Now().UTC().Format(time.RFC3339)
	return nil
}

func (f *Fields) assignUUID(_ context.Context, op *core.Operation) error {
	d := ensureData(op)
	if v, ok := d[UUID]; !ok || v == "" {
		d[UUID] = f.NewID()
	}
	return nil
}

func (f *Fields) title(_ context.Context, op *core.Operation) error {
	d := ensureData(op)
	if _, ok := d[Title]; ok {
		return nil
	}
	if _, ok := d[core.ContentKey]; !ok {
		return nil
	}
	if t := HeadingTitle(d.Content()); t != "" {
		d[Title] = t
	}
	return nil
}
