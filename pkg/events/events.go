// Package events dispatches entry store notifications to in-process
// listeners. Dispatch is synchronous: Emit returns once every listener has
// run, so listeners can rewrite the operation before the store resumes.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/tilth/pkg/core"
)

type registration struct {
	id int
	fn core.Listener
}

// Dispatcher implements core.Emitter. The zero value is ready to use.
type Dispatcher struct {
	mu        sync.RWMutex
	next      int
	listeners map[core.EventName][]registration
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

var _ core.Emitter = (*Dispatcher)(nil)

// On registers l for event. Listeners run in registration order. The
// returned function unregisters l; calling it more than once is harmless.
func (d *Dispatcher) On(event core.EventName, l core.Listener) (remove func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listeners == nil {
		d.listeners = make(map[core.EventName][]registration)
	}
	d.next++
	id := d.next
	d.listeners[event] = append(d.listeners[event], registration{id: id, fn: l})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		regs := d.listeners[event]
		for i, r := range regs {
			if r.id == id {
				d.listeners[event] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Count returns the number of listeners registered for event.
func (d *Dispatcher) Count(event core.EventName) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[event])
}

// Emit sets op.Event and runs every listener of event. The first listener
// error stops dispatch and is returned wrapped in core.ErrAborted.
func (d *Dispatcher) Emit(ctx context.Context, event core.EventName, op *core.Operation) error {
	if d == nil {
		return nil
	}

	d.mu.RLock()
	regs := make([]registration, len(d.listeners[event]))
	copy(regs, d.listeners[event])
	d.mu.RUnlock()

	if op != nil {
		op.Event = event
	}
	for _, r := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fn(ctx, op); err != nil {
			return fmt.Errorf("%w: %s: %w", core.ErrAborted, event, err)
		}
	}
	return nil
}
