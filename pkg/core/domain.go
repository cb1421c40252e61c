// Package core holds the domain types shared by every tilth component.
package core

import "fmt"

// ContentKey is the field that carries the opaque body of an entry.
// It is extracted from the header on encode and reinjected on decode.
const ContentKey = "content"

// Data is the decoded form of an entry: front matter fields plus the
// body under ContentKey.
type Data map[string]any

// Content returns the body of the entry, or "" when absent.
func (d Data) Content() string {
	switch c := d[ContentKey].(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// Clone returns a shallow copy of d. Nested values are shared.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DeepClone returns a copy of d that shares no maps or slices with it.
// Values handed out of, or stored into, a cache go through DeepClone.
func (d Data) DeepClone() Data {
	if d == nil {
		return nil
	}
	return cloneValue(d).(Data)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Data:
		out := make(Data, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Merge returns a copy of d with every key of patch written over it.
// Arrays and maps in patch replace the existing value; nothing is deep-merged.
func (d Data) Merge(patch Data) Data {
	out := d.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Collection maps relative entry ids to their decoded data.
type Collection map[string]Data

// Filter narrows or transforms a collection after it has been read.
type Filter func(Collection) Collection

// Status classifies the outcome of a write operation.
type Status int

const (
	// StatusOK means the operation was applied.
	StatusOK Status = iota
	// StatusNotFound means the entry the operation targets does not exist.
	StatusNotFound
	// StatusPreconditionFailed means the target state forbids the operation
	// (e.g. creating an id that already exists).
	StatusPreconditionFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusPreconditionFailed:
		return "precondition_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the explicit outcome of a write operation.
type Result struct {
	Status Status
	// Reason is a short, human readable explanation for a non-OK status.
	Reason string
}

// OK reports whether the operation was applied.
func (r Result) OK() bool { return r.Status == StatusOK }

// Success returns an OK result.
func Success() Result { return Result{Status: StatusOK} }

// NotFound returns a NotFound result carrying reason.
func NotFound(reason string) Result { return Result{Status: StatusNotFound, Reason: reason} }

// PreconditionFailed returns a PreconditionFailed result carrying reason.
func PreconditionFailed(reason string) Result {
	return Result{Status: StatusPreconditionFailed, Reason: reason}
}

// ChangeType represents the kind of change seen on disk.
type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeModify ChangeType = "MODIFY"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent reports a change to an entry file observed by a watcher.
type ChangeEvent struct {
	Type      ChangeType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String renders the event as "TYPE id".
func (e ChangeEvent) String() string {
	return string(e.Type) + " " + e.ID
}
