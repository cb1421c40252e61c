package core

import "context"

// EventName identifies a lifecycle notification raised by the entry store.
type EventName string

// Lifecycle notifications. Each one is raised before the store touches the
// filesystem for the corresponding step, except the "After" variants which
// fire once data has been produced.
const (
	EventEntryInitialized           EventName = "onEntryInitialized"
	EventEntryAfterCacheInitialized EventName = "onEntryAfterCacheInitialized"
	EventEntryAfterInitialized      EventName = "onEntryAfterInitialized"
	EventEntriesInitialized         EventName = "onEntriesInitialized"
	EventEntriesAfterInitialized    EventName = "onEntriesAfterInitialized"
	EventEntryHas                   EventName = "onEntryHas"
	EventEntryCreate                EventName = "onEntryCreate"
	EventEntryUpdate                EventName = "onEntryUpdate"
	EventEntryDelete                EventName = "onEntryDelete"
	EventEntryMove                  EventName = "onEntryMove"
	EventEntryCopy                  EventName = "onEntryCopy"
)

// OperationKind names the store call an Operation belongs to.
type OperationKind string

const (
	OpFetchSingle     OperationKind = "fetch_single"
	OpFetchCollection OperationKind = "fetch_collection"
	OpHas             OperationKind = "has"
	OpCreate          OperationKind = "create"
	OpUpdate          OperationKind = "update"
	OpDelete          OperationKind = "delete"
	OpMove            OperationKind = "move"
	OpCopy            OperationKind = "copy"
)

// Operation is the transient state of a single store call. Listeners
// receive a pointer to it and may change ID, NewID, Data or Filter before
// the store resumes. It is discarded when the call returns.
type Operation struct {
	Kind  OperationKind
	Event EventName

	ID    string
	NewID string

	// Data is the payload of create/update, or the decoded entry once a
	// fetch has produced it.
	Data Data

	// Collection is populated by collection fetches.
	Collection Collection
	Filter     Filter

	// Result short-circuits a single fetch when a listener sets it during
	// EventEntryInitialized. The store returns it without touching disk.
	Result Data
}

// Listener observes (and may mutate) an in-flight operation. Returning an
// error aborts the operation; the error is propagated to the caller.
type Listener func(ctx context.Context, op *Operation) error

// Emitter dispatches lifecycle notifications synchronously.
type Emitter interface {
	Emit(ctx context.Context, event EventName, op *Operation) error
}
