// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the engine drives
// external systems: the record store, connectors, state and vision sources.
package secondary

import "context"

// MemoryStore defines the secondary port for the persistent record store.
// Routine-specific data rides entirely inside the generic Metadata bag;
// the Content field is a free-text summary used for search and embedding
// (embedding internals live behind this port and are out of scope here).
type MemoryStore interface {
	// AddMemory persists a new record and returns the store-assigned ID.
	AddMemory(ctx context.Context, content, author, kind, persona string, importance float64, metadata map[string]any) (string, error)

	// GetMemoryByID retrieves a record by ID. Returns (nil, nil) when the
	// record does not exist.
	GetMemoryByID(ctx context.Context, id string) (*MemoryRecord, error)

	// UpdateMemory overwrites the mutable fields of an existing record.
	UpdateMemory(ctx context.Context, id string, record *MemoryRecord) error

	// DeleteMemory removes a record. Returns false when no record with the
	// given ID existed.
	DeleteMemory(ctx context.Context, id string) (bool, error)

	// ListRoutines retrieves all routine-kind records, optionally only
	// those whose metadata marks them enabled.
	ListRoutines(ctx context.Context, enabledOnly bool) ([]*MemoryRecord, error)
}

// MemoryRecord represents a record as stored in the memory store.
type MemoryRecord struct {
	ID         string
	Content    string
	Author     string
	Kind       string
	Persona    string
	Importance float64
	Metadata   map[string]any
	CreatedAt  string
	UpdatedAt  string
}

// ExecutionLog defines the secondary port for execution bookkeeping.
// One entry is appended per execution outcome (success, skipped, failed).
type ExecutionLog interface {
	// Append persists one execution outcome.
	Append(ctx context.Context, entry *ExecutionEntry) error

	// ListByRoutine returns entries for a routine, newest first.
	// A limit <= 0 means no limit.
	ListByRoutine(ctx context.Context, routineID string, limit int) ([]*ExecutionEntry, error)
}

// ExecutionEntry represents an execution outcome as persisted.
type ExecutionEntry struct {
	ExecutionID string
	RoutineID   string
	Status      string
	Error       string
	StartedAt   string
	EndedAt     string
}
