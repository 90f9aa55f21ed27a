package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventStore persists aggregates as append-only streams of domain events.
// The stream version is the number of committed events; appends carry the
// version the writer loaded at, and a stale append fails with
// ErrConcurrencyConflict without writing anything.
type EventStore interface {
	// AppendEvents adds events to the aggregate's stream at positions
	// expectedVersion+1..expectedVersion+len(events).
	AppendEvents(ctx context.Context, aggregateID uuid.UUID, expectedVersion int, events []DomainEvent) error

	// EventsSince returns the committed events after the given version in
	// stream order. Version 0 loads the full history. An unknown aggregate
	// yields an empty history, not an error.
	EventsSince(ctx context.Context, aggregateID uuid.UUID, afterVersion int) ([]DomainEvent, error)

	// SaveSnapshot stores a point-in-time state. Snapshots are an
	// optimization; a stream must be replayable without them.
	SaveSnapshot(ctx context.Context, snapshot SnapshotRecord) error

	// LatestSnapshot returns the highest-version snapshot, or nil when the
	// aggregate has none.
	LatestSnapshot(ctx context.Context, aggregateID uuid.UUID) (*SnapshotRecord, error)
}

// SnapshotRecord is the serialized state of an event-sourced aggregate at one
// stream version. The payload encoding is the aggregate repository's concern;
// the store treats it as opaque bytes.
type SnapshotRecord struct {
	AggregateID uuid.UUID
	Version     int
	Payload     []byte
	TakenAt     time.Time
}
