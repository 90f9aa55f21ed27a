package eventstore

import (
	"context"
	"fmt"
	"sync"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// MemoryEventStore keeps streams and snapshots in process memory. It backs
// tests and development setups; events are held as live values, so no codec
// is involved.
type MemoryEventStore struct {
	mu        sync.RWMutex
	streams   map[uuid.UUID][]shared.DomainEvent
	snapshots map[uuid.UUID]shared.SnapshotRecord
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		streams:   make(map[uuid.UUID][]shared.DomainEvent),
		snapshots: make(map[uuid.UUID]shared.SnapshotRecord),
	}
}

// AppendEvents adds events at the end of the stream, rejecting stale writers.
func (s *MemoryEventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, expectedVersion int, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	if len(stream) != expectedVersion {
		return fmt.Errorf("append to %s at version %d, stream is at %d: %w",
			aggregateID, expectedVersion, len(stream), shared.ErrConcurrencyConflict)
	}
	s.streams[aggregateID] = append(stream, events...)
	return nil
}

// EventsSince returns the events after the given version in stream order.
func (s *MemoryEventStore) EventsSince(ctx context.Context, aggregateID uuid.UUID, afterVersion int) ([]shared.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[aggregateID]
	if afterVersion >= len(stream) {
		return nil, nil
	}
	out := make([]shared.DomainEvent, len(stream)-afterVersion)
	copy(out, stream[afterVersion:])
	return out, nil
}

// SaveSnapshot keeps the snapshot when it is newer than the stored one.
func (s *MemoryEventStore) SaveSnapshot(ctx context.Context, snapshot shared.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.snapshots[snapshot.AggregateID]; ok && existing.Version >= snapshot.Version {
		return nil
	}
	s.snapshots[snapshot.AggregateID] = snapshot
	return nil
}

// LatestSnapshot returns the stored snapshot, or nil when there is none.
func (s *MemoryEventStore) LatestSnapshot(ctx context.Context, aggregateID uuid.UUID) (*shared.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[aggregateID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

var _ shared.EventStore = (*MemoryEventStore)(nil)
