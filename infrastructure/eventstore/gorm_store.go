package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finmarket/domain/shared"
	"finmarket/infrastructure/persistence"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eventRecord is one committed event of a stream. The composite primary key
// doubles as the optimistic-concurrency guard: a stale append collides on
// (aggregate_id, version) and fails without writing.
type eventRecord struct {
	AggregateID uuid.UUID `gorm:"type:char(36);primaryKey"`
	Version     int       `gorm:"primaryKey"`
	Name        string    `gorm:"size:128"`
	Payload     string    `gorm:"type:json"`
	RecordedAt  time.Time
}

func (eventRecord) TableName() string { return "event_streams" }

type snapshotRecord struct {
	AggregateID uuid.UUID `gorm:"type:char(36);primaryKey"`
	Version     int       `gorm:"primaryKey"`
	Payload     string    `gorm:"type:json"`
	TakenAt     time.Time
}

func (snapshotRecord) TableName() string { return "event_snapshots" }

// Migrations returns the models the store needs migrated.
func Migrations() []any {
	return []any{&eventRecord{}, &snapshotRecord{}}
}

// GormEventStore persists event streams and snapshots in two relational
// tables. Events are stored as JSON under their event name and decoded back
// through the codec on load.
type GormEventStore struct {
	db    *gorm.DB
	codec *Codec
}

func NewGormEventStore(db *gorm.DB, codec *Codec) *GormEventStore {
	return &GormEventStore{db: db, codec: codec}
}

func (s *GormEventStore) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// AppendEvents writes the batch in one transaction. A primary-key collision
// means another writer appended first and maps to ErrConcurrencyConflict.
func (s *GormEventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, expectedVersion int, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]eventRecord, len(events))
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("event store: encode %s: %w", event.EventName(), err)
		}
		records[i] = eventRecord{
			AggregateID: aggregateID,
			Version:     expectedVersion + i + 1,
			Name:        event.EventName(),
			Payload:     string(payload),
			RecordedAt:  event.OccurredOn(),
		}
	}

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("append to %s at version %d: %w",
				aggregateID, expectedVersion, shared.ErrConcurrencyConflict)
		}
		return fmt.Errorf("event store: append to %s: %w", aggregateID, err)
	}
	return nil
}

// EventsSince loads and decodes the events after the given version.
func (s *GormEventStore) EventsSince(ctx context.Context, aggregateID uuid.UUID, afterVersion int) ([]shared.DomainEvent, error) {
	var records []eventRecord
	err := s.getDB(ctx).
		Where("aggregate_id = ? AND version > ?", aggregateID, afterVersion).
		Order("version").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("event store: load %s: %w", aggregateID, err)
	}

	events := make([]shared.DomainEvent, len(records))
	for i, record := range records {
		event, err := s.codec.Decode(record.Name, []byte(record.Payload))
		if err != nil {
			return nil, err
		}
		events[i] = event
	}
	return events, nil
}

// SaveSnapshot stores the snapshot; saving the same version twice is a no-op.
func (s *GormEventStore) SaveSnapshot(ctx context.Context, snapshot shared.SnapshotRecord) error {
	record := snapshotRecord{
		AggregateID: snapshot.AggregateID,
		Version:     snapshot.Version,
		Payload:     string(snapshot.Payload),
		TakenAt:     snapshot.TakenAt,
	}
	err := s.getDB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("event store: snapshot %s@%d: %w", snapshot.AggregateID, snapshot.Version, err)
	}
	return nil
}

// LatestSnapshot returns the highest-version snapshot, or nil when there is
// none.
func (s *GormEventStore) LatestSnapshot(ctx context.Context, aggregateID uuid.UUID) (*shared.SnapshotRecord, error) {
	var records []snapshotRecord
	err := s.getDB(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("version DESC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("event store: snapshot for %s: %w", aggregateID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	record := records[0]
	return &shared.SnapshotRecord{
		AggregateID: record.AggregateID,
		Version:     record.Version,
		Payload:     []byte(record.Payload),
		TakenAt:     record.TakenAt,
	}, nil
}

var _ shared.EventStore = (*GormEventStore)(nil)
