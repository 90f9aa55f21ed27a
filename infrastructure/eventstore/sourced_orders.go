package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finmarket/domain/order"
	"finmarket/domain/shared"
	"finmarket/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSnapshotInterval = 20

// SourcedOrders persists Order aggregates as event streams. Load replays the
// history, starting from the latest snapshot when one exists; Save appends
// the uncommitted events at the loaded version and cuts a new snapshot every
// snapshotInterval events.
type SourcedOrders struct {
	store            shared.EventStore
	snapshotInterval int
}

func NewSourcedOrders(store shared.EventStore) *SourcedOrders {
	return &SourcedOrders{store: store, snapshotInterval: defaultSnapshotInterval}
}

// WithSnapshotInterval overrides how many events may accumulate before a new
// snapshot is cut. Zero disables snapshots.
func (r *SourcedOrders) WithSnapshotInterval(n int) *SourcedOrders {
	r.snapshotInterval = n
	return r
}

// Load rebuilds the order from its snapshot and subsequent events.
func (r *SourcedOrders) Load(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	record, err := r.store.LatestSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	afterVersion := 0
	if record != nil {
		var snapshot order.Snapshot
		if err := json.Unmarshal(record.Payload, &snapshot); err != nil {
			return nil, fmt.Errorf("decode order snapshot %s: %w", id, err)
		}
		o = order.FromSnapshot(snapshot)
		afterVersion = snapshot.Version
	}

	history, err := r.store.EventsSince(ctx, id, afterVersion)
	if err != nil {
		return nil, err
	}
	if o == nil {
		if len(history) == 0 {
			return nil, shared.NewNotFoundError(order.EntityName)
		}
		return order.Replay(history)
	}
	if err := o.LoadHistory(history); err != nil {
		return nil, err
	}
	return o, nil
}

// Save appends the order's uncommitted events at its loaded stream version. A
// concurrent writer who appended first wins; the caller gets
// ErrConcurrencyConflict and must reload. A snapshot failure is logged, never
// surfaced: the stream alone is authoritative.
func (r *SourcedOrders) Save(ctx context.Context, o *order.Order) error {
	events := o.DomainEvents()
	if len(events) == 0 {
		return nil
	}

	expected := o.StreamVersion()
	if err := r.store.AppendEvents(ctx, o.ID, expected, events); err != nil {
		return err
	}
	o.ClearDomainEvents()
	o.MarkEventsCommitted(len(events))

	if r.snapshotInterval > 0 && o.StreamVersion()/r.snapshotInterval > expected/r.snapshotInterval {
		if err := r.saveSnapshot(ctx, o); err != nil {
			logger.Warn("order snapshot skipped",
				zap.String("order_id", o.ID.String()),
				zap.Int("version", o.StreamVersion()),
				zap.Error(err))
		}
	}
	return nil
}

func (r *SourcedOrders) saveSnapshot(ctx context.Context, o *order.Order) error {
	payload, err := json.Marshal(o.Snapshot())
	if err != nil {
		return err
	}
	return r.store.SaveSnapshot(ctx, shared.SnapshotRecord{
		AggregateID: o.ID,
		Version:     o.StreamVersion(),
		Payload:     payload,
		TakenAt:     time.Now().UTC(),
	})
}
