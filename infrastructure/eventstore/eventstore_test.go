package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"finmarket/domain/order"
	"finmarket/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eur(amount int64) shared.Money { return shared.NewMoney(amount, "EUR") }

func placedOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.New("customer-1", order.TypeBuy, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, o.AddItem("ASML", 2, eur(70000)))
	require.NoError(t, o.AddItem("SAP", 1, eur(12000)))
	return o
}

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	id := uuid.New()

	events := []shared.DomainEvent{
		order.OpenedEvent{OrderID: id, At: time.Now()},
		order.FilledEvent{OrderID: id, Total: eur(100), At: time.Now()},
	}
	require.NoError(t, store.AppendEvents(ctx, id, 0, events))

	loaded, err := store.EventsSince(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, order.EventOpened, loaded[0].EventName())

	tail, err := store.EventsSince(ctx, id, 1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, order.EventFilled, tail[0].EventName())
}

func TestMemoryStoreRejectsStaleAppend(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	id := uuid.New()

	first := []shared.DomainEvent{order.OpenedEvent{OrderID: id, At: time.Now()}}
	require.NoError(t, store.AppendEvents(ctx, id, 0, first))

	stale := []shared.DomainEvent{order.CancelledEvent{OrderID: id, At: time.Now()}}
	err := store.AppendEvents(ctx, id, 0, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestMemoryStoreUnknownAggregateHasEmptyHistory(t *testing.T) {
	store := NewMemoryEventStore()

	events, err := store.EventsSince(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCodecRoundTripsOrderEvents(t *testing.T) {
	codec := NewCodec(order.EventDecoders())
	original := order.ItemAddedEvent{
		OrderID:  uuid.New(),
		Ticker:   "ASML",
		Quantity: 3,
		Price:    eur(70000),
		At:       time.Now().UTC().Truncate(time.Second),
	}
	payload, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(order.EventItemAdded, payload)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCodecRejectsUnknownEventName(t *testing.T) {
	codec := NewCodec(order.EventDecoders())

	_, err := codec.Decode("order.split", []byte(`{}`))
	assert.ErrorContains(t, err, "no decoder registered")
}

func TestSourcedOrdersRoundTrip(t *testing.T) {
	repo := NewSourcedOrders(NewMemoryEventStore())
	ctx := context.Background()

	o := placedOrder(t)
	require.NoError(t, o.Open(time.Now()))
	require.NoError(t, o.Fill())
	require.NoError(t, repo.Save(ctx, o))
	assert.Empty(t, o.DomainEvents())
	assert.Equal(t, 5, o.StreamVersion())

	loaded, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusFilled, loaded.Status)
	assert.Equal(t, o.CustomerID, loaded.CustomerID)
	assert.Len(t, loaded.LineItems, 2)
	assert.True(t, loaded.TotalValue().Equals(eur(152000)))
	assert.Equal(t, 5, loaded.StreamVersion())
	assert.Empty(t, loaded.DomainEvents())
}

func TestSourcedOrdersSecondWriterLoses(t *testing.T) {
	repo := NewSourcedOrders(NewMemoryEventStore())
	ctx := context.Background()

	o := placedOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	first, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, first.Open(time.Now()))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Cancel())
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	reloaded, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOpen, reloaded.Status)
}

func TestSourcedOrdersUnknownOrderIsNotFound(t *testing.T) {
	repo := NewSourcedOrders(NewMemoryEventStore())

	_, err := repo.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSourcedOrdersCutsAndUsesSnapshot(t *testing.T) {
	store := NewMemoryEventStore()
	repo := NewSourcedOrders(store).WithSnapshotInterval(3)
	ctx := context.Background()

	o := placedOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	record, err := store.LatestSnapshot(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 3, record.Version)

	var snapshot order.Snapshot
	require.NoError(t, json.Unmarshal(record.Payload, &snapshot))
	assert.Equal(t, order.StatusPending, snapshot.Status)
	assert.Len(t, snapshot.LineItems, 2)

	// Later events layer on top of the snapshot on load.
	require.NoError(t, o.Open(time.Now()))
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOpen, loaded.Status)
	assert.Equal(t, 4, loaded.StreamVersion())
}

func TestSourcedOrdersSaveWithoutEventsIsNoop(t *testing.T) {
	store := NewMemoryEventStore()
	repo := NewSourcedOrders(store)
	ctx := context.Background()

	o := placedOrder(t)
	require.NoError(t, repo.Save(ctx, o))
	require.NoError(t, repo.Save(ctx, o))

	history, err := store.EventsSince(ctx, o.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSnapshotFailureDoesNotFailSave(t *testing.T) {
	store := &failingSnapshotStore{MemoryEventStore: NewMemoryEventStore()}
	repo := NewSourcedOrders(store).WithSnapshotInterval(1)
	ctx := context.Background()

	o := placedOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.Load(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.LineItems, 2)
}

type failingSnapshotStore struct {
	*MemoryEventStore
}

func (s *failingSnapshotStore) SaveSnapshot(ctx context.Context, snapshot shared.SnapshotRecord) error {
	return errors.New("snapshot storage offline")
}
