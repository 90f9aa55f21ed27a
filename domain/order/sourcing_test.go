package order

import (
	"errors"
	"testing"
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayRebuildsStateFromHistory(t *testing.T) {
	id := uuid.New()
	at := time.Now().UTC()
	history := []shared.DomainEvent{
		CreatedEvent{OrderID: id, CustomerID: "customer-1", Type: TypeBuy, ExpiresAt: at.Add(time.Hour), At: at},
		ItemAddedEvent{OrderID: id, Ticker: "ASML", Quantity: 2, Price: eur(70000), At: at},
		OpenedEvent{OrderID: id, At: at},
		FilledEvent{OrderID: id, Total: eur(140000), At: at},
	}

	o, err := Replay(history)
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, "customer-1", o.CustomerID)
	assert.Equal(t, StatusFilled, o.Status)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, 4, o.StreamVersion())
	assert.Empty(t, o.DomainEvents(), "replayed events are committed, not pending")
}

func TestApplyRejectsUnknownEvent(t *testing.T) {
	o := &Order{}
	err := o.Apply(foreignEvent{})

	var ruleErr *shared.DomainError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "orders.unknownEvent", ruleErr.Code)
}

func TestBusinessMethodsGoThroughApply(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 1, eur(100)))

	// The raised events replay to the same state.
	rebuilt, err := Replay(o.DomainEvents())
	require.NoError(t, err)
	assert.Equal(t, o.ID, rebuilt.ID)
	assert.Equal(t, o.Status, rebuilt.Status)
	assert.Equal(t, o.LineItems, rebuilt.LineItems)
}

func TestSnapshotRoundTrip(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem("ASML", 2, eur(50)))
	require.NoError(t, o.Open(time.Now()))
	o.ClearDomainEvents()
	o.MarkEventsCommitted(3)

	restored := FromSnapshot(o.Snapshot())

	assert.Equal(t, o.ID, restored.ID)
	assert.Equal(t, o.CustomerID, restored.CustomerID)
	assert.Equal(t, StatusOpen, restored.Status)
	assert.Equal(t, o.LineItems, restored.LineItems)
	assert.Equal(t, 3, restored.StreamVersion())
}

type foreignEvent struct{}

func (foreignEvent) EventName() string     { return "exchange.opened" }
func (foreignEvent) OccurredOn() time.Time { return time.Now() }
func (foreignEvent) AggregateID() string   { return "" }
