package order

import (
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// Apply mutates the order's state for one event. It is the single write path
// of the aggregate: business methods raise events through it and the
// event-sourced repository replays history through it. The type switch over
// the concrete event types replaces any by-name or reflective dispatch; an
// event the switch does not know is a programming error, not data.
func (o *Order) Apply(event shared.DomainEvent) error {
	switch e := event.(type) {
	case CreatedEvent:
		o.ID = e.OrderID
		o.CustomerID = e.CustomerID
		o.Type = e.Type
		o.Status = StatusPending
		o.ExpiresAt = e.ExpiresAt
	case ItemAddedEvent:
		o.LineItems = append(o.LineItems, LineItem{Ticker: e.Ticker, Quantity: e.Quantity, Price: e.Price})
	case OpenedEvent:
		o.Status = StatusOpen
	case FilledEvent:
		o.Status = StatusFilled
	case CancelledEvent:
		o.Status = StatusCancelled
	default:
		return shared.NewRuleError("orders.unknownEvent", "order cannot apply event", event.EventName())
	}
	return nil
}

// raise applies the event and records it as uncommitted. Events raised by
// business methods are always of a known type, so the Apply error is dropped.
func (o *Order) raise(event shared.DomainEvent) {
	_ = o.Apply(event)
	o.AddDomainEvent(event)
}

// StreamVersion is the number of committed events applied to this aggregate.
func (o *Order) StreamVersion() int { return o.streamVersion }

// LoadHistory replays committed events onto the order without re-raising
// them.
func (o *Order) LoadHistory(history []shared.DomainEvent) error {
	for _, event := range history {
		if err := o.Apply(event); err != nil {
			return err
		}
		o.streamVersion++
	}
	return nil
}

// MarkEventsCommitted advances the stream version after n uncommitted events
// were appended to the store.
func (o *Order) MarkEventsCommitted(n int) { o.streamVersion += n }

// Replay rebuilds an order from its full event history.
func Replay(history []shared.DomainEvent) (*Order, error) {
	o := &Order{}
	if err := o.LoadHistory(history); err != nil {
		return nil, err
	}
	return o, nil
}

// Snapshot is the point-in-time state of an event-sourced order. Loading a
// recent snapshot bounds replay to the events recorded after it.
type Snapshot struct {
	AggregateID uuid.UUID  `json:"aggregate_id"`
	Version     int        `json:"version"`
	CustomerID  string     `json:"customer_id"`
	Type        Type       `json:"type"`
	Status      Status     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	LineItems   []LineItem `json:"line_items"`
}

// Snapshot captures the current state at the current stream version.
func (o *Order) Snapshot() Snapshot {
	items := make([]LineItem, len(o.LineItems))
	copy(items, o.LineItems)
	return Snapshot{
		AggregateID: o.ID,
		Version:     o.streamVersion,
		CustomerID:  o.CustomerID,
		Type:        o.Type,
		Status:      o.Status,
		ExpiresAt:   o.ExpiresAt,
		LineItems:   items,
	}
}

// FromSnapshot restores an order to the snapshot's state and version.
func FromSnapshot(s Snapshot) *Order {
	o := &Order{
		CustomerID:    s.CustomerID,
		Type:          s.Type,
		Status:        s.Status,
		ExpiresAt:     s.ExpiresAt,
		LineItems:     s.LineItems,
		streamVersion: s.Version,
	}
	o.ID = s.AggregateID
	return o
}
