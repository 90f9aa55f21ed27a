package order

import (
	"encoding/json"
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// Event names of the order stream.
const (
	EventCreated   = "order.created"
	EventItemAdded = "order.itemAdded"
	EventOpened    = "order.opened"
	EventFilled    = "order.filled"
	EventCancelled = "order.cancelled"
)

// The order events are plain value types with exported fields: they are both
// the in-process domain events and the persisted stream records, so they must
// survive a JSON round trip and carry everything replay needs.

// CreatedEvent records that a new order entered the system.
type CreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Type       Type      `json:"type"`
	ExpiresAt  time.Time `json:"expires_at"`
	At         time.Time `json:"at"`
}

func (e CreatedEvent) EventName() string     { return EventCreated }
func (e CreatedEvent) OccurredOn() time.Time { return e.At }
func (e CreatedEvent) AggregateID() string   { return e.OrderID.String() }

// ItemAddedEvent records a new position on the order.
type ItemAddedEvent struct {
	OrderID  uuid.UUID    `json:"order_id"`
	Ticker   string       `json:"ticker"`
	Quantity int          `json:"quantity"`
	Price    shared.Money `json:"price"`
	At       time.Time    `json:"at"`
}

func (e ItemAddedEvent) EventName() string     { return EventItemAdded }
func (e ItemAddedEvent) OccurredOn() time.Time { return e.At }
func (e ItemAddedEvent) AggregateID() string   { return e.OrderID.String() }

// OpenedEvent records that a pending order reached the open book.
type OpenedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	At      time.Time `json:"at"`
}

func (e OpenedEvent) EventName() string     { return EventOpened }
func (e OpenedEvent) OccurredOn() time.Time { return e.At }
func (e OpenedEvent) AggregateID() string   { return e.OrderID.String() }

// FilledEvent records that an open order was executed in full.
type FilledEvent struct {
	OrderID uuid.UUID    `json:"order_id"`
	Total   shared.Money `json:"total"`
	At      time.Time    `json:"at"`
}

func (e FilledEvent) EventName() string     { return EventFilled }
func (e FilledEvent) OccurredOn() time.Time { return e.At }
func (e FilledEvent) AggregateID() string   { return e.OrderID.String() }

// CancelledEvent records the withdrawal of an unfilled order.
type CancelledEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	At      time.Time `json:"at"`
}

func (e CancelledEvent) EventName() string     { return EventCancelled }
func (e CancelledEvent) OccurredOn() time.Time { return e.At }
func (e CancelledEvent) AggregateID() string   { return e.OrderID.String() }

// EventDecoders maps every order event name to its JSON decoder. An event
// store feeds its codec from this map; adding an event type here is the whole
// registration.
func EventDecoders() map[string]func([]byte) (shared.DomainEvent, error) {
	return map[string]func([]byte) (shared.DomainEvent, error){
		EventCreated:   decodeAs[CreatedEvent],
		EventItemAdded: decodeAs[ItemAddedEvent],
		EventOpened:    decodeAs[OpenedEvent],
		EventFilled:    decodeAs[FilledEvent],
		EventCancelled: decodeAs[CancelledEvent],
	}
}

func decodeAs[E shared.DomainEvent](payload []byte) (shared.DomainEvent, error) {
	var event E
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
