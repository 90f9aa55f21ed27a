/*
Package order holds the trading-order aggregate of the sample application.

Order is an aggregate root: line items are reachable only through it, state
transitions go through explicit methods, and every business rule lives here.
The status machine is Pending -> Open -> Filled, with Cancelled reachable from
Pending and Open.

Every state change is expressed as a domain event. Business methods validate,
then raise the event; the Apply type switch is the only code that mutates
state. The same events drive both persistence styles: the relational
repository dispatches them after commit, the event-sourced repository appends
them as the stream and replays them on load.
*/
package order

import (
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// EntityName is the registry name used for cache policies and audit entries.
const EntityName = "Order"

// Type is the side of a trading order.
type Type string

const (
	TypeBuy  Type = "BUY"
	TypeSell Type = "SELL"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOpen      Status = "OPEN"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
)

// LineItem is one position of an order. It has no identity of its own; it is
// part of the aggregate and compared by value.
type LineItem struct {
	Ticker   string       `json:"ticker"`
	Quantity int          `json:"quantity"`
	Price    shared.Money `json:"price"`
}

// Order is the trading-order aggregate root.
type Order struct {
	shared.EntityBase
	CustomerID string     `json:"customer_id"`
	Type       Type       `json:"type"`
	Status     Status     `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LineItems  []LineItem `gorm:"serializer:json" json:"line_items"`

	// streamVersion counts the committed events of this aggregate's stream.
	// Zero for orders loaded relationally; the event-sourced repository uses
	// it as the expected version on append.
	streamVersion int
}

// New creates a pending order. This is the only way to construct one.
func New(customerID string, orderType Type, expiresAt time.Time) (*Order, error) {
	if customerID == "" {
		return nil, shared.NewRuleError("orders.customerRequired", "an order needs a customer")
	}
	if orderType != TypeBuy && orderType != TypeSell {
		return nil, shared.NewRuleError("orders.invalidType", "unknown order type", string(orderType))
	}

	o := &Order{}
	o.raise(CreatedEvent{
		OrderID:    uuid.New(),
		CustomerID: customerID,
		Type:       orderType,
		ExpiresAt:  expiresAt,
		At:         time.Now().UTC(),
	})
	return o, nil
}

// AddItem appends a position. Closed orders cannot be modified and a ticker
// may appear only once per order.
func (o *Order) AddItem(ticker string, quantity int, price shared.Money) error {
	if o.isClosed() {
		return shared.NewRuleError("orders.cannotModifyWhenClosed", "order is closed", string(o.Status))
	}
	if quantity <= 0 {
		return shared.NewRuleError("orders.invalidQuantity", "quantity must be positive", quantity)
	}
	for _, item := range o.LineItems {
		if item.Ticker == ticker {
			return shared.NewRuleError("orders.itemAlreadyExists", "ticker already in order", ticker)
		}
	}
	o.raise(ItemAddedEvent{OrderID: o.ID, Ticker: ticker, Quantity: quantity, Price: price, At: time.Now().UTC()})
	return nil
}

// Open moves a pending order to the open book. An order without items or past
// its expiration cannot be opened.
func (o *Order) Open(now time.Time) error {
	if o.Status != StatusPending {
		return shared.NewRuleError("orders.cannotOpen", "only pending orders can be opened", string(o.Status))
	}
	if len(o.LineItems) == 0 {
		return shared.NewRuleError("orders.emptyOrder", "an order needs at least one line item")
	}
	if !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt) {
		return shared.NewRuleError("orders.expired", "order expired before opening")
	}
	o.raise(OpenedEvent{OrderID: o.ID, At: time.Now().UTC()})
	return nil
}

// Fill marks an open order as executed.
func (o *Order) Fill() error {
	if o.Status != StatusOpen {
		return shared.NewRuleError("orders.cannotBeFilled", "only open orders can be filled", string(o.Status))
	}
	o.raise(FilledEvent{OrderID: o.ID, Total: o.TotalValue(), At: time.Now().UTC()})
	return nil
}

// Cancel withdraws an order that has not been filled yet.
func (o *Order) Cancel() error {
	if o.Status == StatusFilled {
		return shared.NewRuleError("orders.cannotCancelFilled", "filled orders cannot be cancelled")
	}
	o.raise(CancelledEvent{OrderID: o.ID, At: time.Now().UTC()})
	return nil
}

// TotalValue sums quantity times price over all line items. Sample orders are
// single-currency (EUR).
func (o *Order) TotalValue() shared.Money {
	total := shared.NewMoney(0, "EUR")
	for _, item := range o.LineItems {
		line, err := item.Price.Multiply(item.Quantity)
		if err != nil {
			continue
		}
		total, _ = total.Add(line)
	}
	return total
}

func (o *Order) isClosed() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}

var _ shared.AggregateRoot = (*Order)(nil)
