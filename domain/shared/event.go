package shared

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DomainEvent is something that happened in the domain that other parts of the
// system may react to.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	AggregateID() string
}

// EventHandler reacts to a published domain event. Handlers run synchronously
// on the publisher's goroutine; a handler error aborts the remaining dispatch
// for that publish call.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	Name() string
}

// EventDispatcher publishes events to in-process subscribers, awaited.
type EventDispatcher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventName string, handler EventHandler) error
	Unsubscribe(eventName string, handler EventHandler) error
}

// ValidateEvent rejects events that would be undeliverable or unloggable.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}
	return nil
}

// EventBus is the in-process EventDispatcher. Handlers for an event name run
// in subscription order; the first error stops the sequence and propagates to
// the publisher. Subscription is synchronized, so the bus can be shared.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

// Publish delivers the event to every subscriber of its name, one at a time,
// awaiting each before the next. No subscribers is not an error.
func (bus *EventBus) Publish(ctx context.Context, event DomainEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	bus.mu.RLock()
	handlers := bus.handlers[event.EventName()]
	bus.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("event %s: handler %s: %w", event.EventName(), handler.Name(), err)
		}
	}
	return nil
}

// Subscribe registers a handler for an event name. A handler name may be
// registered only once per event.
func (bus *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, h := range bus.handlers[eventName] {
		if h.Name() == handler.Name() {
			return fmt.Errorf("handler %s already subscribed to %s", handler.Name(), eventName)
		}
	}
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	return nil
}

// Unsubscribe removes a handler by name. Removing an unknown handler is a no-op.
func (bus *EventBus) Unsubscribe(eventName string, handler EventHandler) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	handlers := bus.handlers[eventName]
	for i, h := range handlers {
		if h.Name() == handler.Name() {
			bus.handlers[eventName] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ EventDispatcher = (*EventBus)(nil)

// FuncHandler adapts a plain function to EventHandler.
type FuncHandler struct {
	name string
	fn   func(context.Context, DomainEvent) error
}

// NewFuncHandler creates a named function handler.
func NewFuncHandler(name string, fn func(context.Context, DomainEvent) error) *FuncHandler {
	if name == "" {
		name = fmt.Sprintf("func-handler-%d", time.Now().UnixNano())
	}
	return &FuncHandler{name: name, fn: fn}
}

func (h *FuncHandler) Handle(ctx context.Context, event DomainEvent) error {
	return h.fn(ctx, event)
}

func (h *FuncHandler) Name() string { return h.name }
