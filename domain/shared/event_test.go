package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string

	for _, name := range []string{"first", "second", "third"} {
		name := name
		require.NoError(t, bus.Subscribe(EventEntityCreated, NewFuncHandler(name,
			func(ctx context.Context, e DomainEvent) error {
				order = append(order, name)
				return nil
			})))
	}

	e := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}
	require.NoError(t, bus.Publish(context.Background(), NewEntityCreatedEvent("Test", e)))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEventBusHandlerErrorAbortsDispatch(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("subscriber failed")
	reached := false

	require.NoError(t, bus.Subscribe(EventEntityUpdated, NewFuncHandler("failing",
		func(ctx context.Context, e DomainEvent) error { return boom })))
	require.NoError(t, bus.Subscribe(EventEntityUpdated, NewFuncHandler("later",
		func(ctx context.Context, e DomainEvent) error { reached = true; return nil })))

	e := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}
	err := bus.Publish(context.Background(), NewEntityUpdatedEvent("Test", e))

	require.ErrorIs(t, err, boom)
	assert.False(t, reached, "dispatch must stop at the first failing handler")
}

func TestEventBusNoSubscribersIsNotAnError(t *testing.T) {
	bus := NewEventBus()
	e := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}

	assert.NoError(t, bus.Publish(context.Background(), NewEntityDeletedEvent("Test", e)))
}

func TestEventBusRejectsDuplicateHandlerNames(t *testing.T) {
	bus := NewEventBus()
	h := NewFuncHandler("dup", func(ctx context.Context, e DomainEvent) error { return nil })

	require.NoError(t, bus.Subscribe(EventEntityCreated, h))
	assert.Error(t, bus.Subscribe(EventEntityCreated, h))
}

func TestValidateEventRejectsNil(t *testing.T) {
	assert.Error(t, ValidateEvent(nil))
}
