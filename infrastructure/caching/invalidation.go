package caching

import (
	"context"
	"fmt"

	"finmarket/domain/shared"
	"finmarket/pkg/logger"

	"go.uber.org/zap"
)

// InvalidationHandler evicts cache entries when the unit of work reports a
// committed change to a cacheable entity. It removes the entity's point key
// and the type's list version token; every derived list key dies with the
// token.
type InvalidationHandler struct {
	cache Cache
}

func NewInvalidationHandler(cache Cache) *InvalidationHandler {
	return &InvalidationHandler{cache: cache}
}

func (h *InvalidationHandler) Name() string { return "cache-invalidation" }

func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	change, ok := event.(shared.EntityChangeEvent)
	if !ok {
		return fmt.Errorf("cache invalidation: unexpected event type %T", event)
	}

	keys := NewKeyBuilder(change.EntityName, h.cache)
	entityKey := keys.EntityKey(change.Entity.GetID())

	if err := h.cache.Remove(ctx, entityKey); err != nil {
		return fmt.Errorf("evict %s: %w", entityKey, err)
	}
	if err := keys.InvalidateLists(ctx); err != nil {
		return fmt.Errorf("evict lists of %s: %w", change.EntityName, err)
	}

	logger.Debug("cache invalidated",
		zap.String("entity", change.EntityName),
		zap.String("id", change.Entity.GetID().String()),
		zap.String("event", event.EventName()))
	return nil
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)

// RegisterInvalidation subscribes the handler to all three entity-change
// events on the dispatcher.
func RegisterInvalidation(dispatcher shared.EventDispatcher, cache Cache) error {
	handler := NewInvalidationHandler(cache)
	for _, name := range []string{shared.EventEntityCreated, shared.EventEntityUpdated, shared.EventEntityDeleted} {
		if err := dispatcher.Subscribe(name, handler); err != nil {
			return err
		}
	}
	return nil
}
