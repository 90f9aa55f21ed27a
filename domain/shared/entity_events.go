package shared

import "time"

// Names of the generic entity-change events raised by the unit of work for
// every tracked entity of a cacheable type. Business code never raises these;
// they exist for cross-cutting subscribers such as cache invalidation.
const (
	EventEntityCreated = "entity.created"
	EventEntityUpdated = "entity.updated"
	EventEntityDeleted = "entity.deleted"
)

// EntityChangeEvent is the common shape of the created/updated/deleted events.
// EntityName carries the registry name of the entity's type so subscribers can
// consult the cache-policy registry without reflection.
type EntityChangeEvent struct {
	name       string
	EntityName string
	Entity     Entity
	occurredOn time.Time
}

func newEntityChangeEvent(name, entityName string, entity Entity) EntityChangeEvent {
	return EntityChangeEvent{
		name:       name,
		EntityName: entityName,
		Entity:     entity,
		occurredOn: time.Now().UTC(),
	}
}

func (e EntityChangeEvent) EventName() string     { return e.name }
func (e EntityChangeEvent) OccurredOn() time.Time { return e.occurredOn }
func (e EntityChangeEvent) AggregateID() string   { return e.Entity.GetID().String() }

// NewEntityCreatedEvent reports that the entity was inserted.
func NewEntityCreatedEvent(entityName string, entity Entity) EntityChangeEvent {
	return newEntityChangeEvent(EventEntityCreated, entityName, entity)
}

// NewEntityUpdatedEvent reports that the entity was modified.
func NewEntityUpdatedEvent(entityName string, entity Entity) EntityChangeEvent {
	return newEntityChangeEvent(EventEntityUpdated, entityName, entity)
}

// NewEntityDeletedEvent reports that the entity was removed.
func NewEntityDeletedEvent(entityName string, entity Entity) EntityChangeEvent {
	return newEntityChangeEvent(EventEntityDeleted, entityName, entity)
}
