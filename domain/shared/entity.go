package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is any persisted domain object. Identity decides equality; audit
// stamps, the optimistic-concurrency version and the soft-delete flag are
// maintained by the unit of work, never by business code.
type Entity interface {
	GetID() uuid.UUID
	EntityVersion() int
	SetVersion(v int)
	MarkCreated(at time.Time, by string)
	MarkModified(at time.Time, by string)
	MarkDeleted()

	AddDomainEvent(event DomainEvent)
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// AggregateRoot marks an entity that is the consistency boundary for a cluster
// of related objects. All modifications go through its methods. The interface
// is structural only; the discipline is enforced by keeping child objects
// reachable exclusively through the root.
type AggregateRoot interface {
	Entity
}

// EntityBase is embedded by every entity. Fields are exported so the generic
// repository, the audit snapshotter and the cache codec can round-trip them;
// mutation still belongs to aggregate methods and the unit of work.
type EntityBase struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	CreatedBy      string     `json:"created_by"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	LastModifiedBy string     `json:"last_modified_by,omitempty"`
	Version        int        `json:"version"`
	IsDeleted      bool       `json:"is_deleted"`

	// Pending domain events. Raised by business logic or by the unit of work,
	// drained and cleared exactly once when the unit of work dispatches them.
	domainEvents []DomainEvent `gorm:"-" json:"-"`
}

// GetID returns the entity identity.
func (e *EntityBase) GetID() uuid.UUID { return e.ID }

// EntityVersion returns the optimistic-concurrency version.
func (e *EntityBase) EntityVersion() int { return e.Version }

// SetVersion sets the optimistic-concurrency version.
func (e *EntityBase) SetVersion(v int) { e.Version = v }

// MarkCreated stamps the creation audit fields.
func (e *EntityBase) MarkCreated(at time.Time, by string) {
	e.CreatedAt = at
	e.CreatedBy = by
}

// MarkModified stamps the modification audit fields.
func (e *EntityBase) MarkModified(at time.Time, by string) {
	e.LastModifiedAt = &at
	e.LastModifiedBy = by
}

// MarkDeleted raises the soft-delete flag.
func (e *EntityBase) MarkDeleted() { e.IsDeleted = true }

// AddDomainEvent appends an event to the pending list. Exported so the unit of
// work can attach cross-cutting change events alongside business events.
func (e *EntityBase) AddDomainEvent(event DomainEvent) {
	e.domainEvents = append(e.domainEvents, event)
}

// DomainEvents returns the pending events in the order they were raised.
func (e *EntityBase) DomainEvents() []DomainEvent {
	return e.domainEvents
}

// ClearDomainEvents drops the pending list. Called by the unit of work after
// it has read the events for dispatch.
func (e *EntityBase) ClearDomainEvents() { e.domainEvents = nil }

// Equals reports identity equality: two entities are equal iff both IDs are
// non-nil and identical. Attribute equality is irrelevant for entities.
func (e *EntityBase) Equals(other Entity) bool {
	if other == nil {
		return false
	}
	if e.ID == uuid.Nil || other.GetID() == uuid.Nil {
		return false
	}
	return e.ID == other.GetID()
}
