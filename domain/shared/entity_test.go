package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	EntityBase
	Name string
}

func TestEntityEqualityByIdentity(t *testing.T) {
	id := uuid.New()

	a := &testEntity{EntityBase: EntityBase{ID: id}, Name: "a"}
	b := &testEntity{EntityBase: EntityBase{ID: id}, Name: "completely different"}
	c := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}

	assert.True(t, a.Equals(b), "same id means equal, attributes are irrelevant")
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestEntityEqualityRequiresNonEmptyIdentity(t *testing.T) {
	a := &testEntity{}
	b := &testEntity{}

	assert.False(t, a.Equals(b), "two entities without identity are never equal")
}

func TestDomainEventsDrainOnce(t *testing.T) {
	e := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}
	e.AddDomainEvent(NewEntityCreatedEvent("Test", e))
	e.AddDomainEvent(NewEntityUpdatedEvent("Test", e))

	events := e.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventEntityCreated, events[0].EventName())
	assert.Equal(t, EventEntityUpdated, events[1].EventName())

	e.ClearDomainEvents()
	assert.Empty(t, e.DomainEvents())
}

func TestAuditStamps(t *testing.T) {
	e := &testEntity{EntityBase: EntityBase{ID: uuid.New()}}
	now := time.Now().UTC()

	e.MarkCreated(now, "user-1")
	e.MarkModified(now, "user-2")
	e.MarkDeleted()

	assert.Equal(t, "user-1", e.CreatedBy)
	assert.Equal(t, "user-2", e.LastModifiedBy)
	require.NotNil(t, e.LastModifiedAt)
	assert.True(t, e.IsDeleted)
}
