package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the generic persistence contract for one aggregate type.
// Implementations register every load and every mutation with the scope's
// change tracker; actual persistence happens only when the unit of work
// commits.
//
// The same interface is served with or without the caching decorator, so
// callers cannot tell whether a read hit the cache or the database.
type Repository[T Entity] interface {
	// GetByID returns the entity with the given identity or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (T, error)

	// GetBySpec returns the first entity matching the specification or
	// ErrNotFound.
	GetBySpec(ctx context.Context, spec *Specification) (T, error)

	// ListAll returns every non-deleted entity of the type.
	ListAll(ctx context.Context) ([]T, error)

	// List returns the entities matching the specification.
	List(ctx context.Context, spec *Specification) ([]T, error)

	// Count returns the number of entities matching the specification.
	Count(ctx context.Context, spec *Specification) (int64, error)

	// Add registers a new entity for insertion at commit.
	Add(ctx context.Context, entity T) error

	// Update registers a loaded entity as modified.
	Update(ctx context.Context, entity T) error

	// Remove registers a loaded entity for (soft) deletion at commit.
	Remove(ctx context.Context, entity T) error
}
