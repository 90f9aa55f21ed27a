package persistence

import (
	"context"
	"fmt"
	"reflect"

	"finmarket/domain/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRepository is the generic GORM-backed repository. One instance serves
// one entity type; the entity name is fixed at construction and used for
// tracking, caching and audit attribution.
//
// Reads register the loaded entities as clean with the change tracker and
// filter out soft-deleted rows. Writes only register intent; nothing touches
// the database until the unit of work completes.
type GormRepository[T shared.Entity] struct {
	db         *gorm.DB
	entityName string
	tracker    *ChangeTracker
}

// NewGormRepository creates a repository for one entity type sharing the
// given change tracker with its unit of work.
func NewGormRepository[T shared.Entity](db *gorm.DB, entityName string, tracker *ChangeTracker) *GormRepository[T] {
	return &GormRepository[T]{db: db, entityName: entityName, tracker: tracker}
}

// EntityName returns the registry name this repository serves.
func (r *GormRepository[T]) EntityName() string { return r.entityName }

// getDB returns the transaction from context if available, otherwise the
// default db
func (r *GormRepository[T]) getDB(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// model returns a fresh instance for GORM schema parsing.
func (r *GormRepository[T]) model() any {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Pointer {
		return reflect.New(typ.Elem()).Interface()
	}
	return zero
}

// GetByID loads one entity by primary key. Soft-deleted rows count as absent.
func (r *GormRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	var matches []T
	err := r.getDB(ctx).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return zero, fmt.Errorf("get %s by id: %w", r.entityName, err)
	}
	if len(matches) == 0 {
		return zero, shared.NewNotFoundError(r.entityName)
	}
	if err := r.tracker.TrackLoaded(r.entityName, matches[0]); err != nil {
		return zero, err
	}
	return matches[0], nil
}

// GetBySpec loads the first entity matching the specification.
func (r *GormRepository[T]) GetBySpec(ctx context.Context, spec *shared.Specification) (T, error) {
	var zero T
	var matches []T
	db := ApplySpecification(r.getDB(ctx), spec)
	err := db.Where("is_deleted = ?", false).Limit(1).Find(&matches).Error
	if err != nil {
		return zero, fmt.Errorf("get %s by spec: %w", r.entityName, err)
	}
	if len(matches) == 0 {
		return zero, shared.NewNotFoundError(r.entityName)
	}
	if err := r.tracker.TrackLoaded(r.entityName, matches[0]); err != nil {
		return zero, err
	}
	return matches[0], nil
}

// ListAll loads every live entity of the type.
func (r *GormRepository[T]) ListAll(ctx context.Context) ([]T, error) {
	return r.List(ctx, nil)
}

// List loads the entities matching the specification.
func (r *GormRepository[T]) List(ctx context.Context, spec *shared.Specification) ([]T, error) {
	var matches []T
	db := ApplySpecification(r.getDB(ctx), spec)
	if err := db.Where("is_deleted = ?", false).Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	for _, entity := range matches {
		if err := r.tracker.TrackLoaded(r.entityName, entity); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// Count returns the number of live entities matching the specification.
func (r *GormRepository[T]) Count(ctx context.Context, spec *shared.Specification) (int64, error) {
	var count int64
	db := ApplySpecification(r.getDB(ctx).Model(r.model()), spec)
	if err := db.Where("is_deleted = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.entityName, err)
	}
	return count, nil
}

// Add registers a new entity for insertion on the next commit.
func (r *GormRepository[T]) Add(ctx context.Context, entity T) error {
	if entity.GetID() == uuid.Nil {
		return fmt.Errorf("add %s: %w: entity has no id", r.entityName, shared.ErrInvalidInput)
	}
	r.tracker.TrackAdded(r.entityName, entity)
	return nil
}

// Update registers a loaded entity for update on the next commit.
func (r *GormRepository[T]) Update(ctx context.Context, entity T) error {
	if entity.GetID() == uuid.Nil {
		return fmt.Errorf("update %s: %w: entity has no id", r.entityName, shared.ErrInvalidInput)
	}
	r.tracker.TrackModified(r.entityName, entity)
	return nil
}

// Remove registers an entity for soft deletion on the next commit.
func (r *GormRepository[T]) Remove(ctx context.Context, entity T) error {
	if entity.GetID() == uuid.Nil {
		return fmt.Errorf("remove %s: %w: entity has no id", r.entityName, shared.ErrInvalidInput)
	}
	r.tracker.TrackRemoved(r.entityName, entity)
	return nil
}
