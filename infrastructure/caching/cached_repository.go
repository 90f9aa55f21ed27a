package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finmarket/domain/shared"
	"finmarket/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachedRepository decorates a repository with read-through caching. Point
// reads (GetByID) and list reads (List, ListAll) are cached under the keys the
// KeyBuilder derives; GetBySpec falls back to the method-name key; Count and
// all writes pass straight through. Which types are cached at all is decided
// by the policy registry at composition time, not here.
//
// Cache failures propagate to the caller unless fallback is enabled, in which
// case the read is served from the database and the failure logged.
type CachedRepository[T shared.Entity] struct {
	inner    shared.Repository[T]
	cache    Cache
	policy   shared.CachePolicy
	keys     *KeyBuilder
	fallback bool
}

// NewCachedRepository wraps inner with the given policy.
func NewCachedRepository[T shared.Entity](inner shared.Repository[T], cache Cache, policy shared.CachePolicy) *CachedRepository[T] {
	return &CachedRepository[T]{
		inner:  inner,
		cache:  cache,
		policy: policy,
		keys:   NewKeyBuilder(policy.EntityName, cache),
	}
}

// WithFallbackOnError makes cache failures degrade to database reads instead
// of surfacing.
func (r *CachedRepository[T]) WithFallbackOnError() *CachedRepository[T] {
	r.fallback = true
	return r
}

// GetByID serves the point read from cache when possible.
func (r *CachedRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	key := r.keys.EntityKey(id)

	data, err := r.cacheGet(ctx, key)
	if err != nil {
		return zero, err
	}
	if data != nil {
		var entity T
		if uerr := json.Unmarshal(data, &entity); uerr == nil {
			RecordAccess(ctx, key, DataSourceCache)
			return entity, nil
		}
		logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	entity, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	RecordAccess(ctx, key, DataSourceDatabase)
	if err := r.cacheSet(ctx, key, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// GetBySpec is cached under the fallback method key: the read is cacheable
// but keys on neither identity nor the list version.
func (r *CachedRepository[T]) GetBySpec(ctx context.Context, spec *shared.Specification) (T, error) {
	var zero T
	key := r.keys.OtherKey("GetBySpec")

	data, err := r.cacheGet(ctx, key)
	if err != nil {
		return zero, err
	}
	if data != nil {
		var entity T
		if uerr := json.Unmarshal(data, &entity); uerr == nil {
			RecordAccess(ctx, key, DataSourceCache)
			return entity, nil
		}
		logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	entity, err := r.inner.GetBySpec(ctx, spec)
	if err != nil {
		return zero, err
	}
	RecordAccess(ctx, key, DataSourceDatabase)
	if err := r.cacheSet(ctx, key, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// ListAll serves the unfiltered list read through the cache.
func (r *CachedRepository[T]) ListAll(ctx context.Context) ([]T, error) {
	return r.list(ctx, nil, func(ctx context.Context) ([]T, error) {
		return r.inner.ListAll(ctx)
	})
}

// List serves a filtered list read through the cache.
func (r *CachedRepository[T]) List(ctx context.Context, spec *shared.Specification) ([]T, error) {
	return r.list(ctx, spec, func(ctx context.Context) ([]T, error) {
		return r.inner.List(ctx, spec)
	})
}

func (r *CachedRepository[T]) list(ctx context.Context, spec *shared.Specification, load func(context.Context) ([]T, error)) ([]T, error) {
	key, err := r.keys.ListKey(ctx, spec)
	if err != nil {
		if !r.fallback {
			return nil, err
		}
		logger.Warn("cache unavailable, serving list from database", zap.Error(err))
		return load(ctx)
	}

	data, err := r.cacheGet(ctx, key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var entities []T
		if uerr := json.Unmarshal(data, &entities); uerr == nil {
			RecordAccess(ctx, key, DataSourceCache)
			return entities, nil
		}
		logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	entities, err := load(ctx)
	if err != nil {
		return nil, err
	}
	RecordAccess(ctx, key, DataSourceDatabase)
	if err := r.cacheSet(ctx, key, entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// Count is never cached; counts are cheap and staleness is confusing.
func (r *CachedRepository[T]) Count(ctx context.Context, spec *shared.Specification) (int64, error) {
	return r.inner.Count(ctx, spec)
}

// Add passes through; invalidation happens through the entity-change events.
func (r *CachedRepository[T]) Add(ctx context.Context, entity T) error {
	return r.inner.Add(ctx, entity)
}

func (r *CachedRepository[T]) Update(ctx context.Context, entity T) error {
	return r.inner.Update(ctx, entity)
}

func (r *CachedRepository[T]) Remove(ctx context.Context, entity T) error {
	return r.inner.Remove(ctx, entity)
}

// cacheGet returns (nil, nil) on a miss, the payload on a hit, and handles
// backend failures per the fallback setting.
func (r *CachedRepository[T]) cacheGet(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cache.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if r.fallback {
		logger.Warn("cache read failed, falling back to database",
			zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return nil, err
}

func (r *CachedRepository[T]) cacheSet(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := r.cache.Set(ctx, key, data, r.policy.TTL); err != nil {
		if r.fallback {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

var _ shared.Repository[shared.Entity] = (*CachedRepository[shared.Entity])(nil)
