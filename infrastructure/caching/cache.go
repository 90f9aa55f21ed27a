/*
Package caching adds read-through caching to repositories without the
repositories knowing. The decorator wraps any shared.Repository and consults
an explicit cache-policy registry; the invalidation handler subscribes to the
entity-change events the unit of work raises and evicts in O(1) per commit by
dropping the per-type list version token.
*/
package caching

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports that a key is not in the cache. Every backend maps its
// own miss signal to this sentinel.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the byte-oriented store behind the caching decorator. A ttl of
// zero or less stores the value without expiry. Remove of an absent key is
// not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}
