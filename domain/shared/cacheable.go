package shared

import (
	"fmt"
	"sync"
	"time"
)

// CachePolicy declares that an entity type's repository reads may be cached,
// and for how long. Policies are attached to type names, not instances.
type CachePolicy struct {
	EntityName string
	TTL        time.Duration
}

// CachePolicies is the explicit registry mapping entity-type names to cache
// policies. It is built once at startup and consulted by the caching
// decorator, the unit of work and the invalidation handler. Types without an
// entry are never cached.
type CachePolicies struct {
	mu       sync.RWMutex
	policies map[string]CachePolicy
}

// NewCachePolicies creates an empty registry.
func NewCachePolicies() *CachePolicies {
	return &CachePolicies{policies: make(map[string]CachePolicy)}
}

// Register marks the named entity type cacheable with the given TTL. The TTL
// must be positive.
func (r *CachePolicies) Register(entityName string, ttl time.Duration) error {
	if entityName == "" {
		return fmt.Errorf("cache policy: entity name cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache policy for %s: duration must be positive, got %s", entityName, ttl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[entityName] = CachePolicy{EntityName: entityName, TTL: ttl}
	return nil
}

// Lookup returns the policy for the named entity type, if any.
func (r *CachePolicies) Lookup(entityName string) (CachePolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[entityName]
	return p, ok
}

// IsCacheable reports whether the named entity type carries a policy.
func (r *CachePolicies) IsCacheable(entityName string) bool {
	_, ok := r.Lookup(entityName)
	return ok
}
