package caching

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"finmarket/domain/shared"

	"github.com/google/uuid"
)

// KeyBuilder derives the cache keys for one entity type.
//
// Point reads key on identity: "entity-{Type}-{id}". List reads key on a
// digest of the specification salted with the type's list version token, a
// random value stored at "list-version-{Type}" without expiry. Invalidation
// deletes the token; every list key derived from it becomes unreachable at
// once and ages out by TTL. Reads that fit neither shape use
// "other-{Type}-{Method}".
type KeyBuilder struct {
	entityName string
	cache      Cache
}

func NewKeyBuilder(entityName string, cache Cache) *KeyBuilder {
	return &KeyBuilder{entityName: entityName, cache: cache}
}

// EntityKey is the point-read key for one entity.
func (b *KeyBuilder) EntityKey(id uuid.UUID) string {
	return fmt.Sprintf("entity-%s-%s", b.entityName, id)
}

// ListVersionKey is where the type's list version token lives.
func (b *KeyBuilder) ListVersionKey() string {
	return "list-version-" + b.entityName
}

// OtherKey is the fallback key for cacheable reads that are neither point nor
// list shaped.
func (b *KeyBuilder) OtherKey(methodName string) string {
	return fmt.Sprintf("other-%s-%s", b.entityName, methodName)
}

// ListKey derives the key for a list read. A nil specification means the
// unfiltered list.
func (b *KeyBuilder) ListKey(ctx context.Context, spec *shared.Specification) (string, error) {
	token, err := b.listVersionToken(ctx)
	if err != nil {
		return "", err
	}
	if spec == nil {
		spec = shared.NewSpecification()
	}
	material := b.ListVersionKey() + ":" + token + ":" + spec.StringForm()
	sum := sha256.Sum256([]byte(material))
	return fmt.Sprintf("list-%s-%s", b.entityName, base64.StdEncoding.EncodeToString(sum[:])), nil
}

// InvalidateLists drops the list version token, orphaning every list key in
// one operation.
func (b *KeyBuilder) InvalidateLists(ctx context.Context) error {
	return b.cache.Remove(ctx, b.ListVersionKey())
}

// listVersionToken returns the current token, creating and storing a fresh
// one when none exists. The token never expires on its own.
func (b *KeyBuilder) listVersionToken(ctx context.Context) (string, error) {
	data, err := b.cache.Get(ctx, b.ListVersionKey())
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return "", err
	}
	token := uuid.NewString()
	if err := b.cache.Set(ctx, b.ListVersionKey(), []byte(token), 0); err != nil {
		return "", err
	}
	return token, nil
}
