/*
Package identity resolves the acting user for audit stamping. Callers put the
actor on the context at the edge of the system; everything below reads it
through shared.ActorProvider.
*/
package identity

import (
	"context"

	"finmarket/domain/shared"
)

type actorKey struct{}

// SystemActor is recorded when no actor was put on the context, e.g. for
// background jobs.
const SystemActor = "system"

// WithActor returns a context carrying the acting user's identifier.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorID reads the actor from the context, empty when absent.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// ContextActorProvider resolves the actor from the request context and falls
// back to SystemActor.
type ContextActorProvider struct{}

func NewContextActorProvider() *ContextActorProvider { return &ContextActorProvider{} }

func (p *ContextActorProvider) ActorID(ctx context.Context) string {
	if actor := ActorID(ctx); actor != "" {
		return actor
	}
	return SystemActor
}

var _ shared.ActorProvider = (*ContextActorProvider)(nil)
