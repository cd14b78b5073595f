package domain

import "context"

// SystemActor attributes mutations performed outside any request context.
const SystemActor = "system"

type actorContextKey struct{}

// WithActor returns a context carrying the acting identity used to stamp
// system columns and audit entries.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFrom extracts the acting identity, defaulting to SystemActor.
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorContextKey{}).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
