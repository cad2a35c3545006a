package middleware

import (
	"context"

	"github.com/tillworks/tillworks-backend/pkg/actor"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor injects the acting context for downstream handlers.
func WithActor(ctx context.Context, act actor.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, act)
}

// ActorFromContext returns the acting context seeded by the auth middleware.
func ActorFromContext(ctx context.Context) (actor.Actor, bool) {
	if ctx == nil {
		return actor.Actor{}, false
	}
	act, ok := ctx.Value(ctxActor).(actor.Actor)
	return act, ok
}

func UserIDFromContext(ctx context.Context) string {
	if act, ok := ActorFromContext(ctx); ok {
		return act.UserID.String()
	}
	return ""
}

func StoreIDFromContext(ctx context.Context) string {
	if act, ok := ActorFromContext(ctx); ok {
		return act.StoreID.String()
	}
	return ""
}
