// Package actorctx carries the authenticated caller on a context.Context so code below
// the HTTP layer (logging, store calls) can attribute work to a user.
package actorctx

import "context"

type ctxKey struct{}

type Actor struct {
	UserID string
	Role   string
}

func With(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.UserID != ""
}
