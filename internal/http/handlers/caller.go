package handlers

import (
	"context"
	"time"

	"github.com/etuitionbd/server/internal/config"
	"github.com/etuitionbd/server/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	readTimeout  = 2 * time.Second
	writeTimeout = 3 * time.Second
)

// callerID resolves the authenticated subject. RequireAuth has already run, so a
// missing subject only happens when a route is mounted without it.
func callerID(ctx *gin.Context) (primitive.ObjectID, bool) {
	raw, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "No token provided")
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		RespondForbidden(ctx, "Invalid or expired token")
		return primitive.NilObjectID, false
	}
	return id, true
}

func storeCtx(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return config.WithTimeout(ctx.Request.Context(), d)
}

// orEmpty keeps list fields rendering as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
