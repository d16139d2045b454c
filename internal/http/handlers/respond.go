package handlers

import (
	"log/slog"
	"net/http"

	"github.com/etuitionbd/server/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Message   string       `json:"message"`
	Error     string       `json:"error,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := middlewares.RequestIDFromContext(ctx); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, message string, fields []FieldError) {
	ctx.AbortWithStatusJSON(status, APIError{
		Message:   message,
		Fields:    fields,
		RequestID: requestIDFrom(ctx),
	})
}

func RespondBadRequest(ctx *gin.Context, message string, fields []FieldError) {
	RespondError(ctx, http.StatusBadRequest, message, fields)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

// RespondInternal logs err and echoes its text in the error field.
func RespondInternal(ctx *gin.Context, message string, err error) {
	body := APIError{
		Message:   message,
		RequestID: requestIDFrom(ctx),
	}
	if err != nil {
		body.Error = err.Error()
		slog.ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"message", message,
			"err", err,
		)
	}
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
