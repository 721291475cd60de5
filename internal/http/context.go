package http

import (
	"context"
	"log/slog"

	"github.com/example/event-admin/internal/logging"
)

type contextKey string

const (
	draftIDContextKey contextKey = "draft_id"
	eventIDContextKey contextKey = "event_id"
)

// ContextWithDraftID injects the draft identifier resolved from the request path.
func ContextWithDraftID(ctx context.Context, draftID string) context.Context {
	return context.WithValue(ctx, draftIDContextKey, draftID)
}

// DraftIDFromContext extracts a draft identifier previously associated with the context.
func DraftIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(draftIDContextKey).(string)
	return id, ok
}

// ContextWithEventID injects the remote event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
