package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ContextKey is the type for values this package stores in request contexts.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's uuid.UUID, set by the
	// access-token middleware.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// traceIDBytes is the entropy behind each trace ID (32 hex characters).
	traceIDBytes = 16
)

// SetTraceID generates a fresh trace ID and stores it in the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID returns the trace ID from the context, or "" if none was set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func newTraceID() string {
	b := make([]byte, traceIDBytes)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
