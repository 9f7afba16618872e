// Package requestid carries the X-Request-ID of an outbound call through a context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header the id travels in.
const Header = "X-Request-ID"

type contextKey string

// Key is the context key for request IDs
const Key = contextKey("request-id")

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, Key, id)
}

// FromContext extracts the request ID from the context.
// Returns empty string if not found.
func FromContext(ctx context.Context) string {
	if reqID, ok := ctx.Value(Key).(string); ok {
		return reqID
	}
	return ""
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// derived context holding a fresh UUID. The id is returned either way.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return With(ctx, id), id
}
