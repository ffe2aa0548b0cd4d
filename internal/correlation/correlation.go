// Package correlation propagates an opaque correlation id across the
// producer, transport, and consumer boundaries for tracing one logical action.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the correlation id.
const Header = "X-Correlation-Id"

type contextKey struct{}

// WithID stores the correlation id on the context. The id lives exactly as
// long as the context, so scoped acquisition and release come for free.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the correlation id, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Ensure returns a context that carries a correlation id, generating one
// when the caller supplied none, along with the id in effect.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithID(ctx, id), id
}
