package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithIdentity returns a context carrying the resolved tenant identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the tenant identity from the context.
// Returns a zero Identity and false if none has been resolved.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// MustFromContext retrieves the tenant identity or panics. Tenant-scoped
// handlers use this so a missing identity fails loudly instead of producing
// an unscoped query with an empty org id.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no identity in context")
	}
	return id
}

// OrgIDFromContext retrieves just the tenant's org id from the context.
func OrgIDFromContext(ctx context.Context) (string, bool) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return id.OrgID, true
}

// LoggerExtractor returns a context extractor that adds the org id to log
// records when an identity is present.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if orgID, ok := OrgIDFromContext(ctx); ok {
			return slog.String("org_id", orgID), true
		}
		return slog.Attr{}, false
	}
}
