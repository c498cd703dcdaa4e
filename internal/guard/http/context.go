// Package http provides the Gin middleware that protects admin routes.
package http

import (
	"context"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// identityKey is a context key type for storing the authorized admin identity.
type identityKey struct{}

// WithIdentity stores the authorized admin identity in the context.
func WithIdentity(ctx context.Context, identity *identityDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authorized admin identity from the context.
// Returns (identity, true) if RequireAdmin admitted the request, or (nil, false) otherwise.
func GetIdentity(ctx context.Context) (*identityDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*identityDomain.Identity)
	return identity, ok && identity != nil
}
