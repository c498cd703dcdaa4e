// Package service provides identity provider clients: a GoTrue REST client, a local
// JWT validator and the provider session cookie reader.
package service

import (
	"context"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// TokenValidator resolves an access token to the user it was issued for.
//
// Errors:
//   - identityDomain.ErrInvalidToken: the token was rejected
//   - identityDomain.ErrProviderUnavailable: the provider could not be reached
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*identityDomain.User, error)
}
