// Package usecase resolves the admin identity of a request across the bearer and
// cookie credential channels.
package usecase

import (
	"context"
	"net/http"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// IdentityProvider validates credentials with the external identity provider.
type IdentityProvider interface {
	ValidateBearerToken(ctx context.Context, token string) (*identityDomain.User, error)
	GetSessionUser(ctx context.Context, cookies []*http.Cookie) (*identityDomain.User, error)
}

// Credentials are the request inputs the resolver looks at.
type Credentials struct {
	BearerToken string
	Cookies     []*http.Cookie
}

// AdminResolver decides whether a request comes from an admin.
type AdminResolver interface {
	Resolve(ctx context.Context, creds Credentials) identityDomain.Decision
}
