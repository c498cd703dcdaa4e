package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

const bearerPrefix = "bearer "

// CredentialsFromRequest extracts the bearer token (case-insensitive scheme) and cookies.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		BearerToken: ParseBearerToken(r.Header.Get("Authorization")),
		Cookies:     r.Cookies(),
	}
}

// ParseBearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func ParseBearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// Resolver evaluates the bearer channel first and falls back to the session cookie.
// It holds no mutable state.
type Resolver struct {
	provider  IdentityProvider
	allowlist identityDomain.Allowlist
	logger    *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(
	provider IdentityProvider,
	allowlist identityDomain.Allowlist,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		provider:  provider,
		allowlist: allowlist,
		logger:    logger,
	}
}

// Resolve returns the authorization decision for creds. Provider errors never surface:
// they leave the channel without a user and are logged.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) identityDomain.Decision {
	return identityDomain.Authorize(r.identify(ctx, creds), r.allowlist)
}

func (r *Resolver) identify(ctx context.Context, creds Credentials) *identityDomain.Identity {
	if creds.BearerToken != "" {
		user, err := r.provider.ValidateBearerToken(ctx, creds.BearerToken)
		if err == nil && user != nil {
			return identityDomain.NewIdentity(user, identityDomain.AuthMethodBearer)
		}
		r.logger.Debug("bearer token rejected", slog.Any("error", err))
	}

	if len(creds.Cookies) == 0 {
		return nil
	}

	user, err := r.provider.GetSessionUser(ctx, creds.Cookies)
	if err == nil && user != nil {
		return identityDomain.NewIdentity(user, identityDomain.AuthMethodCookie)
	}
	r.logger.Debug("session lookup failed", slog.Any("error", err))
	return nil
}
