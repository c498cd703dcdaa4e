package service

import (
	"context"
	"net/http"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// Provider exposes both credential channels of the identity provider. Session
// cookies carry an access token that is validated like a bearer token.
type Provider struct {
	validator  TokenValidator
	cookieName string
}

// NewProvider creates a Provider reading sessions from cookies named cookieName.
func NewProvider(validator TokenValidator, cookieName string) *Provider {
	return &Provider{
		validator:  validator,
		cookieName: cookieName,
	}
}

// ValidateBearerToken resolves the user for a bearer token.
func (p *Provider) ValidateBearerToken(ctx context.Context, token string) (*identityDomain.User, error) {
	return p.validator.ValidateToken(ctx, token)
}

// GetSessionUser resolves the user for the session held in cookies.
func (p *Provider) GetSessionUser(ctx context.Context, cookies []*http.Cookie) (*identityDomain.User, error) {
	token, err := ReadSessionToken(cookies, p.cookieName)
	if err != nil {
		return nil, err
	}
	return p.validator.ValidateToken(ctx, token)
}

// HasSession reports whether cookies include a provider session cookie.
func (p *Provider) HasSession(cookies []*http.Cookie) bool {
	return len(SessionCookies(cookies, p.cookieName)) > 0
}

// SessionInfo identifies the provider session held in cookies without validating it.
func (p *Provider) SessionInfo(cookies []*http.Cookie) (*identityDomain.SessionInfo, error) {
	return ReadSessionInfo(cookies, p.cookieName)
}

// SessionCookieNames returns the names of the provider session cookies present in cookies.
func (p *Provider) SessionCookieNames(cookies []*http.Cookie) []string {
	parts := SessionCookies(cookies, p.cookieName)
	names := make([]string, 0, len(parts))
	for _, c := range parts {
		names = append(names, c.Name)
	}
	return names
}
