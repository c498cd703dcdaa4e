package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// providerClaims are the claims the identity provider puts in its access tokens.
type providerClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
	jwt.RegisteredClaims
}

// JWTValidator verifies HS256 access tokens locally with the provider's signing secret.
type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

// NewJWTValidator creates a JWTValidator.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// ValidateToken verifies the signature and expiry of token and maps its claims to a user.
func (v *JWTValidator) ValidateToken(_ context.Context, token string) (*identityDomain.User, error) {
	if token == "" || len(v.secret) == 0 {
		return nil, identityDomain.ErrInvalidToken
	}

	claims := &providerClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identityDomain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", identityDomain.ErrInvalidToken)
	}

	return &identityDomain.User{
		ID:           claims.Subject,
		Email:        claims.Email,
		UserMetadata: claims.UserMetadata,
		AppMetadata:  claims.AppMetadata,
	}, nil
}
