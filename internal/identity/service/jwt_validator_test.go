package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	validator := NewJWTValidator(testJWTSecret)
	validator.now = func() time.Time { return now }

	validClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":           "u-123",
			"email":         "ops@healo.com",
			"exp":           now.Add(time.Hour).Unix(),
			"user_metadata": map[string]any{"full_name": "Ops"},
			"app_metadata":  map[string]any{"role": "admin"},
		}
	}

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), validClaims())

		user, err := validator.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "u-123", user.ID)
		assert.Equal(t, "ops@healo.com", user.Email)
		assert.Equal(t, "admin", user.AppMetadata["role"])
	})

	t.Run("expired", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = now.Add(-time.Minute).Unix()
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), claims)

		_, err := validator.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "exp")
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), claims)

		_, err := validator.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), validClaims())

		_, err := validator.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, []byte(testJWTSecret), validClaims())

		_, err := validator.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "sub")
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), claims)

		_, err := validator.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := validator.ValidateToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)

		_, err = validator.ValidateToken(ctx, "")
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("unconfigured secret rejects everything", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), validClaims())

		_, err := NewJWTValidator("").ValidateToken(ctx, token)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})
}
