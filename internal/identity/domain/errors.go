package domain

import (
	apperrors "github.com/healo/piiguard/internal/errors"
)

var (
	// ErrInvalidToken indicates the provider rejected the access token.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid access token")

	// ErrNoSession indicates the request carries no usable session cookie.
	ErrNoSession = apperrors.Wrap(apperrors.ErrUnauthorized, "no session")

	// ErrProviderUnavailable indicates the identity provider could not be reached.
	ErrProviderUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "identity provider unavailable")
)
