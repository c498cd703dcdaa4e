package domain

import (
	"errors"
)

var (
	// ErrAuditWriteFailed indicates an entry could not be stored. It is logged, never surfaced.
	ErrAuditWriteFailed = errors.New("audit write failed")

	// ErrSignatureInvalid indicates an entry's signature does not match its contents.
	ErrSignatureInvalid = errors.New("audit entry signature invalid")

	// ErrSigningKeyUnavailable indicates the key version of an entry is not loaded.
	ErrSigningKeyUnavailable = errors.New("audit signing key unavailable")
)
