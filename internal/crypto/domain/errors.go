package domain

import (
	"github.com/healo/piiguard/internal/errors"
)

// Cryptographic operation error definitions.
//
// Key errors are configuration faults and surface as internal errors. Every
// decryption failure collapses into ErrAuthenticationFailed so callers cannot
// distinguish a wrong key from a tampered tag or a malformed envelope.
var (
	// ErrKeyMissing indicates no key material is configured for the active version.
	ErrKeyMissing = errors.New("encryption key missing")

	// ErrKeyTooShort indicates the configured key material is shorter than MinKeyLength.
	ErrKeyTooShort = errors.New("encryption key too short")

	// ErrAuthenticationFailed indicates the envelope could not be authenticated.
	// Decrypt never returns partial plaintext alongside this error.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidEnvelope indicates the serialized envelope is malformed.
	ErrInvalidEnvelope = errors.Wrap(ErrAuthenticationFailed, "invalid envelope")

	// ErrUnknownKeyVersion indicates the envelope references a version the keyring does not hold.
	ErrUnknownKeyVersion = errors.Wrap(ErrAuthenticationFailed, "unknown key version")

	// ErrUnsupportedAlgorithm indicates the requested algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a derived cipher key is not 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyVersion indicates a key version cannot be written into an envelope.
	ErrInvalidKeyVersion = errors.Wrap(errors.ErrInvalidInput, "invalid key version")

	// ErrInvalidKeyringFormat indicates PII_PREVIOUS_KEYS could not be parsed.
	ErrInvalidKeyringFormat = errors.Wrap(errors.ErrInvalidInput, "invalid keyring format")
)
