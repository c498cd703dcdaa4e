package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	apperrors "github.com/healo/piiguard/internal/errors"
	"github.com/healo/piiguard/internal/metrics"
)

// encryptorWithMetrics decorates Encryptor with metrics instrumentation.
type encryptorWithMetrics struct {
	next    Encryptor
	metrics metrics.BusinessMetrics
}

// NewEncryptorWithMetrics wraps an Encryptor with metrics recording.
func NewEncryptorWithMetrics(encryptor Encryptor, m metrics.BusinessMetrics) Encryptor {
	return &encryptorWithMetrics{
		next:    encryptor,
		metrics: m,
	}
}

// Encrypt records metrics for field encryption.
func (e *encryptorWithMetrics) Encrypt(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	ciphertext, err := e.next.Encrypt(ctx, plaintext)
	e.record(ctx, "encrypt", start, err)
	return ciphertext, err
}

// Decrypt records metrics for field decryption.
func (e *encryptorWithMetrics) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	start := time.Now()
	plaintext, err := e.next.Decrypt(ctx, ciphertext)
	e.record(ctx, "decrypt", start, err)
	return plaintext, err
}

func (e *encryptorWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		e.metrics.RecordCryptoFailure(ctx, operation, failureKind(err))
	}

	e.metrics.RecordOperation(ctx, "crypto", operation, status)
	e.metrics.RecordDuration(ctx, "crypto", operation, time.Since(start), status)
}

// failureKind maps an encryptor error to a bounded label value. Unknown key versions
// are split out of authentication failures so a missed key rotation is visible.
func failureKind(err error) string {
	switch {
	case apperrors.Is(err, cryptoDomain.ErrUnknownKeyVersion):
		return "unknown_key_version"
	case apperrors.Is(err, cryptoDomain.ErrAuthenticationFailed):
		return "authentication_failed"
	case apperrors.Is(err, cryptoDomain.ErrKeyTooShort):
		return "key_too_short"
	case apperrors.Is(err, cryptoDomain.ErrKeyMissing):
		return "key_missing"
	default:
		return "other"
	}
}
