package usecase

import (
	"context"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
)

type envelopeEncryptor struct {
	engine cryptoService.Engine
}

// NewEnvelopeEncryptor adapts an Engine to the Encryptor interface using the
// "version:iv:tag:ciphertext" serialization.
func NewEnvelopeEncryptor(engine cryptoService.Engine) Encryptor {
	return &envelopeEncryptor{engine: engine}
}

// Encrypt seals plaintext and serializes the envelope.
func (e *envelopeEncryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	envelope, err := e.engine.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return envelope.String(), nil
}

// Decrypt parses and opens a serialized envelope.
func (e *envelopeEncryptor) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	envelope, err := cryptoDomain.ParseEnvelope(ciphertext)
	if err != nil {
		return "", err
	}

	plaintext, err := e.engine.Decrypt(envelope)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}
