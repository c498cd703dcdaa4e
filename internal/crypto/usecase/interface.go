// Package usecase exposes PII encryption to the rest of the application as
// string-in, string-out operations and applies them to allow-listed document fields.
package usecase

import (
	"context"
)

// Encryptor is the encryption collaborator used for PII values.
//
// Implementations are fail-closed: on any error no plaintext (or partial
// plaintext) is returned. Both the in-process AEAD engine and the pgcrypto
// database procedure satisfy it.
type Encryptor interface {
	// Encrypt returns the serialized ciphertext for plaintext.
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt returns the plaintext for a serialized ciphertext.
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// FieldCipher encrypts and decrypts the allow-listed fields of a document.
type FieldCipher interface {
	// EncryptFields returns a copy of doc with every allow-listed string field encrypted.
	EncryptFields(ctx context.Context, doc map[string]any, allowlist []string) (map[string]any, error)

	// DecryptFields returns a copy of doc with every allow-listed string field decrypted.
	DecryptFields(ctx context.Context, doc map[string]any, allowlist []string) (map[string]any, error)
}
