// Package service provides the cryptographic services behind PII field encryption:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), per-version key derivation, the
// envelope engine, and KMS unwrapping of configured key material.
package service

import (
	"context"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Engine encrypts and decrypts values into versioned envelopes.
type Engine interface {
	// Encrypt seals plaintext with the active key.
	Encrypt(plaintext []byte) (*cryptoDomain.Envelope, error)

	// Decrypt opens an envelope with the key named by its version.
	Decrypt(envelope *cryptoDomain.Envelope) ([]byte, error)

	// ActiveVersion returns the version stamped on new envelopes.
	ActiveVersion() string
}

// KMSService opens KMS keepers and unwraps key material with them.
type KMSService interface {
	// OpenKeeper opens a keeper for the given URI (gcpkms://, awskms://, azurekeyvault://,
	// hashivault://, base64key://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

	// UnwrapKeyring replaces every key's material with its KMS-decrypted form.
	// Configured material is expected to be base64 KMS ciphertext.
	UnwrapKeyring(ctx context.Context, keeper cryptoDomain.KMSKeeper, keyring *cryptoDomain.Keyring) error
}
