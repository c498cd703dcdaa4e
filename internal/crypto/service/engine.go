package service

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
)

// keyDerivationInfo prefixes the HKDF info string; the key version is appended.
const keyDerivationInfo = "pii-field-encryption:"

// envelopeEngine implements Engine on top of an AEADManager and a Keyring.
//
// The envelope version is bound as AAD, so relabelling an envelope with another
// version fails authentication even if both versions share material.
type envelopeEngine struct {
	keyring *cryptoDomain.Keyring
	alg     cryptoDomain.Algorithm
	manager AEADManager
	ciphers sync.Map // version -> AEAD
}

// NewEngine creates an Engine that seals with the keyring's active key using alg.
func NewEngine(keyring *cryptoDomain.Keyring, alg cryptoDomain.Algorithm, manager AEADManager) Engine {
	return &envelopeEngine{
		keyring: keyring,
		alg:     alg,
		manager: manager,
	}
}

// ActiveVersion returns the version stamped on new envelopes.
func (e *envelopeEngine) ActiveVersion() string {
	return e.keyring.ActiveVersion()
}

// Encrypt seals plaintext with the active key and a fresh random IV.
func (e *envelopeEngine) Encrypt(plaintext []byte) (*cryptoDomain.Envelope, error) {
	key, err := e.activeKey()
	if err != nil {
		return nil, err
	}

	aead, err := e.cipherFor(key)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, []byte(key.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	split := len(sealed) - cryptoDomain.TagSize
	return &cryptoDomain.Envelope{
		Version:    key.Version,
		IV:         nonce,
		AuthTag:    sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// Decrypt opens an envelope. Unknown versions, malformed envelopes and tag
// mismatches all return an error wrapping ErrAuthenticationFailed.
func (e *envelopeEngine) Decrypt(envelope *cryptoDomain.Envelope) ([]byte, error) {
	// The service must be correctly configured before any decryption is attempted.
	if _, err := e.activeKey(); err != nil {
		return nil, err
	}

	if envelope == nil || len(envelope.IV) != cryptoDomain.IVSize ||
		len(envelope.AuthTag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	key, ok := e.keyring.Get(envelope.Version)
	if !ok {
		return nil, cryptoDomain.ErrUnknownKeyVersion
	}
	if len(key.Material) < cryptoDomain.MinKeyLength {
		return nil, cryptoDomain.ErrKeyTooShort
	}

	aead, err := e.cipherFor(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(envelope.Ciphertext)+cryptoDomain.TagSize)
	sealed = append(sealed, envelope.Ciphertext...)
	sealed = append(sealed, envelope.AuthTag...)

	plaintext, err := aead.Decrypt(sealed, envelope.IV, []byte(envelope.Version))
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func (e *envelopeEngine) activeKey() (*cryptoDomain.Key, error) {
	key, ok := e.keyring.Active()
	if !ok || len(key.Material) == 0 {
		return nil, cryptoDomain.ErrKeyMissing
	}
	if len(key.Material) < cryptoDomain.MinKeyLength {
		return nil, cryptoDomain.ErrKeyTooShort
	}
	return key, nil
}

func (e *envelopeEngine) cipherFor(key *cryptoDomain.Key) (AEAD, error) {
	if cached, ok := e.ciphers.Load(key.Version); ok {
		return cached.(AEAD), nil
	}

	derived, err := DeriveKey(key.Material, key.Version)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(derived)

	aead, err := e.manager.CreateCipher(derived, e.alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher for version %s: %w", key.Version, err)
	}

	actual, _ := e.ciphers.LoadOrStore(key.Version, aead)
	return actual.(AEAD), nil
}

// DeriveKey derives a 32-byte cipher key from key material with HKDF-SHA256.
// The version is part of the info string, so each version gets an independent key.
func DeriveKey(material []byte, version string) ([]byte, error) {
	reader := hkdf.New(sha256.New, material, nil, []byte(keyDerivationInfo+version))

	derived := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return derived, nil
}
