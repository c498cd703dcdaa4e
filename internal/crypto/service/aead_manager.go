package service

import (
	"fmt"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
)

// derivedKeySize is the length of every per-version cipher key produced by DeriveKey.
const derivedKeySize = 32

type cipherConstructor func(key []byte) (AEAD, error)

var cipherConstructors = map[cryptoDomain.Algorithm]cipherConstructor{
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
		return NewAESGCM(key)
	},
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
		return NewChaCha20Poly1305(key)
	},
}

// AEADManagerService turns a derived key into the cipher for an envelope algorithm.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher builds the cipher for alg. The algorithm is checked before the key,
// so an envelope naming an unknown algorithm is reported as such.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	newCipher, ok := cipherConstructors[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, alg)
	}
	if len(key) != derivedKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", cryptoDomain.ErrInvalidKeySize, len(key))
	}

	aead, err := newCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}
	return aead, nil
}
