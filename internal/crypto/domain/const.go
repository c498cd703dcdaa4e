// Package domain defines the PII encryption primitives: algorithms, the versioned
// envelope format, and the keyring of active and retired key versions.
package domain

// Algorithm represents the AEAD algorithm used for field encryption.
//
// Both supported algorithms use a 12-byte nonce and a 16-byte authentication tag,
// so envelopes have the same shape regardless of which one produced them.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, for hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// MinKeyLength is the minimum length of configured key material in bytes.
	MinKeyLength = 32

	// IVSize is the nonce size of every supported algorithm.
	IVSize = 12

	// TagSize is the authentication tag size of every supported algorithm.
	TagSize = 16
)

// ParseAlgorithm maps a configuration value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, "":
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
