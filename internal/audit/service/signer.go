// Package service signs and verifies audit entries.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
)

// signingKeyInfo is the HKDF info for audit signing keys. It keeps signing keys
// distinct from the field encryption keys derived from the same material.
const signingKeyInfo = "audit-log-signing-v1"

// Signer produces HMAC-SHA256 signatures over audit entries with keys derived
// from the PII keyring.
type Signer struct {
	keyring *cryptoDomain.Keyring
}

// NewSigner creates a Signer over keyring.
func NewSigner(keyring *cryptoDomain.Keyring) *Signer {
	return &Signer{keyring: keyring}
}

// Sign stamps entry with the active key version and its signature. When no active
// key is configured the entry is left unsigned and false is returned.
func (s *Signer) Sign(entry *auditDomain.Entry) (bool, error) {
	key, ok := s.keyring.Active()
	if !ok || len(key.Material) == 0 {
		return false, nil
	}

	entry.KeyVersion = key.Version
	signature, err := s.compute(key.Material, entry)
	if err != nil {
		entry.KeyVersion = ""
		return false, err
	}
	entry.Signature = signature
	return true, nil
}

// Verify checks entry's signature with the key version it was signed with.
func (s *Signer) Verify(entry *auditDomain.Entry) error {
	key, ok := s.keyring.Get(entry.KeyVersion)
	if !ok {
		return fmt.Errorf("%w: version %q", auditDomain.ErrSigningKeyUnavailable, entry.KeyVersion)
	}

	expected, err := s.compute(key.Material, entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

func (s *Signer) compute(material []byte, entry *auditDomain.Entry) ([]byte, error) {
	signingKey, err := deriveSigningKey(material)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := canonicalize(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize entry: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

func deriveSigningKey(material []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, material, nil, []byte(signingKeyInfo))
	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}
	return signingKey, nil
}

// canonicalize encodes the signed fields in a fixed order, length-prefixing
// every variable-length field so no two entries share an encoding.
// Format: id || key_version || actor_user_id || actor_email || action || ip || user_agent || metadata || created_at
func canonicalize(entry *auditDomain.Entry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, entry.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.KeyVersion))
	buf = appendLengthPrefixed(buf, []byte(entry.ActorUserID))
	buf = appendLengthPrefixed(buf, []byte(entry.ActorEmail))
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = appendLengthPrefixed(buf, []byte(entry.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(entry.UserAgent))

	// json.Marshal sorts map keys, so the encoding is deterministic.
	if entry.Metadata != nil {
		metadataBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(entry.CreatedAt.UnixMicro()))
	return buf, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
