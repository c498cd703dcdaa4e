package domain

import (
	"fmt"
	"strings"
	"sync"
)

// Key is one version of PII key material.
//
// Material is the raw configured secret (at least MinKeyLength bytes); cipher
// keys are derived from it per version and never stored here.
type Key struct {
	Version  string
	Material []byte
}

// Keyring holds the active key and any retired keys still needed to decrypt
// older envelopes. Retired keys are never used for encryption.
//
// Key lengths are not validated on load: encryption and decryption report
// ErrKeyMissing / ErrKeyTooShort on each call so misconfiguration fails closed
// at the point of use.
type Keyring struct {
	activeVersion string
	keys          sync.Map
}

// NewKeyring creates a keyring whose active key is material tagged with version.
// An empty material leaves the keyring without an active key.
func NewKeyring(version string, material []byte) *Keyring {
	kr := &Keyring{activeVersion: version}
	if len(material) > 0 {
		kr.Add(version, material)
	}
	return kr
}

// Add stores key material for a version. The bytes are copied.
func (k *Keyring) Add(version string, material []byte) {
	buf := make([]byte, len(material))
	copy(buf, material)
	k.keys.Store(version, &Key{Version: version, Material: buf})
}

// ActiveVersion returns the version used for new envelopes.
func (k *Keyring) ActiveVersion() string {
	return k.activeVersion
}

// Active returns the active key.
func (k *Keyring) Active() (*Key, bool) {
	return k.Get(k.activeVersion)
}

// Get returns the key for a version.
func (k *Keyring) Get(version string) (*Key, bool) {
	if v, ok := k.keys.Load(version); ok {
		return v.(*Key), true
	}
	return nil, false
}

// Versions returns every version held by the keyring.
func (k *Keyring) Versions() []string {
	var versions []string
	k.keys.Range(func(key, _ any) bool {
		versions = append(versions, key.(string))
		return true
	})
	return versions
}

// Close zeroes all key material and empties the keyring.
func (k *Keyring) Close() {
	k.keys.Range(func(_, value any) bool {
		if key, ok := value.(*Key); ok {
			Zero(key.Material)
		}
		return true
	})
	k.keys.Clear()
}

// Zero overwrites key material, derived keys and decrypted buffers in place.
func Zero(b []byte) {
	clear(b)
}

// ValidateKeyVersion rejects versions that would make envelopes unparseable: empty
// versions and versions holding the envelope separator, the list separator or whitespace.
func ValidateKeyVersion(version string) error {
	if version == "" || strings.ContainsAny(version, envelopeSeparator+", \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidKeyVersion, version)
	}
	return nil
}

// ParsePreviousKeys parses "version:material,version:material" into a map.
// Material may itself contain ':' characters; only the first separates the version.
func ParsePreviousKeys(raw string) (map[string][]byte, error) {
	keys := make(map[string][]byte)
	if strings.TrimSpace(raw) == "" {
		return keys, nil
	}

	for part := range strings.SplitSeq(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 || p[0] == "" || p[1] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyringFormat, redactEntry(part))
		}
		if err := ValidateKeyVersion(p[0]); err != nil {
			return nil, err
		}
		keys[p[0]] = []byte(p[1])
	}

	return keys, nil
}

// redactEntry keeps the version prefix of a malformed entry for error messages.
func redactEntry(entry string) string {
	if i := strings.Index(entry, ":"); i >= 0 {
		return strings.TrimSpace(entry[:i]) + ":<redacted>"
	}
	return "<redacted>"
}
