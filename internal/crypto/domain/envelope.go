package domain

import (
	"encoding/base64"
	"strings"
)

// envelopeSeparator joins the envelope fields.
const envelopeSeparator = ":"

// Envelope is the self-describing ciphertext stored in place of a PII value.
//
// Serialized form: "version:base64(iv):base64(tag):base64(ciphertext)" using
// standard base64. The version selects the key on decryption.
type Envelope struct {
	Version    string
	IV         []byte
	AuthTag    []byte
	Ciphertext []byte
}

// String serializes the envelope.
func (e *Envelope) String() string {
	return strings.Join([]string{
		e.Version,
		base64.StdEncoding.EncodeToString(e.IV),
		base64.StdEncoding.EncodeToString(e.AuthTag),
		base64.StdEncoding.EncodeToString(e.Ciphertext),
	}, envelopeSeparator)
}

// ParseEnvelope parses a serialized envelope. Any structural problem yields
// ErrInvalidEnvelope, which is also an ErrAuthenticationFailed.
func ParseEnvelope(s string) (*Envelope, error) {
	parts := strings.Split(s, envelopeSeparator)
	if len(parts) != 4 || parts[0] == "" {
		return nil, ErrInvalidEnvelope
	}

	iv, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(iv) != IVSize {
		return nil, ErrInvalidEnvelope
	}

	tag, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != TagSize {
		return nil, ErrInvalidEnvelope
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, ErrInvalidEnvelope
	}

	return &Envelope{
		Version:    parts[0],
		IV:         iv,
		AuthTag:    tag,
		Ciphertext: ciphertext,
	}, nil
}
