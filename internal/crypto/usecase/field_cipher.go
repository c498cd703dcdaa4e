package usecase

import (
	"context"
	"fmt"
	"maps"
)

type fieldCipher struct {
	encryptor Encryptor
}

// NewFieldCipher creates a FieldCipher backed by encryptor.
func NewFieldCipher(encryptor Encryptor) FieldCipher {
	return &fieldCipher{encryptor: encryptor}
}

// EncryptFields encrypts allow-listed fields. Keys outside the allow-list pass
// through untouched, as do allow-listed keys that are absent, empty or not strings.
func (f *fieldCipher) EncryptFields(
	ctx context.Context,
	doc map[string]any,
	allowlist []string,
) (map[string]any, error) {
	return f.apply(ctx, doc, allowlist, "encrypt", f.encryptor.Encrypt)
}

// DecryptFields decrypts allow-listed fields. The first failure aborts the whole
// document, so a caller never receives a mix of decrypted and undecryptable values.
func (f *fieldCipher) DecryptFields(
	ctx context.Context,
	doc map[string]any,
	allowlist []string,
) (map[string]any, error) {
	return f.apply(ctx, doc, allowlist, "decrypt", f.encryptor.Decrypt)
}

func (f *fieldCipher) apply(
	ctx context.Context,
	doc map[string]any,
	allowlist []string,
	op string,
	fn func(context.Context, string) (string, error),
) (map[string]any, error) {
	if doc == nil {
		return nil, nil
	}

	out := maps.Clone(doc)
	for _, field := range allowlist {
		value, ok := out[field].(string)
		if !ok || value == "" {
			continue
		}

		transformed, err := fn(ctx, value)
		if err != nil {
			// field names are safe to log, values never are
			return nil, fmt.Errorf("failed to %s field %s: %w", op, field, err)
		}
		out[field] = transformed
	}

	return out, nil
}
