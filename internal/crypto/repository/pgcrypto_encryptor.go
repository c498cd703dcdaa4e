// Package repository implements the database-side encryption collaborator on top
// of the PostgreSQL pgcrypto extension.
package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
	"github.com/healo/piiguard/internal/database"
)

// pgcryptoDataError is the SQLSTATE pgcrypto raises for "Wrong key or corrupt data".
const pgcryptoDataError = "39000"

// PgcryptoEncryptor encrypts PII values with pgp_sym_encrypt inside PostgreSQL.
//
// Ciphertexts are serialized as "version:base64(pgp message)". The passphrase
// sent to the database is the hex form of the per-version HKDF key, never the
// configured material itself.
type PgcryptoEncryptor struct {
	db      *sql.DB
	keyring *cryptoDomain.Keyring
}

// NewPgcryptoEncryptor creates a new PgcryptoEncryptor.
func NewPgcryptoEncryptor(db *sql.DB, keyring *cryptoDomain.Keyring) *PgcryptoEncryptor {
	return &PgcryptoEncryptor{db: db, keyring: keyring}
}

// Encrypt encrypts plaintext with the active key version.
func (p *PgcryptoEncryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	key, err := p.activeKey()
	if err != nil {
		return "", err
	}

	passphrase, err := passphraseFor(key)
	if err != nil {
		return "", err
	}

	querier := database.GetTx(ctx, p.db)
	query := `SELECT translate(encode(pgp_sym_encrypt($1, $2, 'cipher-algo=aes256'), 'base64'), E'\n', '')`

	var encoded string
	if err := querier.QueryRowContext(ctx, query, plaintext, passphrase).Scan(&encoded); err != nil {
		return "", fmt.Errorf("failed to encrypt with pgcrypto: %w", err)
	}

	return key.Version + ":" + encoded, nil
}

// Decrypt decrypts a "version:base64" ciphertext. Wrong keys and corrupt data
// surface as ErrAuthenticationFailed; connectivity errors are returned wrapped.
func (p *PgcryptoEncryptor) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if _, err := p.activeKey(); err != nil {
		return "", err
	}

	version, encoded, ok := strings.Cut(ciphertext, ":")
	if !ok || version == "" || encoded == "" {
		return "", cryptoDomain.ErrInvalidEnvelope
	}

	key, ok := p.keyring.Get(version)
	if !ok {
		return "", cryptoDomain.ErrUnknownKeyVersion
	}
	if len(key.Material) < cryptoDomain.MinKeyLength {
		return "", cryptoDomain.ErrKeyTooShort
	}

	passphrase, err := passphraseFor(key)
	if err != nil {
		return "", err
	}

	querier := database.GetTx(ctx, p.db)
	query := `SELECT pgp_sym_decrypt(decode($1, 'base64'), $2)`

	var plaintext string
	if err := querier.QueryRowContext(ctx, query, encoded, passphrase).Scan(&plaintext); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == pgcryptoDataError || pqErr.Code.Class() == "22") {
			return "", cryptoDomain.ErrAuthenticationFailed
		}
		return "", fmt.Errorf("failed to decrypt with pgcrypto: %w", err)
	}

	return plaintext, nil
}

func (p *PgcryptoEncryptor) activeKey() (*cryptoDomain.Key, error) {
	key, ok := p.keyring.Active()
	if !ok || len(key.Material) == 0 {
		return nil, cryptoDomain.ErrKeyMissing
	}
	if len(key.Material) < cryptoDomain.MinKeyLength {
		return nil, cryptoDomain.ErrKeyTooShort
	}
	return key, nil
}

func passphraseFor(key *cryptoDomain.Key) (string, error) {
	derived, err := cryptoService.DeriveKey(key.Material, key.Version)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(derived)
	return hex.EncodeToString(derived), nil
}
