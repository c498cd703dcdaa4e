package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
)

// RunCreatePIIKey generates PII key material for the envelope engine and prints the
// environment variables that configure it. If version is empty a default of the form
// "pii-YYYY-MM-DD" is used.
//
// When kmsKeyURI is set the material is wrapped with the KMS keeper and printed as
// base64 ciphertext, which the server unwraps at startup. For local development use
// kmsKeyURI="base64key://...". Without a KMS key URI the material is printed as is.
//
// The generated material is zeroed from memory after it is written.
func RunCreatePIIKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	version string,
	kmsKeyURI string,
) error {
	if version == "" {
		version = fmt.Sprintf("pii-%s", time.Now().UTC().Format("2006-01-02"))
	}

	raw := make([]byte, cryptoDomain.MinKeyLength)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate key material: %w", err)
	}
	material := []byte(base64.StdEncoding.EncodeToString(raw))
	cryptoDomain.Zero(raw)
	defer cryptoDomain.Zero(material)

	value := string(material)
	if kmsKeyURI != "" {
		wrapped, err := wrapWithKMS(ctx, kmsService, logger, kmsKeyURI, material)
		if err != nil {
			return err
		}
		value = wrapped
	}

	_, _ = fmt.Fprintln(writer, "# PII Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "PII_ENCRYPTION_KEY=\"%s\"\n", value)
	_, _ = fmt.Fprintf(writer, "PII_ENCRYPTION_KEY_VERSION=\"%s\"\n", version)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# On rotation, move the current key to PII_PREVIOUS_KEYS so older envelopes stay readable:")
	_, _ = fmt.Fprintf(writer, "# PII_PREVIOUS_KEYS=\"%s:<previous key>\"\n", version)

	logger.Info("pii key generated", slog.String("version", version), slog.Bool("kms", kmsKeyURI != ""))
	return nil
}

// wrapWithKMS encrypts material with the keeper at kmsKeyURI and returns it base64 encoded.
func wrapWithKMS(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	kmsKeyURI string,
	material []byte,
) (string, error) {
	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, material)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt key material with KMS: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
