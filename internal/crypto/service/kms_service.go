package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// UnwrapKeyring decrypts every key in the keyring with the keeper and stores the
// plaintext material back under the same version.
func (k *kmsService) UnwrapKeyring(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	keyring *cryptoDomain.Keyring,
) error {
	for _, version := range keyring.Versions() {
		key, ok := keyring.Get(version)
		if !ok {
			continue
		}

		wrapped, err := base64.StdEncoding.DecodeString(string(key.Material))
		if err != nil {
			return fmt.Errorf("failed to decode wrapped key %s: %w", version, err)
		}

		material, err := keeper.Decrypt(ctx, wrapped)
		if err != nil {
			return fmt.Errorf("failed to unwrap key %s: %w", version, err)
		}

		keyring.Add(version, material)
		cryptoDomain.Zero(material)
	}
	return nil
}
