package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	cryptoRepository "github.com/healo/piiguard/internal/crypto/repository"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
	cryptoUseCase "github.com/healo/piiguard/internal/crypto/usecase"
	piiService "github.com/healo/piiguard/internal/pii/service"
)

// Keyring returns the PII keyring loaded from configuration. When a KMS key URI is
// configured every key is unwrapped with it before use.
func (c *Container) Keyring() (*cryptoDomain.Keyring, error) {
	var err error
	c.keyringInit.Do(func() {
		c.keyring, err = c.initKeyring()
		if err != nil {
			c.initErrors["keyring"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyring"]; exists {
		return nil, storedErr
	}
	return c.keyring, nil
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// Engine returns the in-process envelope engine.
func (c *Container) Engine() (cryptoService.Engine, error) {
	var err error
	c.engineInit.Do(func() {
		c.engine, err = c.initEngine()
		if err != nil {
			c.initErrors["engine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["engine"]; exists {
		return nil, storedErr
	}
	return c.engine, nil
}

// PIIEncryptor returns the encryption collaborator selected by PII_ENCRYPTION_BACKEND.
func (c *Container) PIIEncryptor() (cryptoUseCase.Encryptor, error) {
	var err error
	c.piiEncryptorInit.Do(func() {
		c.piiEncryptor, err = c.initPIIEncryptor()
		if err != nil {
			c.initErrors["piiEncryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["piiEncryptor"]; exists {
		return nil, storedErr
	}
	return c.piiEncryptor, nil
}

// FieldCipher returns the document field cipher.
func (c *Container) FieldCipher() (cryptoUseCase.FieldCipher, error) {
	var err error
	c.fieldCipherInit.Do(func() {
		var encryptor cryptoUseCase.Encryptor
		encryptor, err = c.PIIEncryptor()
		if err != nil {
			c.initErrors["fieldCipher"] = err
			return
		}
		c.fieldCipher = cryptoUseCase.NewFieldCipher(encryptor)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}

// Masker returns the PII masker.
func (c *Container) Masker() *piiService.Masker {
	c.maskerInit.Do(func() {
		c.masker = piiService.NewMasker()
	})
	return c.masker
}

// initKeyring builds the keyring from the active and previous keys.
func (c *Container) initKeyring() (*cryptoDomain.Keyring, error) {
	if err := cryptoDomain.ValidateKeyVersion(c.config.PIIEncryptionKeyVersion); err != nil {
		return nil, fmt.Errorf("failed to load active key: %w", err)
	}

	previous, err := cryptoDomain.ParsePreviousKeys(c.config.PIIPreviousKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to parse previous keys: %w", err)
	}

	keyring := cryptoDomain.NewKeyring(c.config.PIIEncryptionKeyVersion, []byte(c.config.PIIEncryptionKey))
	for version, material := range previous {
		if version == c.config.PIIEncryptionKeyVersion {
			continue
		}
		keyring.Add(version, material)
		cryptoDomain.Zero(material)
	}

	if c.config.KMSKeyURI == "" {
		return keyring, nil
	}

	ctx := context.Background()
	kmsService := c.KMSService()

	keeper, err := kmsService.OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		keyring.Close()
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			c.Logger().Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	if err := kmsService.UnwrapKeyring(ctx, keeper, keyring); err != nil {
		keyring.Close()
		return nil, fmt.Errorf("failed to unwrap keyring: %w", err)
	}

	c.Logger().Info("pii keyring unwrapped with kms", slog.Any("versions", keyring.Versions()))
	return keyring, nil
}

// initEngine creates the envelope engine for the configured algorithm.
func (c *Container) initEngine() (cryptoService.Engine, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.PIIEncryptionAlgorithm)
	if err != nil {
		return nil, err
	}

	keyring, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for engine: %w", err)
	}

	return cryptoService.NewEngine(keyring, algorithm, c.AEADManager()), nil
}

// initPIIEncryptor selects the in-process AEAD engine or the pgcrypto collaborator.
func (c *Container) initPIIEncryptor() (cryptoUseCase.Encryptor, error) {
	var encryptor cryptoUseCase.Encryptor

	switch c.config.PIIEncryptionBackend {
	case "aead", "":
		engine, err := c.Engine()
		if err != nil {
			return nil, fmt.Errorf("failed to get engine for pii encryptor: %w", err)
		}
		encryptor = cryptoUseCase.NewEnvelopeEncryptor(engine)
	case "pgcrypto":
		if c.config.DBDriver != "postgres" {
			return nil, fmt.Errorf("pgcrypto backend requires the postgres driver, got %s", c.config.DBDriver)
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for pii encryptor: %w", err)
		}
		keyring, err := c.Keyring()
		if err != nil {
			return nil, fmt.Errorf("failed to get keyring for pii encryptor: %w", err)
		}
		encryptor = cryptoRepository.NewPgcryptoEncryptor(db, keyring)
	default:
		return nil, fmt.Errorf("unsupported pii encryption backend: %s", c.config.PIIEncryptionBackend)
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for pii encryptor: %w", err)
		}
		return cryptoUseCase.NewEncryptorWithMetrics(encryptor, businessMetrics), nil
	}

	return encryptor, nil
}
