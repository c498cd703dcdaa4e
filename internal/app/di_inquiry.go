package app

import (
	"fmt"

	inquiryHTTP "github.com/healo/piiguard/internal/inquiry/http"
	inquiryRepository "github.com/healo/piiguard/internal/inquiry/repository"
	inquiryUseCase "github.com/healo/piiguard/internal/inquiry/usecase"
)

// InquiryRepository returns the inquiry repository for the configured database driver.
func (c *Container) InquiryRepository() (inquiryUseCase.InquiryRepository, error) {
	var err error
	c.inquiryRepositoryInit.Do(func() {
		c.inquiryRepository, err = c.initInquiryRepository()
		if err != nil {
			c.initErrors["inquiryRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["inquiryRepository"]; exists {
		return nil, storedErr
	}
	return c.inquiryRepository, nil
}

// InquiryUseCase returns the inquiry use case.
func (c *Container) InquiryUseCase() (inquiryUseCase.InquiryUseCase, error) {
	var err error
	c.inquiryUseCaseInit.Do(func() {
		c.inquiryUseCase, err = c.initInquiryUseCase()
		if err != nil {
			c.initErrors["inquiryUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["inquiryUseCase"]; exists {
		return nil, storedErr
	}
	return c.inquiryUseCase, nil
}

// InquiryHandler returns the inquiry HTTP handler.
func (c *Container) InquiryHandler() (*inquiryHTTP.InquiryHandler, error) {
	var err error
	c.inquiryHandlerInit.Do(func() {
		c.inquiryHandler, err = c.initInquiryHandler()
		if err != nil {
			c.initErrors["inquiryHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["inquiryHandler"]; exists {
		return nil, storedErr
	}
	return c.inquiryHandler, nil
}

// initInquiryRepository creates the inquiry repository based on the database driver.
func (c *Container) initInquiryRepository() (inquiryUseCase.InquiryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for inquiry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return inquiryRepository.NewPostgreSQLInquiryRepository(db), nil
	case "mysql":
		return inquiryRepository.NewMySQLInquiryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initInquiryUseCase creates the inquiry use case with all its dependencies.
func (c *Container) initInquiryUseCase() (inquiryUseCase.InquiryUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for inquiry use case: %w", err)
	}

	repo, err := c.InquiryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry repository for inquiry use case: %w", err)
	}

	fieldCipher, err := c.FieldCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get field cipher for inquiry use case: %w", err)
	}

	baseUseCase := inquiryUseCase.NewInquiryUseCase(txManager, repo, fieldCipher, c.Masker())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for inquiry use case: %w", err)
		}
		return inquiryUseCase.NewInquiryUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initInquiryHandler creates the inquiry handler.
func (c *Container) initInquiryHandler() (*inquiryHTTP.InquiryHandler, error) {
	useCase, err := c.InquiryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry use case for inquiry handler: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for inquiry handler: %w", err)
	}

	return inquiryHTTP.NewInquiryHandler(useCase, recorder, c.Logger()), nil
}
