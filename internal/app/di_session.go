package app

import (
	"fmt"

	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	sessionDomain "github.com/healo/piiguard/internal/session/domain"
	sessionHTTP "github.com/healo/piiguard/internal/session/http"
	sessionRepository "github.com/healo/piiguard/internal/session/repository"
	sessionUseCase "github.com/healo/piiguard/internal/session/usecase"
)

// SessionStore returns the session metadata store selected by ADMIN_SESSION_STORE.
func (c *Container) SessionStore() (sessionUseCase.Store, error) {
	var err error
	c.sessionStoreInit.Do(func() {
		c.sessionStore, err = c.initSessionStore()
		if err != nil {
			c.initErrors["sessionStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionStore"]; exists {
		return nil, storedErr
	}
	return c.sessionStore, nil
}

// SessionUseCase returns the admin session policy use case.
func (c *Container) SessionUseCase() (sessionUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		var store sessionUseCase.Store
		store, err = c.SessionStore()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
			return
		}
		c.sessionUseCase = sessionUseCase.NewSessionUseCase(store, c.sessionPolicy(), c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// LogoutHandler returns the admin logout handler.
func (c *Container) LogoutHandler() (*sessionHTTP.LogoutHandler, error) {
	var err error
	c.logoutHandlerInit.Do(func() {
		c.logoutHandler, err = c.initLogoutHandler()
		if err != nil {
			c.initErrors["logoutHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["logoutHandler"]; exists {
		return nil, storedErr
	}
	return c.logoutHandler, nil
}

// AccessGuard returns the guard protecting admin routes.
func (c *Container) AccessGuard() (guardUseCase.Guard, error) {
	var err error
	c.accessGuardInit.Do(func() {
		c.accessGuard, err = c.initAccessGuard()
		if err != nil {
			c.initErrors["accessGuard"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessGuard"]; exists {
		return nil, storedErr
	}
	return c.accessGuard, nil
}

// initSessionStore creates the store for the configured backend.
func (c *Container) initSessionStore() (sessionUseCase.Store, error) {
	switch c.config.AdminSessionStore {
	case "memory", "":
		return sessionRepository.NewMemoryStore(), nil
	case "redis":
		client, err := c.RedisClient()
		if err != nil {
			return nil, err
		}
		return sessionRepository.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", c.config.AdminSessionStore)
	}
}

// initLogoutHandler creates the logout handler.
func (c *Container) initLogoutHandler() (*sessionHTTP.LogoutHandler, error) {
	provider, err := c.IdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity provider for logout handler: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for logout handler: %w", err)
	}

	return sessionHTTP.NewLogoutHandler(provider, recorder, c.sessionCookieConfig()), nil
}

// initAccessGuard creates the guard with all its dependencies.
func (c *Container) initAccessGuard() (guardUseCase.Guard, error) {
	limiter, err := c.RateLimiter()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limiter for access guard: %w", err)
	}

	resolver, err := c.AdminResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin resolver for access guard: %w", err)
	}

	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for access guard: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for access guard: %w", err)
	}

	return guardUseCase.NewGuard(limiter, resolver, recorder, businessMetrics, c.Logger()), nil
}

func (c *Container) sessionPolicy() sessionDomain.Policy {
	policy := sessionDomain.DefaultPolicy()
	if c.config.AdminIdleTimeout > 0 {
		policy.Idle = c.config.AdminIdleTimeout
	}
	if c.config.AdminAbsoluteTimeout > 0 {
		policy.Absolute = c.config.AdminAbsoluteTimeout
	}
	return policy
}

func (c *Container) sessionCookieConfig() sessionHTTP.CookieConfig {
	return sessionHTTP.CookieConfig{Secure: c.config.CookieSecure}
}
