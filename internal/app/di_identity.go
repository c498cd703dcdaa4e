package app

import (
	"fmt"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	identityService "github.com/healo/piiguard/internal/identity/service"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
)

// IdentityProvider returns the identity provider selected by IDENTITY_PROVIDER.
func (c *Container) IdentityProvider() (*identityService.Provider, error) {
	var err error
	c.identityProviderInit.Do(func() {
		c.identityProvider, err = c.initIdentityProvider()
		if err != nil {
			c.initErrors["identityProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityProvider"]; exists {
		return nil, storedErr
	}
	return c.identityProvider, nil
}

// AdminResolver returns the admin authorization resolver.
func (c *Container) AdminResolver() (identityUseCase.AdminResolver, error) {
	var err error
	c.adminResolverInit.Do(func() {
		var provider *identityService.Provider
		provider, err = c.IdentityProvider()
		if err != nil {
			c.initErrors["adminResolver"] = err
			return
		}
		c.adminResolver = identityUseCase.NewResolver(
			provider,
			identityDomain.ParseAllowlist(c.config.AdminEmailAllowlist),
			c.Logger(),
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminResolver"]; exists {
		return nil, storedErr
	}
	return c.adminResolver, nil
}

// initIdentityProvider creates the token validator and wraps it with cookie support.
func (c *Container) initIdentityProvider() (*identityService.Provider, error) {
	var validator identityService.TokenValidator

	switch c.config.IdentityProvider {
	case "gotrue", "":
		if c.config.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL is required for the gotrue identity provider")
		}
		validator = identityService.NewGoTrueClient(
			c.config.SupabaseURL,
			c.config.SupabaseAnonKey,
			c.config.IdentityTimeout,
			c.config.IdentityMaxRetries,
			c.Logger(),
		)
	case "jwt":
		if c.config.IdentityJWTSecret == "" {
			return nil, fmt.Errorf("IDENTITY_JWT_SECRET is required for the jwt identity provider")
		}
		validator = identityService.NewJWTValidator(c.config.IdentityJWTSecret)
	default:
		return nil, fmt.Errorf("unsupported identity provider: %s", c.config.IdentityProvider)
	}

	return identityService.NewProvider(validator, c.config.IdentitySessionCookie), nil
}
