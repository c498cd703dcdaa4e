package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	ratelimitRepository "github.com/healo/piiguard/internal/ratelimit/repository"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
)

// RedisClient returns the Redis client built from REDIS_URL.
func (c *Container) RedisClient() (redis.UniversalClient, error) {
	var err error
	c.redisClientInit.Do(func() {
		var opts *redis.Options
		opts, err = redis.ParseURL(c.config.RedisURL)
		if err != nil {
			err = fmt.Errorf("failed to parse redis url: %w", err)
			c.initErrors["redisClient"] = err
			return
		}
		c.redisClient = redis.NewClient(opts)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["redisClient"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// RateLimitStore returns the window store selected by RATE_LIMIT_STORE.
func (c *Container) RateLimitStore() (ratelimitUseCase.Store, error) {
	var err error
	c.rateLimitStoreInit.Do(func() {
		c.rateLimitStore, err = c.initRateLimitStore()
		if err != nil {
			c.initErrors["rateLimitStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rateLimitStore"]; exists {
		return nil, storedErr
	}
	return c.rateLimitStore, nil
}

// RateLimiter returns the fixed-window limiter.
func (c *Container) RateLimiter() (ratelimitUseCase.RateLimiter, error) {
	var err error
	c.rateLimiterInit.Do(func() {
		var store ratelimitUseCase.Store
		store, err = c.RateLimitStore()
		if err != nil {
			c.initErrors["rateLimiter"] = err
			return
		}
		c.rateLimiter = ratelimitUseCase.NewLimiter(store, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rateLimiter"]; exists {
		return nil, storedErr
	}
	return c.rateLimiter, nil
}

// Sweeper returns the background task purging stale windows.
func (c *Container) Sweeper() (*ratelimitUseCase.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		var store ratelimitUseCase.Store
		store, err = c.RateLimitStore()
		if err != nil {
			c.initErrors["sweeper"] = err
			return
		}
		c.sweeper = ratelimitUseCase.NewSweeper(
			store,
			c.config.RateLimitEntryTTL,
			c.config.RateLimitSweepInterval,
			c.Logger(),
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// initRateLimitStore creates the store for the configured backend.
func (c *Container) initRateLimitStore() (ratelimitUseCase.Store, error) {
	switch c.config.RateLimitStore {
	case "memory", "":
		return ratelimitRepository.NewMemoryStore(), nil
	case "redis":
		client, err := c.RedisClient()
		if err != nil {
			return nil, err
		}
		return ratelimitRepository.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", c.config.RateLimitStore)
	}
}

func (c *Container) adminRateLimitPolicy() ratelimitDomain.Policy {
	return ratelimitDomain.Policy{
		APIName:     "admin",
		Window:      c.config.RateLimitAdminWindow,
		MaxRequests: c.config.RateLimitAdminMaxRequests,
	}
}

func (c *Container) formRateLimitPolicy() ratelimitDomain.Policy {
	return ratelimitDomain.Policy{
		APIName:     "inquiry_form",
		Window:      c.config.RateLimitFormWindow,
		MaxRequests: c.config.RateLimitFormMaxRequests,
	}
}
