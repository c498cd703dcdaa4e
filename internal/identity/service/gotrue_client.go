package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// maxUserResponseBytes bounds the user document read from the provider.
const maxUserResponseBytes = 1 << 20

// GoTrueClient validates access tokens against a Supabase Auth (GoTrue) server
// by calling GET /auth/v1/user. Transient 5xx and connection errors are retried.
// Concurrent validations of the same token share one upstream call.
type GoTrueClient struct {
	baseURL string
	anonKey string
	client  *retryablehttp.Client
	group   singleflight.Group
	// callTimeout bounds one shared upstream call including its retries.
	callTimeout time.Duration
}

// NewGoTrueClient creates a GoTrueClient. baseURL is the project URL without the /auth/v1 suffix.
func NewGoTrueClient(
	baseURL, anonKey string,
	timeout time.Duration,
	maxRetries int,
	logger *slog.Logger,
) *GoTrueClient {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = logger

	return &GoTrueClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		client:      client,
		callTimeout: time.Duration(maxRetries+1)*timeout + time.Duration(maxRetries)*client.RetryWaitMax,
	}
}

// ValidateToken returns the user owning token.
func (g *GoTrueClient) ValidateToken(ctx context.Context, token string) (*identityDomain.User, error) {
	if token == "" {
		return nil, identityDomain.ErrInvalidToken
	}

	// The shared call outlives any single caller; each caller stops waiting on its own context.
	ch := g.group.DoChan(token, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.callTimeout)
		defer cancel()
		return g.fetchUser(callCtx, token)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrProviderUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers must not share the singleflight result.
		user := *res.Val.(*identityDomain.User)
		user.UserMetadata = maps.Clone(user.UserMetadata)
		user.AppMetadata = maps.Clone(user.AppMetadata)
		return &user, nil
	}
}

func (g *GoTrueClient) fetchUser(ctx context.Context, token string) (*identityDomain.User, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identityDomain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil, identityDomain.ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", identityDomain.ErrProviderUnavailable, resp.StatusCode)
	}

	var user identityDomain.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserResponseBytes)).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode user: %v", identityDomain.ErrProviderUnavailable, err)
	}
	if user.ID == "" {
		return nil, identityDomain.ErrInvalidToken
	}

	return &user, nil
}
