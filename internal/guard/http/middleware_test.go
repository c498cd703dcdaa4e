package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditService "github.com/healo/piiguard/internal/audit/service"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	cryptoDomain "github.com/healo/piiguard/internal/crypto/domain"
	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	"github.com/healo/piiguard/internal/metrics"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	"github.com/healo/piiguard/internal/ratelimit/repository"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
)

// stubProvider accepts the tokens it knows about.
type stubProvider struct {
	users map[string]*identityDomain.User
}

func (s *stubProvider) ValidateBearerToken(_ context.Context, token string) (*identityDomain.User, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, identityDomain.ErrInvalidToken
}

func (s *stubProvider) GetSessionUser(_ context.Context, _ []*http.Cookie) (*identityDomain.User, error) {
	return nil, identityDomain.ErrNoSession
}

// memoryAuditRepository keeps entries in memory.
type memoryAuditRepository struct {
	mu      sync.Mutex
	entries []*auditDomain.Entry
}

func (m *memoryAuditRepository) Create(_ context.Context, entry *auditDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditRepository) List(
	_ context.Context,
	_, _ int,
	_, _ *time.Time,
) ([]*auditDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*auditDomain.Entry(nil), m.entries...), nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *memoryAuditRepository
	recorder *auditUseCase.Recorder
}

func setupGuardedRouter(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider := &stubProvider{users: map[string]*identityDomain.User{
		"admin-token": {
			ID:           "u-1",
			Email:        "admin@healo.com",
			UserMetadata: map[string]any{"role": "admin"},
		},
		"user-token": {ID: "u-2", Email: "patient@example.com"},
	}}
	resolver := identityUseCase.NewResolver(provider, identityDomain.ParseAllowlist(""), logger)
	limiter := ratelimitUseCase.NewLimiter(repository.NewMemoryStore(), logger)

	repo := &memoryAuditRepository{}
	signer := auditService.NewSigner(cryptoDomain.NewKeyring("v1", []byte("0123456789abcdef0123456789abcdef")))
	recorder := auditUseCase.NewRecorder(repo, signer, time.Second, logger)

	guard := guardUseCase.NewGuard(limiter, resolver, recorder, metrics.NewNoOpBusinessMetrics(), logger)
	policy := ratelimitDomain.Policy{APIName: "admin", Window: time.Minute, MaxRequests: 100}

	router := gin.New()
	router.Use(requestid.New())
	admin := router.Group("/v1/admin", RequireAdmin(guard, policy, logger))
	admin.GET("/inquiries", func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"ok": true, "email": identity.Email})
	})

	return testEnv{router: router, repo: repo, recorder: recorder}
}

func (e testEnv) get(token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/inquiries", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)
	return w
}

func (e testEnv) drain(t *testing.T) []*auditDomain.Entry {
	t.Helper()
	require.NoError(t, e.recorder.Wait(context.Background()))
	entries, err := e.repo.List(context.Background(), 0, 0, nil, nil)
	require.NoError(t, err)
	return entries
}

func TestRequireAdmin_UnauthenticatedIsDeniedAndAuditedOnce(t *testing.T) {
	env := setupGuardedRouter(t)

	w := env.get("")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"unauthorized"}`, w.Body.String())

	entries := env.drain(t)
	require.Len(t, entries, 1)
	assert.Equal(t, auditDomain.ActionUnauthorizedAdminAccess, entries[0].Action)
	assert.Equal(t, "no_user", entries[0].Metadata["reason"])
	assert.Equal(t, "/v1/admin/inquiries", entries[0].Metadata["path"])
	assert.Equal(t, "GET", entries[0].Metadata["method"])
	assert.Equal(t, "203.0.113.0/24", entries[0].IPAddress)
	assert.True(t, entries[0].IsSigned())
}

func TestRequireAdmin_DenialsLookAlike(t *testing.T) {
	env := setupGuardedRouter(t)

	anonymous := env.get("")
	nonAdmin := env.get("user-token")
	invalid := env.get("forged-token")

	assert.Equal(t, anonymous.Code, nonAdmin.Code)
	assert.Equal(t, anonymous.Body.String(), nonAdmin.Body.String())
	assert.Equal(t, anonymous.Body.String(), invalid.Body.String())

	entries := env.drain(t)
	require.Len(t, entries, 3)

	reasons := map[any]int{}
	for _, entry := range entries {
		reasons[entry.Metadata["reason"]]++
	}
	assert.Equal(t, map[any]int{"no_user": 2, "not_admin": 1}, reasons)
}

func TestRequireAdmin_AdminPassesWithoutAudit(t *testing.T) {
	env := setupGuardedRouter(t)

	w := env.get("admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"email":"admin@healo.com"}`, w.Body.String())
	assert.Empty(t, env.drain(t))
}

func TestRequireAdmin_RateLimitsThe101stCall(t *testing.T) {
	env := setupGuardedRouter(t)

	for i := range 100 {
		w := env.get("admin-token")
		require.Equal(t, http.StatusOK, w.Code, "call %d", i+1)
	}

	w := env.get("admin-token")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 60)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "rate_limited", body["error"])
	assert.Equal(t, float64(retryAfter), body["retryAfter"])
	assert.Empty(t, env.drain(t))
}

func TestGetIdentity_Missing(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	assert.False(t, ok)

	_, ok = GetIdentity(WithIdentity(context.Background(), nil))
	assert.False(t, ok)
}
