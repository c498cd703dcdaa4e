package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	identityUseCase "github.com/healo/piiguard/internal/identity/usecase"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Check(
	ctx context.Context,
	callerID string,
	policy ratelimitDomain.Policy,
) ratelimitDomain.Decision {
	args := m.Called(ctx, callerID, policy)
	return args.Get(0).(ratelimitDomain.Decision)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, creds identityUseCase.Credentials) identityDomain.Decision {
	args := m.Called(ctx, creds)
	return args.Get(0).(identityDomain.Decision)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, event auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockRecorder) RecordAsync(ctx context.Context, event auditDomain.Event) {
	m.Called(ctx, event)
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordGuardDecision(ctx context.Context, outcome, reason string) {
	m.Called(ctx, outcome, reason)
}

func (m *mockBusinessMetrics) RecordCryptoFailure(ctx context.Context, operation, kind string) {
	m.Called(ctx, operation, kind)
}

var adminPolicy = ratelimitDomain.Policy{APIName: "admin", Window: time.Minute, MaxRequests: 100}

func newRequest() Request {
	return Request{
		CallerID:    "203.0.113.7",
		IP:          "203.0.113.7",
		UserAgent:   "curl/8.0",
		Path:        "/v1/admin/inquiries",
		Method:      "GET",
		RequestID:   "req-1",
		Credentials: identityUseCase.Credentials{BearerToken: "tok"},
	}
}

type guardMocks struct {
	limiter  *mockLimiter
	resolver *mockResolver
	recorder *mockRecorder
	metrics  *mockBusinessMetrics
}

func newTestGuard() (Guard, guardMocks) {
	m := guardMocks{
		limiter:  &mockLimiter{},
		resolver: &mockResolver{},
		recorder: &mockRecorder{},
		metrics:  &mockBusinessMetrics{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGuard(m.limiter, m.resolver, m.recorder, m.metrics, logger), m
}

func (m guardMocks) assertAll(t *testing.T) {
	m.limiter.AssertExpectations(t)
	m.resolver.AssertExpectations(t)
	m.recorder.AssertExpectations(t)
	m.metrics.AssertExpectations(t)
}

func TestGuard_Check(t *testing.T) {
	ctx := context.Background()
	allowed := ratelimitDomain.Decision{Allowed: true, Remaining: 99, ResetAt: time.Now().Add(time.Minute)}

	t.Run("admin is allowed without an audit entry", func(t *testing.T) {
		guard, m := newTestGuard()
		identity := &identityDomain.Identity{UserID: "u-1", Email: "admin@healo.com"}
		decision := identityDomain.Decision{
			IsAdmin:  true,
			Reason:   identityDomain.ReasonUserMetadataRole,
			Identity: identity,
		}

		m.limiter.On("Check", ctx, "203.0.113.7", adminPolicy).Return(allowed).Once()
		m.resolver.On("Resolve", ctx, newRequest().Credentials).Return(decision).Once()
		m.metrics.On("RecordGuardDecision", ctx, "allowed", "user_metadata_role").Return().Once()

		result := guard.Check(ctx, newRequest(), adminPolicy)
		assert.True(t, result.Allowed())
		assert.Same(t, identity, result.Decision.Identity)
		m.recorder.AssertNotCalled(t, "RecordAsync", mock.Anything, mock.Anything)
		m.assertAll(t)
	})

	t.Run("rate limit runs before resolution", func(t *testing.T) {
		guard, m := newTestGuard()
		denied := ratelimitDomain.Decision{Allowed: false, ResetAt: time.Now().Add(30 * time.Second)}

		m.limiter.On("Check", ctx, "203.0.113.7", adminPolicy).Return(denied).Once()
		m.metrics.On("RecordGuardDecision", ctx, "rate_limited", "").Return().Once()

		result := guard.Check(ctx, newRequest(), adminPolicy)
		assert.Equal(t, OutcomeRateLimited, result.Outcome)
		assert.Equal(t, denied, result.RateLimit)
		m.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		m.recorder.AssertNotCalled(t, "RecordAsync", mock.Anything, mock.Anything)
		m.assertAll(t)
	})

	t.Run("non admin is denied and audited once", func(t *testing.T) {
		guard, m := newTestGuard()
		decision := identityDomain.Decision{
			Reason: identityDomain.ReasonNotAdmin,
			Identity: &identityDomain.Identity{
				UserID:     "u-2",
				Email:      "user@example.com",
				AuthMethod: identityDomain.AuthMethodCookie,
			},
		}

		m.limiter.On("Check", ctx, "203.0.113.7", adminPolicy).Return(allowed).Once()
		m.resolver.On("Resolve", ctx, newRequest().Credentials).Return(decision).Once()
		m.recorder.On("RecordAsync", ctx, auditDomain.Event{
			ActorEmail:  "user@example.com",
			ActorUserID: "u-2",
			Action:      auditDomain.ActionUnauthorizedAdminAccess,
			IP:          "203.0.113.7",
			UserAgent:   "curl/8.0",
			Metadata: map[string]any{
				"reason":      "not_admin",
				"path":        "/v1/admin/inquiries",
				"method":      "GET",
				"request_id":  "req-1",
				"auth_method": "cookie",
			},
		}).Return().Once()
		m.metrics.On("RecordGuardDecision", ctx, "denied", "not_admin").Return().Once()

		result := guard.Check(ctx, newRequest(), adminPolicy)
		assert.Equal(t, OutcomeDenied, result.Outcome)
		assert.False(t, result.Allowed())
		m.assertAll(t)
	})

	t.Run("anonymous denial has no actor", func(t *testing.T) {
		guard, m := newTestGuard()

		m.limiter.On("Check", ctx, "203.0.113.7", adminPolicy).Return(allowed).Once()
		m.resolver.On("Resolve", ctx, mock.Anything).
			Return(identityDomain.Decision{Reason: identityDomain.ReasonNoUser}).
			Once()
		m.recorder.On("RecordAsync", ctx, mock.MatchedBy(func(e auditDomain.Event) bool {
			return e.ActorEmail == "" && e.ActorUserID == "" && e.Metadata["reason"] == "no_user"
		})).Return().Once()
		m.metrics.On("RecordGuardDecision", ctx, "denied", "no_user").Return().Once()

		result := guard.Check(ctx, newRequest(), adminPolicy)
		assert.Equal(t, OutcomeDenied, result.Outcome)
		m.assertAll(t)
	})
}
