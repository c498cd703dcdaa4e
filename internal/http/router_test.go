package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditHTTP "github.com/healo/piiguard/internal/audit/http"
	"github.com/healo/piiguard/internal/config"
	guardUseCase "github.com/healo/piiguard/internal/guard/usecase"
	identityDomain "github.com/healo/piiguard/internal/identity/domain"
	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
	inquiryHTTP "github.com/healo/piiguard/internal/inquiry/http"
	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
	"github.com/healo/piiguard/internal/ratelimit/repository"
	ratelimitUseCase "github.com/healo/piiguard/internal/ratelimit/usecase"
	sessionHTTP "github.com/healo/piiguard/internal/session/http"
)

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) Check(
	ctx context.Context,
	req guardUseCase.Request,
	policy ratelimitDomain.Policy,
) guardUseCase.Result {
	args := m.Called(ctx, req, policy)
	return args.Get(0).(guardUseCase.Result)
}

type mockInquiryUseCase struct {
	mock.Mock
}

func (m *mockInquiryUseCase) Submit(
	ctx context.Context,
	input *inquiryDomain.SubmitInquiryInput,
) (*inquiryDomain.Inquiry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inquiryDomain.Inquiry), args.Error(1)
}

func (m *mockInquiryUseCase) List(ctx context.Context, offset, limit int) ([]*inquiryDomain.Inquiry, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inquiryDomain.Inquiry), args.Error(1)
}

func (m *mockInquiryUseCase) Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inquiryDomain.Inquiry), args.Error(1)
}

func (m *mockInquiryUseCase) Export(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) ([]*inquiryDomain.Inquiry, error) {
	args := m.Called(ctx, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inquiryDomain.Inquiry), args.Error(1)
}

// discardRecorder drops audit events.
type discardRecorder struct{}

func (discardRecorder) Record(context.Context, auditDomain.Event) error { return nil }

func (discardRecorder) RecordAsync(context.Context, auditDomain.Event) {}

type routerEnv struct {
	router    http.Handler
	guard     *mockGuard
	inquiries *mockInquiryUseCase
}

func setupRouter(t *testing.T) routerEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := &mockGuard{}
	inquiries := &mockInquiryUseCase{}
	recorder := discardRecorder{}

	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(&config.Config{}, RouterDeps{
		Limiter:         ratelimitUseCase.NewLimiter(repository.NewMemoryStore(), logger),
		Guard:           guard,
		InquiryHandler:  inquiryHTTP.NewInquiryHandler(inquiries, recorder, logger),
		AuditLogHandler: auditHTTP.NewAuditLogHandler(nil, recorder, logger),
		LogoutHandler:   sessionHTTP.NewLogoutHandler(nil, recorder, sessionHTTP.CookieConfig{}),
		Recorder:        recorder,
		AdminPolicy:     ratelimitDomain.Policy{APIName: "admin", Window: time.Minute, MaxRequests: 100},
		FormPolicy:      ratelimitDomain.Policy{APIName: "inquiry_form", Window: time.Minute, MaxRequests: 5},
		SessionEnforced: false,
	}, nil, "test")

	return routerEnv{router: server.GetHandler(), guard: guard, inquiries: inquiries}
}

func validSubmission(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"full_name":      "Maria Silva",
		"email":          "maria@example.com",
		"contact_method": "email",
		"message":        "I would like a quote for dental implants.",
		"consent":        true,
	})
	require.NoError(t, err)
	return body
}

func TestRouter_PublicInquiryIsRateLimited(t *testing.T) {
	env := setupRouter(t)
	env.inquiries.On("Submit", mock.Anything, mock.Anything).
		Return(&inquiryDomain.Inquiry{ID: uuid.Must(uuid.NewV7()), CreatedAt: time.Now().UTC()}, nil)

	body := validSubmission(t)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/public/inquiries", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, "request %d", i+1)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/public/inquiries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	env.inquiries.AssertNumberOfCalls(t, "Submit", 5)
}

func TestRouter_AdminRoutesRequireGuard(t *testing.T) {
	env := setupRouter(t)
	env.guard.On("Check", mock.Anything, mock.Anything, mock.Anything).
		Return(guardUseCase.Result{
			Outcome:  guardUseCase.OutcomeDenied,
			Decision: identityDomain.Decision{Reason: identityDomain.ReasonNoUser},
		})

	for _, path := range []string{
		"/v1/admin/inquiries",
		"/v1/admin/inquiries/export",
		"/v1/admin/inquiries/" + uuid.Must(uuid.NewV7()).String(),
		"/v1/admin/audit-logs",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/session/logout", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.inquiries.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	env.inquiries.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_ExportRouteTakesPrecedenceOverID(t *testing.T) {
	env := setupRouter(t)
	env.guard.On("Check", mock.Anything, mock.Anything, mock.Anything).
		Return(guardUseCase.Result{
			Outcome: guardUseCase.OutcomeAllowed,
			Decision: identityDomain.Decision{
				IsAdmin:    true,
				Reason:     identityDomain.ReasonEmailAllowlist,
				AuthMethod: identityDomain.AuthMethodBearer,
			},
		})
	env.inquiries.On("Export", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]*inquiryDomain.Inquiry{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/inquiries/export", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env.inquiries.AssertExpectations(t)
	env.inquiries.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
