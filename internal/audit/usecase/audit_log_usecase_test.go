package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
)

func newSignedEntry(t *testing.T, signed bool) *auditDomain.Entry {
	t.Helper()
	entry := &auditDomain.Entry{
		ID:        uuid.Must(uuid.NewV7()),
		Action:    auditDomain.ActionListInquiries,
		IPAddress: "203.0.113.0/24",
		Metadata:  map[string]any{"limit": 50},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if signed {
		ok, err := newTestSigner().Sign(entry)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return entry
}

func TestAuditLogUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes pagination through", func(t *testing.T) {
		repo := &mockRepository{}
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		entries := []*auditDomain.Entry{newSignedEntry(t, true)}

		repo.On("List", ctx, 10, 5, &from, (*time.Time)(nil)).Return(entries, nil).Once()

		got, err := NewAuditLogUseCase(repo, newTestSigner()).List(ctx, 10, 5, &from, nil)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("List", ctx, 0, 50, mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()

		_, err := NewAuditLogUseCase(repo, newTestSigner()).List(ctx, 0, 50, nil, nil)
		assert.ErrorContains(t, err, "failed to list audit entries")
	})
}

func TestAuditLogUseCase_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("counts valid, invalid and unsigned entries", func(t *testing.T) {
		repo := &mockRepository{}

		valid := newSignedEntry(t, true)
		tampered := newSignedEntry(t, true)
		tampered.Action = auditDomain.ActionExportInquiries
		unknownKey := newSignedEntry(t, true)
		unknownKey.KeyVersion = "v9"
		unsigned := newSignedEntry(t, false)

		repo.On("List", ctx, 0, verifyBatchSize, &start, &end).
			Return([]*auditDomain.Entry{valid, tampered, unknownKey, unsigned}, nil).
			Once()

		report, err := NewAuditLogUseCase(repo, newTestSigner()).VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(4), report.TotalChecked)
		assert.Equal(t, int64(3), report.SignedCount)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(2), report.InvalidCount)
		assert.ElementsMatch(t, []uuid.UUID{tampered.ID, unknownKey.ID}, report.InvalidLogs)
		repo.AssertExpectations(t)
	})

	t.Run("pages until a short batch", func(t *testing.T) {
		repo := &mockRepository{}

		full := make([]*auditDomain.Entry, verifyBatchSize)
		for i := range full {
			full[i] = newSignedEntry(t, false)
		}

		repo.On("List", ctx, 0, verifyBatchSize, &start, &end).Return(full, nil).Once()
		repo.On("List", ctx, verifyBatchSize, verifyBatchSize, &start, &end).
			Return([]*auditDomain.Entry{newSignedEntry(t, false)}, nil).
			Once()

		report, err := NewAuditLogUseCase(repo, newTestSigner()).VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(verifyBatchSize+1), report.TotalChecked)
		assert.Equal(t, int64(verifyBatchSize+1), report.UnsignedCount)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("List", ctx, 0, verifyBatchSize, &start, &end).Return(nil, errors.New("down")).Once()

		_, err := NewAuditLogUseCase(repo, newTestSigner()).VerifyBatch(ctx, start, end)
		assert.Error(t, err)
	})
}

func TestAuditLogUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	repo := &mockRepository{}
	m := &mockBusinessMetrics{}
	useCase := NewAuditLogUseCaseWithMetrics(NewAuditLogUseCase(repo, newTestSigner()), m)

	repo.On("List", ctx, 0, 50, (*time.Time)(nil), (*time.Time)(nil)).Return(nil, errors.New("down")).Once()
	m.On("RecordOperation", ctx, "audit", "audit_log_list", "error").Return().Once()
	m.On("RecordDuration", ctx, "audit", "audit_log_list", mock.AnythingOfType("time.Duration"), "error").
		Return().
		Once()

	_, err := useCase.List(ctx, 0, 50, nil, nil)
	assert.Error(t, err)
	m.AssertExpectations(t)
}
