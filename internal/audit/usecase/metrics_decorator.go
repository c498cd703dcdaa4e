package usecase

import (
	"context"
	"time"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	"github.com/healo/piiguard/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	start := time.Now()
	entries, err := a.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	a.record(ctx, "audit_log_list", start, err)
	return entries, err
}

// VerifyBatch records metrics for signature verification runs.
func (a *auditLogUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*VerificationReport, error) {
	begin := time.Now()
	report, err := a.next.VerifyBatch(ctx, start, end)
	a.record(ctx, "audit_log_verify", begin, err)
	return report, err
}

func (a *auditLogUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", operation, status)
	a.metrics.RecordDuration(ctx, "audit", operation, time.Since(start), status)
}
