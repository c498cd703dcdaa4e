package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
	"github.com/healo/piiguard/internal/metrics"
)

// inquiryUseCaseWithMetrics decorates InquiryUseCase with metrics instrumentation.
type inquiryUseCaseWithMetrics struct {
	next    InquiryUseCase
	metrics metrics.BusinessMetrics
}

// NewInquiryUseCaseWithMetrics wraps an InquiryUseCase with metrics recording.
func NewInquiryUseCaseWithMetrics(useCase InquiryUseCase, m metrics.BusinessMetrics) InquiryUseCase {
	return &inquiryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Submit records metrics for inquiry submissions.
func (i *inquiryUseCaseWithMetrics) Submit(
	ctx context.Context,
	input *inquiryDomain.SubmitInquiryInput,
) (*inquiryDomain.Inquiry, error) {
	start := time.Now()
	inquiry, err := i.next.Submit(ctx, input)
	i.record(ctx, "inquiry_submit", start, err)
	return inquiry, err
}

// List records metrics for inquiry listing.
func (i *inquiryUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*inquiryDomain.Inquiry, error) {
	start := time.Now()
	inquiries, err := i.next.List(ctx, offset, limit)
	i.record(ctx, "inquiry_list", start, err)
	return inquiries, err
}

// Get records metrics for inquiry retrieval.
func (i *inquiryUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error) {
	start := time.Now()
	inquiry, err := i.next.Get(ctx, id)
	i.record(ctx, "inquiry_get", start, err)
	return inquiry, err
}

// Export records metrics for inquiry exports.
func (i *inquiryUseCaseWithMetrics) Export(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) ([]*inquiryDomain.Inquiry, error) {
	start := time.Now()
	inquiries, err := i.next.Export(ctx, createdAtFrom, createdAtTo)
	i.record(ctx, "inquiry_export", start, err)
	return inquiries, err
}

func (i *inquiryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "inquiry", operation, status)
	i.metrics.RecordDuration(ctx, "inquiry", operation, time.Since(start), status)
}
