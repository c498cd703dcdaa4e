// Package usecase implements inquiry intake and the admin views over stored inquiries.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
)

// InquiryRepository persists inquiries.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *inquiryDomain.Inquiry) error
	Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error)
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*inquiryDomain.Inquiry, error)
}

// InquiryUseCase defines the inquiry operations.
type InquiryUseCase interface {
	// Submit encrypts the protected fields of a submission and stores it with a masked summary.
	// The returned inquiry carries only the summary.
	Submit(ctx context.Context, input *inquiryDomain.SubmitInquiryInput) (*inquiryDomain.Inquiry, error)

	// List returns masked summaries newest first. Documents are never included.
	List(ctx context.Context, offset, limit int) ([]*inquiryDomain.Inquiry, error)

	// Get returns one inquiry with its document decrypted.
	Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error)

	// Export returns up to MaxExportSize decrypted inquiries created within the inclusive bounds.
	Export(ctx context.Context, createdAtFrom, createdAtTo *time.Time) ([]*inquiryDomain.Inquiry, error)
}
