package usecase

import (
	"context"
	"time"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	apperrors "github.com/healo/piiguard/internal/errors"
)

// verifyBatchSize is the page size used when walking a time range.
const verifyBatchSize = 500

type auditLogUseCase struct {
	repo   Repository
	signer EntrySigner
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(repo Repository, signer EntrySigner) AuditLogUseCase {
	return &auditLogUseCase{
		repo:   repo,
		signer: signer,
	}
}

// List retrieves entries newest first with pagination and optional inclusive time bounds.
func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	entries, err := a.repo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return entries, nil
}

// VerifyBatch checks every entry in [start, end]. Entries signed with a key version
// that is no longer loaded cannot be vouched for and are reported invalid.
func (a *auditLogUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	report := &VerificationReport{}

	for offset := 0; ; offset += verifyBatchSize {
		entries, err := a.repo.List(ctx, offset, verifyBatchSize, &start, &end)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit entries")
		}

		for _, entry := range entries {
			report.TotalChecked++

			if !entry.IsSigned() {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++

			if err := a.signer.Verify(entry); err != nil {
				report.InvalidCount++
				report.InvalidLogs = append(report.InvalidLogs, entry.ID)
				continue
			}
			report.ValidCount++
		}

		if len(entries) < verifyBatchSize {
			return report, nil
		}
	}
}
