// Package usecase records, lists and verifies audit entries.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
)

// Repository persists audit entries. It has no update or delete operation.
type Repository interface {
	Create(ctx context.Context, entry *auditDomain.Entry) error
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, error)
}

// EntrySigner signs entries before storage and verifies them afterwards.
type EntrySigner interface {
	Sign(entry *auditDomain.Entry) (bool, error)
	Verify(entry *auditDomain.Entry) error
}

// AuditRecorder writes audit entries.
type AuditRecorder interface {
	// Record stores the event and reports auditDomain.ErrAuditWriteFailed on failure.
	Record(ctx context.Context, event auditDomain.Event) error

	// RecordAsync dispatches the event on a detached goroutine. The caller never
	// waits for it and is never affected by its outcome; failures are only logged.
	RecordAsync(ctx context.Context, event auditDomain.Event)
}

// VerificationReport summarizes a signature check over a time range.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditLogUseCase reads the audit trail.
type AuditLogUseCase interface {
	// List returns entries newest first. Nil bounds are unbounded; bounds are inclusive.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, error)

	// VerifyBatch re-computes the signature of every entry created in [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)
}
