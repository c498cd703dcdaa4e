package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
)

// Recorder stores audit entries with masked IPs and sanitized metadata.
// Write failures are fail-safe: they are logged and never block the guarded action.
type Recorder struct {
	repo    Repository
	signer  EntrySigner
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	inflight   sync.WaitGroup
	failureLog rate.Sometimes
}

// NewRecorder creates a Recorder. timeout bounds each write.
func NewRecorder(repo Repository, signer EntrySigner, timeout time.Duration, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:       repo,
		signer:     signer,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
		failureLog: rate.Sometimes{First: 5, Interval: 30 * time.Second},
	}
}

// Record builds, signs and stores an entry for event.
func (r *Recorder) Record(ctx context.Context, event auditDomain.Event) error {
	entry := r.newEntry(event)

	if _, err := r.signer.Sign(entry); err != nil {
		r.logger.Warn("audit entry stored unsigned",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err))
		entry.Signature = nil
		entry.KeyVersion = ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", auditDomain.ErrAuditWriteFailed, err)
	}
	return nil
}

// RecordAsync stores event in the background. Cancellation of ctx does not abort
// the write; only its values are kept.
func (r *Recorder) RecordAsync(ctx context.Context, event auditDomain.Event) {
	detached := context.WithoutCancel(ctx)

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		if err := r.Record(detached, event); err != nil {
			r.failureLog.Do(func() {
				r.logger.Error("audit write failed",
					slog.String("action", string(event.Action)),
					slog.Any("error", err))
			})
		}
	}()
}

// Wait blocks until every in-flight RecordAsync write has finished or ctx is done.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) newEntry(event auditDomain.Event) *auditDomain.Entry {
	return &auditDomain.Entry{
		ID:          uuid.Must(uuid.NewV7()),
		ActorEmail:  strings.ToLower(strings.TrimSpace(event.ActorEmail)),
		ActorUserID: event.ActorUserID,
		Action:      event.Action,
		IPAddress:   auditDomain.MaskIP(event.IP),
		UserAgent:   auditDomain.SanitizeUserAgent(event.UserAgent),
		Metadata:    auditDomain.SanitizeMetadata(event.Metadata),
		// Databases keep microseconds; truncating keeps signatures stable across reads.
		CreatedAt: r.now().UTC().Truncate(time.Microsecond),
	}
}
