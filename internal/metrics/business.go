package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records what the service does with personal data and admin access.
type BusinessMetrics interface {
	// RecordOperation counts one operation of a domain ("inquiry", "audit", "crypto")
	// with status "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordGuardDecision counts one access guard outcome ("allowed", "denied",
	// "rate_limited") with the decision reason behind it.
	RecordGuardDecision(ctx context.Context, outcome, reason string)

	// RecordCryptoFailure counts a failed encrypt or decrypt by failure kind, such as
	// "authentication_failed" or "key_too_short".
	RecordCryptoFailure(ctx context.Context, operation, kind string)
}

type businessMetrics struct {
	operations     metric.Int64Counter
	durations      metric.Float64Histogram
	guardDecisions metric.Int64Counter
	cryptoFailures metric.Int64Counter
}

// NewBusinessMetrics creates the business instruments on meterProvider. Metric names are
// prefixed with namespace, e.g. "piiguard_guard_decisions_total".
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	b := &businessMetrics{}

	var err error
	if b.operations, err = meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Business operations by domain, operation and status"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if b.durations, err = meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if b.guardDecisions, err = meter.Int64Counter(
		namespace+"_guard_decisions_total",
		metric.WithDescription("Admin access guard outcomes by decision reason"),
		metric.WithUnit("{decision}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create guard decision counter: %w", err)
	}

	if b.cryptoFailures, err = meter.Int64Counter(
		namespace+"_crypto_failures_total",
		metric.WithDescription("Failed PII encryption and decryption by failure kind"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create crypto failure counter: %w", err)
	}

	return b, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

func (b *businessMetrics) RecordGuardDecision(ctx context.Context, outcome, reason string) {
	if reason == "" {
		reason = "none"
	}
	b.guardDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	))
}

func (b *businessMetrics) RecordCryptoFailure(ctx context.Context, operation, kind string) {
	b.cryptoFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("kind", kind),
	))
}

func operationAttrs(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
}

// NoOpBusinessMetrics discards everything. It is used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordGuardDecision(context.Context, string, string) {}

func (n *NoOpBusinessMetrics) RecordCryptoFailure(context.Context, string, string) {}
