package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics handles Sentry performance spans for ingest/query operations.
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client. It is a no-op
// wherever Sentry was never initialized (sentry.Init not called, e.g. in
// tests or local dev), the same check logger.go uses to gate its own
// Sentry breadcrumbs.
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{enabled: sentry.CurrentHub().Client() != nil}
}

// RecordIngest tracks a single add_piece operation as a Sentry span.
func (m *SentryMetrics) RecordIngest(ctx context.Context, piecePath string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "firms.ingest")
	defer span.Finish()

	span.SetTag("piece_path", piecePath)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("ingest: %s", piecePath)
}

// RecordQuery tracks a single grader's contribution to a query as a span.
func (m *SentryMetrics) RecordQuery(ctx context.Context, graderName string, resultCount int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "firms.query.grade")
	defer span.Finish()

	span.SetTag("grader", graderName)
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("result_count", resultCount)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("grade: %s", graderName)
}

// RecordCustomMetric sends an arbitrary named metric event to Sentry.
func (m *SentryMetrics) RecordCustomMetric(metricName string, data map[string]interface{}) {
	if !m.enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("metric_type", "custom")
		scope.SetTag("metric_name", metricName)
		scope.SetContext("custom_metric", data)
		sentry.CaptureMessage("Custom Metric: " + metricName)
	})
}
