package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped by the SDK when Sentry is not initialized
	}
}

// RecordRender records the shape of a rendered track
func (m *SentryMetrics) RecordRender(ctx context.Context, mood, instrument string, seconds float64, samples int, peak float64) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("tune.mood", mood)
		transaction.SetTag("tune.instrument", instrument)
		transaction.SetData("tune.seconds", seconds)
		transaction.SetData("tune.samples", samples)
	}

	span := sentry.StartSpan(ctx, "tune.render")
	defer span.Finish()

	span.SetTag("mood", mood)
	span.SetTag("instrument", instrument)
	span.SetData("seconds", seconds)
	span.SetData("samples", samples)
	span.SetData("peak", peak)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Render: %s/%s %.1fs", mood, instrument, seconds)
}

// RecordGenerationDuration records generation request duration
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation Request: %t", success)
}

// RecordAPIRequest records an HTTP request handled by the server
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, path string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "http.server")
	defer span.Finish()

	span.SetTag("path", path)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode >= 500 {
		span.Status = sentry.SpanStatusInternalError
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Description = fmt.Sprintf("%s %d", path, statusCode)
}
