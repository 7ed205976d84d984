package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records engine spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a metrics client; it is a no-op unless enabled
func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

// Enabled reports whether spans are recorded
func (m *SentryMetrics) Enabled() bool {
	return m != nil && m.enabled
}

// RecordRender records one render pass of the engine
func (m *SentryMetrics) RecordRender(ctx context.Context, styleID string, energy, notes, drums int, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	span := sentry.StartSpan(ctx, "engine.render")
	defer span.Finish()

	span.SetTag("style_id", styleID)
	span.SetTag("energy", fmt.Sprintf("%d", energy))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("notes", notes)
	span.SetData("drums", drums)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Render: %s", styleID)
}

// RecordCommand records a session command and whether it changed the state
func (m *SentryMetrics) RecordCommand(ctx context.Context, command string, changed bool, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	span := sentry.StartSpan(ctx, "session.command")
	defer span.Finish()

	span.SetTag("command", command)
	span.SetTag("changed", fmt.Sprintf("%t", changed))
	span.SetData("duration_ms", duration.Milliseconds())

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Command: %s", command)
}

// RecordPerformanceMetric records performance data
func (m *SentryMetrics) RecordPerformanceMetric(ctx context.Context, operation string, duration time.Duration, metadata map[string]interface{}) {
	if !m.Enabled() {
		return
	}

	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.SetData("duration_ms", duration.Milliseconds())

	for key, value := range metadata {
		span.SetData(key, value)
	}

	span.Finish()
}
