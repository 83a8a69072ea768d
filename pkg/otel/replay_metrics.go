package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	replayMetrics     *ReplayMetrics
	replayMetricsOnce sync.Once
)

// ReplayMetrics holds counters for capture replay
type ReplayMetrics struct {
	// Decoded events by type
	eventsTotal metric.Int64Counter
	// Diagnostics by kind
	diagnosticsTotal metric.Int64Counter
	// Shares credited to symbol totals
	volumeTotal metric.Int64Counter
}

// GetReplayMetrics returns the ReplayMetrics singleton
func GetReplayMetrics() *ReplayMetrics {
	replayMetricsOnce.Do(func() {
		meter := GetMeterProvider().Meter(instrumentationName)
		m := &ReplayMetrics{}

		var err error
		m.eventsTotal, err = meter.Int64Counter(
			"pitch.events.total",
			metric.WithDescription("Total number of decoded events applied"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			m.eventsTotal = nil
		}
		m.diagnosticsTotal, err = meter.Int64Counter(
			"pitch.diagnostics.total",
			metric.WithDescription("Total number of diagnostics raised"),
			metric.WithUnit("{diagnostic}"),
		)
		if err != nil {
			m.diagnosticsTotal = nil
		}
		m.volumeTotal, err = meter.Int64Counter(
			"pitch.volume.total",
			metric.WithDescription("Total shares credited to symbol volume"),
			metric.WithUnit("{share}"),
		)
		if err != nil {
			m.volumeTotal = nil
		}
		replayMetrics = m
	})
	return replayMetrics
}

// RecordEvent increments the events counter for eventType
func (m *ReplayMetrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil || m.eventsTotal == nil {
		return
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeEventType, eventType)))
}

// RecordDiagnostic increments the diagnostics counter for kind
func (m *ReplayMetrics) RecordDiagnostic(ctx context.Context, kind string) {
	if m == nil || m.diagnosticsTotal == nil {
		return
	}
	m.diagnosticsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeDiagnosticKind, kind)))
}

// RecordVolume adds shares to the volume counter
func (m *ReplayMetrics) RecordVolume(ctx context.Context, shares uint64) {
	if m == nil || m.volumeTotal == nil {
		return
	}
	m.volumeTotal.Add(ctx, int64(shares))
}
