package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanReplayCapture = "replay_capture"
	SpanRankSymbols   = "rank_symbols"
	SpanPublishReport = "publish_report"

	// Attribute keys
	AttributeEventCount      = "replay.events"
	AttributeDiagnosticCount = "replay.diagnostics"
	AttributeSymbolCount     = "replay.symbols"
	AttributeTotalVolume     = "replay.volume"
	AttributeBackend         = "replay.backend"
	AttributeTopN            = "replay.top_n"
	AttributeLine            = "capture.line"
	AttributeEventType       = "event.type"
	AttributeDiagnosticKind  = "diagnostic.kind"
)

// StartReplaySpan starts a new span on the replay tracer
func StartReplaySpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetReplayTracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
