package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_WithoutCollector(t *testing.T) {
	cleanup, err := Init(Config{})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestStartReplaySpan_NeverNil(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	ctx, span := StartReplaySpan(context.Background(), SpanReplayCapture)
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	AddAttributes(span, attribute.Int(AttributeEventCount, 1))
	span.End()
}

func TestStartReplaySpan_RecordsAttributes(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, InitForTesting(tp.Tracer("test")))

	_, span := StartReplaySpan(context.Background(), SpanRankSymbols, attribute.Int(AttributeTopN, 10))
	AddAttributes(span, attribute.Int(AttributeSymbolCount, 3))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, SpanRankSymbols, ended[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(10), attrs[AttributeTopN].AsInt64())
	assert.Equal(t, int64(3), attrs[AttributeSymbolCount].AsInt64())
}

func TestReplayMetrics_NoopSafe(t *testing.T) {
	m := GetReplayMetrics()
	require.NotNil(t, m)
	ctx := context.Background()
	m.RecordEvent(ctx, "ADD_ORDER_SHORT")
	m.RecordDiagnostic(ctx, "missing_order")
	m.RecordVolume(ctx, 100)

	var nilMetrics *ReplayMetrics
	nilMetrics.RecordEvent(ctx, "TRADE")
}

func TestAddAttributes_NilSpan(t *testing.T) {
	AddAttributes(nil, attribute.String(AttributeBackend, "memory"))
}
