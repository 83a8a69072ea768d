// Package pipeline wires a capture, a book store and a report publisher
// around the replay core.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/erain9/pitchvolume/config"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/logging"
	"github.com/erain9/pitchvolume/pkg/messaging"
	"github.com/erain9/pitchvolume/pkg/otel"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/erain9/pitchvolume/pkg/stats"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Option configures Run
type Option func(*runner)

// WithInput replays in instead of opening cfg.Input.Path. The caller keeps ownership.
func WithInput(in *Input) Option {
	return func(r *runner) {
		r.input = in
	}
}

// WithSender publishes through sender instead of the one cfg.Publish selects.
// The caller keeps ownership.
func WithSender(sender messaging.ReportSender) Option {
	return func(r *runner) {
		r.sender = sender
	}
}

// WithSink receives every diagnostic in addition to the log
func WithSink(sink diag.Sink) Option {
	return func(r *runner) {
		r.sink = sink
	}
}

// WithZapLogger sets the logger handed to storage backends
func WithZapLogger(logger *zap.Logger) Option {
	return func(r *runner) {
		r.zlog = logger
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(r *runner) {
		r.now = now
	}
}

type runner struct {
	input  *Input
	sender messaging.ReportSender
	sink   diag.Sink
	zlog   *zap.Logger
	now    func() time.Time
}

// Result is everything a run produced
type Result struct {
	Report      *messaging.Report
	Top         []core.Volume
	Stats       core.ReplayStats
	Diagnostics diag.Counts
	Latency     stats.Summary
	Backend     BackendInfo
	Elapsed     time.Duration
	// SuppressedWarnings counts diagnostics the log rate limit dropped
	SuppressedWarnings int64
	Published          bool
}

// Run replays the configured capture and ranks its symbols by volume
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	r := &runner{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	in := r.input
	if in == nil {
		opened, err := OpenInput(cfg.Input.Path)
		if err != nil {
			return nil, err
		}
		defer opened.Close()
		in = opened
	}
	ctx = logging.WithCapture(ctx, in.Name)
	logger := logging.FromContext(ctx)

	backend, err := OpenBackend(ctx, cfg.Backend, r.zlog)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close backend")
		}
	}()
	if n := backend.RestingOrders(ctx); n > 0 {
		logger.Warn().Int("orders", n).Msg("Book store is not empty, stale orders will be treated as duplicates")
	}

	counts := make(diag.Counts)
	logSink := diag.NewLogSink(logger, cfg.Replay.DiagnosticsPerSecond)
	bookSink := diag.Multi(counts, logSink, r.sink)
	metrics := otel.GetReplayMetrics()
	readerSink := diag.Multi(bookSink, diag.SinkFunc(func(d diag.Diagnostic) {
		metrics.RecordDiagnostic(ctx, string(d.Kind))
	}))

	readerOpts := []pitch.ReaderOption{
		pitch.WithSink(readerSink),
		pitch.WithMaxLineSize(cfg.Input.MaxLineSize),
	}
	if cfg.Input.SkipMalformed {
		readerOpts = append(readerOpts, pitch.WithSkipMalformed())
	}
	reader := pitch.NewReader(in, readerOpts...)

	latency := stats.NewLatency()
	book := core.NewOrderBook(backend,
		core.WithSink(bookSink),
		core.WithLatencyRecorder(latency),
	)

	start := time.Now()
	if err := book.Replay(ctx, reader); err != nil {
		return nil, fmt.Errorf("replay %s: %w", in.Name, err)
	}
	elapsed := time.Since(start)

	_, span := otel.StartReplaySpan(ctx, otel.SpanRankSymbols,
		attribute.Int(otel.AttributeTopN, cfg.Replay.TopN),
		attribute.String(otel.AttributeBackend, backend.Info.Driver),
	)
	top := book.TopN(cfg.Replay.TopN)
	otel.AddAttributes(span, attribute.Int(otel.AttributeSymbolCount, len(top)))
	span.End()

	result := &Result{
		Top:                top,
		Stats:              book.Stats(),
		Diagnostics:        counts,
		Latency:            latency.Summary(),
		Backend:            backend.Info,
		Elapsed:            elapsed,
		SuppressedWarnings: logSink.Dropped(),
	}
	result.Report = newReport(in.Name, r.now(), result, backend.RestingOrders(ctx))

	sender := r.sender
	if sender == nil {
		created, err := NewSender(cfg.Publish)
		if err != nil {
			return nil, err
		}
		if created != nil {
			defer created.Close()
			sender = created
		}
	}
	if sender != nil {
		if err := publish(ctx, sender, result.Report); err != nil {
			return nil, err
		}
		result.Published = true
	}

	if result.SuppressedWarnings > 0 {
		logger.Warn().Int64("suppressed", result.SuppressedWarnings).Msg("Diagnostics over the log rate limit were not logged")
	}
	logger.Info().
		Uint64("events", result.Stats.Events).
		Uint64("volume", result.Stats.Volume).
		Int("diagnostics", counts.Total()).
		Int("symbols", len(book.Totals())).
		Dur("elapsed", elapsed).
		Msg("Capture replayed")

	return result, nil
}

func publish(ctx context.Context, sender messaging.ReportSender, report *messaging.Report) error {
	ctx, span := otel.StartReplaySpan(ctx, otel.SpanPublishReport)
	defer span.End()

	if err := sender.SendReport(ctx, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish report")
		return fmt.Errorf("publish report: %w", err)
	}
	span.SetStatus(codes.Ok, "report published")
	return nil
}

func newReport(capture string, at time.Time, result *Result, resting int) *messaging.Report {
	report := &messaging.Report{
		Capture:       capture,
		GeneratedAt:   at,
		Top:           make([]messaging.SymbolVolume, 0, len(result.Top)),
		Events:        result.Stats.Events,
		Volume:        result.Stats.Volume,
		Diagnostics:   make(map[string]int, len(result.Diagnostics)),
		RestingOrders: resting,
	}
	for _, v := range result.Top {
		report.Top = append(report.Top, messaging.SymbolVolume{Symbol: v.Symbol, Volume: v.Volume})
	}
	for kind, n := range result.Diagnostics {
		report.Diagnostics[string(kind)] = n
	}
	return report
}
