package diag

import (
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// LogSink writes diagnostics as zerolog warnings.
// Captures with systematic protocol violations can produce one finding per line, so output is
// throttled; findings over the limit are counted but not logged.
type LogSink struct {
	logger  zerolog.Logger
	limiter *rate.Limiter
	dropped atomic.Int64
}

// NewLogSink creates a LogSink allowing perSecond warnings per second (unlimited when <= 0)
func NewLogSink(logger zerolog.Logger, perSecond int) *LogSink {
	limit := rate.Inf
	burst := 0
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = perSecond
	}

	return &LogSink{
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Report logs d unless the rate limit has been reached
func (s *LogSink) Report(d Diagnostic) {
	if !s.limiter.Allow() {
		s.dropped.Add(1)
		return
	}

	event := s.logger.Warn().Str("kind", string(d.Kind))
	if d.OrderID != "" {
		event = event.Str("order_id", d.OrderID)
	}
	if d.Detail != "" {
		event = event.Str("detail", d.Detail)
	}
	event.Msg(d.Kind.Message())
}

// Dropped returns the number of diagnostics suppressed by the rate limit
func (s *LogSink) Dropped() int64 {
	return s.dropped.Load()
}
