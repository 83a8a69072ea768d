// Package stats records replay latency distributions.
package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestTrackable  = int64(time.Nanosecond)
	highestTrackable = int64(time.Minute)
	significantFigs  = 3
)

// Latency is a histogram of durations
type Latency struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	overflow  int64
}

// Summary is a point-in-time view of a Latency
type Summary struct {
	Count    int64         `json:"count"`
	Mean     time.Duration `json:"mean"`
	P50      time.Duration `json:"p50"`
	P99      time.Duration `json:"p99"`
	Max      time.Duration `json:"max"`
	Overflow int64         `json:"overflow,omitempty"`
}

// NewLatency creates an empty histogram tracking up to one minute
func NewLatency() *Latency {
	return &Latency{
		histogram: hdrhistogram.New(lowestTrackable, highestTrackable, significantFigs),
	}
}

// Record adds d; values outside the trackable range are counted as overflow
func (l *Latency) Record(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := int64(d)
	if v < lowestTrackable {
		v = lowestTrackable
	}
	if err := l.histogram.RecordValue(v); err != nil {
		l.overflow++
	}
}

// Summary returns the current percentiles
func (l *Latency) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Summary{
		Count:    l.histogram.TotalCount(),
		Mean:     time.Duration(l.histogram.Mean()),
		P50:      time.Duration(l.histogram.ValueAtQuantile(50)),
		P99:      time.Duration(l.histogram.ValueAtQuantile(99)),
		Max:      time.Duration(l.histogram.Max()),
		Overflow: l.overflow,
	}
}

// Reset clears every recorded value
func (l *Latency) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.histogram.Reset()
	l.overflow = 0
}

// String implements fmt.Stringer interface
func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%s p50=%s p99=%s max=%s", s.Count, s.Mean, s.P50, s.P99, s.Max)
}
