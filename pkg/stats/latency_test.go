package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatency_Summary(t *testing.T) {
	l := NewLatency()
	for i := 1; i <= 100; i++ {
		l.Record(time.Duration(i) * time.Microsecond)
	}

	s := l.Summary()
	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, float64(50*time.Microsecond), float64(s.P50), float64(time.Microsecond))
	assert.InDelta(t, float64(99*time.Microsecond), float64(s.P99), float64(time.Microsecond))
	assert.InDelta(t, float64(100*time.Microsecond), float64(s.Max), float64(time.Microsecond))
	assert.Zero(t, s.Overflow)
	assert.Contains(t, s.String(), "n=100")
}

func TestLatency_OutOfRange(t *testing.T) {
	l := NewLatency()
	l.Record(0)
	l.Record(2 * time.Minute)

	s := l.Summary()
	assert.Equal(t, int64(1), s.Count)
	assert.Equal(t, int64(1), s.Overflow)
}

func TestLatency_Reset(t *testing.T) {
	l := NewLatency()
	l.Record(time.Millisecond)
	l.Reset()

	assert.Zero(t, l.Summary().Count)
}
