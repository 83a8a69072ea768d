package diag

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"KindOnly", Diagnostic{Kind: NegativeShares}, "negative shares"},
		{"OrderID", Diagnostic{Kind: MissingOrder, OrderID: "ABC"}, `missing order "ABC"`},
		{"Detail", Diagnostic{Kind: UnknownFrame, Detail: "H"}, `ignoring SOUP frame "H"`},
		{"Both", Diagnostic{Kind: DuplicateOrder, OrderID: "ABC", Detail: "x"}, `duplicate order "ABC": x`},
		{"UnknownKind", Diagnostic{Kind: Kind("custom")}, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestList(t *testing.T) {
	var l List
	l.Report(Diagnostic{Kind: MissingOrder, OrderID: "1"})
	l.Report(Diagnostic{Kind: MissingOrder, OrderID: "2"})
	l.Report(Diagnostic{Kind: UnknownTag})

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.Count(MissingOrder))
	assert.Equal(t, 1, l.Count(UnknownTag))
	assert.Equal(t, 0, l.Count(NegativeShares))
	assert.Equal(t, "2", l.Items()[1].OrderID)

	l.Reset()
	assert.Equal(t, 0, l.Len())
}

func TestMultiAndCounts(t *testing.T) {
	var l List
	counts := Counts{}
	sink := Multi(&l, nil, counts)

	sink.Report(Diagnostic{Kind: TradeSide})
	sink.Report(Diagnostic{Kind: TradeSide})
	sink.Report(Diagnostic{Kind: DuplicateOrder})

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, counts[TradeSide])
	assert.Equal(t, 3, counts.Total())
	assert.Equal(t, []Kind{DuplicateOrder, TradeSide}, counts.Kinds())
}

func TestReportNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Report(nil, Diagnostic{Kind: UnknownTag})
		Report(Discard, Diagnostic{Kind: UnknownTag})
	})
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf), 0)

	sink.Report(Diagnostic{Kind: MissingOrder, OrderID: "4K3Z9"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "missing_order", entry["kind"])
	assert.Equal(t, "4K3Z9", entry["order_id"])
	assert.Equal(t, "missing order", entry["message"])
	assert.Zero(t, sink.Dropped())
}

func TestLogSink_RateLimited(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf), 2)

	for i := 0; i < 10; i++ {
		sink.Report(Diagnostic{Kind: UnknownTag})
	}

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, int64(10-lines), sink.Dropped())
	assert.GreaterOrEqual(t, lines, 2)
	assert.Less(t, lines, 10)
}
