package pitch

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/pitch/pitchtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func collect(t *testing.T, r *Reader) []Event {
	t.Helper()
	var events []Event
	for r.Next() {
		events = append(events, r.Event())
	}
	return events
}

func TestReader_DecodesDataFramesOnly(t *testing.T) {
	var diags diag.List
	src := capture(
		"H",
		pitchtest.AddOrder("28800011", "ORD1", SideBuy, 100, "AAPL", "0001821000"),
		"R",
		pitchtest.OrderCancel("28800012", "ORD1", 40),
		"+ debug",
		pitchtest.Trade("28800013", "ORD2", SideBuy, 7, "MSFT", "0003100000", "EXEC1"),
		pitchtest.OrderExecuted("28800014", "ORD1", 60, "EXEC2"),
	)

	r := NewReader(src, WithSink(&diags))
	events := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, events, 4)

	assert.IsType(t, AddOrder{}, events[0])
	assert.IsType(t, OrderCancel{}, events[1])
	assert.IsType(t, Trade{}, events[2])
	assert.IsType(t, OrderExecuted{}, events[3])
	assert.Equal(t, 7, r.Line())
	assert.Zero(t, diags.Len())
}

func TestReader_UnknownFramesAndTagsProduceNothing(t *testing.T) {
	var diags diag.List
	src := capture(
		"Qmystery",
		"S28800011Zunknown",
		pitchtest.Trade("28800013", "ORD2", SideBuy, 7, "MSFT", "0003100000", "EXEC1"),
	)

	r := NewReader(src, WithSink(&diags))
	events := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, events, 1)
	assert.Equal(t, 1, diags.Count(diag.UnknownFrame))
	assert.Equal(t, 1, diags.Count(diag.UnknownTag))
}

func TestReader_MalformedRecordTerminatesStream(t *testing.T) {
	src := capture(
		pitchtest.Trade("28800013", "ORD2", SideBuy, 7, "MSFT", "0003100000", "EXEC1"),
		"S28800011AAK27GA0000DTS000100SH    0000619200N",
		pitchtest.Trade("28800014", "ORD3", SideBuy, 8, "MSFT", "0003100000", "EXEC2"),
	)

	r := NewReader(src)
	events := collect(t, r)
	require.Len(t, events, 1)

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.Contains(t, err.Error(), "line 2")
	assert.Nil(t, r.Event())

	assert.False(t, r.Next(), "stream must not restart after an error")
}

func TestReader_UnsupportedVariantTerminatesStream(t *testing.T) {
	r := NewReader(capture("S28800011dAK27GA0000DTS000100SH    0000619200Y"))
	assert.False(t, r.Next())
	assert.True(t, errors.Is(r.Err(), ErrUnsupportedVariant))
}

func TestReader_SkipMalformed(t *testing.T) {
	var diags diag.List
	src := capture(
		"S28800011AAK27GA0000DTS000100SH    0000619200N",
		"S28800011dAK27GA0000DTS000100SH    0000619200Y",
		pitchtest.Trade("28800014", "ORD3", SideBuy, 8, "MSFT", "0003100000", "EXEC2"),
	)

	r := NewReader(src, WithSink(&diags), WithSkipMalformed())
	events := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, events, 1)
	assert.Equal(t, uint64(8), events[0].(Trade).Quantity)

	require.Equal(t, 2, diags.Len())
	assert.Equal(t, diag.MalformedRecord, diags.Items()[0].Kind)
	assert.Contains(t, diags.Items()[0].Detail, "line 1")
	assert.Equal(t, diag.UnsupportedVariant, diags.Items()[1].Kind)
}

func TestReader_CRLFLines(t *testing.T) {
	src := strings.NewReader(pitchtest.OrderCancel("28800012", "ORD1", 40) + "\r\n")

	r := NewReader(src)
	require.True(t, r.Next())
	assert.Equal(t, uint64(40), r.Event().(OrderCancel).Quantity)
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}

func TestReader_LineTooLongIsDiscarded(t *testing.T) {
	tests := []struct {
		name string
		long string
		opts []ReaderOption
	}{
		{"control frame", "+" + strings.Repeat("d", 70*1024), nil},
		{"control frame skipping malformed", "+" + strings.Repeat("d", 70*1024), []ReaderOption{WithSkipMalformed()}},
		{"data frame over custom limit", "S" + strings.Repeat("x", 200), []ReaderOption{WithMaxLineSize(64)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := &diag.List{}
			src := capture(tt.long, pitchtest.OrderCancel("28800012", "ORD1", 40))

			r := NewReader(src, append(tt.opts, WithSink(diags))...)
			require.True(t, r.Next(), "err: %v", r.Err())
			assert.Equal(t, uint64(40), r.Event().(OrderCancel).Quantity)
			assert.Equal(t, 2, r.Line())
			assert.False(t, r.Next())
			assert.NoError(t, r.Err())

			require.Equal(t, 1, diags.Len())
			assert.Equal(t, diag.LineTooLong, diags.Items()[0].Kind)
			assert.Contains(t, diags.Items()[0].Detail, "line 1")
		})
	}
}

func TestReader_LongLineWithinLimit(t *testing.T) {
	diags := &diag.List{}
	src := capture("+"+strings.Repeat("d", 10*1024), pitchtest.OrderCancel("28800012", "ORD1", 40))

	r := NewReader(src, WithSink(diags))
	require.True(t, r.Next())
	assert.Equal(t, 2, r.Line())
	assert.Zero(t, diags.Len())
}

func TestReader_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	r := NewReader(iotest.ErrReader(boom))

	assert.False(t, r.Next())
	require.Error(t, r.Err())
	assert.ErrorIs(t, r.Err(), boom)
	assert.Contains(t, r.Err().Error(), "read capture")
}

func TestReader_Empty(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
	assert.Nil(t, r.Event())
}
