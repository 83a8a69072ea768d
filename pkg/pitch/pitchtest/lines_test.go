package pitchtest

import (
	"testing"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/erain9/pitchvolume/pkg/soup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_SurviveFramingWithShortIDs(t *testing.T) {
	tests := []struct {
		name string
		line string
		tag  pitch.Tag
	}{
		{"add order", AddOrder("28800011", "A1", 'B', 100, "AAPL", "0001012500"), pitch.TagAddOrderShort},
		{"cancel", OrderCancel("28800012", "A1", 40), pitch.TagOrderCancel},
		{"trade", Trade("28800013", "T1", 'B', 75, "MSFT", "0000500000", "E1"), pitch.TagTrade},
		{"execute", OrderExecuted("28800014", "A1", 60, "E2"), pitch.TagOrderExecuted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := &diag.List{}
			payload, ok := soup.Unwrap(tt.line, diags)
			require.True(t, ok)

			ev, err := pitch.Decode(payload, diags)
			require.NoError(t, err)
			require.NotNil(t, ev)
			assert.Equal(t, tt.tag, ev.Tag())
			assert.Zero(t, diags.Len())
		})
	}
}

func TestPadID(t *testing.T) {
	assert.Equal(t, "0000000000E1", padID("E1"))
	assert.Equal(t, "0AAP00000001", padID("0AAP00000001"))
}
