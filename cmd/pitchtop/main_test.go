package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/erain9/pitchvolume/pkg/messaging"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "../../pkg/pipeline/testdata/pitch_sample.txt"

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"-log_level", "error", "-json", sample}, &out)
	require.Equal(t, 0, code)

	var report messaging.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "pitch_sample", report.Capture)
	require.Len(t, report.Top, 10)
	assert.Equal(t, messaging.SymbolVolume{Symbol: "SPY", Volume: 6144}, report.Top[0])
	assert.Equal(t, messaging.SymbolVolume{Symbol: "PTR", Volume: 2146}, report.Top[9])
	assert.Equal(t, uint64(45798), report.Volume)
}

func TestRun_Table(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	code := run([]string{"-log_level", "error", "-top", "3", sample}, &out)
	require.Equal(t, 0, code)

	text := out.String()
	assert.Contains(t, text, "Top 3 symbols by traded volume (pitch_sample)")
	for _, want := range []string{"SPY", "6144", "OIH", "5311", "DRYS", "4675"} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "SDS")
	assert.Contains(t, text, "resting orders 135")
	assert.Contains(t, text, "trade_side")

	lines := strings.Split(text, "\n")
	if !strings.HasSuffix(strings.TrimSpace(lines[3]), "6144") {
		t.Errorf("expected first ranked row to end with SPY volume, got %q", lines[3])
	}
}

func TestRun_Failures(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"-log_level", "error", "-no_such_flag"}, &out))
	assert.Equal(t, 0, run([]string{"-h"}, &out))
	assert.Equal(t, 1, run([]string{"-log_level", "error", "missing-capture.txt"}, &out))
	assert.Empty(t, out.String())
}
