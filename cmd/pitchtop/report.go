package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/erain9/pitchvolume/pkg/pipeline"
	"github.com/fatih/color"
)

func printJSON(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Report)
}

// printTable writes the ranking followed by a short run summary.
// Colour codes stay outside the tabwriter cells so columns line up.
func printTable(w io.Writer, result *pipeline.Result) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()

	fmt.Fprintln(w, cyan(fmt.Sprintf("Top %d symbols by traded volume (%s)", len(result.Top), result.Report.Capture)))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Rank\tSymbol\tVolume\t")
	fmt.Fprintln(tw, "----\t------\t------\t")
	for i, v := range result.Top {
		fmt.Fprintf(tw, "%d\t%s\t%d\t\n", i+1, v.Symbol, v.Volume)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "events %d, volume %d, backend %s, elapsed %s\n",
		result.Stats.Events, result.Stats.Volume, result.Backend.Driver, result.Elapsed.Round(time.Microsecond))
	if result.Report.RestingOrders >= 0 {
		fmt.Fprintf(w, "resting orders %d\n", result.Report.RestingOrders)
	}
	if result.Latency.Count > 0 {
		fmt.Fprintf(w, "latency p50 %s, p99 %s, max %s\n", result.Latency.P50, result.Latency.P99, result.Latency.Max)
	}

	for _, kind := range result.Diagnostics.Kinds() {
		fmt.Fprintln(w, yellow("%-20s %d", kind, result.Diagnostics[kind]))
	}
	if result.SuppressedWarnings > 0 {
		fmt.Fprintln(w, yellow("%d diagnostics were not logged", result.SuppressedWarnings))
	}
	return nil
}
