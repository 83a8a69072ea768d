package messaging

import (
	"context"
	"time"
)

// ReportSender defines an interface for publishing replay reports.
// This keeps the pipeline independent of the Kafka client in use.
type ReportSender interface {
	SendReport(ctx context.Context, report *Report) error
	Close() error
}

// Report is the outcome of replaying one capture
type Report struct {
	Capture     string         `json:"capture"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Top         []SymbolVolume `json:"top"`
	Events      uint64         `json:"events"`
	Volume      uint64         `json:"volume"`
	Diagnostics map[string]int `json:"diagnostics"`
	// RestingOrders left in the book, -1 when the backend cannot count them
	RestingOrders int `json:"restingOrders"`
}

// SymbolVolume is one ranked entry of a Report
type SymbolVolume struct {
	Symbol string `json:"symbol"`
	Volume uint64 `json:"volume"`
}

// Key identifies the report on the wire
func (r *Report) Key() []byte {
	return []byte(r.Capture)
}
