package messaging

import (
	"context"
	"sync"
)

// MockReportSender keeps sent reports in memory for tests.
type MockReportSender struct {
	mu      sync.Mutex
	reports []*Report
	closed  bool
	// Err is returned from SendReport when set
	Err error
}

// NewMockReportSender creates a new MockReportSender.
func NewMockReportSender() *MockReportSender {
	return &MockReportSender{}
}

// SendReport records report.
func (m *MockReportSender) SendReport(_ context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.reports = append(m.reports, report)
	return nil
}

// Reports returns every report sent so far.
func (m *MockReportSender) Reports() []*Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Report(nil), m.reports...)
}

// Close marks the sender closed.
func (m *MockReportSender) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockReportSender) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Ensure MockReportSender implements ReportSender
var _ ReportSender = (*MockReportSender)(nil)
