package diag

import (
	"fmt"
	"sort"
)

// Kind classifies a non-fatal problem found while decoding or replaying a capture
type Kind string

// Diagnostic kinds
const (
	UnknownFrame       Kind = "unknown_frame"
	LineTooLong        Kind = "line_too_long"
	UnknownTag         Kind = "unknown_tag"
	TradeSide          Kind = "trade_side"
	MalformedRecord    Kind = "malformed_record"
	UnsupportedVariant Kind = "unsupported_variant"
	DuplicateOrder     Kind = "duplicate_order"
	MissingOrder       Kind = "missing_order"
	NegativeShares     Kind = "negative_shares"
)

// Message returns the human readable summary for the kind
func (k Kind) Message() string {
	switch k {
	case UnknownFrame:
		return "ignoring SOUP frame"
	case LineTooLong:
		return "discarding over-long line"
	case UnknownTag:
		return "unknown data"
	case TradeSide:
		return "unexpected trade side indicator"
	case MalformedRecord:
		return "malformed record"
	case UnsupportedVariant:
		return "unsupported record variant"
	case DuplicateOrder:
		return "duplicate order"
	case MissingOrder:
		return "missing order"
	case NegativeShares:
		return "negative shares"
	default:
		return string(k)
	}
}

// Diagnostic is one advisory finding. It never aborts processing.
type Diagnostic struct {
	Kind Kind
	// OrderID is set for book consistency findings
	OrderID string
	// Detail carries the offending frame, tag or error text
	Detail string
}

// String implements fmt.Stringer interface
func (d Diagnostic) String() string {
	switch {
	case d.OrderID != "" && d.Detail != "":
		return fmt.Sprintf("%s %q: %s", d.Kind.Message(), d.OrderID, d.Detail)
	case d.OrderID != "":
		return fmt.Sprintf("%s %q", d.Kind.Message(), d.OrderID)
	case d.Detail != "":
		return fmt.Sprintf("%s %q", d.Kind.Message(), d.Detail)
	default:
		return d.Kind.Message()
	}
}

// Sink receives diagnostics as they are produced
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(d Diagnostic)

// Report calls f(d)
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Report forwards d to sink, tolerating a nil sink
func Report(sink Sink, d Diagnostic) {
	if sink == nil {
		return
	}
	sink.Report(d)
}

type multiSink []Sink

func (m multiSink) Report(d Diagnostic) {
	for _, s := range m {
		s.Report(d)
	}
}

// Multi fans a diagnostic out to every non-nil sink
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// List collects diagnostics in arrival order
type List struct {
	items []Diagnostic
}

// Report appends d to the list
func (l *List) Report(d Diagnostic) {
	l.items = append(l.items, d)
}

// Items returns the collected diagnostics
func (l *List) Items() []Diagnostic {
	return l.items
}

// Len returns the number of collected diagnostics
func (l *List) Len() int {
	return len(l.items)
}

// Count returns how many diagnostics of kind k were collected
func (l *List) Count(k Kind) int {
	n := 0
	for _, d := range l.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Reset drops every collected diagnostic
func (l *List) Reset() {
	l.items = l.items[:0]
}

// Counts tallies diagnostics by kind
type Counts map[Kind]int

// Report increments the counter for d.Kind
func (c Counts) Report(d Diagnostic) {
	c[d.Kind]++
}

// Total returns the sum over all kinds
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Kinds returns the kinds seen, sorted by name
func (c Counts) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Clone returns an independent copy
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, n := range c {
		out[k] = n
	}
	return out
}
