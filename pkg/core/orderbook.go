package core

import (
	"context"
	"fmt"
	"time"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/otel"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LatencyRecorder receives the time spent applying each event
type LatencyRecorder interface {
	Record(d time.Duration)
}

// EventSource is a single-pass stream of decoded events, such as *pitch.Reader
type EventSource interface {
	Next() bool
	Event() pitch.Event
	Line() int
	Err() error
}

// Option configures an OrderBook
type Option func(*OrderBook)

// WithSink sets the destination for replay diagnostics
func WithSink(sink diag.Sink) Option {
	return func(ob *OrderBook) {
		ob.sink = sink
	}
}

// WithLatencyRecorder records per-event processing time
func WithLatencyRecorder(rec LatencyRecorder) Option {
	return func(ob *OrderBook) {
		ob.latency = rec
	}
}

// OrderBook replays PITCH events against a book of resting orders and
// accumulates traded volume per symbol. It is not safe for concurrent use.
type OrderBook struct {
	backend OrderBookBackend
	sink    diag.Sink
	latency LatencyRecorder
	metrics *otel.ReplayMetrics

	totals Totals
	stats  ReplayStats
}

// NewOrderBook creates Orderbook object with a backend
func NewOrderBook(backend OrderBookBackend, opts ...Option) *OrderBook {
	ob := &OrderBook{
		backend: backend,
		sink:    diag.Discard,
		metrics: otel.GetReplayMetrics(),
		totals:  make(Totals),
		stats:   ReplayStats{Diagnostics: make(diag.Counts)},
	}
	for _, opt := range opts {
		opt(ob)
	}
	return ob
}

// GetOrder returns the resting order with the given id, or nil
func (ob *OrderBook) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return ob.backend.GetOrder(ctx, orderID)
}

// Process applies a single event. Consistency violations are reported as
// diagnostics and never returned; errors come only from the backend.
func (ob *OrderBook) Process(ctx context.Context, ev pitch.Event) error {
	var start time.Time
	if ob.latency != nil {
		start = time.Now()
	}

	var err error
	switch e := ev.(type) {
	case pitch.AddOrder:
		ob.stats.AddOrders++
		err = ob.addOrder(ctx, e)
	case pitch.OrderCancel:
		ob.stats.Cancels++
		err = ob.cancelOrder(ctx, e)
	case pitch.OrderExecuted:
		ob.stats.Executions++
		err = ob.executeOrder(ctx, e)
	case pitch.Trade:
		ob.stats.Trades++
		ob.credit(ctx, e.Symbol, e.Quantity)
	case nil:
		return ErrNilEvent
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	if err != nil {
		return err
	}

	ob.stats.Events++
	ob.metrics.RecordEvent(ctx, ev.Tag().String())
	if ob.latency != nil {
		ob.latency.Record(time.Since(start))
	}
	return nil
}

// Replay consumes src to the end. The caller may cancel ctx to stop at the
// next line boundary; totals accumulated so far stay valid.
func (ob *OrderBook) Replay(ctx context.Context, src EventSource) error {
	ctx, span := otel.StartReplaySpan(ctx, otel.SpanReplayCapture)
	defer span.End()

	for {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "replay canceled")
			return err
		}
		if !src.Next() {
			break
		}
		if err := ob.Process(ctx, src.Event()); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to apply event")
			return fmt.Errorf("line %d: %w", src.Line(), err)
		}
	}
	if err := src.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read capture")
		return err
	}

	otel.AddAttributes(span,
		attribute.Int64(otel.AttributeEventCount, int64(ob.stats.Events)),
		attribute.Int(otel.AttributeDiagnosticCount, ob.stats.Diagnostics.Total()),
		attribute.Int(otel.AttributeSymbolCount, len(ob.totals)),
		attribute.Int64(otel.AttributeTotalVolume, int64(ob.stats.Volume)),
	)
	span.SetStatus(codes.Ok, "capture replayed")
	return nil
}

// Totals returns a copy of the per-symbol volume
func (ob *OrderBook) Totals() Totals {
	return ob.totals.Clone()
}

// TopN ranks the symbols seen so far
func (ob *OrderBook) TopN(n int) []Volume {
	return TopN(ob.totals, n)
}

// Stats returns a copy of the replay counters
func (ob *OrderBook) Stats() ReplayStats {
	return ob.stats.clone()
}

func (ob *OrderBook) addOrder(ctx context.Context, e pitch.AddOrder) error {
	existing, err := ob.backend.GetOrder(ctx, e.Ref())
	if err != nil {
		return fmt.Errorf("get order %s: %w", e.Ref(), err)
	}
	if existing != nil {
		ob.report(ctx, diag.Diagnostic{Kind: diag.DuplicateOrder, OrderID: e.Ref()})
		return nil
	}

	if err := ob.backend.SetOrder(ctx, NewOrder(e)); err != nil {
		return fmt.Errorf("store order %s: %w", e.Ref(), err)
	}
	return nil
}

func (ob *OrderBook) cancelOrder(ctx context.Context, e pitch.OrderCancel) error {
	order, err := ob.lookup(ctx, e, "cancel")
	if err != nil || order == nil {
		return err
	}
	return ob.reduce(ctx, order, e.Quantity)
}

func (ob *OrderBook) executeOrder(ctx context.Context, e pitch.OrderExecuted) error {
	order, err := ob.lookup(ctx, e, "execute")
	if err != nil || order == nil {
		return err
	}
	ob.credit(ctx, order.Symbol(), e.Quantity)
	return ob.reduce(ctx, order, e.Quantity)
}

// lookup fetches the order ev refers to. It returns nil without error when
// the order is absent, after reporting it.
func (ob *OrderBook) lookup(ctx context.Context, ev pitch.Event, action string) (*Order, error) {
	orderID := ev.Ref()
	order, err := ob.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order == nil {
		ob.report(ctx, diag.Diagnostic{Kind: diag.MissingOrder, OrderID: orderID, Detail: action})
	}
	return order, nil
}

// reduce takes qty off the order and writes the result back to the book.
// Orders at or below zero leave the book; below zero is reported.
func (ob *OrderBook) reduce(ctx context.Context, order *Order, qty uint64) error {
	left := order.DecreaseQuantity(qty)
	switch {
	case left > 0:
		if err := ob.backend.SetOrder(ctx, order); err != nil {
			return fmt.Errorf("update order %s: %w", order.ID(), err)
		}
		return nil
	case left < 0:
		ob.report(ctx, diag.Diagnostic{
			Kind:    diag.NegativeShares,
			OrderID: order.ID(),
			Detail:  fmt.Sprintf("remaining %d", left),
		})
	}

	if err := ob.backend.DeleteOrder(ctx, order.ID()); err != nil {
		return fmt.Errorf("delete order %s: %w", order.ID(), err)
	}
	return nil
}

func (ob *OrderBook) credit(ctx context.Context, symbol string, qty uint64) {
	ob.totals.Add(symbol, qty)
	ob.stats.Volume += qty
	ob.metrics.RecordVolume(ctx, qty)
}

func (ob *OrderBook) report(ctx context.Context, d diag.Diagnostic) {
	ob.stats.Diagnostics.Report(d)
	ob.metrics.RecordDiagnostic(ctx, string(d.Kind))
	diag.Report(ob.sink, d)
}
