package pitchtest

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
)

// DefaultSymbols is the symbol universe used when a Generator is given none
var DefaultSymbols = []string{"AAPL", "MSFT", "SPY", "QQQ", "XLE", "OIH", "DRYS", "SDS", "UYG", "PTR"}

type liveOrder struct {
	id     string
	symbol string
	qty    int
}

// Generator produces a random but self-consistent capture: cancels and
// executions only reference live orders and never take more than remains.
// It tracks the volume a correct replay must report.
type Generator struct {
	rng     *rand.Rand
	symbols []string
	live    []liveOrder
	nextID  int64
	ts      int
	volume  map[string]uint64
	events  int
}

// NewGenerator creates a Generator over symbols of at most six characters.
// The same seed yields the same capture.
func NewGenerator(seed int64, symbols []string) *Generator {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		symbols: symbols,
		ts:      28800000,
		volume:  make(map[string]uint64),
	}
}

// Next returns the next line of the capture
func (g *Generator) Next() string {
	g.ts += g.rng.Intn(50)
	ts := strconv.Itoa(g.ts % 100000000)

	if g.rng.Intn(100) < 2 {
		return "H"
	}
	g.events++

	r := g.rng.Intn(100)
	switch {
	case len(g.live) == 0 || r < 40:
		o := liveOrder{
			id:     g.newID(),
			symbol: g.symbols[g.rng.Intn(len(g.symbols))],
			qty:    g.rng.Intn(1000) + 1,
		}
		g.live = append(g.live, o)
		return AddOrder(ts, o.id, g.side(), o.qty, o.symbol, g.price())

	case r < 65:
		i, qty := g.take()
		id := g.live[i].id
		g.settle(i, qty)
		return OrderCancel(ts, id, qty)

	case r < 90:
		i, qty := g.take()
		o := g.live[i]
		g.volume[o.symbol] += uint64(qty)
		g.settle(i, qty)
		return OrderExecuted(ts, o.id, qty, g.newID())

	default:
		symbol := g.symbols[g.rng.Intn(len(g.symbols))]
		qty := g.rng.Intn(1000) + 1
		g.volume[symbol] += uint64(qty)
		return Trade(ts, g.newID(), 'B', qty, symbol, g.price(), g.newID())
	}
}

// Write writes n lines to w
func (g *Generator) Write(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintln(bw, g.Next()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Volume returns the traded volume per symbol of the lines produced so far
func (g *Generator) Volume() map[string]uint64 {
	out := make(map[string]uint64, len(g.volume))
	for k, v := range g.volume {
		out[k] = v
	}
	return out
}

// Events returns the number of data lines produced so far
func (g *Generator) Events() int {
	return g.events
}

// Live returns the number of orders still resting
func (g *Generator) Live() int {
	return len(g.live)
}

func (g *Generator) newID() string {
	g.nextID++
	return fmt.Sprintf("%012X", g.nextID)
}

func (g *Generator) side() byte {
	if g.rng.Intn(2) == 0 {
		return 'B'
	}
	return 'S'
}

func (g *Generator) price() string {
	return fmt.Sprintf("%010d", g.rng.Intn(2000000)+10000)
}

// take picks a live order and a quantity no larger than what remains on it
func (g *Generator) take() (int, int) {
	i := g.rng.Intn(len(g.live))
	return i, g.rng.Intn(g.live[i].qty) + 1
}

func (g *Generator) settle(i, qty int) {
	g.live[i].qty -= qty
	if g.live[i].qty > 0 {
		return
	}
	last := len(g.live) - 1
	g.live[i] = g.live[last]
	g.live = g.live[:last]
}
