package core

import (
	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/tidwall/btree"
)

// Totals maps a symbol to its cumulative traded quantity
type Totals map[string]uint64

// Add credits qty to symbol. A zero quantity still registers the symbol.
func (t Totals) Add(symbol string, qty uint64) {
	t[symbol] += qty
}

// Sum returns the volume across all symbols
func (t Totals) Sum() uint64 {
	var sum uint64
	for _, v := range t {
		sum += v
	}
	return sum
}

// Clone returns an independent copy
func (t Totals) Clone() Totals {
	c := make(Totals, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Volume is one ranked entry of the top-N result
type Volume struct {
	Symbol string `json:"symbol"`
	Volume uint64 `json:"volume"`
}

// rankLess orders by volume descending, then symbol descending
func rankLess(a, b Volume) bool {
	if a.Volume != b.Volume {
		return a.Volume > b.Volume
	}
	return a.Symbol > b.Symbol
}

// TopN returns at most n symbols with the greatest volume.
// n <= 0 means DefaultTopN. The result is empty, never nil, when totals is empty.
func TopN(totals Totals, n int) []Volume {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := btree.NewBTreeG[Volume](rankLess)
	for symbol, volume := range totals {
		ranked.Set(Volume{Symbol: symbol, Volume: volume})
		if ranked.Len() > n {
			// lowest ranked entry sorts last
			ranked.PopMax()
		}
	}

	out := make([]Volume, 0, ranked.Len())
	ranked.Scan(func(v Volume) bool {
		out = append(out, v)
		return true
	})
	return out
}

// ReplayStats summarises a replay
type ReplayStats struct {
	Events      uint64      `json:"events"`
	AddOrders   uint64      `json:"addOrders"`
	Cancels     uint64      `json:"cancels"`
	Executions  uint64      `json:"executions"`
	Trades      uint64      `json:"trades"`
	Volume      uint64      `json:"volume"`
	Diagnostics diag.Counts `json:"diagnostics"`
}

func (s ReplayStats) clone() ReplayStats {
	c := s
	c.Diagnostics = s.Diagnostics.Clone()
	return c
}
