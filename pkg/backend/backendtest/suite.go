// Package backendtest holds the behaviour every OrderBookBackend must share.
package backendtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty backend for one subtest
type Factory func(t testing.TB) core.OrderBookBackend

// NewOrder builds a resting order for backend tests
func NewOrder(id, symbol string, qty uint64) *core.Order {
	return core.NewOrder(pitch.AddOrder{
		Timestamp: "28800011",
		OrderID:   id,
		Side:      pitch.SideSell,
		Quantity:  qty,
		Symbol:    symbol,
		Price:     decimal.RequireFromString("182.1300"),
	})
}

// Run exercises map semantics against the backend built by newBackend
func Run(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	t.Run("GetAbsent", func(t *testing.T) {
		b := newBackend(t)
		order, err := b.GetOrder(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("SetGetDelete", func(t *testing.T) {
		b := newBackend(t)
		order := NewOrder("1K27GA00000Y", "AAPL", 100)
		require.NoError(t, b.SetOrder(ctx, order))

		stored, err := b.GetOrder(ctx, order.ID())
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, order.ID(), stored.ID())
		assert.Equal(t, order.Side(), stored.Side())
		assert.Equal(t, "AAPL", stored.Symbol())
		assert.True(t, order.Price().Equal(stored.Price()))
		assert.Equal(t, uint64(100), stored.OriginalQty())
		assert.Equal(t, int64(100), stored.Remaining())

		require.NoError(t, b.DeleteOrder(ctx, order.ID()))
		deleted, err := b.GetOrder(ctx, order.ID())
		require.NoError(t, err)
		assert.Nil(t, deleted)
	})

	t.Run("SetReplaces", func(t *testing.T) {
		b := newBackend(t)
		order := NewOrder("A1", "SPY", 100)
		require.NoError(t, b.SetOrder(ctx, order))

		order.DecreaseQuantity(40)
		require.NoError(t, b.SetOrder(ctx, order))

		stored, err := b.GetOrder(ctx, "A1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(60), stored.Remaining())
	})

	t.Run("DeleteAbsent", func(t *testing.T) {
		b := newBackend(t)
		assert.NoError(t, b.DeleteOrder(ctx, "missing"))
	})

	t.Run("NoAliasing", func(t *testing.T) {
		b := newBackend(t)
		order := NewOrder("A1", "SPY", 100)
		require.NoError(t, b.SetOrder(ctx, order))
		order.DecreaseQuantity(10)

		stored, err := b.GetOrder(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), stored.Remaining())

		stored.DecreaseQuantity(50)
		again, err := b.GetOrder(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), again.Remaining())
	})

	t.Run("ManyOrders", func(t *testing.T) {
		b := newBackend(t)
		for i := 0; i < 100; i++ {
			require.NoError(t, b.SetOrder(ctx, NewOrder(fmt.Sprintf("order-%d", i), "IBM", uint64(i+1))))
		}
		for i := 0; i < 100; i += 2 {
			require.NoError(t, b.DeleteOrder(ctx, fmt.Sprintf("order-%d", i)))
		}
		for i := 0; i < 100; i++ {
			order, err := b.GetOrder(ctx, fmt.Sprintf("order-%d", i))
			require.NoError(t, err)
			if i%2 == 0 {
				assert.Nil(t, order)
			} else {
				require.NotNil(t, order)
				assert.Equal(t, int64(i+1), order.Remaining())
			}
		}
	})
}

// BenchmarkSetGet measures an insert followed by a lookup
func BenchmarkSetGet(b *testing.B, newBackend Factory) {
	ctx := context.Background()
	backend := newBackend(b)
	orders := make([]*core.Order, 1000)
	for i := range orders {
		orders[i] = NewOrder(fmt.Sprintf("order-%d", i), "AAPL", 100)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		order := orders[i%len(orders)]
		if err := backend.SetOrder(ctx, order); err != nil {
			b.Fatal(err)
		}
		if _, err := backend.GetOrder(ctx, order.ID()); err != nil {
			b.Fatal(err)
		}
	}
}
