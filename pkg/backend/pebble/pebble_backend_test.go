package pebble

import (
	"context"
	"fmt"
	"testing"

	"github.com/erain9/pitchvolume/pkg/backend/backendtest"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t testing.TB) *PebbleBackend {
	b, err := NewPebbleBackend(t.TempDir(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPebbleBackend(t *testing.T) {
	backendtest.Run(t, func(t testing.TB) core.OrderBookBackend {
		return newTestBackend(t)
	})
}

func TestPebbleBackend_Len(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.SetOrder(ctx, backendtest.NewOrder(fmt.Sprintf("O%d", i), "AAPL", 10)))
	}
	require.NoError(t, b.DeleteOrder(ctx, "O3"))

	n, err := b.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPebbleBackend_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewPebbleBackend(dir, Options{Sync: true, CacheSize: 1 << 20})
	require.NoError(t, err)
	require.NoError(t, b.SetOrder(ctx, backendtest.NewOrder("A1", "SPY", 100)))
	require.NoError(t, b.Close())

	b, err = NewPebbleBackend(dir, Options{})
	require.NoError(t, err)
	defer b.Close()

	order, err := b.GetOrder(ctx, "A1")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(100), order.Remaining())
}

func TestKeyUpperBound(t *testing.T) {
	assert.Equal(t, []byte("order0"), keyUpperBound([]byte("order/")))
	assert.Equal(t, []byte{0x02}, keyUpperBound([]byte{0x01, 0xff}))
	assert.Nil(t, keyUpperBound([]byte{0xff}))
}

func BenchmarkPebbleBackend_SetGet(b *testing.B) {
	backendtest.BenchmarkSetGet(b, func(t testing.TB) core.OrderBookBackend {
		return newTestBackend(t)
	})
}
