package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/erain9/pitchvolume/pkg/backend/backendtest"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t testing.TB, path string) *BadgerBackend {
	b, err := NewBadgerBackend(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadgerBackend(t *testing.T) {
	backendtest.Run(t, func(t testing.TB) core.OrderBookBackend {
		return newTestBackend(t, t.TempDir())
	})
}

func TestBadgerBackend_InMemory(t *testing.T) {
	backendtest.Run(t, func(t testing.TB) core.OrderBookBackend {
		return newTestBackend(t, "")
	})
}

func TestBadgerBackend_Len(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, "")

	for i := 0; i < 4; i++ {
		require.NoError(t, b.SetOrder(ctx, backendtest.NewOrder(fmt.Sprintf("O%d", i), "MSFT", 10)))
	}
	require.NoError(t, b.DeleteOrder(ctx, "O0"))

	n, err := b.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func BenchmarkBadgerBackend_SetGet(b *testing.B) {
	backendtest.BenchmarkSetGet(b, func(t testing.TB) core.OrderBookBackend {
		return newTestBackend(t, "")
	})
}
