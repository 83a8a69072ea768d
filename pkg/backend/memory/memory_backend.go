package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/erain9/pitchvolume/pkg/core"
)

// MemoryBackend implements OrderBookBackend interface with in-memory storage
type MemoryBackend struct {
	sync.RWMutex
	orders map[string]*core.Order
}

// NewMemoryBackend creates new instance of MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		orders: make(map[string]*core.Order),
	}
}

// GetOrder returns a copy of the stored order, or nil when absent
func (b *MemoryBackend) GetOrder(_ context.Context, orderID string) (*core.Order, error) {
	b.RLock()
	defer b.RUnlock()

	order, ok := b.orders[orderID]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

// SetOrder inserts or replaces the order
func (b *MemoryBackend) SetOrder(_ context.Context, order *core.Order) error {
	if order == nil {
		return core.ErrNilOrder
	}

	b.Lock()
	defer b.Unlock()

	b.orders[order.ID()] = order.Clone()
	return nil
}

// DeleteOrder removes the order; absent ids are ignored
func (b *MemoryBackend) DeleteOrder(_ context.Context, orderID string) error {
	b.Lock()
	defer b.Unlock()

	delete(b.orders, orderID)
	return nil
}

// Len returns the number of resting orders
func (b *MemoryBackend) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.orders)
}

// Orders returns copies of all resting orders sorted by id
func (b *MemoryBackend) Orders() []*core.Order {
	b.RLock()
	defer b.RUnlock()

	orders := make([]*core.Order, 0, len(b.orders))
	for _, order := range b.orders {
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID() < orders[j].ID() })
	return orders
}

// String implements fmt.Stringer interface
func (b *MemoryBackend) String() string {
	sb := strings.Builder{}
	for _, order := range b.Orders() {
		sb.WriteString(fmt.Sprintf("\n%s", order))
	}
	return sb.String()
}
