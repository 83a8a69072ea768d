package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/erain9/pitchvolume/pkg/core"
	"go.uber.org/zap"
)

var orderPrefix = []byte("order/")

// PebbleBackend implements OrderBookBackend on a local Pebble store, letting
// the book of a large capture spill to disk.
type PebbleBackend struct {
	db     *pebble.DB
	sync   bool
	logger *zap.Logger
}

// Options configures a PebbleBackend
type Options struct {
	// Sync fsyncs every write. The book is scratch state, so it is off by default.
	Sync bool
	// CacheSize of the block cache in bytes, zero keeps Pebble's default
	CacheSize int64
	Logger    *zap.Logger
}

// NewPebbleBackend opens (or creates) a Pebble database in dir
func NewPebbleBackend(dir string, options Options) (*PebbleBackend, error) {
	opts := &pebble.Options{}
	if options.CacheSize > 0 {
		cache := pebble.NewCache(options.CacheSize)
		defer cache.Unref()
		opts.Cache = cache
	}

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", dir, err)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PebbleBackend{db: db, sync: options.Sync, logger: logger}, nil
}

// GetOrder loads an order, returning nil when absent
func (b *PebbleBackend) GetOrder(_ context.Context, orderID string) (*core.Order, error) {
	val, closer, err := b.db.Get(orderKey(orderID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		b.logger.Error("failed to get order", zap.String("orderID", orderID), zap.Error(err))
		return nil, fmt.Errorf("pebble get %s: %w", orderID, err)
	}
	defer closer.Close()

	var order core.Order
	if err := json.Unmarshal(val, &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return &order, nil
}

// SetOrder persists the order, replacing any previous value
func (b *PebbleBackend) SetOrder(_ context.Context, order *core.Order) error {
	if order == nil {
		return core.ErrNilOrder
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := b.db.Set(orderKey(order.ID()), data, b.writeOptions()); err != nil {
		b.logger.Error("failed to store order", zap.String("orderID", order.ID()), zap.Error(err))
		return fmt.Errorf("pebble set %s: %w", order.ID(), err)
	}
	return nil
}

// DeleteOrder removes the order; absent ids are ignored
func (b *PebbleBackend) DeleteOrder(_ context.Context, orderID string) error {
	if err := b.db.Delete(orderKey(orderID), b.writeOptions()); err != nil {
		b.logger.Error("failed to delete order", zap.String("orderID", orderID), zap.Error(err))
		return fmt.Errorf("pebble delete %s: %w", orderID, err)
	}
	return nil
}

// Len counts the resting orders
func (b *PebbleBackend) Len() (int, error) {
	iter, err := b.db.NewIter(&pebble.IterOptions{
		LowerBound: orderPrefix,
		UpperBound: keyUpperBound(orderPrefix),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

// Close closes the database
func (b *PebbleBackend) Close() error {
	return b.db.Close()
}

func (b *PebbleBackend) writeOptions() *pebble.WriteOptions {
	if b.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func orderKey(orderID string) []byte {
	return append(append([]byte{}, orderPrefix...), orderID...)
}

// keyUpperBound returns the smallest key greater than every key with prefix
func keyUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
