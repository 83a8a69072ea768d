package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/erain9/pitchvolume/pkg/core"
	"go.uber.org/zap"
)

var orderPrefix = []byte("order:")

// BadgerBackend implements OrderBookBackend on a Badger key-value store
type BadgerBackend struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadgerBackend opens a Badger database at path. An empty path keeps the
// store in memory.
func NewBadgerBackend(path string, logger *zap.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // disable internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgerBackend{db: db, logger: logger}, nil
}

// GetOrder loads an order, returning nil when absent
func (b *BadgerBackend) GetOrder(_ context.Context, orderID string) (*core.Order, error) {
	var order *core.Order
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(orderKey(orderID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			order = &core.Order{}
			return json.Unmarshal(val, order)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		b.logger.Error("failed to get order", zap.String("orderID", orderID), zap.Error(err))
		return nil, fmt.Errorf("badger get %s: %w", orderID, err)
	}
	return order, nil
}

// SetOrder persists the order, replacing any previous value
func (b *BadgerBackend) SetOrder(_ context.Context, order *core.Order) error {
	if order == nil {
		return core.ErrNilOrder
	}

	val, err := json.Marshal(order)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(orderKey(order.ID()), val)
	})
	if err != nil {
		b.logger.Error("failed to store order", zap.String("orderID", order.ID()), zap.Error(err))
		return fmt.Errorf("badger set %s: %w", order.ID(), err)
	}
	return nil
}

// DeleteOrder removes the order; absent ids are ignored
func (b *BadgerBackend) DeleteOrder(_ context.Context, orderID string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(orderKey(orderID))
	})
	if err != nil {
		b.logger.Error("failed to delete order", zap.String("orderID", orderID), zap.Error(err))
		return fmt.Errorf("badger delete %s: %w", orderID, err)
	}
	return nil
}

// Len counts the resting orders
func (b *BadgerBackend) Len() (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = orderPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the database
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func orderKey(orderID string) []byte {
	return append(append([]byte{}, orderPrefix...), orderID...)
}
