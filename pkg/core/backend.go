package core

import "context"

// OrderBookBackend stores live orders keyed by order ID.
// Implementations must behave like an ordinary map: SetOrder inserts or replaces,
// DeleteOrder of an absent ID is a no-op, and GetOrder returns (nil, nil) when absent.
// Returned orders must not alias the stored state.
type OrderBookBackend interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	SetOrder(ctx context.Context, order *Order) error
	DeleteOrder(ctx context.Context, orderID string) error
}
