package core

import (
	"encoding/json"
	"fmt"

	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/shopspring/decimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
	UnknownSide
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// SideFromIndicator converts a wire side indicator to Side
func SideFromIndicator(b byte) Side {
	switch b {
	case pitch.SideBuy:
		return Buy
	case pitch.SideSell:
		return Sell
	default:
		return UnknownSide
	}
}

// Order is a resting order tracked by the book.
// Only the remaining quantity changes after creation.
type Order struct {
	id          string
	side        Side
	symbol      string
	price       decimal.Decimal
	timestamp   string
	originalQty uint64
	remaining   int64
}

// NewOrder creates a book entry from a decoded add order event
func NewOrder(ev pitch.AddOrder) *Order {
	return &Order{
		id:          ev.OrderID,
		side:        SideFromIndicator(ev.Side),
		symbol:      ev.Symbol,
		price:       ev.Price,
		timestamp:   ev.Timestamp,
		originalQty: ev.Quantity,
		remaining:   int64(ev.Quantity),
	}
}

// orderJSON is the representation used by external backends
type orderJSON struct {
	ID          string `json:"id"`
	Side        Side   `json:"side"`
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	Timestamp   string `json:"timestamp"`
	OriginalQty uint64 `json:"originalQty"`
	Remaining   int64  `json:"remaining"`
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:          o.id,
		Side:        o.side,
		Symbol:      o.symbol,
		Price:       o.price.String(),
		Timestamp:   o.timestamp,
		OriginalQty: o.originalQty,
		Remaining:   o.remaining,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Order
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	price := decimal.Zero
	if raw.Price != "" {
		var err error
		price, err = decimal.NewFromString(raw.Price)
		if err != nil {
			return fmt.Errorf("order %s: invalid price %q: %w", raw.ID, raw.Price, err)
		}
	}

	o.id = raw.ID
	o.side = raw.Side
	o.symbol = raw.Symbol
	o.price = price
	o.timestamp = raw.Timestamp
	o.originalQty = raw.OriginalQty
	o.remaining = raw.Remaining
	return nil
}

// ID returns OrderID field copy
func (o *Order) ID() string {
	return o.id
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Symbol returns the instrument symbol
func (o *Order) Symbol() string {
	return o.symbol
}

// Price returns Price field copy
func (o *Order) Price() decimal.Decimal {
	return o.price
}

// Timestamp returns the opaque timestamp token of the add order
func (o *Order) Timestamp() string {
	return o.timestamp
}

// OriginalQty returns originalQty field copy
func (o *Order) OriginalQty() uint64 {
	return o.originalQty
}

// Remaining returns the quantity not yet executed or canceled
func (o *Order) Remaining() int64 {
	return o.remaining
}

// DecreaseQuantity subtracts qty from the remaining quantity and returns the result,
// which is negative when qty exceeds what was left.
func (o *Order) DecreaseQuantity(qty uint64) int64 {
	o.remaining -= int64(qty)
	return o.remaining
}

// Clone returns an independent copy of the order
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// String implements Stringer interface
func (o *Order) String() string {
	return fmt.Sprintf("%s %s %d/%d %s@%s", o.id, o.side, o.remaining, o.originalQty, o.symbol, o.price)
}
