// Package pitch decodes fixed-width PITCH market data records into typed events.
package pitch

import (
	"github.com/shopspring/decimal"
)

// Tag is the message type byte found at TagOffset of every payload
type Tag byte

// Record tags
const (
	TagAddOrderShort Tag = 'A'
	TagAddOrderLong  Tag = 'd'
	TagOrderCancel   Tag = 'X'
	TagTrade         Tag = 'P'
	TagOrderExecuted Tag = 'E'
)

// TagOffset is the zero-based byte position of the message type
const TagOffset = 8

// String returns tag as string
func (t Tag) String() string {
	switch t {
	case TagAddOrderShort:
		return "ADD_ORDER_SHORT"
	case TagAddOrderLong:
		return "ADD_ORDER_LONG"
	case TagOrderCancel:
		return "ORDER_CANCEL"
	case TagTrade:
		return "TRADE"
	case TagOrderExecuted:
		return "ORDER_EXECUTED"
	default:
		return "UNKNOWN"
	}
}

// Side indicator values as they appear on the wire
const (
	SideBuy  byte = 'B'
	SideSell byte = 'S'
)

// Event is one decoded market data record.
// The set of implementations is closed: AddOrder, OrderCancel, Trade and OrderExecuted.
type Event interface {
	// Tag returns the record tag the event was decoded from
	Tag() Tag
	// Ref returns the order identifier the record refers to
	Ref() string
	isEvent()
}

// AddOrder announces a new resting order
type AddOrder struct {
	Timestamp string
	OrderID   string
	Side      byte
	Quantity  uint64
	Symbol    string
	Price     decimal.Decimal
}

// OrderCancel reduces the remaining quantity of a resting order
type OrderCancel struct {
	Timestamp string
	OrderID   string
	Quantity  uint64
}

// Trade is a standalone print. Its OrderID is informational and is not matched against the book.
type Trade struct {
	Timestamp   string
	OrderID     string
	Quantity    uint64
	Symbol      string
	Price       decimal.Decimal
	ExecutionID string
}

// OrderExecuted fills part or all of a resting order
type OrderExecuted struct {
	Timestamp   string
	OrderID     string
	Quantity    uint64
	ExecutionID string
}

func (AddOrder) Tag() Tag      { return TagAddOrderShort }
func (OrderCancel) Tag() Tag   { return TagOrderCancel }
func (Trade) Tag() Tag         { return TagTrade }
func (OrderExecuted) Tag() Tag { return TagOrderExecuted }

func (e AddOrder) Ref() string      { return e.OrderID }
func (e OrderCancel) Ref() string   { return e.OrderID }
func (e Trade) Ref() string         { return e.OrderID }
func (e OrderExecuted) Ref() string { return e.OrderID }

func (AddOrder) isEvent()      {}
func (OrderCancel) isEvent()   {}
func (Trade) isEvent()         {}
func (OrderExecuted) isEvent() {}
