package core

import (
	"encoding/json"
	"testing"

	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideString(t *testing.T) {
	tests := []struct {
		name string
		side Side
		want string
	}{
		{"Buy", Buy, "BUY"},
		{"Sell", Sell, "SELL"},
		{"Invalid", Side(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.side.String(); got != tt.want {
				t.Errorf("Side.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideFromIndicator(t *testing.T) {
	assert.Equal(t, Buy, SideFromIndicator('B'))
	assert.Equal(t, Sell, SideFromIndicator('S'))
	assert.Equal(t, UnknownSide, SideFromIndicator('X'))
}

func testAddOrder(id, symbol string, qty uint64) pitch.AddOrder {
	return pitch.AddOrder{
		Timestamp: "28800011",
		OrderID:   id,
		Side:      pitch.SideBuy,
		Quantity:  qty,
		Symbol:    symbol,
		Price:     decimal.RequireFromString("101.2500"),
	}
}

func TestNewOrder(t *testing.T) {
	order := NewOrder(testAddOrder("1K27GA00000Y", "AAPL", 100))

	if order.ID() != "1K27GA00000Y" {
		t.Errorf("Expected ID %s, got %s", "1K27GA00000Y", order.ID())
	}
	if order.Side() != Buy {
		t.Errorf("Expected Side Buy, got %v", order.Side())
	}
	assert.Equal(t, "AAPL", order.Symbol())
	assert.Equal(t, "28800011", order.Timestamp())
	assert.True(t, order.Price().Equal(decimal.RequireFromString("101.25")))
	assert.Equal(t, uint64(100), order.OriginalQty())
	assert.Equal(t, int64(100), order.Remaining())
}

func TestOrder_DecreaseQuantity(t *testing.T) {
	order := NewOrder(testAddOrder("A1", "AAPL", 100))

	assert.Equal(t, int64(60), order.DecreaseQuantity(40))
	assert.Equal(t, int64(0), order.DecreaseQuantity(60))
	assert.Equal(t, int64(-5), order.DecreaseQuantity(5))
	assert.Equal(t, uint64(100), order.OriginalQty(), "original quantity never changes")
}

func TestOrder_Clone(t *testing.T) {
	order := NewOrder(testAddOrder("A1", "AAPL", 100))
	clone := order.Clone()
	clone.DecreaseQuantity(30)

	assert.Equal(t, int64(100), order.Remaining())
	assert.Equal(t, int64(70), clone.Remaining())
}

func TestOrder_JSON(t *testing.T) {
	order := NewOrder(testAddOrder("A1", "SPY", 100))
	order.DecreaseQuantity(25)

	data, err := json.Marshal(order)
	require.NoError(t, err)

	var jsonMap map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &jsonMap))
	assert.Equal(t, "A1", jsonMap["id"])
	assert.Equal(t, "101.25", jsonMap["price"])
	assert.Equal(t, float64(75), jsonMap["remaining"])

	var decoded Order
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, order.ID(), decoded.ID())
	assert.Equal(t, order.Side(), decoded.Side())
	assert.Equal(t, order.Symbol(), decoded.Symbol())
	assert.True(t, order.Price().Equal(decoded.Price()))
	assert.Equal(t, order.OriginalQty(), decoded.OriginalQty())
	assert.Equal(t, int64(75), decoded.Remaining())
}

func TestOrder_UnmarshalJSON_InvalidPrice(t *testing.T) {
	var o Order
	err := json.Unmarshal([]byte(`{"id":"A1","price":"abc"}`), &o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
}

func TestOrder_String(t *testing.T) {
	order := NewOrder(testAddOrder("A1", "SPY", 100))
	assert.Equal(t, "A1 BUY 100/100 SPY@101.25", order.String())
}
