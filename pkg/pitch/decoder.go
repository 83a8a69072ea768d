package pitch

import (
	"strconv"
	"strings"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/shopspring/decimal"
)

// Field widths per record, in wire order
var (
	addOrderShortWidths = []int{8, 1, 12, 1, 6, 6, 10, 1}
	orderCancelWidths   = []int{8, 1, 12, 6}
	tradeWidths         = []int{8, 1, 12, 1, 6, 6, 10, 12}
	orderExecutedWidths = []int{8, 1, 12, 6, 12}
)

const (
	priceIntegerDigits = 6
	addOrderTrailer    = "Y"
)

// Decode turns one SOUP payload into an Event.
//
// Unknown tags report a diag.UnknownTag diagnostic and return (nil, nil).
// Records violating their layout return a *DecodeError wrapping ErrMalformedRecord;
// long-form orders return one wrapping ErrUnsupportedVariant.
func Decode(payload string, sink diag.Sink) (Event, error) {
	if len(payload) <= TagOffset {
		diag.Report(sink, diag.Diagnostic{Kind: diag.UnknownTag, Detail: payload})
		return nil, nil
	}

	switch tag := Tag(payload[TagOffset]); tag {
	case TagAddOrderShort:
		return decodeAddOrderShort(payload)
	case TagAddOrderLong:
		return nil, &DecodeError{
			Tag:     tag,
			Reason:  "long form orders are not implemented",
			Payload: payload,
			Err:     ErrUnsupportedVariant,
		}
	case TagOrderCancel:
		return decodeOrderCancel(payload)
	case TagTrade:
		return decodeTrade(payload, sink)
	case TagOrderExecuted:
		return decodeOrderExecuted(payload)
	default:
		diag.Report(sink, diag.Diagnostic{Kind: diag.UnknownTag, Detail: payload})
		return nil, nil
	}
}

func decodeAddOrderShort(payload string) (Event, error) {
	fields, err := split(TagAddOrderShort, payload, addOrderShortWidths)
	if err != nil {
		return nil, err
	}

	qty, err := parseQuantity(TagAddOrderShort, payload, "quantity", fields[4])
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(TagAddOrderShort, payload, fields[6])
	if err != nil {
		return nil, err
	}
	if fields[7] != addOrderTrailer {
		return nil, malformed(TagAddOrderShort, payload, "trailer", "expected %q, got %q", addOrderTrailer, fields[7])
	}

	return AddOrder{
		Timestamp: fields[0],
		OrderID:   fields[2],
		Side:      fields[3][0],
		Quantity:  qty,
		Symbol:    parseSymbol(fields[5]),
		Price:     price,
	}, nil
}

func decodeOrderCancel(payload string) (Event, error) {
	fields, err := split(TagOrderCancel, payload, orderCancelWidths)
	if err != nil {
		return nil, err
	}

	qty, err := parseQuantity(TagOrderCancel, payload, "quantity", fields[3])
	if err != nil {
		return nil, err
	}

	return OrderCancel{
		Timestamp: fields[0],
		OrderID:   fields[2],
		Quantity:  qty,
	}, nil
}

func decodeTrade(payload string, sink diag.Sink) (Event, error) {
	fields, err := split(TagTrade, payload, tradeWidths)
	if err != nil {
		return nil, err
	}

	qty, err := parseQuantity(TagTrade, payload, "quantity", fields[4])
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(TagTrade, payload, fields[6])
	if err != nil {
		return nil, err
	}

	// Documented as always "B", but captures carry "S" too.
	if side := fields[3][0]; side != SideBuy {
		diag.Report(sink, diag.Diagnostic{
			Kind:    diag.TradeSide,
			OrderID: fields[2],
			Detail:  string(side),
		})
	}

	return Trade{
		Timestamp:   fields[0],
		OrderID:     fields[2],
		Quantity:    qty,
		Symbol:      parseSymbol(fields[5]),
		Price:       price,
		ExecutionID: fields[7],
	}, nil
}

func decodeOrderExecuted(payload string) (Event, error) {
	fields, err := split(TagOrderExecuted, payload, orderExecutedWidths)
	if err != nil {
		return nil, err
	}

	qty, err := parseQuantity(TagOrderExecuted, payload, "quantity", fields[3])
	if err != nil {
		return nil, err
	}

	return OrderExecuted{
		Timestamp:   fields[0],
		OrderID:     fields[2],
		Quantity:    qty,
		ExecutionID: fields[4],
	}, nil
}

// split cuts payload at the exact offsets given by widths and checks the tag field
func split(tag Tag, payload string, widths []int) ([]string, error) {
	size := 0
	for _, w := range widths {
		size += w
	}
	if len(payload) != size {
		return nil, malformed(tag, payload, "", "expected %d bytes, got %d", size, len(payload))
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] > 0x7f {
			return nil, malformed(tag, payload, "", "non-ASCII byte at offset %d", i)
		}
	}

	fields := make([]string, len(widths))
	offset := 0
	for i, w := range widths {
		fields[i] = payload[offset : offset+w]
		offset += w
	}

	if fields[1] != string(tag) {
		return nil, malformed(tag, payload, "type", "expected %q, got %q", string(tag), fields[1])
	}
	return fields, nil
}

func parseQuantity(tag Tag, payload, name, field string) (uint64, error) {
	if !isDigits(field) {
		return 0, malformed(tag, payload, name, "expected digits, got %q", field)
	}
	qty, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, malformed(tag, payload, name, "%v", err)
	}
	return qty, nil
}

// parsePrice reads a 10 digit price with 4 implied decimal places
func parsePrice(tag Tag, payload, field string) (decimal.Decimal, error) {
	if !isDigits(field) {
		return decimal.Decimal{}, malformed(tag, payload, "price", "expected digits, got %q", field)
	}
	price, err := decimal.NewFromString(field[:priceIntegerDigits] + "." + field[priceIntegerDigits:])
	if err != nil {
		return decimal.Decimal{}, malformed(tag, payload, "price", "%v", err)
	}
	return price, nil
}

func parseSymbol(field string) string {
	return strings.TrimRight(field, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
