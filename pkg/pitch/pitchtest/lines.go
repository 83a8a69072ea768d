// Package pitchtest builds SOUP framed PITCH lines for tests.
package pitchtest

import (
	"fmt"
	"strings"
)

// AddOrder returns a sequenced data line carrying a short form add order.
// price is the raw 10 digit wire field.
func AddOrder(ts, id string, side byte, qty int, symbol, price string) string {
	return fmt.Sprintf("S%-8sA%-12s%c%06d%-6s%sY", ts, id, side, qty, symbol, price)
}

// OrderCancel returns a sequenced data line carrying an order cancel
func OrderCancel(ts, id string, qty int) string {
	return fmt.Sprintf("S%-8sX%-12s%06d", ts, id, qty)
}

// Trade returns a sequenced data line carrying a trade
func Trade(ts, id string, side byte, qty int, symbol, price, execID string) string {
	return fmt.Sprintf("S%-8sP%-12s%c%06d%-6s%s%s", ts, id, side, qty, symbol, price, padID(execID))
}

// OrderExecuted returns a sequenced data line carrying an order execution
func OrderExecuted(ts, id string, qty int, execID string) string {
	return fmt.Sprintf("S%-8sE%-12s%06d%s", ts, id, qty, padID(execID))
}

// Payload strips the SOUP marker from a line built by this package
func Payload(line string) string {
	return line[1:]
}

// padID left pads a trailing id field with zeros. Trailing spaces would be
// trimmed with the frame and leave the record short.
func padID(id string) string {
	if len(id) >= 12 {
		return id
	}
	return strings.Repeat("0", 12-len(id)) + id
}
