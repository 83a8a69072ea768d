package main

import (
	"context"
	"fmt"

	"github.com/erain9/pitchvolume/pkg/backend/memory"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/erain9/pitchvolume/pkg/soup"
)

var capture = []string{
	"S28800011A1K27GA00000YB000100AAPL  0001012500Y",
	"S28800012A1K27GA00000ZS000300SPY   0002000000Y",
	"H",
	"S28800013E1K27GA00000Y0000400AAP00000001",
	"S28800014X1K27GA00000Z000100",
	"S28800015P1K27GA00001AB000075MSFT  00005000000AAP00000003",
}

func main() {
	ctx := context.Background()
	sink := diag.SinkFunc(func(d diag.Diagnostic) {
		fmt.Printf("diagnostic: %s\n", d)
	})

	// Initialize order book with in-memory backend
	backend := memory.NewMemoryBackend()
	book := core.NewOrderBook(backend, core.WithSink(sink))

	for _, line := range capture {
		payload, ok := soup.Unwrap(line, sink)
		if !ok {
			continue
		}
		ev, err := pitch.Decode(payload, sink)
		if err != nil {
			panic(err)
		}
		if ev == nil {
			continue
		}
		if err := book.Process(ctx, ev); err != nil {
			panic(err)
		}
		fmt.Printf("Applied %s %s\n", ev.Tag(), payload[9:21])
	}

	// Summary
	fmt.Println("\nTop symbols by traded volume:")
	for i, v := range book.TopN(core.DefaultTopN) {
		fmt.Printf("%d. %-6s %d\n", i+1, v.Symbol, v.Volume)
	}

	fmt.Println("\nResting orders:")
	for _, o := range backend.Orders() {
		fmt.Printf("- %s\n", o)
	}
}
