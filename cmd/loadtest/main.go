// Command loadtest replays synthetic captures concurrently against a book
// store and reports throughput and per-event latency.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/erain9/pitchvolume/config"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/logging"
	"github.com/erain9/pitchvolume/pkg/pipeline"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/erain9/pitchvolume/pkg/pitch/pitchtest"
	"github.com/erain9/pitchvolume/pkg/stats"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type options struct {
	workers        int
	linesPerWorker int
	backend        string
	redisAddr      string
	symbols        string
	seed           int64
	linesPerSecond int
}

func main() {
	var opts options
	flag.IntVar(&opts.workers, "workers", 8, "Concurrent replays, each with its own book")
	flag.IntVar(&opts.linesPerWorker, "lines", 100000, "Capture lines generated per worker")
	flag.StringVar(&opts.backend, "backend", config.BackendMemory, "Book backend: memory, redis, pebble, badger")
	flag.StringVar(&opts.redisAddr, "redis_addr", "localhost:6379", "Redis address")
	flag.StringVar(&opts.symbols, "symbols", strings.Join(pitchtest.DefaultSymbols, ","), "Comma separated symbol universe")
	flag.Int64Var(&opts.seed, "seed", 1, "Seed of the first worker's capture")
	flag.IntVar(&opts.linesPerSecond, "rate", 0, "Throttle each worker to this many lines per second, 0 for no limit")
	flag.Parse()

	logging.Setup(logging.Config{Level: "info", Pretty: true, Output: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := runLoadTest(ctx, opts); err != nil {
		log.Fatal().Err(err).Msg("Load test failed")
	}
}

func runLoadTest(ctx context.Context, opts options) error {
	symbols := strings.Split(opts.symbols, ",")

	captures := make([][]byte, opts.workers)
	expected := make([]core.Totals, opts.workers)
	for i := range captures {
		g := pitchtest.NewGenerator(opts.seed+int64(i), symbols)
		var buf bytes.Buffer
		if err := g.Write(&buf, opts.linesPerWorker); err != nil {
			return err
		}
		captures[i] = buf.Bytes()
		expected[i] = g.Volume()
	}
	log.Info().
		Int("workers", opts.workers).
		Int("lines_per_worker", opts.linesPerWorker).
		Str("backend", opts.backend).
		Msg("Generated captures")

	latency := stats.NewLatency()
	var wg sync.WaitGroup
	errChan := make(chan error, opts.workers)
	var events uint64
	var mu sync.Mutex

	start := time.Now()
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			n, err := replayWorker(ctx, opts, workerID, captures[workerID], expected[workerID], latency)
			if err != nil {
				errChan <- fmt.Errorf("worker %d: %w", workerID, err)
				return
			}
			mu.Lock()
			events += n
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)
	close(errChan)

	var errs []error
	for err := range errChan {
		log.Error().Err(err).Msg("Worker failed")
		errs = append(errs, err)
	}

	summary := latency.Summary()
	log.Info().
		Dur("duration", duration).
		Uint64("events", events).
		Float64("events_per_sec", float64(events)/duration.Seconds()).
		Dur("p50", summary.P50).
		Dur("p99", summary.P99).
		Dur("max", summary.Max).
		Int("errors", len(errs)).
		Msg("Load test completed")

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d workers failed", len(errs), opts.workers)
	}
	return nil
}

func replayWorker(ctx context.Context, opts options, workerID int, capture []byte, want core.Totals, latency *stats.Latency) (uint64, error) {
	backend, err := pipeline.OpenBackend(ctx, config.BackendConfig{
		Driver: opts.backend,
		Redis: config.RedisConfig{
			Addr:   opts.redisAddr,
			Prefix: fmt.Sprintf("loadtest:%d:%d", time.Now().UnixNano(), workerID),
			TTL:    10 * time.Minute,
		},
	}, nil)
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	var src core.EventSource = pitch.NewReader(bytes.NewReader(capture))
	if opts.linesPerSecond > 0 {
		src = &throttledSource{EventSource: src, ctx: ctx, limiter: rate.NewLimiter(rate.Limit(opts.linesPerSecond), opts.linesPerSecond)}
	}

	book := core.NewOrderBook(backend, core.WithLatencyRecorder(latency))
	if err := book.Replay(ctx, src); err != nil {
		return 0, err
	}

	got := book.Totals()
	for symbol, volume := range want {
		if got[symbol] != volume {
			return 0, fmt.Errorf("symbol %s: replayed volume %d, generated %d", symbol, got[symbol], volume)
		}
	}
	return book.Stats().Events, nil
}

// throttledSource paces an event source with a token bucket
type throttledSource struct {
	core.EventSource
	ctx     context.Context
	limiter *rate.Limiter
}

func (s *throttledSource) Next() bool {
	if err := s.limiter.Wait(s.ctx); err != nil {
		return false
	}
	return s.EventSource.Next()
}
