package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/erain9/pitchvolume/config"
	"github.com/erain9/pitchvolume/pkg/backend/badger"
	"github.com/erain9/pitchvolume/pkg/backend/memory"
	"github.com/erain9/pitchvolume/pkg/backend/pebble"
	"github.com/erain9/pitchvolume/pkg/backend/redis"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/logging"
	"go.uber.org/zap"
)

// BackendInfo contains metadata about an opened book store
type BackendInfo struct {
	Driver   string
	Location string
	OpenedAt time.Time
}

// Backend is an opened book store together with its resources
type Backend struct {
	core.OrderBookBackend
	Info BackendInfo

	count   func(ctx context.Context) (int, error)
	closers []func() error
}

// OpenBackend creates the book store selected by cfg
func OpenBackend(ctx context.Context, cfg config.BackendConfig, zlog *zap.Logger) (*Backend, error) {
	logger := logging.FromContext(ctx).With().Str("backend", cfg.Driver).Logger()
	if zlog == nil {
		zlog = zap.NewNop()
	}

	b := &Backend{Info: BackendInfo{Driver: cfg.Driver, OpenedAt: time.Now()}}

	switch cfg.Driver {
	case config.BackendMemory, "":
		mem := memory.NewMemoryBackend()
		b.OrderBookBackend = mem
		b.Info.Driver = config.BackendMemory
		b.count = func(context.Context) (int, error) { return mem.Len(), nil }

	case config.BackendRedis:
		client := redis.NewClient(&redis.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		// Test connection
		if _, err := client.Ping(ctx).Result(); err != nil {
			_ = client.Close()
			logger.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		rb := redis.NewRedisBackend(client, cfg.Redis.Prefix, cfg.Redis.TTL, zlog)
		b.OrderBookBackend = rb
		b.Info.Location = fmt.Sprintf("%s/%d/%s", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
		b.count = rb.Len
		b.closers = append(b.closers, rb.Close)

	case config.BackendPebble:
		dir := cfg.Path
		if dir == "" {
			tmp, err := os.MkdirTemp("", "pitch-book-*")
			if err != nil {
				return nil, fmt.Errorf("create pebble dir: %w", err)
			}
			dir = tmp
			b.closers = append(b.closers, func() error { return os.RemoveAll(tmp) })
		}
		pb, err := pebble.NewPebbleBackend(dir, pebble.Options{Logger: zlog})
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.OrderBookBackend = pb
		b.Info.Location = dir
		b.count = func(context.Context) (int, error) { return pb.Len() }
		// the store must close before its temporary directory is removed
		b.closers = append([]func() error{pb.Close}, b.closers...)

	case config.BackendBadger:
		bb, err := badger.NewBadgerBackend(cfg.Path, zlog)
		if err != nil {
			return nil, err
		}
		b.OrderBookBackend = bb
		b.Info.Location = cfg.Path
		if cfg.Path == "" {
			b.Info.Location = "in-memory"
		}
		b.count = func(context.Context) (int, error) { return bb.Len() }
		b.closers = append(b.closers, bb.Close)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Driver)
	}

	logger.Info().
		Str("location", b.Info.Location).
		Msg("Opened order book backend")
	return b, nil
}

// RestingOrders counts the orders left in the store, or -1 when it cannot
func (b *Backend) RestingOrders(ctx context.Context) int {
	if b.count == nil {
		return -1
	}
	n, err := b.count(ctx)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().Err(err).Msg("Failed to count resting orders")
		return -1
	}
	return n
}

// Close releases every resource held by the backend
func (b *Backend) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
