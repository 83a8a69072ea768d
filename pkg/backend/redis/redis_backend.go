package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions represents configuration options for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

var defaultOptions = &RedisOptions{
	Addr:     "localhost:6379",
	Password: "",
	DB:       0,
}

// NewClient creates a Redis client; nil options select localhost:6379
func NewClient(options *RedisOptions) *redis.Client {
	if options == nil {
		options = defaultOptions
	}
	return redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})
}

// RedisBackend implements OrderBookBackend interface with Redis storage.
// Orders are stored as JSON under <prefix>:order:<id>.
type RedisBackend struct {
	client      *redis.Client
	orderPrefix string
	ttl         time.Duration
	logger      *zap.Logger
}

// NewRedisBackend creates a new instance of RedisBackend. A zero ttl keeps keys forever.
func NewRedisBackend(client *redis.Client, orderPrefix string, ttl time.Duration, logger *zap.Logger) *RedisBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBackend{
		client:      client,
		orderPrefix: orderPrefix,
		ttl:         ttl,
		logger:      logger,
	}
}

// GetOrder retrieves an order from Redis by its ID
func (b *RedisBackend) GetOrder(ctx context.Context, orderID string) (*core.Order, error) {
	data, err := b.client.Get(ctx, b.getOrderKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		b.logger.Error("failed to get order",
			zap.String("orderID", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", orderID, err)
	}

	var order core.Order
	if err := json.Unmarshal(data, &order); err != nil {
		b.logger.Error("failed to unmarshal order",
			zap.String("orderID", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}

	return &order, nil
}

// SetOrder stores an order in Redis, replacing any previous value
func (b *RedisBackend) SetOrder(ctx context.Context, order *core.Order) error {
	if order == nil {
		return core.ErrNilOrder
	}

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := b.client.Set(ctx, b.getOrderKey(order.ID()), data, b.ttl).Err(); err != nil {
		b.logger.Error("failed to store order",
			zap.String("orderID", order.ID()),
			zap.Error(err))
		return fmt.Errorf("redis set %s: %w", order.ID(), err)
	}
	return nil
}

// DeleteOrder removes an order from Redis
func (b *RedisBackend) DeleteOrder(ctx context.Context, orderID string) error {
	if err := b.client.Del(ctx, b.getOrderKey(orderID)).Err(); err != nil {
		b.logger.Error("failed to delete order",
			zap.String("orderID", orderID),
			zap.Error(err))
		return fmt.Errorf("redis del %s: %w", orderID, err)
	}
	return nil
}

// Len counts the orders stored under the backend prefix
func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.getOrderKey("*"), 1000).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (b *RedisBackend) getOrderKey(orderID string) string {
	return fmt.Sprintf("%s:order:%s", b.orderPrefix, orderID)
}

// Close closes the Redis client and cleans up resources
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
