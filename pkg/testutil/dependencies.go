// Package testutil locates the external services used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	defaultRedisAddr = "localhost:6379"
	defaultKafkaAddr = "localhost:9092"
)

// RedisAddr returns the Redis address for integration tests, PITCH_TEST_REDIS_ADDR overrides it
func RedisAddr() string {
	if addr := os.Getenv("PITCH_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return defaultRedisAddr
}

// KafkaAddr returns the Kafka broker for integration tests, PITCH_TEST_KAFKA_ADDR overrides it
func KafkaAddr() string {
	if addr := os.Getenv("PITCH_TEST_KAFKA_ADDR"); addr != "" {
		return addr
	}
	return defaultKafkaAddr
}

// PingRedis checks that a Redis server answers on addr
func PingRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return nil
}

// SkipIfRedisUnavailable skips the test if Redis is unavailable on the specified address
func SkipIfRedisUnavailable(t testing.TB, redisAddr string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := PingRedis(ctx, redisAddr); err != nil {
		t.Skipf("Skipping test: Redis not available at %s - %v", redisAddr, err)
	}
}

// SkipIfKafkaUnavailable skips the test if no Kafka broker answers on the specified address
func SkipIfKafkaUnavailable(t testing.TB, kafkaAddr string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", kafkaAddr)
	if err != nil {
		t.Skipf("Skipping test: Kafka not available at %s - %v", kafkaAddr, err)
		return
	}
	defer conn.Close()

	// A metadata round trip proves the broker speaks the protocol
	if _, err := conn.Brokers(); err != nil {
		t.Skipf("Skipping test: Kafka at %s is not responding correctly - %v", kafkaAddr, err)
	}
}
