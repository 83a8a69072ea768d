package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	redisbackend "github.com/erain9/pitchvolume/pkg/backend/redis"
	"github.com/erain9/pitchvolume/pkg/core"
	"github.com/erain9/pitchvolume/pkg/pitch"
	"github.com/erain9/pitchvolume/pkg/pitch/pitchtest"
)

const (
	redisAddr = "localhost:6379"
	redisDB   = 0
)

func main() {
	ctx := context.Background()

	// Connect to Redis
	client := redisbackend.NewClient(&redisbackend.RedisOptions{
		Addr: redisAddr,
		DB:   redisDB,
	})

	// Check Redis connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Printf("Redis connection established: %s\n", pong)

	// A fresh prefix per run keeps earlier runs from looking like duplicates
	prefix := fmt.Sprintf("pitch-example:%d", time.Now().UnixMilli())
	backend := redisbackend.NewRedisBackend(client, prefix, time.Hour, nil)
	defer backend.Close()
	book := core.NewOrderBook(backend)

	g := pitchtest.NewGenerator(time.Now().UnixNano(), nil)
	var capture bytes.Buffer
	if err := g.Write(&capture, 2000); err != nil {
		panic(err)
	}

	if err := book.Replay(ctx, pitch.NewReader(&capture)); err != nil {
		panic(err)
	}

	fmt.Println("\nTop symbols by traded volume:")
	for i, v := range book.TopN(5) {
		fmt.Printf("%d. %-6s %d\n", i+1, v.Symbol, v.Volume)
	}

	resting, err := backend.Len(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("\nOrders stored in Redis under %s: %d (generator expects %d)\n", prefix, resting, g.Live())
}
