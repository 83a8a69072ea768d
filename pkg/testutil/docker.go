package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// DockerContainer represents a Docker container used for testing
type DockerContainer struct {
	ID        string
	Name      string
	HostPort  string
	StartedAt time.Time
}

// Addr returns the host address the container listens on
func (c *DockerContainer) Addr() string {
	return "localhost:" + c.HostPort
}

// StartRedisContainer starts a throwaway Redis container on hostPort
func StartRedisContainer(ctx context.Context, hostPort string) (*DockerContainer, error) {
	containerName := fmt.Sprintf("pitch-redis-test-%d", time.Now().UnixNano())

	cmd := exec.CommandContext(ctx, "docker", "run", "--rm", "-d",
		"--name", containerName,
		"-p", hostPort+":6379",
		"redis:alpine")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w, output: %s", err, output)
	}

	container := &DockerContainer{
		ID:        strings.TrimSpace(string(output)),
		Name:      containerName,
		HostPort:  hostPort,
		StartedAt: time.Now(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for {
		if err := PingRedis(pingCtx, container.Addr()); err == nil {
			return container, nil
		}
		select {
		case <-pingCtx.Done():
			_ = container.Stop(context.Background())
			return nil, fmt.Errorf("timed out waiting for Redis to be ready")
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Stop stops and removes the Docker container
func (c *DockerContainer) Stop(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "rm", "-f", c.ID)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to stop container %s: %w, output: %s", c.ID, err, output)
	}
	return nil
}

// WithRedis runs testFunc against RedisAddr when it answers, otherwise against
// a Redis container started for the test. The test is skipped when neither works.
func WithRedis(t testing.TB, testFunc func(redisAddr string)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	err := PingRedis(ctx, RedisAddr())
	cancel()
	if err == nil {
		testFunc(RedisAddr())
		return
	}

	container, startErr := StartRedisContainer(context.Background(), "6380")
	if startErr != nil {
		t.Skipf("Skipping test: %v, and could not start Redis container: %v", err, startErr)
		return
	}
	t.Cleanup(func() {
		_ = container.Stop(context.Background())
	})

	testFunc(container.Addr())
}
