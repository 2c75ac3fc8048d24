//go:build integration

// Package testutil provides helpers for the Redis-backed integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddrEnv names the test Redis instance (host:port).
const RedisAddrEnv = "HSNADDR_REDIS_ADDR"

// TestDB is the Redis database the integration tests own and flush.
const TestDB = 15

// RedisAddr returns the address of the test Redis, or "" if unset.
func RedisAddr() string {
	return os.Getenv(RedisAddrEnv)
}

// SkipIfNoRedis skips the test if the test Redis is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skipf("test Redis not available: set %s", RedisAddrEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
