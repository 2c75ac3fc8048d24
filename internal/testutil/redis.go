//go:build integration

package testutil

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
)

// FlushTestDB empties TestDB before and after the calling test.
func FlushTestDB(t *testing.T) {
	t.Helper()

	flush := func() {
		client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: TestDB})
		defer client.Close()
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("flushing DB %d: %v", TestDB, err)
		}
	}
	flush()
	t.Cleanup(flush)
}

// WriteEntry writes a raw hash, bypassing the registry encoder.
func WriteEntry(t *testing.T, key string, fields map[string]string) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: TestDB})
	defer client.Close()

	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := client.HSet(context.Background(), key, args...).Err(); err != nil {
		t.Fatalf("writing %s: %v", key, err)
	}
}

// ReadEntry reads a raw hash from TestDB.
func ReadEntry(t *testing.T, key string) map[string]string {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: TestDB})
	defer client.Close()

	vals, err := client.HGetAll(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("reading %s: %v", key, err)
	}
	return vals
}

// KeyCount returns the number of keys in TestDB.
func KeyCount(t *testing.T) int {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: TestDB})
	defer client.Close()

	n, err := client.DBSize(context.Background()).Result()
	if err != nil {
		t.Fatalf("failed to get key count for DB %d: %v", TestDB, err)
	}
	return int(n)
}
