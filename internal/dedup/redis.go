// Package dedup drops webhook deliveries that were already processed.
// Upstream delivers at least once, so replays are expected, not errors.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"videoagent-pipeline/pkg/logger"
)

const keyPrefix = "webhook:delivery:"

// RedisDeduper records delivery IDs in Redis with a TTL. SETNX makes the
// check-and-mark a single round trip, so concurrent workers cannot both
// claim the same delivery.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(addr string, ttl time.Duration) *RedisDeduper {
	client := redis.NewClient(&redis.Options{Addr: addr})
	logger.Get().Infow("redis deduper initialized", "addr", addr, "ttl", ttl)
	return &RedisDeduper{client: client, ttl: ttl}
}

// NewRedisDeduperWithClient wires an existing client, used by tests.
func NewRedisDeduperWithClient(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Seen returns true when deliveryID was already recorded. A fresh ID is
// recorded as a side effect and expires after the configured TTL.
func (d *RedisDeduper) Seen(ctx context.Context, deliveryID string) (bool, error) {
	set, err := d.client.SetNX(ctx, keyPrefix+deliveryID, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
