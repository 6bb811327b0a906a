package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyTTL = 24 * time.Hour

// RedisGuard claims idempotency keys in redis. A key can be claimed once
// within its TTL; replays within the window are rejected.
type RedisGuard struct {
	rdb *redis.Client
}

func NewRedisGuard(rdb *redis.Client) *RedisGuard {
	return &RedisGuard{rdb: rdb}
}

func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	return g.rdb.SetNX(ctx, redisKey, "exists", keyTTL).Result()
}
