package xredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const guardPrefix = "taskquer:guard:"

// Guard is a best-effort mutual exclusion on a key. The database constraint stays the real check.
type Guard struct {
	rdb *redis.Client
}

func NewGuard(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb}
}

func (g *Guard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, guardPrefix+key, "1", ttl).Result()
	if err != nil {
		zap.L().Warn("guard acquire failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (g *Guard) Release(ctx context.Context, key string) {
	if err := g.rdb.Del(ctx, guardPrefix+key).Err(); err != nil {
		zap.L().Warn("guard release failed", zap.String("key", key), zap.Error(err))
	}
}
