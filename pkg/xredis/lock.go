package xredis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LeaderLock elects one instance among replicas. The holder renews by calling TryAcquire again before ttl runs out.
type LeaderLock struct {
	rdb *redis.Client
	id  string
}

func NewLeaderLock(rdb *redis.Client) *LeaderLock {
	return &LeaderLock{rdb: rdb, id: uuid.NewString()}
}

func (l *LeaderLock) ID() string {
	return l.id
}

func (l *LeaderLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := l.rdb.SetNX(ctx, key, l.id, ttl).Result()
	if err != nil {
		zap.L().Warn("leader lock unavailable", zap.String("key", key), zap.Error(err))
		return false
	}
	if ok {
		return true
	}

	owner, err := l.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("leader lock read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if owner != l.id {
		return false
	}
	if err := l.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		zap.L().Warn("leader lock renew failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
