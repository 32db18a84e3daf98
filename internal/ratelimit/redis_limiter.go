package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisLimiter counts hits in a sorted set scored by timestamp, one set per
// key. The window slides: each check first evicts entries older than the
// window, then records itself. State is shared across replicas and survives
// restarts.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{client: client, log: log}
}

func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}
	if limit <= 0 {
		return &Result{ResetAt: time.Now().Add(window)}, nil
	}

	now := time.Now()
	oldest := now.Add(-window)

	toMillis := func(t time.Time) float64 {
		return float64(t.UnixNano()) / float64(time.Millisecond)
	}

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, keyPrefix+key, "-inf", fmt.Sprintf("(%f", toMillis(oldest)))
	pipe.ZAdd(ctx, keyPrefix+key, redis.Z{Score: toMillis(now), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, keyPrefix+key)
	pipe.Expire(ctx, keyPrefix+key, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Error("rate limiter pipeline failed", slog.String("key", key), slog.Any("error", err))
		return nil, err
	}

	hits, err := count.Result()
	if err != nil {
		l.log.Error("rate limiter failed to read count", slog.String("key", key), slog.Any("error", err))
		return nil, err
	}

	remaining := limit - int(hits)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   hits <= int64(limit),
		Remaining: remaining,
		ResetAt:   now,
	}, nil
}
