package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_checks_total",
		Help: "Rate limit checks by backend and result.",
	}, []string{"backend", "result"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_rejected_total",
		Help: "Updates rejected by the rate limiter, by backend.",
	}, []string{"backend"})

	redisErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_redis_errors_total",
		Help: "Rate limit checks that fell back to memory because redis failed.",
	})
)

// AdaptiveLimiter prefers the shared redis window and falls back to the
// in-process one when redis is unreachable. The fallback halves the limit:
// with several replicas each counting locally, a full per-replica limit
// would multiply the effective allowance.
type AdaptiveLimiter struct {
	redis  *RedisLimiter
	memory *MemoryLimiter
	log    *slog.Logger
}

var _ Limiter = (*AdaptiveLimiter)(nil)

func NewAdaptiveLimiter(redis *RedisLimiter, memory *MemoryLimiter, log *slog.Logger) *AdaptiveLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{redis: redis, memory: memory, log: log}
}

func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if a.redis != nil {
		result, err := a.redis.Check(ctx, key, limit, window)
		if err == nil {
			observe("redis", result)
			return result, nil
		}

		redisErrorsTotal.Inc()
		a.log.Warn("redis rate limiter unavailable, using in-memory fallback",
			slog.String("key", key), slog.Any("error", err))
	}

	if a.memory == nil {
		return nil, errors.New("no rate limiter backend available")
	}

	fallbackLimit := limit / 2
	if fallbackLimit < 1 {
		fallbackLimit = 1
	}

	result, err := a.memory.Check(ctx, key, fallbackLimit, window)
	if err != nil && !errors.Is(err, ErrLimitExceeded) {
		return nil, err
	}

	observe("memory", result)
	return result, err
}

func observe(backend string, result *Result) {
	if result == nil {
		return
	}

	outcome := "allowed"
	if !result.Allowed {
		outcome = "rejected"
		rejectedTotal.WithLabelValues(backend).Inc()
	}

	checksTotal.WithLabelValues(backend, outcome).Inc()
}
