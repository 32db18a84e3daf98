package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cleaner sweeps leftover rate-limit sets. Every set is written with an
// expiry, but a crash between ZAdd and Expire leaves the key immortal; the
// sweep re-arms those and drops sets that emptied out.
type Cleaner struct {
	client   *redis.Client
	log      *slog.Logger
	interval time.Duration
}

func NewCleaner(client *redis.Client, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{client: client, log: log, interval: interval}
}

// Run sweeps on a ticker until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	if c.client == nil {
		return
	}

	var repaired, removed int
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			c.log.Warn("rate limit sweep scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			size, err := c.client.ZCard(ctx, key).Result()
			if err != nil {
				continue
			}

			if size == 0 {
				if c.client.Del(ctx, key).Err() == nil {
					removed++
				}
				continue
			}

			ttl, err := c.client.TTL(ctx, key).Result()
			if err != nil {
				continue
			}
			if ttl == -1*time.Second {
				if c.client.Expire(ctx, key, c.interval).Err() == nil {
					repaired++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if repaired > 0 || removed > 0 {
		c.log.Info("rate limit sweep finished",
			slog.Int("repaired", repaired),
			slog.Int("removed", removed),
		)
	}
}
