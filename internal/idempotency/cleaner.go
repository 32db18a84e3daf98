package idempotency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cleaner sweeps idempotency keys that lost their expiry. Records and locks
// are always written with a TTL, but a key touched out-of-band (dashboard
// edits, manual redis surgery) would otherwise sit in redis forever.
type Cleaner struct {
	client   *redis.Client
	log      *slog.Logger
	interval time.Duration
	ttl      time.Duration
}

func NewCleaner(client *redis.Client, log *slog.Logger, interval, ttl time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Cleaner{
		client:   client,
		log:      log,
		interval: interval,
		ttl:      ttl,
	}
}

func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sweep(ctx); err != nil {
				c.log.Warn("idempotency sweep failed", slog.Any("error", err))
			}
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) error {
	var cursor uint64
	swept := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, "idempotency:*", 100).Result()
		if err != nil {
			return err
		}

		for _, key := range keys {
			ttl, err := c.client.TTL(ctx, key).Result()
			if err != nil {
				continue
			}

			// -1 means the key exists without an expiry.
			if ttl == -1*time.Second {
				if err := c.client.Expire(ctx, key, c.ttl).Err(); err == nil {
					swept++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if swept > 0 {
		c.log.Info("idempotency sweep repaired expirations", slog.Int("keys", swept))
	}

	return nil
}
