// Package health aggregates readiness checks for the bot's dependencies.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/store"
)

type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs the registered probes and reports per-component status.
type Checker struct {
	log    *slog.Logger
	checks map[string]Checkable
}

func NewChecker(log *slog.Logger) *Checker {
	return &Checker{log: log, checks: make(map[string]Checkable)}
}

func (c *Checker) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	c.checks[name] = check
}

func (c *Checker) Check(ctx context.Context) map[string]string {
	results := make(map[string]string, len(c.checks))

	for name, check := range c.checks {
		err := check.HealthCheck(ctx)
		if err == nil {
			results[name] = "OK"
			continue
		}

		results[name] = err.Error()
		if c.log != nil {
			c.log.Error("health check failed", slog.String("component", name), slog.Any("error", err))
		}
	}

	return results
}

// Healthy reports whether every registered check passed.
func Healthy(results map[string]string) bool {
	for _, status := range results {
		if status != "OK" {
			return false
		}
	}
	return true
}

// Pinger is the slice of the redis client the probe needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type RedisChecker struct {
	pinger Pinger
}

func NewRedisChecker(pinger Pinger) *RedisChecker {
	return &RedisChecker{pinger: pinger}
}

func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.pinger == nil {
		return redis.ErrClosed
	}
	return c.pinger.Ping(ctx).Err()
}

type TelegramChecker struct {
	bot *telebot.Bot
}

func NewTelegramChecker(bot *telebot.Bot) *TelegramChecker {
	return &TelegramChecker{bot: bot}
}

func (c *TelegramChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.bot == nil || c.bot.Me == nil {
		return errors.New("telegram bot is not initialized or disconnected")
	}
	return nil
}

type StoreChecker struct {
	client *store.Client
}

func NewStoreChecker(client *store.Client) *StoreChecker {
	return &StoreChecker{client: client}
}

// HealthCheck issues a cheap read against a dedicated probe path. The probe
// node does not need to exist; any well-formed answer means the store is up.
func (c *StoreChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("store client is not configured")
	}

	var ignored json.RawMessage
	_, err := c.client.Get(ctx, "health", &ignored)
	return err
}
