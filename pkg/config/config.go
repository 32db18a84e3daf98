package config

import (
	"time"

	"github.com/medinet/credgate/internal/store"
	"github.com/medinet/credgate/pkg/redis"
)

// Config holds runtime configuration for the credgate bot.
type Config struct {
	AppEnv      string            `mapstructure:"app_env"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Bot         BotConfig         `mapstructure:"bot"`
	Server      ServerConfig      `mapstructure:"server"`
	Store       store.Config      `mapstructure:"store"`
	Redis       redis.Config      `mapstructure:"redis"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Referral    ReferralConfig    `mapstructure:"referral"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// LoggerConfig controls slog output, format and file rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// BotConfig holds Telegram bot settings.
type BotConfig struct {
	Token        string        `mapstructure:"token" validate:"required"`
	Mode         string        `mapstructure:"mode"`
	Timeout      time.Duration `mapstructure:"timeout"`
	AdminContact string        `mapstructure:"admin_contact"`
}

// ServerConfig holds settings for the health/metrics HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// ReferralConfig holds the distribution conditions.
type ReferralConfig struct {
	Channel  string `mapstructure:"channel" validate:"required"`
	Required int    `mapstructure:"required" validate:"min=1"`
}

// CredentialsConfig holds issuance parameters.
type CredentialsConfig struct {
	DailyLimit  int `mapstructure:"daily_limit" validate:"min=1"`
	IDLetters   int `mapstructure:"id_letters"`
	IDDigits    int `mapstructure:"id_digits"`
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1"`
}

// RateLimitRule describes one sliding-window limit.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitConfig holds per-user rate limiting rules.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Whitelist []int64       `mapstructure:"whitelist"`
}
