package ratelimit

import (
	"fmt"
	"time"

	"github.com/medinet/credgate/pkg/config"
)

// Rules is the parsed view of the rate-limit configuration. The whitelist is
// indexed once so per-update checks stay allocation-free.
type Rules struct {
	cfg       config.RateLimitConfig
	whitelist map[int64]struct{}
}

func NewRules(cfg config.RateLimitConfig) *Rules {
	wl := make(map[int64]struct{}, len(cfg.Whitelist))
	for _, id := range cfg.Whitelist {
		wl[id] = struct{}{}
	}

	return &Rules{cfg: cfg, whitelist: wl}
}

func (r *Rules) Enabled() bool {
	return r.cfg.Enabled
}

func (r *Rules) IsWhitelisted(userID int64) bool {
	_, ok := r.whitelist[userID]
	return ok
}

// PerUserLimit returns the configured limit and parsed window.
func (r *Rules) PerUserLimit() (int, time.Duration, error) {
	window, err := time.ParseDuration(r.cfg.PerUser.Window)
	if err != nil {
		return 0, 0, fmt.Errorf("parse rate limit window %q: %w", r.cfg.PerUser.Window, err)
	}

	return r.cfg.PerUser.Limit, window, nil
}
