// Package ratelimit throttles per-user command traffic. Issuance and status
// checks hit the remote store on every call, so a flooding user is cut off
// before the requests leave the process.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result of one limit evaluation. ResetAt is when the oldest counted hit
// falls out of the window.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

var ErrLimitExceeded = errors.New("rate limit exceeded")
