package errors

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var (
	errCircuitOpen             = errors.New("circuit breaker is open")
	errHalfOpenTooManyRequests = errors.New("too many requests in half-open")
)

// CircuitBreaker shields the backend store from request storms while it is
// failing. Closed passes everything through and trips open once half of a
// minimum sample fails; open rejects outright until a cooldown passes, then
// half-open lets a handful of probes through to decide between reclosing
// and tripping again.
type CircuitBreaker struct {
	failureRatio float64
	minSample    int
	cooldown     time.Duration
	probeBudget  int

	mu       sync.Mutex
	state    State
	openedAt time.Time
	window   counters
}

type counters struct {
	total    int
	failed   int
	probesOK int
}

func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		failureRatio: 0.5,
		minSample:    10,
		cooldown:     30 * time.Second,
		probeBudget:  3,
	}
}

// Call runs fn if the breaker admits it and feeds the outcome back into the
// breaker state. The returned error is fn's own unless the call was rejected.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if fn == nil {
		return nil
	}

	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.observe(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.cooldown {
			return errCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.window = counters{}
		return nil
	case StateHalfOpen:
		if cb.window.total >= cb.probeBudget {
			return errHalfOpenTooManyRequests
		}
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) observe(callErr error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.window.total++

	if callErr != nil {
		cb.window.failed++
		if cb.state == StateHalfOpen {
			cb.trip()
			return
		}
		if cb.window.total >= cb.minSample &&
			float64(cb.window.failed)/float64(cb.window.total) >= cb.failureRatio {
			cb.trip()
		}
		return
	}

	if cb.state == StateHalfOpen {
		cb.window.probesOK++
		if cb.window.probesOK >= cb.probeBudget {
			cb.state = StateClosed
			cb.window = counters{}
		}
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openedAt = time.Now()
	cb.window = counters{}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
