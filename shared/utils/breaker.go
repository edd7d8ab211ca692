package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the circuit breaker is open
var ErrBreakerOpen = errors.New("circuit breaker is open")

// Breaker is a minimal circuit breaker: after maxFailures consecutive
// failures calls are rejected until resetAfter has elapsed, then a single
// probe call is let through.
type Breaker struct {
	maxFailures int
	resetAfter  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

// NewBreaker creates a circuit breaker with the given failure threshold and
// reset timeout.
func NewBreaker(maxFailures int, resetAfter time.Duration) *Breaker {
	return &Breaker{maxFailures: maxFailures, resetAfter: resetAfter}
}

// Call executes fn unless the breaker is open. A success closes the breaker;
// a failure counts toward opening it.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.failures >= b.maxFailures {
		if time.Since(b.openedAt) < b.resetAfter {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		// Half-open: admit one probe; a failure reopens immediately.
		b.failures = b.maxFailures - 1
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.openedAt = time.Now()
		return err
	}
	b.failures = 0
	return nil
}
