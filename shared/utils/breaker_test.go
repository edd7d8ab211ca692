package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing() error { return errBoom }
func succeeding() error { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Call(failing), errBoom)
	}

	// Open: calls are rejected without running fn.
	ran := false
	err := b.Call(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, ran)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	assert.ErrorIs(t, b.Call(failing), errBoom)
	assert.ErrorIs(t, b.Call(failing), errBoom)
	require.NoError(t, b.Call(succeeding))

	// The earlier failures no longer count.
	assert.ErrorIs(t, b.Call(failing), errBoom)
	assert.ErrorIs(t, b.Call(failing), errBoom)
	require.NoError(t, b.Call(succeeding))
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(2, 10*time.Millisecond)

	assert.ErrorIs(t, b.Call(failing), errBoom)
	assert.ErrorIs(t, b.Call(failing), errBoom)
	assert.ErrorIs(t, b.Call(succeeding), ErrBreakerOpen)

	time.Sleep(15 * time.Millisecond)

	// Probe failure reopens immediately.
	assert.ErrorIs(t, b.Call(failing), errBoom)
	assert.ErrorIs(t, b.Call(succeeding), ErrBreakerOpen)

	time.Sleep(15 * time.Millisecond)

	// Probe success closes the breaker again.
	require.NoError(t, b.Call(succeeding))
	require.NoError(t, b.Call(succeeding))
}
