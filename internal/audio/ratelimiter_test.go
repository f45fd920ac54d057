package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_RejectsWithinInterval(t *testing.T) {
	r := newRateLimiter()
	now := time.Now()

	require.True(t, r.shouldProcess(now))
	require.False(t, r.shouldProcess(now.Add(10*time.Millisecond)))
}

func TestRateLimiter_AllowsAfterInterval(t *testing.T) {
	r := newRateLimiter()
	now := time.Now()

	require.True(t, r.shouldProcess(now))
	require.True(t, r.shouldProcess(now.Add(volumeRateLimitInterval+time.Millisecond)))
}

func TestRateLimiter_ContendedLockFailsOpen(t *testing.T) {
	r := newRateLimiter()
	r.mu.Lock()
	defer r.mu.Unlock()

	require.True(t, r.shouldProcess(time.Now()))
}
