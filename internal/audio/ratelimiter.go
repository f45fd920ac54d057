package audio

import (
	"sync"
	"time"
)

// volumeRateLimitInterval is the minimum gap between two accepted
// volume-change commands.
const volumeRateLimitInterval = 30 * time.Millisecond

// rateLimiter is the single global gate every volume-set command passes
// through before reaching PulseAudio; mute/default/move/port commands
// bypass it entirely. It fails open: a lock that can't be acquired
// cleanly is treated as "allow" rather than ever stalling the mainloop
// thread.
type rateLimiter struct {
	mu       sync.Mutex
	lastPass time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{}
}

// shouldProcess reports whether a volume command arriving now should be
// applied, updating the last-pass timestamp when it allows one through.
func (r *rateLimiter) shouldProcess(now time.Time) bool {
	if !r.mu.TryLock() {
		// Contended: fail open rather than block the caller (which may
		// be the mainloop thread itself).
		return true
	}
	defer r.mu.Unlock()

	if now.Sub(r.lastPass) < volumeRateLimitInterval {
		return false
	}
	r.lastPass = now
	return true
}
