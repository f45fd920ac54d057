package service

import (
	"context"
	"time"
)

// Reconnector retries a fallible connect operation with exponential
// backoff, for the "if the context disconnects at runtime, the service
// publishes empty lists and continues attempting to reconnect" behavior
// required of every bus-backed service (§4.3, §4.5). It is the async
// equivalent of the teacher's RetryWithBackoff: same doubling schedule,
// capped delay, cancellable wait — adapted here to select on a context
// instead of a raw cancel channel.
type Reconnector struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultReconnector matches spec §4.3's "backoff unspecified; 1s is
// acceptable" guidance: start at one second, cap at thirty.
func DefaultReconnector() Reconnector {
	return Reconnector{BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

// Run calls connect repeatedly until it succeeds or ctx is cancelled,
// waiting an exponentially increasing delay between attempts. It never
// returns an error on its own account; the only way Run exits without
// success is ctx.Err().
func (r Reconnector) Run(ctx context.Context, connect func() error) error {
	delay := r.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	maxDelay := r.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	for attempt := 1; ; attempt++ {
		if err := connect(); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
