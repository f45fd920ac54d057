package reactive

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// WatcherToken is a cancellable handle representing a spawned background
// task that observes one or more properties. Cancelling a token stops the
// task; Reset cancels the current task and hands back a fresh token for
// its replacement, matching the "cancel-then-reconstruct" rule
// ModelMonitoring imposes on replacing a monitored child (spec §4.2).
type WatcherToken struct {
	// ID uniquely identifies this token in logs, distinguishing the
	// several generations of child token a long-lived entity accumulates
	// across reconnects.
	ID uuid.UUID

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcherToken creates a token whose context is a child of parent.
// Cancelling parent also cancels every token derived from it, which is
// how the hierarchical cancellation tree in §5 is built in practice.
func NewWatcherToken(parent context.Context) *WatcherToken {
	ctx, cancel := context.WithCancel(parent)
	return &WatcherToken{ID: uuid.New(), ctx: ctx, cancel: cancel}
}

// Context returns the token's context. Background tasks should select on
// Context().Done() alongside their event source.
func (t *WatcherToken) Context() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

// Cancel stops the task bound to this token.
func (t *WatcherToken) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done returns the token's done channel for direct use in a select.
func (t *WatcherToken) Done() <-chan struct{} {
	return t.Context().Done()
}

// Reset cancels the token's current context and returns a fresh
// WatcherToken rooted at the given parent context (which need not be the
// one that constructed the previous token). Callers must start a new monitoring task against the
// returned token; the old one will not resume.
func (t *WatcherToken) Reset(parent context.Context) *WatcherToken {
	t.Cancel()
	return NewWatcherToken(parent)
}
