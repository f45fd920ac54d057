// Package service defines the contracts every wayle service implements on
// top of pkg/reactive: how a value is fetched once (snapshot) or kept
// live (background-monitored), and the shared error taxonomy used to
// report failure uniformly across audio, notification, and tray.
package service

import "context"

// Reactive is implemented by any type that can be produced either as a
// one-shot Snapshot or as a Live, reference-counted instance whose
// Property fields keep tracking their source until ctx is cancelled.
//
// S and L are frequently the same concrete type in this codebase (a
// snapshot and a live instance share a struct; only whether background
// tasks are wired differs, per spec §3.2) but the interface keeps them
// distinct so that a type can be snapshot-only where live tracking makes
// no sense.
type Reactive[S any, L any] interface {
	// Get performs a single bulk fetch of all source attributes and
	// fails fast if any of them is unavailable.
	Get(ctx context.Context) (S, error)

	// GetLive does the same fetch, then wires background monitoring
	// tasks as children of ctx and returns a shared handle. Monitoring
	// stops when ctx is cancelled.
	GetLive(ctx context.Context) (L, error)
}

// ServiceMonitoring is implemented by a top-level service (audio,
// notification, systray) once its live instance exists. StartMonitoring
// is idempotent only in the sense that each service calls it exactly
// once, at construction; calling it twice on the same instance is a
// caller bug, not a condition this interface guards against.
type ServiceMonitoring interface {
	StartMonitoring()
}

// ModelMonitoring is the same contract applied to a child entity (a
// single audio Device, a single TrayItem) rather than the service as a
// whole. Replacing a monitored child requires cancelling its token and
// constructing a fresh live instance under a new one — ModelMonitoring
// itself does not support being restarted in place.
type ModelMonitoring interface {
	StartMonitoring()
}
