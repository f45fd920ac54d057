package reactive

import "context"

// Snapshot2 is the tuple WatchAll2 delivers: the current value of both
// properties at the time any one of them changed.
type Snapshot2[A, B any] struct {
	A A
	B B
}

// WatchAll2 yields a Snapshot2 whenever either property changes, batching
// the current value of the one that didn't. Ordering between properties
// is unspecified (§5): a burst of changes across both may collapse into
// fewer snapshots than the total number of Set calls, by design — this
// is a coherent-snapshot view, not an event log.
func WatchAll2[A, B any](ctx context.Context, a *Property[A], b *Property[B]) <-chan Snapshot2[A, B] {
	out := make(chan Snapshot2[A, B], watchBufferSize)
	chA, stopA := a.Watch()
	chB, stopB := b.Watch()

	go func() {
		defer stopA()
		defer stopB()
		defer close(out)

		emit := func() {
			snap := Snapshot2[A, B]{A: a.Get(), B: b.Get()}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-chA:
				if !ok {
					return
				}
				emit()
			case _, ok := <-chB:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return out
}

// Snapshot3 is the three-property form of Snapshot2.
type Snapshot3[A, B, C any] struct {
	A A
	B B
	C C
}

// WatchAll3 is the three-property form of WatchAll2.
func WatchAll3[A, B, C any](ctx context.Context, a *Property[A], b *Property[B], c *Property[C]) <-chan Snapshot3[A, B, C] {
	out := make(chan Snapshot3[A, B, C], watchBufferSize)
	chA, stopA := a.Watch()
	chB, stopB := b.Watch()
	chC, stopC := c.Watch()

	go func() {
		defer stopA()
		defer stopB()
		defer stopC()
		defer close(out)

		emit := func() {
			snap := Snapshot3[A, B, C]{A: a.Get(), B: b.Get(), C: c.Get()}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-chA:
				if !ok {
					return
				}
				emit()
			case _, ok := <-chB:
				if !ok {
					return
				}
				emit()
			case _, ok := <-chC:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return out
}
