package notification

import "sync/atomic"

// idAllocator hands out notification ids. At startup it is seeded with
// the max persisted id so ids never collide with ones already on disk;
// Notify reuses replacesID when the caller supplies one.
type idAllocator struct {
	next atomic.Uint32
}

// NewIDAllocator seeds the counter from maxPersisted (0 if the store is
// empty or disabled), for composition roots wiring a Builder together
// with a Store's MaxID.
func NewIDAllocator(maxPersisted uint32) *idAllocator {
	a := &idAllocator{}
	a.next.Store(maxPersisted + 1)
	return a
}

// allocate returns replacesID if non-zero (an explicit replace target),
// otherwise the next fresh id.
func (a *idAllocator) allocate(replacesID uint32) uint32 {
	if replacesID != 0 {
		return replacesID
	}
	return a.next.Add(1) - 1
}
