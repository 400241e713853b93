package handle

import (
	"sync"
	"sync/atomic"
)

// Handle is the shared-ownership core of engine objects (GameObjects, GPU resources).
// A Handle starts with a count of one owned by its creator. The release callback runs
// exactly once, when the count drops to zero.
//
// Destroy marks intent without releasing: the object stays valid until its last owner
// calls Release, or until a Collector sweeps it at the end of the frame.
type Handle struct {
	count          atomic.Int32
	pendingDestroy atomic.Bool
	released       atomic.Bool

	mu        sync.Mutex
	userData  any
	onRelease func()
}

// New creates a Handle with a count of one.
//
// Parameters:
//   - onRelease: callback invoked once when the count reaches zero (may be nil)
//
// Returns:
//   - *Handle: the new handle
func New(onRelease func()) *Handle {
	h := &Handle{onRelease: onRelease}
	h.count.Store(1)
	return h
}

// Retain adds an owner. Retaining an already released handle has no effect.
//
// Returns:
//   - bool: true if the reference was taken
func (h *Handle) Retain() bool {
	for {
		c := h.count.Load()
		if c <= 0 {
			return false
		}
		if h.count.CompareAndSwap(c, c+1) {
			return true
		}
	}
}

// Release drops an owner. When the count reaches zero the release callback runs.
// Extra releases past zero are ignored.
//
// Returns:
//   - bool: true if this call released the underlying object
func (h *Handle) Release() bool {
	for {
		c := h.count.Load()
		if c <= 0 {
			return false
		}
		if h.count.CompareAndSwap(c, c-1) {
			if c-1 == 0 {
				h.finalize()
				return true
			}
			return false
		}
	}
}

func (h *Handle) finalize() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	fn := h.onRelease
	h.onRelease = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Destroy marks the handle for destruction without releasing it.
func (h *Handle) Destroy() {
	h.pendingDestroy.Store(true)
}

// PendingDestroy reports whether Destroy has been called.
func (h *Handle) PendingDestroy() bool {
	return h.pendingDestroy.Load()
}

// Released reports whether the release callback has already run.
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Count returns the current number of owners.
func (h *Handle) Count() int32 {
	return h.count.Load()
}

// UserData returns the opaque host value attached to the handle.
func (h *Handle) UserData() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.userData
}

// SetUserData attaches an opaque host value to the handle.
func (h *Handle) SetUserData(v any) {
	h.mu.Lock()
	h.userData = v
	h.mu.Unlock()
}
