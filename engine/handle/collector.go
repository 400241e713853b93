package handle

import "sync"

// Collector performs the deferred destroy pass. Handles marked with Defer are
// tracked and, on the next Collect call, lose the reference of the owner that
// deferred them. Other owners keep the object alive until they release it.
type Collector struct {
	mu      sync.Mutex
	pending []deferred
}

type deferred struct {
	h    *Handle
	drop func()
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Defer marks h for destruction and queues one Release for the next Collect.
func (c *Collector) Defer(h *Handle) {
	if h == nil {
		return
	}
	c.DeferFunc(h, func() { h.Release() })
}

// DeferFunc marks h for destruction and queues drop, which must give up the
// caller's reference to h, for the next Collect. Objects that track their own
// reference (GameObject.Destroy) pass their drop method here.
//
// Parameters:
//   - h: the handle being destroyed
//   - drop: releases the deferring owner's reference
func (c *Collector) DeferFunc(h *Handle, drop func()) {
	if h == nil || drop == nil {
		return
	}
	h.Destroy()
	c.mu.Lock()
	c.pending = append(c.pending, deferred{h: h, drop: drop})
	c.mu.Unlock()
}

// Pending returns the number of handles waiting for collection.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Collect drops every queued reference and returns how many handles reached zero
// during this pass.
func (c *Collector) Collect() int {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	n := 0
	for _, d := range batch {
		if d.h.Released() {
			continue
		}
		d.drop()
		if d.h.Released() {
			n++
		}
	}
	return n
}
