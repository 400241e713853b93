package render_pipeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Pooled framebuffer keys used by the pipeline.
const (
	TargetScene  = "scene"
	TargetPostA  = "post.a"
	TargetPostB  = "post.b"
	TargetOutput = "output"
	TargetShadow = "shadow"
)

// screenTargets are the framebuffers sized to the surface.
var screenTargets = []string{TargetScene, TargetPostA, TargetPostB, TargetOutput}

// minPoolSize keeps every pipeline target resident at once.
const minPoolSize = 8

type pooledFramebuffer struct {
	desc device.FramebufferDescriptor
	fb   device.Framebuffer
}

type framebufferPool struct {
	mu     sync.Mutex
	dev    device.GraphicsDevice
	cache  *lru.Cache[string, pooledFramebuffer]
	hits   uint64
	misses uint64
}

// FramebufferPool owns the render targets of a pipeline. Entries are keyed by name and
// released when evicted, replaced or purged.
type FramebufferPool interface {
	// Acquire returns the framebuffer stored under key, creating it when absent or when
	// the stored one does not match desc.
	//
	// Parameters:
	//   - key: the pool key
	//   - desc: the descriptor the framebuffer must match
	//
	// Returns:
	//   - device.Framebuffer: the framebuffer, owned by the pool
	//   - error: the device error, e.g. device.ErrResourceExhausted
	Acquire(key string, desc device.FramebufferDescriptor) (device.Framebuffer, error)

	// Get returns the framebuffer stored under key without creating one.
	Get(key string) (device.Framebuffer, bool)

	// Evict releases the framebuffers stored under keys.
	Evict(keys ...string)

	// Purge releases every framebuffer.
	Purge()

	// Len returns the number of pooled framebuffers.
	Len() int

	// Stats returns the hit and miss counts of Acquire.
	Stats() (hits, misses uint64)
}

var _ FramebufferPool = &framebufferPool{}

// NewFramebufferPool creates a pool holding at most size framebuffers.
//
// Parameters:
//   - dev: the device that creates the framebuffers
//   - size: the pool capacity; raised to the pipeline's minimum
//
// Returns:
//   - FramebufferPool: the pool
//   - error: an error if the cache cannot be created
func NewFramebufferPool(dev device.GraphicsDevice, size int) (FramebufferPool, error) {
	cache, err := lru.NewWithEvict(max(size, minPoolSize), func(_ string, v pooledFramebuffer) {
		v.fb.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("render_pipeline: framebuffer pool: %w", err)
	}
	return &framebufferPool{dev: dev, cache: cache}, nil
}

func (p *framebufferPool) Acquire(key string, desc device.FramebufferDescriptor) (device.Framebuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if desc.Label == "" {
		desc.Label = key
	}
	if v, ok := p.cache.Get(key); ok {
		if v.desc == desc && !v.fb.Released() {
			p.hits++
			return v.fb, nil
		}
		p.cache.Remove(key)
	}

	p.misses++
	fb, err := p.dev.CreateFramebuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("render_pipeline: acquire %q: %w", key, err)
	}
	p.cache.Add(key, pooledFramebuffer{desc: desc, fb: fb})
	return fb, nil
}

func (p *framebufferPool) Get(key string) (device.Framebuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Peek(key)
	if !ok {
		return nil, false
	}
	return v.fb, true
}

func (p *framebufferPool) Evict(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		p.cache.Remove(k)
	}
}

func (p *framebufferPool) Purge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Purge()
}

func (p *framebufferPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Len()
}

func (p *framebufferPool) Stats() (uint64, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
