package render_pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramebufferPoolReuseAndReplace(t *testing.T) {
	dev := device.NewHeadlessDevice(device.WithHeadlessLogger(logger.Discard()))
	pool, err := NewFramebufferPool(dev, 4)
	require.NoError(t, err)

	desc := device.FramebufferDescriptor{Width: 64, Height: 32}
	fb, err := pool.Acquire("a", desc)
	require.NoError(t, err)
	assert.Equal(t, "a", fb.Label())

	again, err := pool.Acquire("a", desc)
	require.NoError(t, err)
	assert.Same(t, fb, again)

	// a different size replaces and releases the old target
	bigger, err := pool.Acquire("a", device.FramebufferDescriptor{Width: 128, Height: 32})
	require.NoError(t, err)
	assert.NotSame(t, fb, bigger)
	assert.True(t, fb.Released())
	assert.Equal(t, 1, dev.Live())

	hits, misses := pool.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)

	pool.Purge()
	assert.Equal(t, 0, pool.Len())
	assert.True(t, bigger.Released())
	assert.Equal(t, 0, dev.Live())
}

func TestFramebufferPoolEvictsLeastRecentlyUsed(t *testing.T) {
	dev := device.NewHeadlessDevice(device.WithHeadlessLogger(logger.Discard()))
	pool, err := NewFramebufferPool(dev, minPoolSize)
	require.NoError(t, err)

	desc := device.FramebufferDescriptor{Width: 8, Height: 8}
	first, err := pool.Acquire("k0", desc)
	require.NoError(t, err)
	for i := 1; i <= minPoolSize; i++ {
		_, err := pool.Acquire(string(rune('a'+i)), desc)
		require.NoError(t, err)
	}
	assert.Equal(t, minPoolSize, pool.Len())
	assert.True(t, first.Released())
	_, ok := pool.Get("k0")
	assert.False(t, ok)

	pool.Evict("b", "c")
	assert.Equal(t, minPoolSize-2, pool.Len())
	assert.Equal(t, minPoolSize-2, dev.Live())
}

func TestFramebufferPoolPropagatesExhaustion(t *testing.T) {
	dev := device.NewHeadlessDevice(device.WithBudget(1), device.WithHeadlessLogger(logger.Discard()))
	pool, err := NewFramebufferPool(dev, 4)
	require.NoError(t, err)

	_, err = pool.Acquire("a", device.FramebufferDescriptor{Width: 8, Height: 8})
	require.NoError(t, err)
	_, err = pool.Acquire("b", device.FramebufferDescriptor{Width: 8, Height: 8})
	assert.ErrorIs(t, err, device.ErrResourceExhausted)
	assert.Equal(t, 1, pool.Len())
}
