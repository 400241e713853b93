package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleReleasesAtZero(t *testing.T) {
	calls := 0
	h := New(func() { calls++ })

	require.True(t, h.Retain())
	assert.Equal(t, int32(2), h.Count())

	assert.False(t, h.Release())
	assert.Equal(t, 0, calls)

	assert.True(t, h.Release())
	assert.Equal(t, 1, calls)
	assert.True(t, h.Released())

	// extra releases and retains are ignored
	assert.False(t, h.Release())
	assert.False(t, h.Retain())
	assert.Equal(t, 1, calls)
}

func TestHandleDestroyOnlyMarks(t *testing.T) {
	calls := 0
	h := New(func() { calls++ })

	h.Destroy()
	assert.True(t, h.PendingDestroy())
	assert.False(t, h.Released())
	assert.Equal(t, 0, calls)

	h.Release()
	assert.Equal(t, 1, calls)
}

func TestHandleUserData(t *testing.T) {
	h := New(nil)
	assert.Nil(t, h.UserData())
	h.SetUserData("host-ref")
	assert.Equal(t, "host-ref", h.UserData())
}

func TestHandleConcurrentRetainRelease(t *testing.T) {
	calls := 0
	h := New(func() { calls++ })

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.Retain() {
				h.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), h.Count())
	assert.True(t, h.Release())
	assert.Equal(t, 1, calls)
}

func TestCollectorDropsOnlyTheDeferredReference(t *testing.T) {
	c := NewCollector()
	calls := 0
	h := New(func() { calls++ })
	require.True(t, h.Retain())

	c.Defer(h)
	assert.True(t, h.PendingDestroy())
	assert.Equal(t, 1, c.Pending())

	assert.Equal(t, 0, c.Collect())
	assert.Equal(t, 0, calls)
	assert.Equal(t, int32(1), h.Count())
	assert.Equal(t, 0, c.Pending())

	assert.True(t, h.Release())
	assert.Equal(t, 1, calls)
	assert.False(t, h.Release())
}

func TestCollectorFinalizesSoleOwner(t *testing.T) {
	c := NewCollector()
	calls := 0
	h := New(func() { calls++ })

	c.Defer(h)
	assert.Equal(t, 1, c.Collect())
	assert.Equal(t, 1, calls)

	// already released handles are skipped
	c.Defer(h)
	assert.Equal(t, 0, c.Collect())
	assert.Equal(t, 1, calls)
}

func TestCollectorDeferFunc(t *testing.T) {
	c := NewCollector()
	h := New(nil)
	drops := 0
	c.DeferFunc(h, func() {
		drops++
		h.Release()
	})
	c.DeferFunc(h, nil)
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, 1, c.Collect())
	assert.Equal(t, 1, drops)
}
