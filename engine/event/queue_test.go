package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePollDrainsFIFO(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Post(Event{Kind: KindKeyDown, Key: 1}))
	require.NoError(t, q.Post(Event{Kind: KindKeyUp, Key: 1}))
	require.NoError(t, q.Post(Event{Kind: KindScroll, Delta: 2}))
	assert.Equal(t, 3, q.Len())

	got := q.Poll()
	require.Len(t, got, 3)
	assert.Equal(t, KindKeyDown, got[0].Kind)
	assert.Equal(t, KindKeyUp, got[1].Kind)
	assert.Equal(t, KindScroll, got[2].Kind)
	assert.Nil(t, q.Poll())
}

func TestQueueWaitTimesOut(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	_, ok := q.Wait(20 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	_, ok = q.Wait(0)
	assert.False(t, ok)
}

func TestQueueWaitWakesOnPost(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		_ = q.Post(Event{Kind: KindResize, Width: 800, Height: 600})
	}()

	ev, ok := q.Wait(5 * time.Second)
	wg.Wait()
	require.True(t, ok)
	assert.Equal(t, KindResize, ev.Kind)
	assert.Equal(t, 800, ev.Width)
}

func TestQueueCloseWakesWaitersAndRejectsPosts(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Post(Event{Kind: KindCustom, Name: "left-over"}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Poll()
		_, ok := q.Wait(5 * time.Second)
		assert.False(t, ok)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()
	q.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by Close")
	}
	assert.True(t, q.Closed())
	assert.ErrorIs(t, q.Post(Event{}), ErrQueueClosed)
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for p := range 8 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range 100 {
				_ = q.Post(Event{Kind: KindCustom, X: int32(p), Y: int32(i)})
			}
		}(p)
	}
	wg.Wait()

	events := q.Poll()
	require.Len(t, events, 800)

	// per-producer order is preserved
	last := map[int32]int32{}
	for _, ev := range events {
		if prev, ok := last[ev.X]; ok {
			assert.Greater(t, ev.Y, prev)
		}
		last[ev.X] = ev.Y
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "key_down", KindKeyDown.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
