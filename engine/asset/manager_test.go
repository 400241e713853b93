package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mesh struct {
	released bool
}

func (m *mesh) Release() { m.released = true }

func newTestManager(t *testing.T, options ...ManagerBuilderOption) (Manager, task.Thread, event.Queue) {
	t.Helper()
	th := task.NewThread(task.WithLogger(logger.Discard()))
	require.NoError(t, th.Start())
	q := event.NewQueue()
	m, err := NewManager(th, q, append([]ManagerBuilderOption{WithLogger(logger.Discard())}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		th.Stop()
		m.Close()
		q.Close()
	})
	return m, th, q
}

func TestLoadPublishesThroughQueue(t *testing.T) {
	m, th, q := newTestManager(t)

	require.NoError(t, m.Load("cube", func(context.Context) (any, error) {
		return &mesh{}, nil
	}))
	assert.Equal(t, StatePending, m.State("cube"))
	assert.ErrorIs(t, m.Load("cube", func(context.Context) (any, error) { return nil, nil }), ErrPending)

	th.Join()
	_, ok := m.Get("cube")
	assert.False(t, ok, "asset must not be visible before the frame loop applies the event")

	ev, ok := q.Wait(time.Second)
	require.True(t, ok)
	assert.Equal(t, event.KindAssetLoaded, ev.Kind)
	assert.True(t, m.Apply(ev))

	v, ok := m.Get("cube")
	require.True(t, ok)
	assert.IsType(t, &mesh{}, v)
	assert.Equal(t, StateLoaded, m.State("cube"))
}

func TestLoadFailure(t *testing.T) {
	m, th, q := newTestManager(t)
	boom := errors.New("bad file")

	require.NoError(t, m.Load("broken", func(context.Context) (any, error) { return nil, boom }))
	th.Join()
	for _, ev := range q.Poll() {
		m.Apply(ev)
	}
	assert.Equal(t, StateFailed, m.State("broken"))
	assert.ErrorIs(t, m.Err("broken"), boom)
}

func TestApplyIgnoresForeignEvents(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.Apply(event.Event{Kind: event.KindKeyDown}))
	assert.False(t, m.Apply(event.Event{Kind: event.KindAssetLoaded, Name: "never-requested"}))
}

func TestEvictionReleasesAssets(t *testing.T) {
	m, th, q := newTestManager(t, WithCapacity(1))

	a, b := &mesh{}, &mesh{}
	require.NoError(t, m.Load("a", func(context.Context) (any, error) { return a, nil }))
	th.Join()
	for _, ev := range q.Poll() {
		m.Apply(ev)
	}
	require.NoError(t, m.Load("b", func(context.Context) (any, error) { return b, nil }))
	th.Join()
	for _, ev := range q.Poll() {
		m.Apply(ev)
	}

	assert.True(t, a.released)
	assert.False(t, b.released)
	assert.Equal(t, StateUnknown, m.State("a"))

	m.Evict("b")
	assert.True(t, b.released)
}
