package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(evs []event.Event) []event.Kind {
	out := make([]event.Kind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestCallbacksPostEvents(t *testing.T) {
	q := event.NewQueue()
	w := newEngineWindow(WithEvents(q), WithSize(800, 600), WithLogger(logger.Discard()))
	assert.Same(t, q, w.Events())

	w.keyDown(65)
	w.keyUp(65)
	w.mouseMove(3, 4)
	w.scroll(-1)
	w.resize(1024, 768)

	evs := q.Poll()
	require.Len(t, evs, 5)
	assert.Equal(t, []event.Kind{event.KindKeyDown, event.KindKeyUp, event.KindMouseMove, event.KindScroll, event.KindResize}, kinds(evs))
	assert.Equal(t, uint32(65), evs[0].Key)
	assert.Equal(t, int32(4), evs[2].Y)
	assert.Equal(t, float32(-1), evs[3].Delta)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
}

func TestResizeFiltersMinimizeAndRepeats(t *testing.T) {
	w := newEngineWindow(WithSize(800, 600))
	w.resize(0, 0)
	w.resize(800, 600)
	assert.Zero(t, w.Events().Len())
	assert.Equal(t, 800, w.Width())
}

func TestCloseKeyPostsOneClose(t *testing.T) {
	assert.EqualValues(t, common.KeyEscape, KeyEscape)

	w := newEngineWindow()
	w.keyDown(KeyEscape)
	w.keyUp(KeyEscape)
	w.requestClose()
	assert.Equal(t, []event.Kind{event.KindClose}, kinds(w.Events().Poll()))

	open := newEngineWindow(WithCloseKey(0))
	open.keyDown(KeyEscape)
	assert.Equal(t, []event.Kind{event.KindKeyDown}, kinds(open.Events().Poll()))
}

func TestClosedQueueDropsEvents(t *testing.T) {
	w := newEngineWindow(WithLogger(logger.Discard()))
	w.Events().Close()
	w.scroll(1)
	assert.Zero(t, w.Events().Len())
}

func TestUnspawnedWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.False(t, w.PollEvents())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.ErrorIs(t, w.Close(), ErrNotInitialized)
}
