package feature

import (
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
)

// InputFeature tracks keyboard and mouse state and forwards every input event to the
// active scene root as a recursive message.
type InputFeature struct {
	BaseFeature

	down           map[uint32]bool
	mouseX, mouseY int32
	scroll         float32
	delivered      int
}

var (
	_ Feature      = &InputFeature{}
	_ EventHandler = &InputFeature{}
)

// NewInputFeature creates the input feature.
func NewInputFeature() *InputFeature {
	return &InputFeature{
		BaseFeature: NewBaseFeature("input"),
		down:        make(map[uint32]bool),
	}
}

func (f *InputFeature) OnEvent(ev event.Event) {
	if f.Context() == nil {
		return
	}
	var id message.ID
	switch ev.Kind {
	case event.KindKeyDown:
		f.down[ev.Key] = true
		id = message.IDKeyDown
	case event.KindKeyUp:
		delete(f.down, ev.Key)
		id = message.IDKeyUp
	case event.KindMouseMove:
		f.mouseX, f.mouseY = ev.X, ev.Y
		id = message.IDMouseMove
	case event.KindScroll:
		f.scroll += ev.Delta
		id = message.IDScroll
	default:
		return
	}

	root := f.Context().ActiveRoot()
	if root == nil {
		return
	}
	f.delivered += root.SendMessage(message.Message{
		ID:      id,
		Sender:  f,
		Filter:  message.Filter{Recursive: true},
		Payload: ev,
	})
}

// OnFrameEnd resets the per-frame scroll accumulator.
func (f *InputFeature) OnFrameEnd(float64) {
	f.scroll = 0
}

func (f *InputFeature) OnDeactivate() {
	clear(f.down)
	f.scroll = 0
	f.BaseFeature.OnDeactivate()
}

// KeyDown reports whether key is held.
func (f *InputFeature) KeyDown(key uint32) bool {
	return f.down[key]
}

// Mouse returns the last cursor position.
func (f *InputFeature) Mouse() (x, y int32) {
	return f.mouseX, f.mouseY
}

// Scroll returns the wheel delta accumulated this frame.
func (f *InputFeature) Scroll() float32 {
	return f.scroll
}

// Delivered returns the total number of listener deliveries made.
func (f *InputFeature) Delivered() int {
	return f.delivered
}
