package feature

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(root game_object.GameObject, cam *game_object.CameraComponent) *Context {
	return &Context{
		Log:    logger.Discard(),
		Events: event.NewQueue(),
		Root:   func() game_object.GameObject { return root },
		Camera: func() *game_object.CameraComponent { return cam },
	}
}

func TestInputFeatureForwardsEvents(t *testing.T) {
	root := game_object.NewGameObject(game_object.WithName("root"))
	child := game_object.NewGameObject(game_object.WithName("child"))
	require.NoError(t, root.AddChild(child))

	var got []message.ID
	child.AddListener(message.ListenerFunc(func(m message.Message) {
		got = append(got, m.ID)
		assert.IsType(t, event.Event{}, m.Payload)
	}))

	in := NewInputFeature()
	require.NoError(t, in.OnActivate(testContext(root, nil)))

	in.OnEvent(event.Event{Kind: event.KindKeyDown, Key: 32})
	in.OnEvent(event.Event{Kind: event.KindMouseMove, X: 10, Y: 20})
	in.OnEvent(event.Event{Kind: event.KindScroll, Delta: 1.5})
	in.OnEvent(event.Event{Kind: event.KindScroll, Delta: 0.5})
	in.OnEvent(event.Event{Kind: event.KindResize, Width: 10, Height: 10})

	assert.True(t, in.KeyDown(32))
	x, y := in.Mouse()
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(20), y)
	assert.Equal(t, float32(2), in.Scroll())
	assert.Equal(t, []message.ID{message.IDKeyDown, message.IDMouseMove, message.IDScroll, message.IDScroll}, got)
	assert.Equal(t, 4, in.Delivered())

	in.OnEvent(event.Event{Kind: event.KindKeyUp, Key: 32})
	assert.False(t, in.KeyDown(32))
	assert.Equal(t, 5, in.Delivered())
	in.OnFrameEnd(0)
	assert.Zero(t, in.Scroll())

	in.OnDeactivate()
	assert.Nil(t, in.Context())
	in.OnEvent(event.Event{Kind: event.KindKeyDown, Key: 1})
	in.OnEvent(event.Event{Kind: event.KindMouseMove, X: 99, Y: 99})
	in.OnEvent(event.Event{Kind: event.KindScroll, Delta: 3})
	assert.Equal(t, 5, in.Delivered())
	assert.False(t, in.KeyDown(1))
	x, y = in.Mouse()
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(20), y)
	assert.Zero(t, in.Scroll())
	assert.Len(t, got, 5)
}

type world struct {
	steps []float64
	err   error
}

func (w *world) Step(dt float64) error {
	w.steps = append(w.steps, dt)
	return w.err
}

func TestPhysicsFeatureStepsOncePerFrame(t *testing.T) {
	w := &world{}
	f := NewPhysicsFeature(w, 0.05)

	f.OnFrame(0.016)
	assert.Empty(t, w.steps)

	require.NoError(t, f.OnActivate(testContext(nil, nil)))
	f.OnFrame(0.016)
	f.OnFrame(0.5)
	assert.Equal(t, []float64{0.016, 0.05}, w.steps)
	assert.Equal(t, uint64(2), f.Steps())

	w.err = errors.New("solver diverged")
	f.OnFrame(0.016)
	assert.Equal(t, uint64(1), f.Failures())
}

type mixer struct {
	updates []AudioListener
}

func (m *mixer) Update(l AudioListener, _ float64) error {
	m.updates = append(m.updates, l)
	return nil
}

func TestAudioFeatureFollowsCamera(t *testing.T) {
	eye := game_object.NewGameObject(game_object.WithPosition(1, 2, 3))
	cam := game_object.NewCameraComponent()
	require.NoError(t, eye.AddComponent(cam))

	m := &mixer{}
	f := NewAudioFeature(m)
	require.NoError(t, f.OnActivate(testContext(nil, cam)))
	f.OnFrameEnd(0.016)

	require.Len(t, m.updates, 1)
	assert.Equal(t, [3]float32{1, 2, 3}, m.updates[0].Position)
	assert.InDelta(t, -1, m.updates[0].Forward[2], 1e-6)
	assert.InDelta(t, 1, m.updates[0].Up[1], 1e-6)

	require.NoError(t, f.OnActivate(testContext(nil, nil)))
	f.OnFrameEnd(0.016)
	assert.Equal(t, [3]float32{}, f.Listener().Position)
}

func TestScriptFeatureRunsOnFrame(t *testing.T) {
	root := game_object.NewGameObject(game_object.WithName("root"))
	door := game_object.NewGameObject(game_object.WithName("door"))
	require.NoError(t, root.AddChild(door))
	opened := 0
	door.AddListener(message.ListenerFunc(func(m message.Message) {
		if m.ID == "door.open" {
			opened++
		}
	}))

	f := NewScriptFeature(
		WithScript("counter.lua", `
			total = 0
			frames = 0
			function on_frame(dt)
				total = total + dt
				frames = engine.frame()
				if frames == 2 then
					delivered = engine.send("door.open", "door")
				end
			end
			function on_shutdown()
				engine.log("bye")
			end
		`),
	)
	require.NoError(t, f.OnActivate(testContext(root, nil)))

	f.OnFrame(0.25)
	f.OnFrame(0.5)

	total, ok := f.Global("total")
	require.True(t, ok)
	assert.InDelta(t, 0.75, total, 1e-9)
	frames, _ := f.Global("frames")
	assert.Equal(t, 2.0, frames)
	delivered, _ := f.Global("delivered")
	assert.Equal(t, 1.0, delivered)
	assert.Equal(t, 1, opened)
	assert.Zero(t, f.Errors())

	f.OnDeactivate()
	_, ok = f.Global("total")
	assert.False(t, ok)
}

func TestScriptFeatureErrors(t *testing.T) {
	bad := NewScriptFeature(WithScript("bad.lua", "this is not lua"))
	assert.Error(t, bad.OnActivate(testContext(nil, nil)))
	assert.Nil(t, bad.Context())

	failing := NewScriptFeature(WithScript("boom.lua", `function on_frame(dt) error("boom") end`))
	require.NoError(t, failing.OnActivate(testContext(nil, nil)))
	failing.OnFrame(0.1)
	failing.OnFrame(0.1)
	assert.Equal(t, 2, failing.Errors())

	// scripts without hooks are fine
	quiet := NewScriptFeature(WithScript("quiet.lua", "x = 1"))
	require.NoError(t, quiet.OnActivate(testContext(nil, nil)))
	quiet.OnFrame(0.1)
	assert.Zero(t, quiet.Errors())
}
