package scene

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tickerRtti = rtti.New("Ticker", game_object.ComponentRtti, func() any { return &ticker{} })

type ticker struct {
	game_object.BaseComponent
	total float64
}

func (t *ticker) Rtti() *rtti.Rtti { return tickerRtti }

func (t *ticker) OnUpdate(dt float64) { t.total += dt }

func newFactory(t *testing.T) rtti.Factory {
	f, err := rtti.NewFactory(tickerRtti)
	require.NoError(t, err)
	require.NoError(t, game_object.RegisterTypes(f))
	f.Open()
	return f
}

func newCameraObject(t *testing.T) game_object.GameObject {
	eye := game_object.NewGameObject(game_object.WithName("eye"))
	require.NoError(t, eye.AddComponent(game_object.NewCameraComponent()))
	return eye
}

func TestSceneTree(t *testing.T) {
	s := NewScene(WithName("level"))
	assert.Equal(t, "level", s.Name())
	assert.Equal(t, "level", s.Root().Name())
	assert.True(t, s.Active())

	crate := game_object.NewGameObject(game_object.WithName("crate"))
	lid := game_object.NewGameObject(game_object.WithName("lid"))
	require.NoError(t, crate.AddChild(lid))
	require.NoError(t, s.Add(crate))

	assert.Equal(t, 2, s.Count())
	assert.Same(t, lid, s.Find("lid"))
	assert.Nil(t, s.Find("missing"))

	require.NoError(t, s.Remove(crate))
	assert.Zero(t, s.Count())
	assert.ErrorIs(t, s.Remove(crate), ErrNotInScene)
	assert.ErrorIs(t, s.Remove(s.Root()), ErrNotInScene)
	crate.Destroy()
}

func TestSceneCamera(t *testing.T) {
	s := NewScene()
	eye := newCameraObject(t)
	plain := game_object.NewGameObject()

	assert.ErrorIs(t, s.SetCamera(eye), ErrNotInScene)
	require.NoError(t, s.Add(eye))
	require.NoError(t, s.Add(plain))
	assert.ErrorIs(t, s.SetCamera(plain), ErrNoCamera)

	require.NoError(t, s.SetCamera(eye))
	require.NotNil(t, s.Camera())
	assert.Same(t, eye, s.Camera().Owner())

	require.NoError(t, s.Remove(eye))
	assert.Nil(t, s.Camera())
	eye.Destroy()
}

func TestSceneUpdateSkipsInactive(t *testing.T) {
	s := NewScene()
	on := game_object.NewGameObject()
	off := game_object.NewGameObject(game_object.WithActive(false))
	a, b := &ticker{}, &ticker{}
	require.NoError(t, on.AddComponent(a))
	require.NoError(t, off.AddComponent(b))
	require.NoError(t, s.Add(on))
	require.NoError(t, s.Add(off))

	s.Update(0.5)
	s.Update(0.25)
	assert.InDelta(t, 0.75, a.total, 1e-9)
	assert.Zero(t, b.total)
}

func TestSceneVisible(t *testing.T) {
	s := NewScene()
	eye := newCameraObject(t)
	front := game_object.NewGameObject(game_object.WithName("front"), game_object.WithPosition(0, 0, -10))
	behind := game_object.NewGameObject(game_object.WithName("behind"), game_object.WithPosition(0, 0, 50))
	hidden := game_object.NewGameObject(game_object.WithName("hidden"), game_object.WithPosition(0, 0, -10), game_object.WithActive(false))
	for _, obj := range []game_object.GameObject{eye, front, behind, hidden} {
		require.NoError(t, s.Add(obj))
	}
	require.NoError(t, s.SetCamera(eye))

	names := func(objs []game_object.GameObject) []string {
		var out []string
		for _, o := range objs {
			out = append(out, o.Name())
		}
		return out
	}
	assert.Equal(t, []string{"eye", "front"}, names(s.Visible(s.Camera())))
	assert.Equal(t, []string{"eye", "front", "behind"}, names(s.Visible(nil)))
}

func TestSceneSaveLoad(t *testing.T) {
	s := NewScene(WithName("level"))
	eye := newCameraObject(t)
	eye.SetPosition(0, 2, 5)
	crate := game_object.NewGameObject(game_object.WithName("crate"))
	require.NoError(t, crate.AddComponent(&ticker{}))
	require.NoError(t, s.Add(eye))
	require.NoError(t, s.Add(crate))
	require.NoError(t, s.SetCamera(eye))

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	loaded := NewScene(WithActive(false))
	oldRoot := loaded.Root()
	require.NoError(t, loaded.Load(&buf, newFactory(t)))

	assert.True(t, oldRoot.Destroyed())
	assert.Equal(t, "level", loaded.Name())
	assert.True(t, loaded.Active())
	assert.Equal(t, 2, loaded.Count())
	require.NotNil(t, loaded.Camera())
	assert.Equal(t, eye.GUID(), loaded.Camera().Owner().GUID())
	assert.Equal(t, [3]float32{0, 2, 5}, loaded.Camera().Owner().Position())

	c := loaded.Find("crate")
	require.NotNil(t, c)
	tk, ok := c.Component(tickerRtti).(*ticker)
	require.True(t, ok)
	loaded.Update(1)
	assert.Equal(t, 1.0, tk.total)
}

func TestSceneLoadFailureKeepsTree(t *testing.T) {
	s := NewScene()
	keep := game_object.NewGameObject(game_object.WithName("keep"))
	require.NoError(t, s.Add(keep))

	assert.Error(t, s.Load(strings.NewReader("name: object\n"), newFactory(t)))
	assert.Same(t, keep, s.Find("keep"))

	src := NewScene()
	bad := game_object.NewGameObject()
	require.NoError(t, bad.AddComponent(&ticker{}))
	require.NoError(t, src.Add(bad))
	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	// the factory does not know Ticker
	f, err := rtti.NewFactory()
	require.NoError(t, err)
	require.NoError(t, game_object.RegisterTypes(f))
	f.Open()
	assert.ErrorIs(t, s.Load(&buf, f), game_object.ErrUnknownType)
	assert.Same(t, keep, s.Find("keep"))
	assert.False(t, s.Root().Destroyed())
}

func TestSceneLoadRejectsMalformedActive(t *testing.T) {
	s := NewScene(WithName("keep"))
	keep := game_object.NewGameObject(game_object.WithName("keep"))
	require.NoError(t, s.Add(keep))
	root := s.Root()

	node := archive.NewNode(NodeScene)
	node.SetString(attrName, "other")
	node.SetString(attrActive, "maybe")
	require.NoError(t, game_object.NewGameObject().Save(node.AddChild(game_object.NodeObject)))
	var buf bytes.Buffer
	require.NoError(t, node.Encode(&buf))

	assert.ErrorContains(t, s.Load(&buf, newFactory(t)), "active")
	assert.Same(t, root, s.Root())
	assert.False(t, root.Destroyed())
	assert.Same(t, keep, s.Find("keep"))
	assert.Equal(t, "keep", s.Name())
	assert.True(t, s.Active())
}

func TestSceneClose(t *testing.T) {
	s := NewScene()
	obj := game_object.NewGameObject()
	require.NoError(t, s.Add(obj))
	root := s.Root()

	s.Close()
	s.Close()
	assert.True(t, s.Closed())
	assert.False(t, s.Active())
	assert.True(t, root.Destroyed())
	assert.True(t, obj.Destroyed())
	assert.ErrorIs(t, s.Add(game_object.NewGameObject()), ErrClosed)
}
