package game_object

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var spyRtti = rtti.New("Spy", ComponentRtti, func() any { return &spy{} })

type spy struct {
	BaseComponent
	label      string
	log        *[]string
	attachErr  error
	activeErr  error
	updates    int
	moves      int
	activates  int
	deactivate int
}

func newSpy(label string, log *[]string) *spy {
	return &spy{label: label, log: log}
}

func (p *spy) record(event string) {
	if p.log != nil {
		*p.log = append(*p.log, event+":"+p.label)
	}
}

func (p *spy) Rtti() *rtti.Rtti { return spyRtti }

func (p *spy) OnAttach(GameObject) error {
	if p.attachErr != nil {
		return p.attachErr
	}
	p.record("attach")
	return nil
}

func (p *spy) OnDetach() { p.record("detach") }

func (p *spy) OnActivate() error {
	if p.activeErr != nil {
		return p.activeErr
	}
	p.activates++
	p.record("activate")
	return nil
}

func (p *spy) OnDeactivate() {
	p.deactivate++
	p.record("deactivate")
}

func (p *spy) OnUpdate(float64) { p.updates++ }

func (p *spy) OnMoveAfter() { p.moves++ }

func (p *spy) Load(node *archive.Node) error {
	var err error
	p.label, err = node.String("label")
	return err
}

func (p *spy) Save(node *archive.Node) error {
	node.SetString("label", p.label)
	return nil
}

func newObject(name string, opts ...GameObjectBuilderOption) GameObject {
	return NewGameObject(append([]GameObjectBuilderOption{WithName(name), WithLogger(logger.Discard())}, opts...)...)
}

func TestDestroyDeactivatesBeforeDetachInReverseOrder(t *testing.T) {
	var log []string
	g := newObject("g")
	for _, label := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddComponent(newSpy(label, &log)))
	}
	log = nil

	g.Destroy()
	assert.True(t, g.Destroyed())
	assert.Equal(t, []string{
		"deactivate:c", "deactivate:b", "deactivate:a",
		"detach:c", "detach:b", "detach:a",
	}, log)
	assert.Empty(t, g.Components(nil))
}

func TestSetActiveOrder(t *testing.T) {
	var log []string
	g := newObject("g", WithActive(false))
	a, b := newSpy("a", &log), newSpy("b", &log)
	require.NoError(t, g.AddComponent(a))
	require.NoError(t, g.AddComponent(b))
	assert.Equal(t, StateDeactivated, a.State())
	assert.Equal(t, []string{"attach:a", "attach:b"}, log)

	log = nil
	require.NoError(t, g.SetActive(true))
	require.NoError(t, g.SetActive(false))
	assert.Equal(t, []string{"activate:a", "activate:b", "deactivate:b", "deactivate:a"}, log)
}

func TestSetActiveIsIdempotent(t *testing.T) {
	g := newObject("g")
	p := newSpy("p", nil)
	require.NoError(t, g.AddComponent(p))
	require.NoError(t, g.SetActive(true))
	require.NoError(t, g.SetActive(true))
	assert.Equal(t, 1, p.activates)

	require.NoError(t, g.SetActive(false))
	require.NoError(t, g.SetActive(false))
	assert.Equal(t, 1, p.deactivate)
}

type countingRenderer struct {
	MeshRenderer
	activations   int
	deactivations int
}

func (c *countingRenderer) OnActivate() error {
	c.activations++
	return nil
}

func (c *countingRenderer) OnDeactivate() {
	c.deactivations++
}

func TestCastShadowRendererActivatesOnce(t *testing.T) {
	g := newObject("g")
	r := &countingRenderer{}
	r.SetCastShadow(true)
	require.NoError(t, g.AddComponent(r))
	require.NoError(t, g.SetActive(true))

	assert.True(t, r.CastShadow())
	assert.Equal(t, 1, r.activations)
	assert.Equal(t, 0, r.deactivations)
	assert.Equal(t, StateActivated, r.State())
}

func TestActivationFailureDoesNotBlockSiblings(t *testing.T) {
	g := newObject("g", WithActive(false))
	a, bad, c := newSpy("a", nil), newSpy("bad", nil), newSpy("c", nil)
	bad.activeErr = errors.New("shader missing")
	for _, p := range []*spy{a, bad, c} {
		require.NoError(t, g.AddComponent(p))
	}

	err := g.SetActive(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shader missing")
	assert.Equal(t, StateActivated, a.State())
	assert.Equal(t, StateDeactivated, bad.State())
	assert.Equal(t, StateActivated, c.State())

	// frame callbacks skip the failed component
	g.Update(0.016)
	assert.Equal(t, 1, a.updates)
	assert.Equal(t, 0, bad.updates)
	assert.Equal(t, 1, c.updates)
}

func TestAddComponentContract(t *testing.T) {
	g, other := newObject("g"), newObject("other")
	p := newSpy("p", nil)
	require.NoError(t, g.AddComponent(p))
	assert.Same(t, g, p.Owner())

	assert.ErrorIs(t, other.AddComponent(p), ErrAlreadyAttached)
	assert.ErrorIs(t, g.AddComponent(p), ErrAlreadyAttached)
	assert.ErrorIs(t, g.AddComponent(nil), ErrNilComponent)

	refused := newSpy("refused", nil)
	refused.attachErr = errors.New("no")
	assert.Error(t, g.AddComponent(refused))
	assert.False(t, refused.Attached())
	assert.Equal(t, StateUnattached, refused.State())
	assert.Len(t, g.Components(nil), 1)

	g.Destroy()
	assert.ErrorIs(t, g.AddComponent(newSpy("late", nil)), ErrDestroyed)
}

type constrained struct {
	spy
	required *rtti.Rtti
}

func (c *constrained) OwnerRtti() *rtti.Rtti { return c.required }

func TestOwnerConstraint(t *testing.T) {
	terrainRtti := rtti.New("Terrain", GameObjectRtti, nil)

	plain := newObject("plain")
	c := &constrained{required: terrainRtti}
	assert.ErrorIs(t, plain.AddComponent(c), ErrIncompatibleOwner)
	assert.False(t, c.Attached())

	terrain := newObject("terrain", WithRtti(terrainRtti))
	assert.Same(t, terrainRtti, terrain.Rtti())
	require.NoError(t, terrain.AddComponent(c))
	assert.True(t, c.Attached())
}

func TestRemoveComponent(t *testing.T) {
	var log []string
	g := newObject("g")
	p := newSpy("p", &log)
	require.NoError(t, g.AddComponent(p))
	log = nil

	require.NoError(t, g.RemoveComponent(p))
	assert.Equal(t, []string{"deactivate:p", "detach:p"}, log)
	assert.Equal(t, StateUnattached, p.State())
	assert.Nil(t, p.Owner())
	assert.ErrorIs(t, g.RemoveComponent(p), ErrNotAttached)

	// a removed component can be attached again
	require.NoError(t, newObject("h").AddComponent(p))
}

func TestComponentLookupByDerivedType(t *testing.T) {
	g := newObject("g")
	p := newSpy("p", nil)
	mr := NewMeshRenderer()
	cam := NewCameraComponent()
	require.NoError(t, g.AddComponent(p))
	require.NoError(t, g.AddComponent(mr))
	require.NoError(t, g.AddComponent(cam))

	assert.Same(t, mr, g.Component(RenderComponentRtti))
	assert.Same(t, cam, g.Component(CameraComponentRtti))
	assert.Nil(t, g.Component(LightComponentRtti))
	assert.Len(t, g.Components(ComponentRtti), 3)
	assert.Len(t, g.Components(MeshRendererRtti), 1)
}

func TestHierarchyActivation(t *testing.T) {
	parent := newObject("parent", WithActive(false))
	child := newObject("child")
	p := newSpy("p", nil)
	require.NoError(t, child.AddComponent(p))
	assert.Equal(t, 1, p.activates)

	require.NoError(t, parent.AddChild(child))
	assert.Same(t, parent, child.Parent())
	assert.True(t, child.Active())
	assert.False(t, child.ActiveInHierarchy())
	assert.Equal(t, 1, p.deactivate)

	require.NoError(t, parent.SetActive(true))
	assert.Equal(t, 2, p.activates)

	assert.ErrorIs(t, child.AddChild(parent), ErrHierarchyCycle)
	assert.ErrorIs(t, parent.AddChild(parent), ErrHierarchyCycle)

	require.NoError(t, parent.RemoveChild(child))
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.Children())
	assert.ErrorIs(t, parent.RemoveChild(child), ErrNotAttached)
}

func TestDestroyCascadesToChildren(t *testing.T) {
	root := newObject("root")
	mid := newObject("mid")
	leaf := newObject("leaf")
	require.NoError(t, root.AddChild(mid))
	require.NoError(t, mid.AddChild(leaf))
	p := newSpy("p", nil)
	require.NoError(t, leaf.AddComponent(p))

	assert.Same(t, leaf, root.FindChild("leaf", true))
	assert.Nil(t, root.FindChild("leaf", false))

	mid.Destroy()
	assert.True(t, mid.Destroyed())
	assert.True(t, leaf.Destroyed())
	assert.Empty(t, root.Children())
	assert.Equal(t, 1, p.deactivate)
	assert.False(t, p.Attached())
}

func TestDestroyWaitsForLastReference(t *testing.T) {
	g := newObject("g")
	require.True(t, g.Handle().Retain())

	g.Destroy()
	g.Destroy()
	assert.False(t, g.Destroyed())
	assert.True(t, g.Handle().PendingDestroy())

	g.Handle().Release()
	assert.True(t, g.Destroyed())
}

func TestCollectorKeepsRetainedObjectAlive(t *testing.T) {
	parent := newObject("parent")
	g := newObject("g")
	require.NoError(t, parent.AddChild(g))
	require.True(t, g.Handle().Retain())

	c := handle.NewCollector()
	c.DeferFunc(g.Handle(), g.Destroy)
	assert.Equal(t, 0, c.Collect())
	assert.False(t, g.Destroyed())
	assert.Len(t, parent.Children(), 1)

	// the deferred reference is gone; a later Destroy must not release again
	g.Destroy()
	assert.Equal(t, int32(1), g.Handle().Count())

	assert.True(t, g.Handle().Release())
	assert.True(t, g.Destroyed())
	assert.Empty(t, parent.Children())
}

func TestCollectorDestroysSolelyOwnedObject(t *testing.T) {
	g := newObject("g")
	c := handle.NewCollector()
	c.DeferFunc(g.Handle(), g.Destroy)
	assert.False(t, g.Destroyed())
	assert.Equal(t, 1, c.Collect())
	assert.True(t, g.Destroyed())
}

func TestTransformPropagation(t *testing.T) {
	parent := newObject("parent", WithPosition(1, 0, 0))
	child := newObject("child", WithPosition(0, 2, 0))
	p := newSpy("p", nil)
	require.NoError(t, child.AddComponent(p))
	require.NoError(t, parent.AddChild(child))

	wp := child.WorldPosition()
	assert.InDeltaSlice(t, []float32{1, 2, 0}, wp[:], 1e-5)
	moves := p.moves

	parent.SetPosition(5, 0, 0)
	assert.Greater(t, p.moves, moves)
	wp = child.WorldPosition()
	assert.InDeltaSlice(t, []float32{5, 2, 0}, wp[:], 1e-5)

	parent.SetScale(2, 2, 2)
	wp = child.WorldPosition()
	assert.InDeltaSlice(t, []float32{5, 4, 0}, wp[:], 1e-5)
}

func TestSendMessage(t *testing.T) {
	root := newObject("root")
	a := newObject("a")
	b := newObject("b")
	require.NoError(t, root.AddChild(a))
	require.NoError(t, a.AddChild(b))

	var got []string
	listen := func(name string) message.Listener {
		return message.ListenerFunc(func(msg message.Message) {
			got = append(got, name+":"+string(msg.ID))
		})
	}
	root.AddListener(listen("root"))
	tok := a.AddListener(listen("a"))
	b.AddListener(listen("b"))

	n := root.SendMessage(message.Message{ID: "ping"})
	assert.Equal(t, 1, n)

	got = nil
	n = root.SendMessage(message.Message{ID: "ping", Filter: message.Filter{Recursive: true}})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"root:ping", "a:ping", "b:ping"}, got)

	got = nil
	n = root.SendMessage(message.Message{ID: "only-b", Filter: message.Filter{Recursive: true, Name: "b"}})
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"b:only-b"}, got)

	assert.True(t, a.RemoveListener(tok))
	n = root.SendMessage(message.Message{ID: "ping", Filter: message.Filter{Recursive: true}})
	assert.Equal(t, 2, n)
}

func TestUpdateSkipsInactiveSubtrees(t *testing.T) {
	root := newObject("root")
	off := newObject("off", WithActive(false))
	require.NoError(t, root.AddChild(off))
	on, skipped := newSpy("on", nil), newSpy("skipped", nil)
	require.NoError(t, root.AddComponent(on))
	require.NoError(t, off.AddComponent(skipped))

	root.Update(0.1)
	assert.Equal(t, 1, on.updates)
	assert.Equal(t, 0, skipped.updates)
}

func TestRenderListeners(t *testing.T) {
	mr := NewMeshRenderer()
	var calls []string
	pre := mr.AddPreRenderListener(func(*RenderComponent) { calls = append(calls, "pre") })
	mr.AddPostRenderListener(func(*RenderComponent) { calls = append(calls, "post") })

	assert.Equal(t, 1, mr.NotifyPreRender())
	assert.Equal(t, 1, mr.NotifyPostRender())
	assert.True(t, mr.RemovePreRenderListener(pre))
	assert.False(t, mr.RemovePreRenderListener(pre))
	assert.Equal(t, 0, mr.NotifyPreRender())
	assert.Equal(t, []string{"pre", "post"}, calls)
}

func TestCameraVisibility(t *testing.T) {
	camObj := newObject("camera", WithPosition(0, 0, 10))
	cam := NewCameraComponent(WithClip(0.1, 50))
	require.NoError(t, camObj.AddComponent(cam))

	inFront := newObject("front", WithRadius(1))
	behind := newObject("behind", WithPosition(0, 0, 30), WithRadius(1))
	farAway := newObject("far", WithPosition(0, 0, -100), WithRadius(1))
	assert.True(t, cam.Visible(inFront))
	assert.False(t, cam.Visible(behind))
	assert.False(t, cam.Visible(farAway))

	camObj.SetPosition(0, 0, -90)
	assert.True(t, cam.Visible(farAway))
}

func TestLightDirectionFollowsOwner(t *testing.T) {
	g := newObject("sun")
	l := NewLightComponent(WithCastsShadows(true))
	require.NoError(t, g.AddComponent(l))
	dir := l.Direction()
	assert.InDeltaSlice(t, []float32{0, 0, -1}, dir[:], 1e-5)
	assert.Equal(t, "directional", l.Type().String())
}

func newTestFactory(t *testing.T) rtti.Factory {
	f, err := rtti.NewFactory(spyRtti)
	require.NoError(t, err)
	require.NoError(t, RegisterTypes(f))
	f.Open()
	return f
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := newObject("root", WithPosition(1, 2, 3), WithRotation(0, 0.5, 0), WithScale(2, 2, 2))
	require.NoError(t, root.AddComponent(newSpy("first", nil)))
	require.NoError(t, root.AddComponent(NewMeshRenderer(WithCastShadow(true))))
	childA := newObject("a", WithRadius(3))
	childB := newObject("b", WithActive(false))
	require.NoError(t, root.AddChild(childA))
	require.NoError(t, root.AddChild(childB))
	require.NoError(t, childA.AddComponent(NewCameraComponent(WithTarget(0, 0, 0))))
	require.NoError(t, childB.AddComponent(NewLightComponent(WithLightType(LightPoint), WithRange(4))))

	saved := archive.NewNode(NodeObject)
	require.NoError(t, root.Save(saved))

	var buf bytes.Buffer
	require.NoError(t, saved.Encode(&buf))
	decoded, err := archive.Decode(&buf)
	require.NoError(t, err)

	loaded := newObject("")
	require.NoError(t, loaded.Load(decoded, newTestFactory(t)))

	resaved := archive.NewNode(NodeObject)
	require.NoError(t, loaded.Save(resaved))
	assert.Equal(t, saved, resaved)

	assert.Equal(t, root.GUID(), loaded.GUID())
	children := loaded.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].Name())
	assert.Equal(t, "b", children[1].Name())
	assert.False(t, children[1].Active())

	first, ok := loaded.Component(spyRtti).(*spy)
	require.True(t, ok)
	assert.Equal(t, "first", first.label)
	assert.Equal(t, 1, first.activates)
	assert.Equal(t, 0, first.deactivate)
	assert.Equal(t, StateDeactivated, children[1].Component(LightComponentRtti).Base().State())
}

func TestLoadUnknownComponent(t *testing.T) {
	node := archive.NewNode(NodeObject)
	node.SetString("name", "x")
	node.AddChild(NodeComponent).SetString("type", "Nope")
	err := newObject("").Load(node, newTestFactory(t))
	assert.ErrorIs(t, err, ErrUnknownType)
}
