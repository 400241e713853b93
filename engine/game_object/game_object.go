package game_object

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// objectCount generates instance IDs. IDs are unique per process and never reused.
var objectCount atomic.Uint64

type gameObject struct {
	id     uint64
	name   string
	guid   uuid.UUID
	typ    *rtti.Rtti
	active bool
	radius float32
	log    logrus.FieldLogger
	h      *handle.Handle

	parent     *gameObject
	children   []*gameObject
	components []Component
	listeners  message.ListenerList[message.Listener]

	transform transform
	dropped   bool
	destroyed bool
}

// GameObject is a node in the scene tree. It exclusively owns its children and its
// attached components and keeps a weak back-reference to its parent.
//
// GameObjects are not safe for concurrent use; scene mutation belongs to the frame loop.
type GameObject interface {
	// ID returns the process-unique instance ID.
	//
	// Returns:
	//   - uint64: the instance ID
	ID() uint64

	// Name returns the object's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName renames the object.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// GUID returns the persistent identifier written to archives.
	//
	// Returns:
	//   - uuid.UUID: the GUID
	GUID() uuid.UUID

	// Rtti returns the object's runtime type.
	//
	// Returns:
	//   - *rtti.Rtti: GameObjectRtti or a host type derived from it
	Rtti() *rtti.Rtti

	// Handle returns the reference-counted handle that owns the object's lifetime.
	//
	// Returns:
	//   - *handle.Handle: the handle
	Handle() *handle.Handle

	// Active returns the object's own active flag.
	//
	// Returns:
	//   - bool: true if the flag is set
	Active() bool

	// ActiveInHierarchy reports whether the object and all its ancestors are active.
	//
	// Returns:
	//   - bool: true if components of this object receive frame callbacks
	ActiveInHierarchy() bool

	// SetActive sets the own active flag. Becoming effectively active activates
	// components in attach order and then children; becoming inactive deactivates
	// children in reverse order first and then components in reverse attach order.
	// Setting the current value again does nothing.
	//
	// Parameters:
	//   - active: the new flag
	//
	// Returns:
	//   - error: the aggregated activation failures; every other component still activates
	SetActive(active bool) error

	// Parent returns the parent object, or nil for a root.
	//
	// Returns:
	//   - GameObject: the parent or nil
	Parent() GameObject

	// Children returns a copy of the child list in order.
	//
	// Returns:
	//   - []GameObject: the children
	Children() []GameObject

	// AddChild reparents child under this object, appending it to the child list.
	//
	// Parameters:
	//   - child: the object to adopt
	//
	// Returns:
	//   - error: ErrHierarchyCycle, ErrDestroyed or an activation failure
	AddChild(child GameObject) error

	// RemoveChild detaches child and makes it a root. The child is not destroyed.
	//
	// Parameters:
	//   - child: the child to detach
	//
	// Returns:
	//   - error: ErrNotAttached if child is not a direct child
	RemoveChild(child GameObject) error

	// FindChild returns the first child with the given name.
	//
	// Parameters:
	//   - name: the name to match
	//   - recursive: whether to search depth-first through descendants
	//
	// Returns:
	//   - GameObject: the match or nil
	FindChild(name string, recursive bool) GameObject

	// AddComponent appends c, calls OnAttach and, if the object is active in the
	// hierarchy, OnActivate.
	//
	// Parameters:
	//   - c: the component to attach
	//
	// Returns:
	//   - error: ErrAlreadyAttached, ErrIncompatibleOwner, ErrDestroyed, or the hook error
	AddComponent(c Component) error

	// RemoveComponent calls OnDeactivate if c is activated and then OnDetach, leaving c unattached.
	//
	// Parameters:
	//   - c: the component to remove
	//
	// Returns:
	//   - error: ErrNotAttached if c is not attached to this object
	RemoveComponent(c Component) error

	// Component returns the first attached component whose type derives from t.
	//
	// Parameters:
	//   - t: the type to match
	//
	// Returns:
	//   - Component: the match or nil
	Component(t *rtti.Rtti) Component

	// Components returns every attached component whose type derives from t, in
	// attach order. A nil t returns all components.
	//
	// Parameters:
	//   - t: the type to match, or nil
	//
	// Returns:
	//   - []Component: the matches
	Components(t *rtti.Rtti) []Component

	// Position returns the local position.
	Position() [3]float32

	// Rotation returns the local Euler rotation in radians.
	Rotation() [3]float32

	// Scale returns the local scale.
	Scale() [3]float32

	// SetPosition sets the local position and invalidates the world transform of the subtree.
	SetPosition(x, y, z float32)

	// SetRotation sets the local Euler rotation in radians and invalidates the subtree.
	SetRotation(rx, ry, rz float32)

	// SetScale sets the local scale and invalidates the subtree.
	SetScale(sx, sy, sz float32)

	// Radius returns the bounding sphere radius used for visibility tests.
	Radius() float32

	// SetRadius sets the bounding sphere radius.
	SetRadius(r float32)

	// WorldMatrix returns the world transform, recomputing it if the object or an
	// ancestor moved since the last query.
	//
	// Returns:
	//   - [16]float32: the column-major world matrix
	WorldMatrix() [16]float32

	// WorldPosition returns the translation of the world matrix.
	//
	// Returns:
	//   - [3]float32: the world-space position
	WorldPosition() [3]float32

	// AddListener subscribes l to messages delivered to this object.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - message.Token: the token to unsubscribe with
	AddListener(l message.Listener) message.Token

	// RemoveListener unsubscribes the listener registered under tok.
	//
	// Parameters:
	//   - tok: the subscription token
	//
	// Returns:
	//   - bool: true if a listener was removed
	RemoveListener(tok message.Token) bool

	// SendMessage delivers msg synchronously to this object's listeners and, if the
	// filter is recursive, to its descendants' listeners. Objects failing the filter
	// are skipped but their descendants are still visited.
	//
	// Parameters:
	//   - msg: the message
	//
	// Returns:
	//   - int: the number of listeners invoked
	SendMessage(msg message.Message) int

	// Update calls OnUpdate on activated Updater components and then updates children.
	// Inactive objects are skipped with their subtree.
	//
	// Parameters:
	//   - dt: the frame delta in seconds
	Update(dt float64)

	// Walk visits the object and its descendants depth-first. Returning false from fn
	// skips the visited object's subtree.
	//
	// Parameters:
	//   - fn: the visitor
	Walk(fn func(GameObject) bool)

	// Destroy drops the creator's reference. When the last reference goes the object
	// detaches from its parent, deactivates, detaches its components in reverse order
	// and destroys its children.
	Destroy()

	// Destroyed reports whether the object has been torn down.
	Destroyed() bool

	// Save writes the object, its components and its subtree to node.
	//
	// Parameters:
	//   - node: the node to fill
	//
	// Returns:
	//   - error: the first component save failure
	Save(node *archive.Node) error

	// Load rebuilds the object from a node written by Save. Components and children
	// are created through factory. The object should be freshly created.
	//
	// Parameters:
	//   - node: the archived object
	//   - factory: an opened factory holding every archived type
	//
	// Returns:
	//   - error: ErrUnknownType or a malformed attribute error
	Load(node *archive.Node, factory rtti.Factory) error
}

var _ GameObject = &gameObject{}

// NewGameObject creates a root GameObject. Objects start active.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		id:        objectCount.Add(1),
		guid:      uuid.New(),
		typ:       GameObjectRtti,
		active:    true,
		radius:    1,
		log:       logrus.StandardLogger(),
		transform: newTransform(),
	}
	g.h = handle.New(g.teardown)
	for _, option := range options {
		option(g)
	}
	if g.name == "" {
		g.name = fmt.Sprintf("GameObject%d", g.id)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) SetName(name string) {
	g.name = name
}

func (g *gameObject) GUID() uuid.UUID {
	return g.guid
}

func (g *gameObject) Rtti() *rtti.Rtti {
	return g.typ
}

func (g *gameObject) Handle() *handle.Handle {
	return g.h
}

func (g *gameObject) Active() bool {
	return g.active
}

func (g *gameObject) ActiveInHierarchy() bool {
	for o := g; o != nil; o = o.parent {
		if !o.active {
			return false
		}
	}
	return !g.destroyed
}

func (g *gameObject) SetActive(active bool) error {
	if g.destroyed {
		return ErrDestroyed
	}
	if g.active == active {
		return nil
	}
	was := g.ActiveInHierarchy()
	g.active = active
	return g.applyActivation(was)
}

// applyActivation runs the activation or deactivation pass if the effective state
// changed from was.
func (g *gameObject) applyActivation(was bool) error {
	now := g.ActiveInHierarchy()
	switch {
	case now && !was:
		return g.activateTree().ErrorOrNil()
	case was && !now:
		g.deactivateTree()
	}
	return nil
}

func (g *gameObject) activateTree() *multierror.Error {
	var result *multierror.Error
	for _, c := range slices.Clone(g.components) {
		if err := g.activate(c); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, child := range slices.Clone(g.children) {
		if child.active {
			result = multierror.Append(result, child.activateTree())
		}
	}
	return result
}

func (g *gameObject) activate(c Component) error {
	b := c.Base()
	if b.owner != GameObject(g) || b.state != StateDeactivated {
		return nil
	}
	if err := c.OnActivate(); err != nil {
		g.log.WithFields(logrus.Fields{
			"object":    g.name,
			"component": c.Rtti().Name(),
		}).WithError(err).Warn("component activation failed")
		return fmt.Errorf("game_object: activate %s on %q: %w", c.Rtti().Name(), g.name, err)
	}
	b.state = StateActivated
	return nil
}

func (g *gameObject) deactivateTree() {
	children := slices.Clone(g.children)
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].active {
			children[i].deactivateTree()
		}
	}
	components := slices.Clone(g.components)
	for i := len(components) - 1; i >= 0; i-- {
		deactivate(components[i])
	}
}

func deactivate(c Component) {
	b := c.Base()
	if b.state != StateActivated {
		return
	}
	b.state = StateDeactivated
	c.OnDeactivate()
}

func (g *gameObject) Parent() GameObject {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

func (g *gameObject) Children() []GameObject {
	out := make([]GameObject, len(g.children))
	for i, c := range g.children {
		out[i] = c
	}
	return out
}

func (g *gameObject) AddChild(child GameObject) error {
	if g.destroyed {
		return ErrDestroyed
	}
	c, ok := child.(*gameObject)
	if !ok || c == nil {
		return fmt.Errorf("game_object: add child: unsupported object %T", child)
	}
	if c.destroyed {
		return ErrDestroyed
	}
	for o := g; o != nil; o = o.parent {
		if o == c {
			return fmt.Errorf("game_object: add %q under %q: %w", c.name, g.name, ErrHierarchyCycle)
		}
	}
	if c.parent == g {
		return nil
	}

	was := c.ActiveInHierarchy()
	if c.parent != nil {
		c.parent.unlink(c)
	}
	c.parent = g
	g.children = append(g.children, c)
	c.invalidate()
	return c.applyActivation(was)
}

func (g *gameObject) RemoveChild(child GameObject) error {
	c, ok := child.(*gameObject)
	if !ok || c == nil || c.parent != g {
		return fmt.Errorf("game_object: remove child from %q: %w", g.name, ErrNotAttached)
	}
	was := c.ActiveInHierarchy()
	g.unlink(c)
	c.invalidate()
	return c.applyActivation(was)
}

func (g *gameObject) unlink(c *gameObject) {
	if i := slices.Index(g.children, c); i >= 0 {
		g.children = slices.Delete(g.children, i, i+1)
	}
	c.parent = nil
}

func (g *gameObject) FindChild(name string, recursive bool) GameObject {
	for _, c := range g.children {
		if c.name == name {
			return c
		}
		if recursive {
			if found := c.FindChild(name, true); found != nil {
				return found
			}
		}
	}
	return nil
}

func (g *gameObject) AddComponent(c Component) error {
	if c == nil {
		return ErrNilComponent
	}
	if g.destroyed {
		return ErrDestroyed
	}
	b := c.Base()
	if b.owner != nil {
		return fmt.Errorf("game_object: attach %s to %q: %w", c.Rtti().Name(), g.name, ErrAlreadyAttached)
	}
	if oc, ok := c.(OwnerConstraint); ok && !g.typ.IsDerivedFrom(oc.OwnerRtti()) {
		return fmt.Errorf("game_object: attach %s to %q (%s): %w", c.Rtti().Name(), g.name, g.typ.Name(), ErrIncompatibleOwner)
	}

	b.owner = g
	b.state = StateDeactivated
	g.components = append(g.components, c)
	if err := c.OnAttach(g); err != nil {
		g.components = g.components[:len(g.components)-1]
		b.owner = nil
		b.state = StateUnattached
		return fmt.Errorf("game_object: attach %s to %q: %w", c.Rtti().Name(), g.name, err)
	}
	if g.ActiveInHierarchy() {
		return g.activate(c)
	}
	return nil
}

func (g *gameObject) RemoveComponent(c Component) error {
	if c == nil {
		return ErrNilComponent
	}
	i := slices.Index(g.components, c)
	if i < 0 {
		return fmt.Errorf("game_object: remove %s from %q: %w", c.Rtti().Name(), g.name, ErrNotAttached)
	}
	deactivate(c)
	g.components = slices.Delete(g.components, i, i+1)
	detach(c)
	return nil
}

func detach(c Component) {
	b := c.Base()
	b.state = StateUnattached
	c.OnDetach()
	b.owner = nil
}

func (g *gameObject) Component(t *rtti.Rtti) Component {
	for _, c := range g.components {
		if c.Rtti().IsDerivedFrom(t) {
			return c
		}
	}
	return nil
}

func (g *gameObject) Components(t *rtti.Rtti) []Component {
	var out []Component
	for _, c := range g.components {
		if t == nil || c.Rtti().IsDerivedFrom(t) {
			out = append(out, c)
		}
	}
	return out
}

func (g *gameObject) Position() [3]float32 {
	return g.transform.position
}

func (g *gameObject) Rotation() [3]float32 {
	return g.transform.rotation
}

func (g *gameObject) Scale() [3]float32 {
	return g.transform.scale
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.transform.position = [3]float32{x, y, z}
	g.invalidate()
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.transform.rotation = [3]float32{rx, ry, rz}
	g.invalidate()
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.transform.scale = [3]float32{sx, sy, sz}
	g.invalidate()
}

func (g *gameObject) Radius() float32 {
	return g.radius
}

func (g *gameObject) SetRadius(r float32) {
	g.radius = r
}

// invalidate marks the world transform of the subtree dirty and tells move listeners.
// Recomputation is deferred to the next WorldMatrix call.
func (g *gameObject) invalidate() {
	g.transform.dirty = true
	for _, c := range slices.Clone(g.components) {
		if ml, ok := c.(MoveListener); ok {
			ml.OnMoveAfter()
		}
	}
	for _, child := range g.children {
		child.invalidate()
	}
}

func (g *gameObject) WorldMatrix() [16]float32 {
	if g.transform.dirty {
		var parent *[16]float32
		if g.parent != nil {
			pm := g.parent.WorldMatrix()
			parent = &pm
		}
		g.transform.recompute(parent)
	}
	return g.transform.world
}

func (g *gameObject) WorldPosition() [3]float32 {
	m := g.WorldMatrix()
	return [3]float32{m[12], m[13], m[14]}
}

func (g *gameObject) AddListener(l message.Listener) message.Token {
	return g.listeners.Add(l)
}

func (g *gameObject) RemoveListener(tok message.Token) bool {
	return g.listeners.Remove(tok)
}

func (g *gameObject) SendMessage(msg message.Message) int {
	if g.destroyed {
		return 0
	}
	n := 0
	if msg.Filter.Matches(g.name, g.typ) {
		n += g.listeners.Each(func(l message.Listener) {
			l.OnMessage(msg)
		})
	}
	if msg.Filter.Recursive {
		for _, child := range slices.Clone(g.children) {
			n += child.SendMessage(msg)
		}
	}
	return n
}

func (g *gameObject) Update(dt float64) {
	if !g.ActiveInHierarchy() {
		return
	}
	for _, c := range slices.Clone(g.components) {
		if u, ok := c.(Updater); ok && c.Base().owner == GameObject(g) && c.Base().state == StateActivated {
			u.OnUpdate(dt)
		}
	}
	for _, child := range slices.Clone(g.children) {
		child.Update(dt)
	}
}

func (g *gameObject) Walk(fn func(GameObject) bool) {
	if !fn(g) {
		return
	}
	for _, child := range slices.Clone(g.children) {
		child.Walk(fn)
	}
}

func (g *gameObject) Destroy() {
	if g.dropped {
		return
	}
	g.dropped = true
	g.h.Destroy()
	g.h.Release()
}

func (g *gameObject) Destroyed() bool {
	return g.destroyed
}

// teardown runs once, when the handle's last reference is released.
func (g *gameObject) teardown() {
	if g.ActiveInHierarchy() {
		g.deactivateTree()
	}
	if g.parent != nil {
		g.parent.unlink(g)
	}

	for i := len(g.components) - 1; i >= 0; i-- {
		detach(g.components[i])
	}
	g.components = nil

	children := g.children
	g.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].parent = nil
		children[i].Destroy()
	}

	g.listeners.Clear()
	g.destroyed = true
}
