package scene

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrClosed is returned by operations on a closed scene.
	ErrClosed = errors.New("scene: closed")
	// ErrNoCamera is returned by SetCamera for an object without a CameraComponent.
	ErrNoCamera = errors.New("scene: object has no camera component")
	// ErrNotInScene is returned when an object is not part of the scene's tree.
	ErrNotInScene = errors.New("scene: object not in scene")
)

// Archive node and attribute names.
const (
	NodeScene  = "scene"
	attrName   = "name"
	attrActive = "active"
	attrCamera = "camera"
)

// Scene owns a GameObject tree and the camera it is rendered through. Scenes can be
// hot-swapped via the Active flag; the engine only updates and renders active scenes.
// Name and Active are safe for concurrent access; the tree is owned by the frame thread.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is updated and rendered.
	Active() bool

	// SetActive sets whether this scene is updated and rendered.
	SetActive(active bool)

	// Root returns the scene's root object. The root is owned by the scene.
	Root() game_object.GameObject

	// Camera returns the camera the scene renders through, or nil.
	Camera() *game_object.CameraComponent

	// SetCamera selects the object whose CameraComponent renders the scene. The
	// object must already be part of the tree. Passing nil clears the camera.
	//
	// Parameters:
	//   - obj: an object in the tree carrying a CameraComponent
	//
	// Returns:
	//   - error: ErrNoCamera or ErrNotInScene
	SetCamera(obj game_object.GameObject) error

	// Add parents obj under the root.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - error: ErrClosed, or the error from AddChild such as a component activation failure
	Add(obj game_object.GameObject) error

	// Remove detaches obj from wherever it sits in the tree. The caller owns obj afterwards.
	// Removing the camera object clears the camera.
	//
	// Parameters:
	//   - obj: the object to remove
	//
	// Returns:
	//   - error: ErrNotInScene if obj is the root or not in the tree
	Remove(obj game_object.GameObject) error

	// Find returns the first object with the given name below the root, depth first.
	//
	// Parameters:
	//   - name: the object name
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	Find(name string) game_object.GameObject

	// Count returns the number of objects in the tree, root excluded.
	Count() int

	// Update ticks every activated Updater component in the tree.
	//
	// Parameters:
	//   - dt: elapsed time since the last frame in seconds
	Update(dt float64)

	// Visible returns the objects active in the hierarchy whose bounding sphere
	// intersects the camera frustum. A nil camera returns every active object.
	//
	// Parameters:
	//   - cam: the camera to test against
	//
	// Returns:
	//   - []game_object.GameObject: visible objects in depth-first order, root excluded
	Visible(cam *game_object.CameraComponent) []game_object.GameObject

	// Save writes the scene as a YAML archive.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: an error if a component fails to save or the write fails
	Save(w io.Writer) error

	// Load replaces the tree with one read from a YAML archive. On failure the
	// current tree is kept.
	//
	// Parameters:
	//   - r: the source
	//   - factory: an opened factory with every type the archive names
	//
	// Returns:
	//   - error: a decode or load error
	Load(r io.Reader, factory rtti.Factory) error

	// Close destroys the tree. Safe to call more than once.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool
}

type scene struct {
	mu     sync.RWMutex
	name   string
	active bool
	closed bool

	root   game_object.GameObject
	camera game_object.GameObject
	log    logrus.FieldLogger
}

var _ Scene = &scene{}

// NewScene creates an active scene with an empty root.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		name:   "scene",
		active: true,
		log:    logrus.StandardLogger(),
	}
	for _, option := range options {
		option(s)
	}
	if s.root == nil {
		s.root = game_object.NewGameObject(game_object.WithName(s.name))
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && !s.closed
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Root() game_object.GameObject {
	return s.root
}

func (s *scene) Camera() *game_object.CameraComponent {
	if s.camera == nil || s.camera.Destroyed() {
		return nil
	}
	cam, _ := s.camera.Component(game_object.CameraComponentRtti).(*game_object.CameraComponent)
	return cam
}

func (s *scene) SetCamera(obj game_object.GameObject) error {
	if obj == nil {
		s.camera = nil
		return nil
	}
	if obj.Component(game_object.CameraComponentRtti) == nil {
		return fmt.Errorf("scene: set camera %q: %w", obj.Name(), ErrNoCamera)
	}
	if !s.contains(obj) {
		return fmt.Errorf("scene: set camera %q: %w", obj.Name(), ErrNotInScene)
	}
	s.camera = obj
	return nil
}

func (s *scene) contains(obj game_object.GameObject) bool {
	for p := obj.Parent(); p != nil; p = p.Parent() {
		if p == s.root {
			return true
		}
	}
	return false
}

func (s *scene) Add(obj game_object.GameObject) error {
	if s.Closed() {
		return ErrClosed
	}
	if err := s.root.AddChild(obj); err != nil {
		return fmt.Errorf("scene: add %q: %w", obj.Name(), err)
	}
	return nil
}

func (s *scene) Remove(obj game_object.GameObject) error {
	if obj == nil || !s.contains(obj) {
		return ErrNotInScene
	}
	if s.camera != nil && (s.camera == obj || isAncestor(obj, s.camera)) {
		s.camera = nil
	}
	return obj.Parent().RemoveChild(obj)
}

func isAncestor(a, obj game_object.GameObject) bool {
	for p := obj.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

func (s *scene) Find(name string) game_object.GameObject {
	return s.root.FindChild(name, true)
}

func (s *scene) Count() int {
	n := -1
	s.root.Walk(func(game_object.GameObject) bool {
		n++
		return true
	})
	return n
}

func (s *scene) Update(dt float64) {
	if s.Closed() {
		return
	}
	s.root.Update(dt)
}

func (s *scene) Visible(cam *game_object.CameraComponent) []game_object.GameObject {
	var out []game_object.GameObject
	s.root.Walk(func(obj game_object.GameObject) bool {
		if !obj.ActiveInHierarchy() {
			return false
		}
		if obj != s.root && (cam == nil || cam.Visible(obj)) {
			out = append(out, obj)
		}
		return true
	})
	return out
}

func (s *scene) Save(w io.Writer) error {
	node := archive.NewNode(NodeScene)
	node.SetString(attrName, s.Name())
	node.SetBool(attrActive, s.Active())
	if s.Camera() != nil {
		node.SetString(attrCamera, s.camera.GUID().String())
	}
	if err := s.root.Save(node.AddChild(game_object.NodeObject)); err != nil {
		return fmt.Errorf("scene: save %q: %w", s.Name(), err)
	}
	return node.Encode(w)
}

func (s *scene) Load(r io.Reader, factory rtti.Factory) error {
	if s.Closed() {
		return ErrClosed
	}
	node, err := archive.Decode(r)
	if err != nil {
		return fmt.Errorf("scene: load: %w", err)
	}
	if node.Name != NodeScene {
		return fmt.Errorf("scene: load: unexpected node %q", node.Name)
	}
	rootNode := node.Child(game_object.NodeObject)
	if rootNode == nil {
		return fmt.Errorf("scene: load: missing root object")
	}
	active := s.Active()
	if node.Has(attrActive) {
		if active, err = node.Bool(attrActive); err != nil {
			return fmt.Errorf("scene: load: %w", err)
		}
	}

	typ := rootNode.StringOr("type", game_object.GameObjectRtti.Name())
	root, ok := factory.CreateObject(typ, game_object.GameObjectRtti).(game_object.GameObject)
	if !ok {
		return fmt.Errorf("scene: load root %q: %w", typ, game_object.ErrUnknownType)
	}
	if err := root.Load(rootNode, factory); err != nil {
		root.Destroy()
		return fmt.Errorf("scene: load: %w", err)
	}

	var camera game_object.GameObject
	if id := node.StringOr(attrCamera, ""); id != "" {
		guid, err := uuid.Parse(id)
		if err != nil {
			root.Destroy()
			return fmt.Errorf("scene: load camera: %w", err)
		}
		root.Walk(func(obj game_object.GameObject) bool {
			if camera == nil && obj.GUID() == guid {
				camera = obj
			}
			return camera == nil
		})
		if camera == nil {
			s.log.WithField("scene", node.StringOr(attrName, "")).Warn("saved camera not found in archive")
		}
	}

	old := s.root
	s.root = root
	s.camera = camera
	s.mu.Lock()
	s.name = node.StringOr(attrName, s.name)
	s.active = active
	s.mu.Unlock()
	old.Destroy()
	return nil
}

func (s *scene) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.camera = nil
	s.root.Destroy()
}

func (s *scene) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
