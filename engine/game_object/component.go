package game_object

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
)

var (
	// ErrNilComponent is returned when a nil component is attached or removed.
	ErrNilComponent = errors.New("game_object: nil component")
	// ErrAlreadyAttached is returned when a component attached to an object is attached again.
	ErrAlreadyAttached = errors.New("game_object: component already attached")
	// ErrNotAttached is returned when a component or child is not attached to the object.
	ErrNotAttached = errors.New("game_object: not attached to this object")
	// ErrIncompatibleOwner is returned when a component's owner constraint rejects the object type.
	ErrIncompatibleOwner = errors.New("game_object: incompatible owner type")
	// ErrDestroyed is returned by operations on a destroyed object.
	ErrDestroyed = errors.New("game_object: object destroyed")
	// ErrHierarchyCycle is returned when a child would become its own ancestor.
	ErrHierarchyCycle = errors.New("game_object: hierarchy cycle")
	// ErrUnknownType is returned by Load when the factory cannot create an archived type.
	ErrUnknownType = errors.New("game_object: unknown type")
)

// State is a component's lifecycle state.
type State int

const (
	// StateUnattached components have no owner.
	StateUnattached State = iota
	// StateActivated components receive frame callbacks.
	StateActivated
	// StateDeactivated components are attached but receive no frame callbacks.
	StateDeactivated
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateActivated:
		return "activated"
	case StateDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

// Component is a behavior attached to at most one GameObject. Concrete components embed
// BaseComponent, which supplies the lifecycle bookkeeping and no-op hooks, and override
// the hooks they need.
type Component interface {
	// Rtti returns the component's runtime type.
	//
	// Returns:
	//   - *rtti.Rtti: the concrete type descriptor
	Rtti() *rtti.Rtti

	// Base returns the embedded lifecycle state.
	//
	// Returns:
	//   - *BaseComponent: the embedded base
	Base() *BaseComponent

	// OnAttach is called after the component is appended to owner. An error rolls the
	// attach back.
	//
	// Parameters:
	//   - owner: the object the component was attached to
	//
	// Returns:
	//   - error: a reason to refuse the attach
	OnAttach(owner GameObject) error

	// OnDetach is called after the component is removed from its owner.
	OnDetach()

	// OnActivate is called when the component starts receiving frame callbacks. A
	// component whose OnActivate fails stays deactivated.
	//
	// Returns:
	//   - error: the activation failure, if any
	OnActivate() error

	// OnDeactivate is called when the component stops receiving frame callbacks.
	OnDeactivate()

	// Load reads the component's fields from an archive node.
	//
	// Parameters:
	//   - node: the component node written by Save
	//
	// Returns:
	//   - error: an error if a field is missing or malformed
	Load(node *archive.Node) error

	// Save writes the component's fields to an archive node.
	//
	// Parameters:
	//   - node: the node to fill
	//
	// Returns:
	//   - error: an error if a field cannot be written
	Save(node *archive.Node) error
}

// Updater components receive OnUpdate once per frame while activated.
type Updater interface {
	OnUpdate(dt float64)
}

// MoveListener components are told when the owner's world transform changed.
type MoveListener interface {
	OnMoveAfter()
}

// OwnerConstraint components only attach to owners whose type derives from OwnerRtti.
type OwnerConstraint interface {
	OwnerRtti() *rtti.Rtti
}

// BaseComponent holds the owner and lifecycle state shared by every component.
type BaseComponent struct {
	owner GameObject
	state State
}

func (b *BaseComponent) Base() *BaseComponent {
	return b
}

// Owner returns the object the component is attached to, or nil.
func (b *BaseComponent) Owner() GameObject {
	return b.owner
}

// State returns the lifecycle state.
func (b *BaseComponent) State() State {
	return b.state
}

// Attached reports whether the component has an owner.
func (b *BaseComponent) Attached() bool {
	return b.owner != nil
}

// Activated reports whether the component currently receives frame callbacks.
func (b *BaseComponent) Activated() bool {
	return b.state == StateActivated
}

func (b *BaseComponent) OnAttach(GameObject) error {
	return nil
}

func (b *BaseComponent) OnDetach() {}

func (b *BaseComponent) OnActivate() error {
	return nil
}

func (b *BaseComponent) OnDeactivate() {}

func (b *BaseComponent) Load(*archive.Node) error {
	return nil
}

func (b *BaseComponent) Save(*archive.Node) error {
	return nil
}
