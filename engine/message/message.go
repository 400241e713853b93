// Package message defines the synchronous per-scene message bus. Messages are sent to a
// target object and delivered, in the calling goroutine, to the listeners attached to
// the target and optionally its descendants.
package message

import "github.com/Carmen-Shannon/oxy-core/engine/rtti"

// ID names a message kind.
type ID string

// Common message identifiers raised by engine features.
const (
	IDKeyDown   ID = "input.key_down"
	IDKeyUp     ID = "input.key_up"
	IDMouseMove ID = "input.mouse_move"
	IDScroll    ID = "input.scroll"
	IDResize    ID = "window.resize"
	IDAsset     ID = "asset.loaded"
)

// Filter restricts which objects receive a message.
type Filter struct {
	// Recursive delivers to the target's descendants as well as the target.
	Recursive bool
	// Name, when set, only matches objects with this name.
	Name string
	// Type, when set, only matches objects whose type derives from it.
	Type *rtti.Rtti
}

// Matches reports whether an object with the given name and type passes the filter.
func (f Filter) Matches(name string, typ *rtti.Rtti) bool {
	if f.Name != "" && f.Name != name {
		return false
	}
	if f.Type != nil && !typ.IsDerivedFrom(f.Type) {
		return false
	}
	return true
}

// Message is a single synchronous notification.
type Message struct {
	ID      ID
	Sender  any
	Filter  Filter
	Payload any
}

// Listener receives messages delivered to the object it is attached to.
type Listener interface {
	OnMessage(msg Message)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(msg Message)

// OnMessage calls f(msg).
func (f ListenerFunc) OnMessage(msg Message) {
	f(msg)
}
