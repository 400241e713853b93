package rtti

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateType is returned when a type name is registered twice.
	ErrDuplicateType = errors.New("rtti: duplicate type name")

	// ErrNilType is returned when a nil descriptor is registered.
	ErrNilType = errors.New("rtti: nil type descriptor")
)

// factory is the implementation of the Factory interface.
type factory struct {
	mu     sync.RWMutex
	types  []*Rtti
	names  map[string]struct{}
	index  map[string]*Rtti
	opened bool
}

// Factory is the runtime type registry used for name-based construction.
// A Factory is an explicit context object: engines and tests each own their own
// instance, so registrations never leak between them.
type Factory interface {
	// Add registers a type descriptor. Registration is append-only.
	//
	// Parameters:
	//   - r: the descriptor to register
	//
	// Returns:
	//   - error: ErrDuplicateType if the name is taken, ErrNilType for nil
	Add(r *Rtti) error

	// Open builds the name index. Lookups before Open find nothing; types added
	// after Open are indexed immediately.
	Open()

	// Opened reports whether Open has been called.
	Opened() bool

	// RTTI looks up a descriptor by name.
	//
	// Parameters:
	//   - name: the type name
	//
	// Returns:
	//   - *Rtti: the descriptor, or nil if unknown or the factory is not open
	RTTI(name string) *Rtti

	// CreateObject constructs a new instance of the named type if it derives from base.
	//
	// Parameters:
	//   - name: the type name
	//   - base: the required base type
	//
	// Returns:
	//   - any: the new instance, or nil if the name is unknown, the type is abstract,
	//     or it does not derive from base
	CreateObject(name string, base *Rtti) any

	// Types returns the registered descriptors in registration order.
	Types() []*Rtti
}

var _ Factory = &factory{}

// NewFactory creates an empty Factory, optionally pre-registering the given types.
//
// Parameters:
//   - types: descriptors to register up front
//
// Returns:
//   - Factory: the new factory
//   - error: the first registration failure
func NewFactory(types ...*Rtti) (Factory, error) {
	f := &factory{
		names: make(map[string]struct{}),
	}
	for _, t := range types {
		if err := f.Add(t); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *factory) Add(r *Rtti) error {
	if r == nil {
		return ErrNilType
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.names[r.name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, r.name)
	}
	f.names[r.name] = struct{}{}
	f.types = append(f.types, r)
	if f.opened {
		f.index[r.name] = r
	}
	return nil
}

func (f *factory) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opened {
		return
	}
	f.index = make(map[string]*Rtti, len(f.types))
	for _, t := range f.types {
		f.index[t.name] = t
	}
	f.opened = true
}

func (f *factory) Opened() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.opened
}

func (f *factory) RTTI(name string) *Rtti {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.opened {
		return nil
	}
	return f.index[name]
}

func (f *factory) CreateObject(name string, base *Rtti) any {
	t := f.RTTI(name)
	if t == nil || !t.IsDerivedFrom(base) {
		return nil
	}
	return t.Create()
}

func (f *factory) Types() []*Rtti {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Rtti, len(f.types))
	copy(out, f.types)
	return out
}
