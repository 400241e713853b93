package material

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrDuplicateMaterial is returned when a material name is registered twice.
var ErrDuplicateMaterial = errors.New("material: material already registered")

// Library is a name-keyed registry of materials. Post-process stages acquire their
// materials from it when they activate.
type Library interface {
	// Register adds m under its name.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - error: ErrDuplicateMaterial if the name is taken
	Register(m Material) error

	// Get returns a registered material, or nil.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - Material: the material, or nil when absent
	Get(name string) Material

	// Remove drops a material.
	//
	// Returns:
	//   - bool: true if a material was removed
	Remove(name string) bool

	// Names lists registered names in sorted order.
	Names() []string
}

type library struct {
	mu        sync.RWMutex
	materials map[string]Material
}

var _ Library = &library{}

// NewLibrary creates a library holding the given materials.
//
// Parameters:
//   - materials: materials to register up front
//
// Returns:
//   - Library: the library
//   - error: an error if two materials share a name
func NewLibrary(materials ...Material) (Library, error) {
	l := &library{materials: make(map[string]Material)}
	for _, m := range materials {
		if err := l.Register(m); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *library) Register(m Material) error {
	if m == nil {
		return fmt.Errorf("material: register nil material")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.materials[m.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMaterial, m.Name())
	}
	l.materials[m.Name()] = m
	return nil
}

func (l *library) Get(name string) Material {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.materials[name]
}

func (l *library) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.materials[name]; !ok {
		return false
	}
	delete(l.materials, name)
	return true
}

func (l *library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
