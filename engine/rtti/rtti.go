package rtti

// Rtti is a runtime type descriptor. Each concrete engine type publishes one with a
// unique name, an optional base descriptor and a creation thunk. IsDerivedFrom is the
// "implements capability" query used for component lookups and safe downcasts.
type Rtti struct {
	name   string
	base   *Rtti
	create func() any
}

// New creates a type descriptor.
//
// Parameters:
//   - name: the unique type name
//   - base: the base type descriptor, or nil for a root type
//   - create: constructor for new instances, or nil for abstract types
//
// Returns:
//   - *Rtti: the descriptor
func New(name string, base *Rtti, create func() any) *Rtti {
	return &Rtti{
		name:   name,
		base:   base,
		create: create,
	}
}

// Name returns the type name.
func (r *Rtti) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Base returns the base type descriptor, or nil for a root type.
func (r *Rtti) Base() *Rtti {
	if r == nil {
		return nil
	}
	return r.base
}

// Abstract reports whether the type has no creation thunk.
func (r *Rtti) Abstract() bool {
	return r == nil || r.create == nil
}

// IsDerivedFrom walks the base chain and reports whether other is r or one of its bases.
//
// Parameters:
//   - other: the candidate base type
//
// Returns:
//   - bool: true if r derives from other
func (r *Rtti) IsDerivedFrom(other *Rtti) bool {
	if other == nil {
		return false
	}
	for t := r; t != nil; t = t.base {
		if t == other {
			return true
		}
	}
	return false
}

// Create constructs a new instance, or returns nil for abstract types.
func (r *Rtti) Create() any {
	if r.Abstract() {
		return nil
	}
	return r.create()
}

func (r *Rtti) String() string {
	return r.Name()
}
