package game_object

import (
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the name of the GameObject.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithGUID sets the persistent identifier instead of generating one.
func WithGUID(id uuid.UUID) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.guid = id
	}
}

// WithRtti sets a host type derived from GameObjectRtti. Types that do not derive
// from GameObjectRtti are ignored.
//
// Parameters:
//   - t: the object type
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the type
func WithRtti(t *rtti.Rtti) GameObjectBuilderOption {
	return func(g *gameObject) {
		if t.IsDerivedFrom(GameObjectRtti) {
			g.typ = t
		}
	}
}

// WithActive sets the initial active flag. Objects are active by default.
func WithActive(active bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.active = active
	}
}

// WithPosition sets the initial local position.
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial local Euler rotation in radians.
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.rotation = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the initial local scale.
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.scale = [3]float32{sx, sy, sz}
	}
}

// WithRadius sets the bounding sphere radius used for visibility tests.
func WithRadius(r float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.radius = r
	}
}

// WithLogger sets the logger used to report activation failures.
func WithLogger(l logrus.FieldLogger) GameObjectBuilderOption {
	return func(g *gameObject) {
		if l != nil {
			g.log = l
		}
	}
}
