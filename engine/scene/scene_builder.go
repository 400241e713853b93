package scene

import (
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/sirupsen/logrus"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier. The default root is named after the scene.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for updating and rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithRoot supplies the root object, for hosts using a derived GameObject type.
//
// Parameters:
//   - root: the root object, handed over to the scene
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRoot(root game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		s.root = root
	}
}

// WithLogger sets the scene logger.
func WithLogger(log logrus.FieldLogger) SceneBuilderOption {
	return func(s *scene) {
		if log != nil {
			s.log = log
		}
	}
}
