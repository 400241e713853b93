package game_object

import "github.com/Carmen-Shannon/oxy-core/engine/rtti"

// Runtime types published by this package. Hosts deriving their own objects or
// components pass these as the base of their descriptors.
var (
	GameObjectRtti      *rtti.Rtti
	ComponentRtti       = rtti.New("Component", nil, nil)
	RenderComponentRtti = rtti.New("RenderComponent", ComponentRtti, nil)
	MeshRendererRtti    *rtti.Rtti
	CameraComponentRtti *rtti.Rtti
	LightComponentRtti  *rtti.Rtti
)

func init() {
	GameObjectRtti = rtti.New("GameObject", nil, func() any { return NewGameObject() })
	MeshRendererRtti = rtti.New("MeshRenderer", RenderComponentRtti, func() any { return NewMeshRenderer() })
	CameraComponentRtti = rtti.New("CameraComponent", ComponentRtti, func() any { return NewCameraComponent() })
	LightComponentRtti = rtti.New("LightComponent", ComponentRtti, func() any { return NewLightComponent() })
}

// RegisterTypes adds every type in this package to f.
//
// Parameters:
//   - f: the factory used to load archives
//
// Returns:
//   - error: the first registration failure, such as a duplicate name
func RegisterTypes(f rtti.Factory) error {
	for _, t := range []*rtti.Rtti{
		GameObjectRtti,
		ComponentRtti,
		RenderComponentRtti,
		MeshRendererRtti,
		CameraComponentRtti,
		LightComponentRtti,
	} {
		if err := f.Add(t); err != nil {
			return err
		}
	}
	return nil
}
