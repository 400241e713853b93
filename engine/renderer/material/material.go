package material

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrDuplicateTechnique is returned when a material already has a technique for a queue.
var ErrDuplicateTechnique = errors.New("material: technique for queue already present")

// material is the implementation of the Material interface.
type material struct {
	name       string
	baseColor  [4]float32
	metallic   float32
	roughness  float32
	textures   map[string]string
	techniques map[RenderQueue]Technique
}

// Material defines a render material: surface properties, texture slots and one
// technique per render queue it draws in.
//
// Surface properties are plain values. Textures are referenced by asset name and
// resolved by the device layer, so a material never holds GPU objects.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// SetBaseColor overrides the base color.
	//
	// Parameters:
	//   - color: the RGBA color
	SetBaseColor(color [4]float32)

	// Texture returns the asset bound to a texture slot, or "" when unbound.
	//
	// Parameters:
	//   - slot: the slot name, e.g. "diffuse" or "normal"
	//
	// Returns:
	//   - string: the asset name
	Texture(slot string) string

	// SetTexture binds an asset to a texture slot.
	//
	// Parameters:
	//   - slot: the slot name
	//   - asset: the asset name
	SetTexture(slot, asset string)

	// Params packs the surface properties into their GPU uniform layout.
	//
	// Returns:
	//   - GPUMaterialParams: the packed parameters
	Params() GPUMaterialParams

	// Technique returns the technique for a queue, or nil.
	//
	// Parameters:
	//   - q: the render queue
	//
	// Returns:
	//   - Technique: the technique, or nil if the material does not draw in q
	Technique(q RenderQueue) Technique

	// Techniques returns every technique ordered by queue.
	//
	// Returns:
	//   - []Technique: the techniques in draw order
	Techniques() []Technique

	// AddTechnique registers a technique under its queue.
	//
	// Parameters:
	//   - t: the technique
	//
	// Returns:
	//   - error: ErrDuplicateTechnique if the queue already has one
	AddTechnique(t Technique) error

	// RemoveTechnique drops the technique for a queue.
	//
	// Returns:
	//   - bool: true if a technique was removed
	RemoveTechnique(q RenderQueue) bool

	// Clone returns a deep copy. Techniques and their passes are cloned so per-instance
	// overrides never leak into the source material.
	//
	// Returns:
	//   - Material: the copy
	Clone() Material
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:  [4]float32{1, 1, 1, 1},
		metallic:   0.0,
		roughness:  1.0,
		textures:   make(map[string]string),
		techniques: make(map[RenderQueue]Technique),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) SetBaseColor(color [4]float32) {
	m.baseColor = color
}

func (m *material) Texture(slot string) string {
	return m.textures[slot]
}

func (m *material) SetTexture(slot, asset string) {
	m.textures[slot] = asset
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
	}
}

func (m *material) Technique(q RenderQueue) Technique {
	return m.techniques[q]
}

func (m *material) Techniques() []Technique {
	queues := slices.Sorted(maps.Keys(m.techniques))
	out := make([]Technique, 0, len(queues))
	for _, q := range queues {
		out = append(out, m.techniques[q])
	}
	return out
}

func (m *material) AddTechnique(t Technique) error {
	if t == nil {
		return fmt.Errorf("material: add nil technique")
	}
	if _, ok := m.techniques[t.Queue()]; ok {
		return fmt.Errorf("%w: %s in %q", ErrDuplicateTechnique, t.Queue(), m.name)
	}
	m.techniques[t.Queue()] = t
	return nil
}

func (m *material) RemoveTechnique(q RenderQueue) bool {
	if _, ok := m.techniques[q]; !ok {
		return false
	}
	delete(m.techniques, q)
	return true
}

func (m *material) Clone() Material {
	c := &material{
		name:       m.name,
		baseColor:  m.baseColor,
		metallic:   m.metallic,
		roughness:  m.roughness,
		textures:   maps.Clone(m.textures),
		techniques: make(map[RenderQueue]Technique, len(m.techniques)),
	}
	for q, t := range m.techniques {
		c.techniques[q] = t.Clone()
	}
	return c
}
