package game_object

import (
	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
)

// MeshRenderer draws one mesh with one material. The mesh and material are runtime
// resources; archives store their names so the host can resolve them after Load.
type MeshRenderer struct {
	RenderComponent

	mesh         device.Mesh
	meshName     string
	materialName string
	instances    uint32
}

var _ Renderable = &MeshRenderer{}

// NewMeshRenderer creates a MeshRenderer that receives shadows and draws one instance.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - *MeshRenderer: the renderer
func NewMeshRenderer(options ...MeshRendererBuilderOption) *MeshRenderer {
	m := &MeshRenderer{instances: 1}
	m.receiveShadow = true
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MeshRenderer) Rtti() *rtti.Rtti {
	return MeshRendererRtti
}

// Mesh returns the mesh buffers.
func (m *MeshRenderer) Mesh() device.Mesh {
	return m.mesh
}

// SetMesh sets the mesh buffers and the name stored in archives.
func (m *MeshRenderer) SetMesh(name string, mesh device.Mesh) {
	m.meshName = name
	m.mesh = mesh
}

// MeshName returns the archived mesh name.
func (m *MeshRenderer) MeshName() string {
	return m.meshName
}

// MaterialName returns the archived material name, or the material's own name once set.
func (m *MeshRenderer) MaterialName() string {
	if m.material != nil {
		return m.material.Name()
	}
	return m.materialName
}

// SetInstanceCount sets how many instances each draw renders.
func (m *MeshRenderer) SetInstanceCount(n uint32) {
	m.instances = max(n, 1)
}

func (m *MeshRenderer) Submit(sink DrawSink) {
	if m.material == nil || m.mesh.Vertices == nil || m.mesh.Indices == nil {
		return
	}
	sink.Submit(DrawRequest{
		Source:        &m.RenderComponent,
		Mesh:          m.mesh,
		Material:      m.material,
		World:         m.World(),
		InstanceCount: m.instances,
	})
}

func (m *MeshRenderer) Load(node *archive.Node) error {
	if err := m.RenderComponent.Load(node); err != nil {
		return err
	}
	m.meshName = node.StringOr("mesh", "")
	m.materialName = node.StringOr("material", "")
	if node.Has("instances") {
		n, err := node.Int("instances")
		if err != nil {
			return err
		}
		m.SetInstanceCount(uint32(n))
	}
	return nil
}

func (m *MeshRenderer) Save(node *archive.Node) error {
	if err := m.RenderComponent.Save(node); err != nil {
		return err
	}
	node.SetString("mesh", m.meshName)
	node.SetString("material", m.MaterialName())
	node.SetInt("instances", int64(m.instances))
	return nil
}

// MeshRendererBuilderOption is a functional option for configuring a MeshRenderer.
type MeshRendererBuilderOption func(*MeshRenderer)

// WithMesh sets the mesh and its archive name.
func WithMesh(name string, mesh device.Mesh) MeshRendererBuilderOption {
	return func(m *MeshRenderer) {
		m.SetMesh(name, mesh)
	}
}

// WithMaterial sets the material.
func WithMaterial(mat material.Material) MeshRendererBuilderOption {
	return func(m *MeshRenderer) {
		m.material = mat
	}
}

// WithCastShadow sets whether the mesh renders into shadow maps.
func WithCastShadow(v bool) MeshRendererBuilderOption {
	return func(m *MeshRenderer) {
		m.castShadow = v
	}
}

// WithReceiveShadow sets whether the mesh samples shadow maps.
func WithReceiveShadow(v bool) MeshRendererBuilderOption {
	return func(m *MeshRenderer) {
		m.receiveShadow = v
	}
}
