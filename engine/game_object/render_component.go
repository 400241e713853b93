package game_object

import (
	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
)

// DrawRequest is one renderable submission. The render pipeline expands it into one
// draw per technique pass of the material.
type DrawRequest struct {
	Source        *RenderComponent
	Mesh          device.Mesh
	Material      material.Material
	World         [16]float32
	InstanceCount uint32
}

// DrawSink collects draw requests for a frame.
type DrawSink interface {
	Submit(req DrawRequest)
}

// RenderListener is called around a RenderComponent's draws.
type RenderListener func(rc *RenderComponent)

// Renderable is the capability implemented by components that draw.
type Renderable interface {
	Component

	// Render returns the shared render state.
	//
	// Returns:
	//   - *RenderComponent: the embedded render component
	Render() *RenderComponent

	// Submit adds this frame's draws to sink.
	//
	// Parameters:
	//   - sink: the frame's draw list
	Submit(sink DrawSink)
}

// RenderComponent is embedded by drawing components. It carries the shadow flags,
// the material and the pre and post render listener lists, and caches the owner's
// world matrix between moves.
type RenderComponent struct {
	BaseComponent

	castShadow    bool
	receiveShadow bool
	material      material.Material

	preRender  message.ListenerList[RenderListener]
	postRender message.ListenerList[RenderListener]

	world      [16]float32
	worldValid bool
}

func (r *RenderComponent) Render() *RenderComponent {
	return r
}

// CastShadow reports whether the component renders into shadow maps.
func (r *RenderComponent) CastShadow() bool {
	return r.castShadow
}

// SetCastShadow sets whether the component renders into shadow maps.
func (r *RenderComponent) SetCastShadow(v bool) {
	r.castShadow = v
}

// ReceiveShadow reports whether the component samples shadow maps.
func (r *RenderComponent) ReceiveShadow() bool {
	return r.receiveShadow
}

// SetReceiveShadow sets whether the component samples shadow maps.
func (r *RenderComponent) SetReceiveShadow(v bool) {
	r.receiveShadow = v
}

// Material returns the material, or nil.
func (r *RenderComponent) Material() material.Material {
	return r.material
}

// SetMaterial sets the material used for submissions.
func (r *RenderComponent) SetMaterial(m material.Material) {
	r.material = m
}

// AddPreRenderListener subscribes fn to run before this component's draws.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - message.Token: the token to unsubscribe with
func (r *RenderComponent) AddPreRenderListener(fn RenderListener) message.Token {
	return r.preRender.Add(fn)
}

// RemovePreRenderListener unsubscribes a pre-render callback.
func (r *RenderComponent) RemovePreRenderListener(tok message.Token) bool {
	return r.preRender.Remove(tok)
}

// AddPostRenderListener subscribes fn to run after this component's draws.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - message.Token: the token to unsubscribe with
func (r *RenderComponent) AddPostRenderListener(fn RenderListener) message.Token {
	return r.postRender.Add(fn)
}

// RemovePostRenderListener unsubscribes a post-render callback.
func (r *RenderComponent) RemovePostRenderListener(tok message.Token) bool {
	return r.postRender.Remove(tok)
}

// NotifyPreRender runs the pre-render listeners and returns how many ran.
func (r *RenderComponent) NotifyPreRender() int {
	return r.preRender.Each(func(fn RenderListener) { fn(r) })
}

// NotifyPostRender runs the post-render listeners and returns how many ran.
func (r *RenderComponent) NotifyPostRender() int {
	return r.postRender.Each(func(fn RenderListener) { fn(r) })
}

func (r *RenderComponent) OnMoveAfter() {
	r.worldValid = false
}

func (r *RenderComponent) OnDetach() {
	r.worldValid = false
}

// World returns the owner's world matrix, cached until the owner moves.
func (r *RenderComponent) World() [16]float32 {
	if !r.worldValid && r.owner != nil {
		r.world = r.owner.WorldMatrix()
		r.worldValid = true
	}
	return r.world
}

// Load reads the shadow flags. Concrete components call it from their own Load.
func (r *RenderComponent) Load(node *archive.Node) error {
	var err error
	if node.Has("cast_shadow") {
		if r.castShadow, err = node.Bool("cast_shadow"); err != nil {
			return err
		}
	}
	if node.Has("receive_shadow") {
		if r.receiveShadow, err = node.Bool("receive_shadow"); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the shadow flags. Concrete components call it from their own Save.
func (r *RenderComponent) Save(node *archive.Node) error {
	node.SetBool("cast_shadow", r.castShadow)
	node.SetBool("receive_shadow", r.receiveShadow)
	return nil
}
