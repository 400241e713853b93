package game_object

import (
	"math"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
)

// CameraComponent projects the scene from its owner's world transform. Without a
// look target the view is the inverse of the owner's world matrix, looking down -Z.
// With a target set the view looks from the owner's world position at the target.
type CameraComponent struct {
	BaseComponent

	up     [3]float32
	fov    float32
	aspect float32
	near   float32
	far    float32

	target    [3]float32
	hasTarget bool

	view           [16]float32
	projection     [16]float32
	viewProjection [16]float32
	frustum        common.Frustum
	dirty          bool
}

// NewCameraComponent creates a camera with a 45 degree vertical field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - *CameraComponent: the camera
func NewCameraComponent(options ...CameraBuilderOption) *CameraComponent {
	c := &CameraComponent{
		up:     [3]float32{0, 1, 0},
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		dirty:  true,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *CameraComponent) Rtti() *rtti.Rtti {
	return CameraComponentRtti
}

// Fov returns the vertical field of view in radians.
func (c *CameraComponent) Fov() float32 {
	return c.fov
}

// Aspect returns the aspect ratio (width / height).
func (c *CameraComponent) Aspect() float32 {
	return c.aspect
}

// Near returns the near clipping plane distance.
func (c *CameraComponent) Near() float32 {
	return c.near
}

// Far returns the far clipping plane distance.
func (c *CameraComponent) Far() float32 {
	return c.far
}

// SetFov sets the vertical field of view in radians.
func (c *CameraComponent) SetFov(fov float32) {
	c.fov = fov
	c.dirty = true
}

// SetAspect sets the aspect ratio. The render pipeline calls it on resize.
func (c *CameraComponent) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
		c.dirty = true
	}
}

// SetClip sets the near and far clipping planes.
func (c *CameraComponent) SetClip(near, far float32) {
	c.near, c.far = near, far
	c.dirty = true
}

// LookAt aims the camera at a world-space point.
func (c *CameraComponent) LookAt(x, y, z float32) {
	c.target = [3]float32{x, y, z}
	c.hasTarget = true
	c.dirty = true
}

// ClearTarget returns the camera to following its owner's orientation.
func (c *CameraComponent) ClearTarget() {
	c.hasTarget = false
	c.dirty = true
}

func (c *CameraComponent) OnMoveAfter() {
	c.dirty = true
}

func (c *CameraComponent) OnAttach(GameObject) error {
	c.dirty = true
	return nil
}

// ViewMatrix returns the world-to-view matrix.
func (c *CameraComponent) ViewMatrix() [16]float32 {
	c.update()
	return c.view
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *CameraComponent) ProjectionMatrix() [16]float32 {
	c.update()
	return c.projection
}

// ViewProjectionMatrix returns projection * view.
func (c *CameraComponent) ViewProjectionMatrix() [16]float32 {
	c.update()
	return c.viewProjection
}

// Frustum returns the view frustum planes.
func (c *CameraComponent) Frustum() common.Frustum {
	c.update()
	return c.frustum
}

// Visible reports whether obj's bounding sphere intersects the view frustum.
//
// Parameters:
//   - obj: the object to test
//
// Returns:
//   - bool: true if any part of the bounding sphere is inside the frustum
func (c *CameraComponent) Visible(obj GameObject) bool {
	f := c.Frustum()
	return f.IntersectsSphere(obj.WorldPosition(), obj.Radius())
}

// update recomputes the matrices if the owner moved or a setting changed.
func (c *CameraComponent) update() {
	if !c.dirty {
		return
	}
	common.Identity(c.view[:])
	if c.owner != nil {
		world := c.owner.WorldMatrix()
		if c.hasTarget {
			common.LookAt(c.view[:],
				world[12], world[13], world[14],
				c.target[0], c.target[1], c.target[2],
				c.up[0], c.up[1], c.up[2],
			)
		} else {
			common.Invert4(c.view[:], world[:])
		}
	}
	common.Perspective(c.projection[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjection[:], c.projection[:], c.view[:])
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjection[:])
	c.dirty = false
}

func (c *CameraComponent) Load(node *archive.Node) error {
	fields := []struct {
		key string
		dst *float32
	}{
		{"fov", &c.fov},
		{"aspect", &c.aspect},
		{"near", &c.near},
		{"far", &c.far},
	}
	for _, f := range fields {
		if !node.Has(f.key) {
			continue
		}
		v, err := node.Float(f.key)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if node.Has("target") {
		t, err := node.Vec3("target")
		if err != nil {
			return err
		}
		c.LookAt(t[0], t[1], t[2])
	}
	c.dirty = true
	return nil
}

func (c *CameraComponent) Save(node *archive.Node) error {
	node.SetFloat("fov", c.fov)
	node.SetFloat("aspect", c.aspect)
	node.SetFloat("near", c.near)
	node.SetFloat("far", c.far)
	if c.hasTarget {
		node.SetVec("target", c.target[:]...)
	}
	return nil
}

// CameraBuilderOption is a functional option for configuring a CameraComponent.
type CameraBuilderOption func(*CameraComponent)

// WithFov sets the vertical field of view in radians.
func WithFov(fov float32) CameraBuilderOption {
	return func(c *CameraComponent) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *CameraComponent) {
		c.aspect = aspect
	}
}

// WithClip sets the near and far planes.
func WithClip(near, far float32) CameraBuilderOption {
	return func(c *CameraComponent) {
		c.near, c.far = near, far
	}
}

// WithTarget aims the camera at a world-space point.
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *CameraComponent) {
		c.target = [3]float32{x, y, z}
		c.hasTarget = true
	}
}
