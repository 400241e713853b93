package postprocess

import (
	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultShadowHalfExtent is the half-size in world units of the directional shadow volume.
	DefaultShadowHalfExtent float32 = 40.0
	// DefaultShadowNear is the near plane of the shadow projection.
	DefaultShadowNear float32 = 0.1
	// DefaultShadowFar is the far plane of the shadow projection.
	DefaultShadowFar float32 = 200.0
	// DefaultShadowBias is the constant depth bias applied to shadow comparisons.
	DefaultShadowBias float32 = 0.001
	// DefaultShadowNormalBiasScale multiplies the shadow texel world size to get the
	// normal-offset bias.
	DefaultShadowNormalBiasScale float32 = 3.0
)

// ShadowStage renders the shadow caster passes of shadow-casting render components into
// the pooled shadow map before the scene draws. The first active directional light that
// casts shadows drives the projection; casters are not culled against the camera.
type ShadowStage struct {
	rp.BaseController

	halfExtent float32
	near, far  float32
	bias       float32
	normalBias float32

	shadowMap device.Framebuffer
	casters   *rp.DrawList
	lightVP   [16]float32
	drawn     int
}

var _ rp.Controller = &ShadowStage{}

// NewShadowStage creates the shadow map controller.
//
// Parameters:
//   - options: functional options to configure the stage
//
// Returns:
//   - *ShadowStage: the stage
func NewShadowStage(options ...ShadowBuilderOption) *ShadowStage {
	s := &ShadowStage{
		BaseController: rp.NewBaseController("shadow", rp.FeatureShadow),
		halfExtent:     DefaultShadowHalfExtent,
		near:           DefaultShadowNear,
		far:            DefaultShadowFar,
		bias:           DefaultShadowBias,
		casters:        rp.NewDrawList(rp.ShadowCasterPasses),
	}
	common.Identity(s.lightVP[:])
	for _, option := range options {
		option(s)
	}
	return s
}

// ShadowMap returns the shadow map, or nil while inactive.
func (s *ShadowStage) ShadowMap() device.Framebuffer {
	return s.shadowMap
}

// LightViewProjection returns the light matrix of the last rendered shadow map.
func (s *ShadowStage) LightViewProjection() [16]float32 {
	return s.lightVP
}

// Bias returns the constant depth bias and the normal-offset bias in world units.
func (s *ShadowStage) Bias() (depth, normal float32) {
	return s.bias, s.normalBias
}

// Drawn returns the number of caster draws recorded in the last frame.
func (s *ShadowStage) Drawn() int {
	return s.drawn
}

func (s *ShadowStage) OnActivate(p rp.RenderPipeline) error {
	res := p.Setting().ShadowMapResolution
	fb, err := p.Framebuffers().Acquire(rp.TargetShadow, device.FramebufferDescriptor{
		Label:       "Shadow Map",
		Width:       res,
		Height:      res,
		Format:      wgpu.TextureFormatR32Float,
		DepthFormat: wgpu.TextureFormatDepth32Float,
	})
	if err != nil {
		return err
	}
	s.shadowMap = fb
	s.normalBias = 2.0 * s.halfExtent / float32(res) * DefaultShadowNormalBiasScale
	return nil
}

func (s *ShadowStage) OnDeactivate(p rp.RenderPipeline) {
	if s.shadowMap != nil {
		p.Framebuffers().Evict(rp.TargetShadow)
		s.shadowMap = nil
	}
	s.casters.Reset()
	s.drawn = 0
}

func (s *ShadowStage) OnRenderPre(p rp.RenderPipeline, f *rp.Frame) {
	s.drawn = 0
	if f.Root == nil || s.shadowMap == nil {
		return
	}
	light := findShadowLight(f.Root)
	if light == nil {
		return
	}

	var center [3]float32
	if f.Camera != nil && f.Camera.Owner() != nil {
		center = f.Camera.Owner().WorldPosition()
	}
	common.DirectionalLightVP(s.lightVP[:], light.Direction(), center, s.halfExtent, s.near, s.far)

	s.casters.Reset()
	rp.Collect(f.Root, nil, s.casters)
	for _, d := range s.casters.Draws() {
		state, err := p.PipelineState(d.Pass.PipelineKey())
		if err == nil {
			err = f.List.Draw(device.DrawCommand{
				Label:         "shadow/" + d.Request.Material.Name(),
				Pipeline:      state,
				Target:        s.shadowMap,
				Mesh:          d.Request.Mesh,
				InstanceCount: d.Request.InstanceCount,
				ViewProj:      s.lightVP,
				World:         d.Request.World,
				Params:        d.Request.Material.Params(),
				Queue:         d.Queue,
				Pass:          d.Pass.Name(),
			})
		}
		if err != nil {
			p.Logger().WithFields(logrus.Fields{
				"material": d.Request.Material.Name(),
				"pass":     d.Pass.Name(),
			}).WithError(err).Warn("shadow caster skipped")
			continue
		}
		s.drawn++
	}
}

// findShadowLight returns the first activated directional light that casts shadows.
func findShadowLight(root game_object.GameObject) *game_object.LightComponent {
	var found *game_object.LightComponent
	root.Walk(func(obj game_object.GameObject) bool {
		if found != nil || !obj.Active() {
			return false
		}
		for _, c := range obj.Components(game_object.LightComponentRtti) {
			l, ok := c.(*game_object.LightComponent)
			if ok && l.Activated() && l.CastsShadows() && l.Type() == game_object.LightDirectional {
				found = l
				return false
			}
		}
		return true
	})
	return found
}

// ShadowBuilderOption is a functional option for configuring a ShadowStage.
type ShadowBuilderOption func(*ShadowStage)

// WithShadowVolume sets the half-extent and clip planes of the shadow projection.
func WithShadowVolume(halfExtent, near, far float32) ShadowBuilderOption {
	return func(s *ShadowStage) {
		s.halfExtent, s.near, s.far = halfExtent, near, far
	}
}

// WithShadowBias sets the constant depth bias.
func WithShadowBias(bias float32) ShadowBuilderOption {
	return func(s *ShadowStage) {
		s.bias = bias
	}
}
