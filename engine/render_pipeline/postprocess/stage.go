// Package postprocess provides the fullscreen stages composed by the render pipeline
// after the scene draws, and the shadow map controller that runs before them.
package postprocess

import (
	"errors"
	"fmt"
	"maps"

	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
)

var (
	// ErrMissingMaterial is returned on activation when the stage's material is not in the library.
	ErrMissingMaterial = errors.New("postprocess: material not found")
	// ErrMissingPass is returned on activation when the material has no matching post-process pass.
	ErrMissingPass = errors.New("postprocess: pass not found")
	// ErrInactive is returned by Render on a stage that is not activated.
	ErrInactive = errors.New("postprocess: stage not active")
)

// Stage is one fullscreen pass of the post-process chain. Stages read and write the
// framebuffers handed to Render and never own any.
type Stage interface {
	rp.PostProcess

	// Kind returns the feature that toggles the stage.
	Kind() rp.Feature

	// Material returns the material acquired at activation, or nil while inactive.
	Material() material.Material

	// Params returns the stage defaults overlaid with the acquired pass parameters.
	//
	// Returns:
	//   - map[string]float32: a copy of the effective parameters
	Params() map[string]float32
}

// stage implements Stage for every built-in effect; they differ only in name, feature,
// material and default parameters.
type stage struct {
	rp.BaseController

	materialName string
	passName     string
	defaults     map[string]float32

	mat  material.Material
	pass material.Pass
}

var _ Stage = &stage{}

func newStage(name string, feature rp.Feature, defaults map[string]float32, options ...StageBuilderOption) *stage {
	s := &stage{
		BaseController: rp.NewBaseController(name, feature),
		materialName:   "postprocess/" + name,
		passName:       name,
		defaults:       defaults,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *stage) Kind() rp.Feature {
	return s.Feature()
}

func (s *stage) Material() material.Material {
	return s.mat
}

func (s *stage) Params() map[string]float32 {
	out := maps.Clone(s.defaults)
	if out == nil {
		out = make(map[string]float32)
	}
	if s.pass != nil {
		maps.Copy(out, s.pass.Params())
	}
	return out
}

func (s *stage) OnActivate(p rp.RenderPipeline) error {
	m := p.Materials().Get(s.materialName)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrMissingMaterial, s.materialName)
	}
	tech := m.Technique(material.QueuePostProcess)
	if tech == nil {
		return fmt.Errorf("%w: %q has no %s technique", ErrMissingPass, s.materialName, material.QueuePostProcess)
	}
	pass := tech.Pass(s.passName)
	if pass == nil || pass.Type() != material.PassPostProcess {
		return fmt.Errorf("%w: %q in %q", ErrMissingPass, s.passName, s.materialName)
	}
	if _, err := p.PipelineState(pass.PipelineKey()); err != nil {
		return err
	}
	s.mat, s.pass = m, pass
	return nil
}

func (s *stage) OnDeactivate(rp.RenderPipeline) {
	s.mat, s.pass = nil, nil
}

func (s *stage) Render(list device.CommandList, src, dst device.Framebuffer) error {
	p := s.Pipeline()
	if s.pass == nil || p == nil {
		return ErrInactive
	}
	state, err := p.PipelineState(s.pass.PipelineKey())
	if err != nil {
		return err
	}
	return list.Fullscreen(device.FullscreenCommand{
		Label:    s.Name(),
		Pipeline: state,
		Source:   src,
		Dest:     dst,
		Sampler:  p.Sampler(),
		Params:   s.Params(),
	})
}

// NewSSAO creates the screen-space ambient occlusion stage.
func NewSSAO(options ...StageBuilderOption) Stage {
	return newStage("ssao", rp.FeatureSSAO, map[string]float32{
		"radius":    0.5,
		"bias":      0.025,
		"intensity": 1.0,
		"samples":   16,
	}, options...)
}

// NewAtmospheric creates the atmospheric scattering stage.
func NewAtmospheric(options ...StageBuilderOption) Stage {
	return newStage("atmospheric", rp.FeatureAtmospheric, map[string]float32{
		"rayleigh":      1.0,
		"mie":           0.005,
		"sun_intensity": 20,
	}, options...)
}

// NewSSR creates the screen-space reflection stage.
func NewSSR(options ...StageBuilderOption) Stage {
	return newStage("ssr", rp.FeatureSSR, map[string]float32{
		"max_distance": 50,
		"thickness":    0.2,
		"steps":        64,
	}, options...)
}

// NewFog creates the distance fog stage.
func NewFog(options ...StageBuilderOption) Stage {
	return newStage("fog", rp.FeatureFog, map[string]float32{
		"density": 0.02,
		"start":   10,
		"end":     100,
	}, options...)
}

// NewFXAA creates the fast approximate anti-aliasing stage.
func NewFXAA(options ...StageBuilderOption) Stage {
	return newStage("fxaa", rp.FeatureFXAA, map[string]float32{
		"edge_threshold":     0.125,
		"edge_threshold_min": 0.0312,
		"subpixel":           0.75,
	}, options...)
}

// Defaults returns one of each built-in stage in chain order.
func Defaults() []Stage {
	return []Stage{NewSSAO(), NewAtmospheric(), NewSSR(), NewFog(), NewFXAA()}
}
