package render_pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/engine/config"
)

// Feature identifies the RenderSetting flag that toggles a controller. Post-process
// stages run in ascending Feature order.
type Feature int

const (
	// FeatureNone marks a controller that is not tied to a setting flag. It is
	// activated when added and stays active until deactivated explicitly.
	FeatureNone Feature = iota
	FeatureSSAO
	FeatureAtmospheric
	FeatureSSR
	FeatureFog
	FeatureFXAA
	FeatureShadow
)

var featureNames = [...]string{"none", "ssao", "atmospheric", "ssr", "fog", "fxaa", "shadow"}

func (f Feature) String() string {
	if f < 0 || int(f) >= len(featureNames) {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// Enabled reports whether the feature's flag is set in rs. FeatureNone is always enabled.
func (f Feature) Enabled(rs config.RenderSetting) bool {
	switch f {
	case FeatureNone:
		return true
	case FeatureSSAO:
		return rs.EnableSSAO
	case FeatureAtmospheric:
		return rs.EnableAtmospheric
	case FeatureSSR:
		return rs.EnableSSR
	case FeatureFog:
		return rs.EnableFog
	case FeatureFXAA:
		return rs.EnableFXAA
	case FeatureShadow:
		return rs.EnableShadow
	}
	return false
}

// set writes the feature's flag in rs.
func (f Feature) set(rs *config.RenderSetting, v bool) {
	switch f {
	case FeatureSSAO:
		rs.EnableSSAO = v
	case FeatureAtmospheric:
		rs.EnableAtmospheric = v
	case FeatureSSR:
		rs.EnableSSR = v
	case FeatureFog:
		rs.EnableFog = v
	case FeatureFXAA:
		rs.EnableFXAA = v
	case FeatureShadow:
		rs.EnableShadow = v
	}
}

// Controller is a render pipeline extension. The pipeline calls its hooks only while
// it is active; a controller keeps a back reference to the pipeline that added it
// and never owns framebuffers.
type Controller interface {
	// Name returns the controller name used in logs and errors.
	Name() string

	// Feature returns the setting flag that toggles this controller.
	Feature() Feature

	// Pipeline returns the pipeline the controller was added to, or nil.
	Pipeline() RenderPipeline

	// Active reports whether the controller is activated.
	Active() bool

	// Base returns the embedded BaseController.
	//
	// Returns:
	//   - *BaseController: the shared controller state
	Base() *BaseController

	// OnActivate acquires the controller's materials and device resources.
	//
	// Parameters:
	//   - p: the owning pipeline
	//
	// Returns:
	//   - error: an error if the controller cannot run with the current configuration
	OnActivate(p RenderPipeline) error

	// OnDeactivate releases what OnActivate acquired.
	OnDeactivate(p RenderPipeline)

	// OnResolutionChangeBefore runs before size-dependent framebuffers are released.
	OnResolutionChangeBefore(p RenderPipeline)

	// OnResolutionChangeAfter runs after size-dependent framebuffers are recreated.
	//
	// Returns:
	//   - error: an error deactivates the controller
	OnResolutionChangeAfter(p RenderPipeline) error

	// OnRenderPre runs after the frame begins and before scene draws.
	OnRenderPre(p RenderPipeline, f *Frame)

	// OnRenderPipeline runs after scene draws and before the post-process chain.
	OnRenderPipeline(p RenderPipeline, f *Frame)

	// OnRenderPost runs after the output is presented to the surface.
	OnRenderPost(p RenderPipeline, f *Frame)
}

// BaseController is embedded by every controller. It tracks the owning pipeline and
// the activation state and supplies no-op hooks.
type BaseController struct {
	name     string
	feature  Feature
	pipeline RenderPipeline
	active   bool
}

// NewBaseController returns the embeddable state for a controller.
func NewBaseController(name string, feature Feature) BaseController {
	return BaseController{name: name, feature: feature}
}

func (b *BaseController) Name() string {
	return b.name
}

func (b *BaseController) Feature() Feature {
	return b.feature
}

func (b *BaseController) Pipeline() RenderPipeline {
	return b.pipeline
}

func (b *BaseController) Active() bool {
	return b.active
}

func (b *BaseController) Base() *BaseController {
	return b
}

func (b *BaseController) OnActivate(RenderPipeline) error {
	return nil
}

func (b *BaseController) OnDeactivate(RenderPipeline) {}

func (b *BaseController) OnResolutionChangeBefore(RenderPipeline) {}

func (b *BaseController) OnResolutionChangeAfter(RenderPipeline) error {
	return nil
}

func (b *BaseController) OnRenderPre(RenderPipeline, *Frame) {}

func (b *BaseController) OnRenderPipeline(RenderPipeline, *Frame) {}

func (b *BaseController) OnRenderPost(RenderPipeline, *Frame) {}
