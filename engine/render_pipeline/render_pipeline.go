// Package render_pipeline turns a scene graph into device commands: it collects the
// draws of visible render components, orders them by render queue and composes the
// enabled post-process stages over a pooled ping-pong chain.
package render_pipeline

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

const (
	// PresentPipelineKey is the fullscreen pipeline that copies the final target to the surface.
	PresentPipelineKey = "present"
	// FullscreenVertexShader is the shader key of the fullscreen triangle vertex stage.
	FullscreenVertexShader = shader.FullscreenVertex
)

// PostProcess is a controller that runs as one stage of the post-process chain.
type PostProcess interface {
	Controller

	// Render reads src and writes dst.
	//
	// Parameters:
	//   - list: the frame's command list
	//   - src: the previous stage's output, or the scene color target
	//   - dst: the stage's output
	//
	// Returns:
	//   - error: an error skips the stage for this frame
	Render(list device.CommandList, src, dst device.Framebuffer) error
}

// Frame is the per-frame state passed to controller hooks.
type Frame struct {
	Index  uint64
	Root   game_object.GameObject
	Camera *game_object.CameraComponent
	List   device.CommandList

	// Scene is the color and depth target the scene draws into.
	Scene device.Framebuffer
	// ViewProj is the camera's view-projection matrix, or identity without a camera.
	ViewProj [16]float32

	// Draws counts the scene draws recorded so far.
	Draws int
	// Stages lists the post-process stages that ran, in order.
	Stages []string
}

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Index    uint64
	Draws    int
	Skipped  int
	Stages   int
	Duration time.Duration
}

// Observer receives frame statistics and configuration failures.
type Observer interface {
	ObserveFrame(stats FrameStats)
	ObserveConfigurationError(err *ConfigurationError)
}

type renderPipeline struct {
	log       logrus.FieldLogger
	setting   config.RenderSetting
	dev       device.GraphicsDevice
	materials material.Library
	pool      FramebufferPool
	observer  Observer

	descMu sync.Mutex
	descs  map[string]pipeline.Pipeline
	states map[string]device.PipelineState

	sampler     device.Sampler
	controllers []Controller
	draws       *DrawList

	frames uint64
	closed bool
}

// RenderPipeline renders scenes through a GraphicsDevice. It is driven from the frame
// thread; controllers run inside its calls and may call back into it.
type RenderPipeline interface {
	// Setting returns the current render settings. Flags of controllers that failed to
	// activate are cleared.
	Setting() config.RenderSetting

	// Device returns the graphics device.
	Device() device.GraphicsDevice

	// Materials returns the material library stages acquire their materials from.
	Materials() material.Library

	// Framebuffers returns the pool that owns every render target.
	Framebuffers() FramebufferPool

	// Logger returns the pipeline logger.
	Logger() logrus.FieldLogger

	// Sampler returns the default sampler used by fullscreen passes.
	Sampler() device.Sampler

	// RegisterPipeline adds a pipeline description. Its device state is created on first use.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the description is invalid
	RegisterPipeline(p pipeline.Pipeline) error

	// PipelineState returns the cached device state for key, creating it on first use.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - device.PipelineState: the pipeline state
	//   - error: ErrUnknownPipeline, or the device error
	PipelineState(key string) (device.PipelineState, error)

	// AddController attaches c to the pipeline and activates it when its feature is enabled.
	// A failed activation is reported as a ConfigurationError and leaves c attached but inactive.
	//
	// Parameters:
	//   - c: the controller
	//
	// Returns:
	//   - error: ErrDuplicateController, ErrForeignController, ErrClosed or a *ConfigurationError
	AddController(c Controller) error

	// RemoveController deactivates and detaches c.
	//
	// Returns:
	//   - bool: true if c was attached
	RemoveController(c Controller) bool

	// Controller returns the attached controller with the given name, or nil.
	Controller(name string) Controller

	// Controllers returns the attached controllers in the order they were added.
	Controllers() []Controller

	// SetActive activates or deactivates c. It is a no-op when c is already in the
	// requested state. Activation failure clears c's setting flag and returns a
	// *ConfigurationError.
	//
	// Parameters:
	//   - c: an attached controller
	//   - active: the requested state
	//
	// Returns:
	//   - error: ErrForeignController, ErrClosed or a *ConfigurationError
	SetActive(c Controller, active bool) error

	// Frame renders root as seen by camera and presents the result.
	//
	// Parameters:
	//   - root: the scene root; inactive subtrees are skipped
	//   - camera: the viewing camera; nil disables culling
	//
	// Returns:
	//   - error: an error if the frame could not be started, submitted or presented
	Frame(root game_object.GameObject, camera *game_object.CameraComponent) error

	// Resize changes the output resolution. Active controllers are notified before the
	// size-dependent framebuffers are released and after they are recreated.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error if the size is invalid or the targets cannot be recreated
	Resize(width, height int) error

	// Close deactivates the controllers in reverse order and releases every resource the
	// pipeline owns. It is idempotent.
	Close()

	// Closed reports whether Close was called.
	Closed() bool
}

var _ RenderPipeline = &renderPipeline{}

// NewRenderPipeline creates a pipeline and allocates its render targets.
//
// Parameters:
//   - setting: the render settings
//   - dev: the graphics device
//   - options: functional options to configure the pipeline
//
// Returns:
//   - RenderPipeline: the pipeline
//   - error: an error if the settings are invalid or the targets cannot be allocated
func NewRenderPipeline(setting config.RenderSetting, dev device.GraphicsDevice, options ...RenderPipelineBuilderOption) (RenderPipeline, error) {
	if dev == nil {
		return nil, fmt.Errorf("render_pipeline: nil graphics device")
	}
	if setting.Width <= 0 || setting.Height <= 0 {
		return nil, fmt.Errorf("render_pipeline: invalid resolution %dx%d", setting.Width, setting.Height)
	}

	p := &renderPipeline{
		log:     logrus.StandardLogger(),
		setting: setting,
		dev:     dev,
		descs:   make(map[string]pipeline.Pipeline),
		states:  make(map[string]device.PipelineState),
		draws:   NewDrawList(ScenePasses),
	}
	for _, option := range options {
		option(p)
	}
	p.log = logger.OrDefault(p.log).WithField("component", "render_pipeline")

	if p.materials == nil {
		p.materials, _ = material.NewLibrary()
	}
	if _, ok := p.descs[PresentPipelineKey]; !ok {
		p.descs[PresentPipelineKey] = DefaultPresentPipeline()
	}

	pool, err := NewFramebufferPool(dev, setting.FramebufferPoolSize)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	p.sampler, err = dev.CreateSampler(device.SamplerDescriptor{
		Label: "Fullscreen Sampler",
		SamplerStagingData: common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render_pipeline: create sampler: %w", err)
	}

	if err := p.acquireScreenTargets(); err != nil {
		p.pool.Purge()
		p.sampler.Release()
		return nil, err
	}
	return p, nil
}

// DefaultPresentPipeline describes the fullscreen copy to the presentation surface. Its
// color format is left undefined so the device uses the surface format.
func DefaultPresentPipeline() pipeline.Pipeline {
	return pipeline.NewPipeline(PresentPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithShaders(FullscreenVertexShader, shader.PresentFragment),
		pipeline.WithColorFormat(wgpu.TextureFormatUndefined),
		pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
}

func (p *renderPipeline) Setting() config.RenderSetting {
	return p.setting
}

func (p *renderPipeline) Device() device.GraphicsDevice {
	return p.dev
}

func (p *renderPipeline) Materials() material.Library {
	return p.materials
}

func (p *renderPipeline) Framebuffers() FramebufferPool {
	return p.pool
}

func (p *renderPipeline) Logger() logrus.FieldLogger {
	return p.log
}

func (p *renderPipeline) Sampler() device.Sampler {
	return p.sampler
}

func (p *renderPipeline) RegisterPipeline(desc pipeline.Pipeline) error {
	if desc == nil {
		return fmt.Errorf("render_pipeline: nil pipeline description")
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("render_pipeline: register %q: %w", desc.PipelineKey(), err)
	}
	p.descMu.Lock()
	defer p.descMu.Unlock()
	if old, ok := p.states[desc.PipelineKey()]; ok {
		old.Release()
		delete(p.states, desc.PipelineKey())
	}
	p.descs[desc.PipelineKey()] = desc
	return nil
}

func (p *renderPipeline) PipelineState(key string) (device.PipelineState, error) {
	p.descMu.Lock()
	defer p.descMu.Unlock()
	if s, ok := p.states[key]; ok {
		return s, nil
	}
	desc, ok := p.descs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPipeline, key)
	}
	s, err := p.dev.CreatePipelineState(desc)
	if err != nil {
		return nil, fmt.Errorf("render_pipeline: create pipeline state %q: %w", key, err)
	}
	p.states[key] = s
	return s, nil
}

func (p *renderPipeline) AddController(c Controller) error {
	if p.closed {
		return ErrClosed
	}
	b := c.Base()
	if b.pipeline != nil {
		if b.pipeline == RenderPipeline(p) {
			return fmt.Errorf("%w: %q", ErrDuplicateController, c.Name())
		}
		return fmt.Errorf("%w: %q", ErrForeignController, c.Name())
	}
	if p.Controller(c.Name()) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateController, c.Name())
	}

	b.pipeline = p
	p.controllers = append(p.controllers, c)
	if !c.Feature().Enabled(p.setting) {
		return nil
	}
	return p.SetActive(c, true)
}

func (p *renderPipeline) RemoveController(c Controller) bool {
	i := slices.Index(p.controllers, c)
	if i < 0 {
		return false
	}
	p.deactivate(c)
	p.controllers = slices.Delete(p.controllers, i, i+1)
	c.Base().pipeline = nil
	return true
}

func (p *renderPipeline) Controller(name string) Controller {
	for _, c := range p.controllers {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func (p *renderPipeline) Controllers() []Controller {
	return slices.Clone(p.controllers)
}

func (p *renderPipeline) SetActive(c Controller, active bool) error {
	if p.closed {
		return ErrClosed
	}
	b := c.Base()
	if b.pipeline != RenderPipeline(p) {
		return fmt.Errorf("%w: %q", ErrForeignController, c.Name())
	}
	if b.active == active {
		return nil
	}
	if !active {
		p.deactivate(c)
		c.Feature().set(&p.setting, false)
		return nil
	}

	if err := c.OnActivate(p); err != nil {
		c.OnDeactivate(p)
		return p.configurationFailure(c, err)
	}
	b.active = true
	c.Feature().set(&p.setting, true)
	p.log.WithField("stage", c.Name()).Debug("controller activated")
	return nil
}

func (p *renderPipeline) deactivate(c Controller) {
	b := c.Base()
	if !b.active {
		return
	}
	b.active = false
	c.OnDeactivate(p)
	p.log.WithField("stage", c.Name()).Debug("controller deactivated")
}

// configurationFailure excludes c, clears its flag and reports the failure.
func (p *renderPipeline) configurationFailure(c Controller, err error) *ConfigurationError {
	c.Feature().set(&p.setting, false)
	cfgErr := &ConfigurationError{Stage: c.Name(), Feature: c.Feature(), Err: err}
	p.log.WithFields(logrus.Fields{
		"stage":   c.Name(),
		"feature": c.Feature().String(),
	}).WithError(err).Warn("render stage disabled by configuration failure")
	if p.observer != nil {
		p.observer.ObserveConfigurationError(cfgErr)
	}
	return cfgErr
}

func (p *renderPipeline) active() []Controller {
	out := make([]Controller, 0, len(p.controllers))
	for _, c := range p.controllers {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}

// postChain returns the active post-process stages in Feature order. Stages sharing a
// feature keep the order they were added in.
func (p *renderPipeline) postChain() []PostProcess {
	var out []PostProcess
	for _, c := range p.controllers {
		if pp, ok := c.(PostProcess); ok && c.Active() {
			out = append(out, pp)
		}
	}
	slices.SortStableFunc(out, func(a, b PostProcess) int {
		return int(a.Feature()) - int(b.Feature())
	})
	return out
}

func (p *renderPipeline) screenDescriptor(key string) device.FramebufferDescriptor {
	desc := device.FramebufferDescriptor{
		Label:  key,
		Width:  p.setting.Width,
		Height: p.setting.Height,
	}
	if key == TargetScene {
		desc.DepthFormat = wgpu.TextureFormatDepth24Plus
	}
	return desc
}

func (p *renderPipeline) acquireScreenTargets() error {
	for _, key := range screenTargets {
		if _, err := p.pool.Acquire(key, p.screenDescriptor(key)); err != nil {
			return err
		}
	}
	return nil
}

func (p *renderPipeline) target(key string) (device.Framebuffer, error) {
	return p.pool.Acquire(key, p.screenDescriptor(key))
}

func (p *renderPipeline) Frame(root game_object.GameObject, camera *game_object.CameraComponent) error {
	if p.closed {
		return ErrClosed
	}
	start := time.Now()

	scene, err := p.target(TargetScene)
	if err != nil {
		return err
	}
	if camera != nil {
		camera.SetAspect(float32(p.setting.Width) / float32(p.setting.Height))
	}

	list, err := p.dev.BeginFrame()
	if err != nil {
		return fmt.Errorf("render_pipeline: begin frame: %w", err)
	}

	f := &Frame{
		Index:  p.frames,
		Root:   root,
		Camera: camera,
		List:   list,
		Scene:  scene,
	}
	if camera != nil {
		f.ViewProj = camera.ViewProjectionMatrix()
	} else {
		common.Identity(f.ViewProj[:])
	}

	active := p.active()
	for _, c := range active {
		c.OnRenderPre(p, f)
	}

	p.draws.Reset()
	if root != nil {
		var visible func(game_object.GameObject) bool
		if camera != nil {
			visible = camera.Visible
		}
		Collect(root, visible, p.draws)
	}
	skipped := p.drawScene(f)

	for _, c := range active {
		if c.Active() {
			c.OnRenderPipeline(p, f)
		}
	}

	final := p.runPostChain(f)
	if err := p.present(list, final); err != nil {
		p.log.WithError(err).Warn("present blit failed")
	}

	for _, c := range active {
		if c.Active() {
			c.OnRenderPost(p, f)
		}
	}

	var result error
	if err := list.End(); err != nil {
		result = fmt.Errorf("render_pipeline: submit frame: %w", err)
	}
	if err := p.dev.Present(); err != nil {
		result = errors.Join(result, fmt.Errorf("render_pipeline: present: %w", err))
	}
	p.frames++

	if p.observer != nil {
		p.observer.ObserveFrame(FrameStats{
			Index:    f.Index,
			Draws:    f.Draws,
			Skipped:  skipped,
			Stages:   len(f.Stages),
			Duration: time.Since(start),
		})
	}
	return result
}

// Collect walks root and submits the draws of activated renderables on active objects
// into sink. Objects rejected by visible are skipped but their children are still
// visited. It returns the number of renderables that submitted.
//
// Parameters:
//   - root: the subtree to walk
//   - visible: the culling test, or nil to accept every object
//   - sink: the draw sink
//
// Returns:
//   - int: the number of renderables visited
func Collect(root game_object.GameObject, visible func(game_object.GameObject) bool, sink game_object.DrawSink) int {
	n := 0
	root.Walk(func(obj game_object.GameObject) bool {
		if !obj.Active() {
			return false
		}
		if visible != nil && !visible(obj) {
			return true
		}
		for _, c := range obj.Components(game_object.RenderComponentRtti) {
			r, ok := c.(game_object.Renderable)
			if !ok || !c.Base().Activated() {
				continue
			}
			r.Submit(sink)
			n++
		}
		return true
	})
	return n
}

// drawScene records the sorted scene draws and returns how many were skipped.
func (p *renderPipeline) drawScene(f *Frame) int {
	skipped := 0
	for _, d := range p.draws.Draws() {
		src := d.Request.Source
		if src != nil {
			src.NotifyPreRender()
		}
		if err := p.draw(f, d); err != nil {
			skipped++
			p.log.WithFields(logrus.Fields{
				"material": d.Request.Material.Name(),
				"pass":     d.Pass.Name(),
				"queue":    d.Queue.String(),
			}).WithError(err).Warn("draw skipped")
		} else {
			f.Draws++
		}
		if src != nil {
			src.NotifyPostRender()
		}
	}
	return skipped
}

func (p *renderPipeline) draw(f *Frame, d Draw) error {
	state, err := p.PipelineState(d.Pass.PipelineKey())
	if err != nil {
		return err
	}
	return f.List.Draw(device.DrawCommand{
		Label:         d.Request.Material.Name() + "/" + d.Pass.Name(),
		Pipeline:      state,
		Target:        f.Scene,
		Mesh:          d.Request.Mesh,
		InstanceCount: d.Request.InstanceCount,
		ViewProj:      f.ViewProj,
		World:         d.Request.World,
		Params:        d.Request.Material.Params(),
		Queue:         d.Queue,
		Pass:          d.Pass.Name(),
	})
}

// runPostChain composes the active post-process stages and returns the framebuffer
// holding the final image. The first stage reads the scene target, the last one writes
// the output target and the ones in between alternate between the ping-pong buffers.
func (p *renderPipeline) runPostChain(f *Frame) device.Framebuffer {
	chain := p.postChain()
	if len(chain) == 0 {
		return f.Scene
	}

	output, err := p.target(TargetOutput)
	if err != nil {
		p.log.WithError(err).Warn("post-process chain skipped")
		return f.Scene
	}
	ping, errA := p.target(TargetPostA)
	pong, errB := p.target(TargetPostB)
	if errA != nil || errB != nil {
		p.log.WithError(errors.Join(errA, errB)).Warn("post-process chain skipped")
		return f.Scene
	}

	src := f.Scene
	for i, stage := range chain {
		dst := output
		if i < len(chain)-1 {
			dst = ping
			if src == ping {
				dst = pong
			}
		}
		if err := stage.Render(f.List, src, dst); err != nil {
			p.log.WithField("stage", stage.Name()).WithError(err).Warn("post-process stage skipped")
			continue
		}
		f.Stages = append(f.Stages, stage.Name())
		src = dst
	}
	return src
}

func (p *renderPipeline) present(list device.CommandList, final device.Framebuffer) error {
	state, err := p.PipelineState(PresentPipelineKey)
	if err != nil {
		return err
	}
	return list.Fullscreen(device.FullscreenCommand{
		Label:    "Present",
		Pipeline: state,
		Source:   final,
		Sampler:  p.sampler,
	})
}

func (p *renderPipeline) Resize(width, height int) error {
	if p.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render_pipeline: invalid resolution %dx%d", width, height)
	}

	active := p.active()
	for _, c := range active {
		c.OnResolutionChangeBefore(p)
	}

	// Every bracketed controller either gets its After call or is deactivated.
	oldWidth, oldHeight := p.setting.Width, p.setting.Height
	abort := func(err error) error {
		p.setting.Width, p.setting.Height = oldWidth, oldHeight
		for _, c := range active {
			p.deactivate(c)
			p.configurationFailure(c, err)
		}
		return err
	}

	p.pool.Evict(screenTargets...)
	if err := p.dev.Resize(width, height); err != nil {
		return abort(fmt.Errorf("render_pipeline: resize device: %w", err))
	}
	p.setting.Width, p.setting.Height = width, height
	if err := p.acquireScreenTargets(); err != nil {
		return abort(err)
	}

	for _, c := range active {
		if err := c.OnResolutionChangeAfter(p); err != nil {
			p.deactivate(c)
			p.configurationFailure(c, err)
		}
	}
	p.log.WithFields(logrus.Fields{"width": width, "height": height}).Info("render pipeline resized")
	return nil
}

func (p *renderPipeline) Close() {
	if p.closed {
		return
	}
	for _, c := range slices.Backward(p.controllers) {
		p.deactivate(c)
	}
	p.closed = true

	p.pool.Purge()
	p.descMu.Lock()
	for key, s := range p.states {
		s.Release()
		delete(p.states, key)
	}
	p.descMu.Unlock()
	if p.sampler != nil {
		p.sampler.Release()
	}
	p.draws.Reset()
}

func (p *renderPipeline) Closed() bool {
	return p.closed
}
