package engine

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-core/engine/asset"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/feature"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/profiler"
	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/render_pipeline/postprocess"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
	"github.com/Carmen-Shannon/oxy-core/engine/task"
	"github.com/Carmen-Shannon/oxy-core/engine/window"
	"github.com/sirupsen/logrus"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// buildOptions holds what NewEngine consumes but the running engine does not keep.
type buildOptions struct {
	configured  bool
	materials   material.Library
	pipelines   []pipeline.Pipeline
	controllers []rp.Controller
	features    []feature.Feature
	types       []*rtti.Rtti
	tickRate    float64
}

// NewEngine builds every subsystem and activates the configured features. Without
// WithConfig the defaults of the OXY_* environment loader are used. The graphics
// device follows the render setting: wgpu requires WithWindow or WithDevice. Without
// WithControllers the shadow stage and the default post-process chain are installed.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: an error if a subsystem cannot be built or a feature fails to activate
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		scenes:          make(map[int]scene.Scene),
		collector:       handle.NewCollector(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		build:           &buildOptions{},
	}
	for _, opt := range options {
		opt(e)
	}
	b := e.build
	e.build = nil

	if !b.configured {
		cfg, err := config.LoadFrom(map[string]string{})
		if err != nil {
			return nil, err
		}
		e.cfg = cfg
	}
	if e.log == nil {
		e.log = logger.New(e.cfg.Log)
	}
	e.log = e.log.WithField("component", "engine")
	e.tickRate = tickInterval(e.cfg.Engine.TickRate)
	if b.tickRate > 0 {
		e.tickRate = tickInterval(b.tickRate)
	}

	if e.events == nil {
		if e.window != nil {
			e.events = e.window.Events()
		} else {
			e.events = event.NewQueue()
		}
	}

	var err error
	if e.factory, err = newFactory(b.types); err != nil {
		return nil, err
	}

	// From here on every failure tears down what was built.
	fail := func(err error) (Engine, error) {
		e.Close()
		return nil, err
	}
	e.tasks = task.NewThread(
		task.WithName("engine-tasks"),
		task.WithWorkers(e.cfg.Engine.TaskWorkers),
		task.WithIdleTimeout(e.cfg.Engine.TaskIdleTimeout),
		task.WithLogger(e.log),
	)
	if err := e.tasks.Start(); err != nil {
		return nil, fmt.Errorf("engine: start task thread: %w", err)
	}
	if e.assets, err = asset.NewManager(e.tasks, e.events, asset.WithLogger(e.log)); err != nil {
		e.tasks.Stop()
		return nil, err
	}

	if e.dev == nil {
		if e.dev, err = e.newDevice(); err != nil {
			e.tasks.Stop()
			e.assets.Close()
			return nil, err
		}
	}
	if err := e.dev.Resize(e.cfg.Render.Width, e.cfg.Render.Height); err != nil {
		e.tasks.Stop()
		e.assets.Close()
		e.dev.Release()
		return nil, fmt.Errorf("engine: configure surface: %w", err)
	}
	if err := compileBuiltins(e.dev); err != nil {
		e.tasks.Stop()
		e.assets.Close()
		e.dev.Release()
		return nil, err
	}

	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log))
	pipelineOpts := []rp.RenderPipelineBuilderOption{
		rp.WithLogger(e.log),
		rp.WithObserver(e.profiler),
		rp.WithPipelines(b.pipelines...),
	}
	if b.materials != nil {
		pipelineOpts = append(pipelineOpts, rp.WithMaterials(b.materials))
	}
	if e.pipeline, err = rp.NewRenderPipeline(e.cfg.Render, e.dev, pipelineOpts...); err != nil {
		e.tasks.Stop()
		e.assets.Close()
		e.dev.Release()
		return nil, err
	}

	controllers := b.controllers
	if controllers == nil {
		controllers = defaultControllers()
	}
	for _, c := range controllers {
		if err := e.pipeline.AddController(c); err != nil {
			return fail(err)
		}
	}

	e.featureCtx = &feature.Context{
		Log:    e.log,
		Events: e.events,
		Root: func() game_object.GameObject {
			if s := e.ActiveScene(); s != nil {
				return s.Root()
			}
			return nil
		},
		Camera: func() *game_object.CameraComponent {
			if s := e.ActiveScene(); s != nil {
				return s.Camera()
			}
			return nil
		},
	}
	for _, f := range b.features {
		if err := e.AddFeature(f); err != nil {
			return fail(err)
		}
	}

	e.log.WithFields(logrus.Fields{
		"device":   e.dev.Type(),
		"width":    e.cfg.Render.Width,
		"height":   e.cfg.Render.Height,
		"features": len(e.features),
	}).Info("engine ready")
	return e, nil
}

func newFactory(extra []*rtti.Rtti) (rtti.Factory, error) {
	f, err := rtti.NewFactory(extra...)
	if err != nil {
		return nil, fmt.Errorf("engine: register types: %w", err)
	}
	if err := game_object.RegisterTypes(f); err != nil {
		return nil, fmt.Errorf("engine: register types: %w", err)
	}
	f.Open()
	return f, nil
}

func (e *engine) newDevice() (device.GraphicsDevice, error) {
	switch e.cfg.Render.GraphicsDeviceType {
	case config.DeviceHeadless:
		return device.NewHeadlessDevice(device.WithHeadlessLogger(e.log)), nil
	case config.DeviceWGPU:
		if e.window == nil {
			return nil, fmt.Errorf("engine: the wgpu device needs a window")
		}
		return device.NewWGPUDevice(e.window.SurfaceDescriptor(), device.WithWGPULogger(e.log))
	default:
		return nil, fmt.Errorf("engine: unknown graphics device type %q", e.cfg.Render.GraphicsDeviceType)
	}
}

// compileBuiltins registers the builtin shaders with a GPU device. Other devices
// resolve shader keys themselves.
func compileBuiltins(dev device.GraphicsDevice) error {
	gpu, ok := dev.(device.WGPUDevice)
	if !ok {
		return nil
	}
	builtins, err := shader.Builtins()
	if err != nil {
		return err
	}
	for _, s := range builtins {
		if err := gpu.CompileShader(s.Key(), s.Source(), s.EntryPoint(), s.VertexBuffers()...); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}
	return nil
}

// defaultControllers returns the shadow stage followed by the post-process chain.
func defaultControllers() []rp.Controller {
	out := []rp.Controller{postprocess.NewShadowStage()}
	for _, s := range postprocess.Defaults() {
		out = append(out, s)
	}
	return out
}

// WithConfig sets the engine configuration.
//
// Parameters:
//   - cfg: the configuration, typically from config.Load
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
		e.build.configured = true
	}
}

// WithLogger sets the engine logger. Defaults to a logger built from the Log config block.
func WithLogger(log logrus.FieldLogger) EngineBuilderOption {
	return func(e *engine) {
		e.log = log
	}
}

// WithWindow sets the platform window. The engine posts nothing itself; it drains the
// window's queue and polls the window once per tick in Run.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithDevice supplies the graphics device instead of creating one from the render setting.
// The engine takes ownership and releases it on Close.
func WithDevice(dev device.GraphicsDevice) EngineBuilderOption {
	return func(e *engine) {
		e.dev = dev
	}
}

// WithEvents sets the main-loop event queue. Defaults to the window's queue, or a new one.
func WithEvents(q event.Queue) EngineBuilderOption {
	return func(e *engine) {
		e.events = q
	}
}

// WithMaterials sets the material library used by the render pipeline.
func WithMaterials(lib material.Library) EngineBuilderOption {
	return func(e *engine) {
		e.build.materials = lib
	}
}

// WithPipelines registers pipeline descriptions with the render pipeline.
func WithPipelines(descs ...pipeline.Pipeline) EngineBuilderOption {
	return func(e *engine) {
		e.build.pipelines = append(e.build.pipelines, descs...)
	}
}

// WithControllers replaces the default render pipeline controllers. Controllers are
// added in order; each activates if its feature is enabled in the render setting.
//
// Parameters:
//   - controllers: the controllers to install
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithControllers(controllers ...rp.Controller) EngineBuilderOption {
	return func(e *engine) {
		e.build.controllers = append(make([]rp.Controller, 0, len(controllers)), controllers...)
	}
}

// WithFeatures adds features, activated in order once the engine is built.
func WithFeatures(features ...feature.Feature) EngineBuilderOption {
	return func(e *engine) {
		e.build.features = append(e.build.features, features...)
	}
}

// WithTypes registers host runtime types with the engine factory.
func WithTypes(types ...*rtti.Rtti) EngineBuilderOption {
	return func(e *engine) {
		e.build.types = append(e.build.types, types...)
	}
}

// WithScene registers a scene at the given key during engine construction.
// Scenes are updated and rendered in ascending key order.
//
// Parameters:
//   - key: the ordering key (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithTickRate overrides the configured Run loop rate in frames per second.
// Values <= 0 keep the configured rate.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.build.tickRate = fps
	}
}
