package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-core/engine/asset"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/feature"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/Carmen-Shannon/oxy-core/engine/profiler"
	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
	"github.com/Carmen-Shannon/oxy-core/engine/task"
	"github.com/Carmen-Shannon/oxy-core/engine/window"
	"github.com/sirupsen/logrus"
)

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine: closed")
	// ErrDuplicateFeature is returned by AddFeature for a name already registered.
	ErrDuplicateFeature = errors.New("engine: duplicate feature")
)

// Engine is the explicit context object that owns every engine subsystem: features,
// scenes, the event queue, the render pipeline, the task thread, the asset manager,
// the profiler and the handle collector. Nothing in the engine is process-global.
//
// The frame loop is single-threaded: Tick, Run and every feature and scene hook run on
// the goroutine that calls them. Background work reaches the loop only through Events.
type Engine interface {
	// Config returns the configuration the engine was built with.
	Config() config.Config

	// Logger returns the engine logger.
	Logger() logrus.FieldLogger

	// Events returns the main-loop event queue. Safe to post to from any goroutine.
	Events() event.Queue

	// Pipeline returns the render pipeline.
	Pipeline() rp.RenderPipeline

	// Tasks returns the background task thread.
	Tasks() task.Thread

	// Assets returns the asset manager. Completed loads are applied during Tick.
	Assets() asset.Manager

	// Factory returns the opened type factory used to load scenes.
	Factory() rtti.Factory

	// Profiler returns the profiler receiving frame statistics.
	Profiler() *profiler.Profiler

	// Collector returns the deferred destroy collector, run once per Tick.
	Collector() *handle.Collector

	// Window returns the platform window, or nil when running headless.
	Window() window.Window

	// AddFeature activates f and appends it to the frame loop.
	//
	// Parameters:
	//   - f: the feature to add
	//
	// Returns:
	//   - error: ErrDuplicateFeature, ErrClosed, or the activation error
	AddFeature(f feature.Feature) error

	// RemoveFeature deactivates and removes the named feature.
	//
	// Parameters:
	//   - name: the feature name
	//
	// Returns:
	//   - bool: true if a feature was removed
	RemoveFeature(name string) bool

	// Feature returns the named feature, or nil.
	Feature(name string) feature.Feature

	// Features returns the features in registration order.
	Features() []feature.Feature

	// AddScene registers a scene at the given key. Scenes are updated and rendered
	// in ascending key order. A scene already at key is replaced, not closed.
	//
	// Parameters:
	//   - key: the ordering key (lower renders first)
	//   - s: the scene
	AddScene(key int, s scene.Scene)

	// RemoveScene unregisters the scene at key and returns it. The caller owns it afterwards.
	//
	// Parameters:
	//   - key: the ordering key
	//
	// Returns:
	//   - scene.Scene: the removed scene, or nil
	RemoveScene(key int) scene.Scene

	// Scene returns the scene at key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by order.
	Scenes() map[int]scene.Scene

	// ActiveScene returns the active scene with the lowest key, or nil. Input and
	// script features address this scene.
	ActiveScene() scene.Scene

	// DestroyLater marks obj destroyed and drops its creator reference at the end of
	// the current frame. Owners that retained the handle keep it alive until they release.
	//
	// Parameters:
	//   - obj: the object to destroy
	DestroyLater(obj game_object.GameObject)

	// SetTickRate sets the Run loop rate in frames per second. Takes effect immediately
	// when the loop is running.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// Tick runs one frame: drain events, features OnFrameBegin and OnFrame, update
	// active scenes, render active scenes, features OnFrameEnd, collect deferred
	// destroys and tick the profiler.
	//
	// Parameters:
	//   - dt: elapsed time since the last frame in seconds
	Tick(dt float64)

	// Frames returns how many times Tick has run.
	Frames() uint64

	// Run ticks at the configured rate until ctx is cancelled, Quit is called, a close
	// event arrives or the window stops running. With a window attached Run must be
	// called from the goroutine that created it.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ctx.Err() when cancelled, nil after Quit
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close quits, stops the task thread, closes the event queue, the asset manager
	// and the render pipeline, deactivates features in reverse order, closes scenes
	// and releases the device. Safe to call more than once.
	Close()
}

type engine struct {
	cfg config.Config
	log logrus.FieldLogger

	events    event.Queue
	dev       device.GraphicsDevice
	pipeline  rp.RenderPipeline
	tasks     task.Thread
	assets    asset.Manager
	factory   rtti.Factory
	profiler  *profiler.Profiler
	collector *handle.Collector
	window    window.Window

	features   []feature.Feature
	featureCtx *feature.Context
	scenes     map[int]scene.Scene

	tickRate        time.Duration
	tickRateChannel chan time.Duration
	running         bool
	frames          uint64

	quitChannel chan struct{}
	quitOnce    sync.Once
	closed      bool

	// build is only set while NewEngine runs.
	build *buildOptions
}

var _ Engine = &engine{}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Logger() logrus.FieldLogger {
	return e.log
}

func (e *engine) Events() event.Queue {
	return e.events
}

func (e *engine) Pipeline() rp.RenderPipeline {
	return e.pipeline
}

func (e *engine) Tasks() task.Thread {
	return e.tasks
}

func (e *engine) Assets() asset.Manager {
	return e.assets
}

func (e *engine) Factory() rtti.Factory {
	return e.factory
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Collector() *handle.Collector {
	return e.collector
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) AddFeature(f feature.Feature) error {
	if e.closed {
		return ErrClosed
	}
	if e.Feature(f.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, f.Name())
	}
	if err := f.OnActivate(e.featureCtx); err != nil {
		f.OnDeactivate()
		return fmt.Errorf("engine: activate feature %s: %w", f.Name(), err)
	}
	e.features = append(e.features, f)
	e.log.WithField("feature", f.Name()).Debug("feature activated")
	return nil
}

func (e *engine) RemoveFeature(name string) bool {
	i := slices.IndexFunc(e.features, func(f feature.Feature) bool { return f.Name() == name })
	if i < 0 {
		return false
	}
	f := e.features[i]
	e.features = slices.Delete(e.features, i, i+1)
	f.OnDeactivate()
	return true
}

func (e *engine) Feature(name string) feature.Feature {
	for _, f := range e.features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (e *engine) Features() []feature.Feature {
	return slices.Clone(e.features)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) scene.Scene {
	s, ok := e.scenes[key]
	if !ok {
		return nil
	}
	delete(e.scenes, key)
	return s
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	return maps.Clone(e.scenes)
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	var out []scene.Scene
	for _, k := range slices.Sorted(maps.Keys(e.scenes)) {
		if s := e.scenes[k]; s.Active() {
			out = append(out, s)
		}
	}
	return out
}

func (e *engine) ActiveScene() scene.Scene {
	if active := e.activeScenes(); len(active) > 0 {
		return active[0]
	}
	return nil
}

func (e *engine) DestroyLater(obj game_object.GameObject) {
	if obj == nil {
		return
	}
	e.collector.DeferFunc(obj.Handle(), obj.Destroy)
}

func (e *engine) SetTickRate(fps float64) {
	rate := tickInterval(fps)
	if !e.running {
		e.tickRate = rate
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- rate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- rate
	}
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Tick(dt float64) {
	if e.closed {
		return
	}
	e.drainEvents()

	for _, f := range e.features {
		f.OnFrameBegin(dt)
	}
	for _, f := range e.features {
		f.OnFrame(dt)
	}

	active := e.activeScenes()
	for _, s := range active {
		s.Update(dt)
	}
	for _, s := range active {
		if err := e.pipeline.Frame(s.Root(), s.Camera()); err != nil {
			e.log.WithError(err).WithField("scene", s.Name()).Warn("frame failed")
		}
	}

	for _, f := range e.features {
		f.OnFrameEnd(dt)
	}

	if n := e.collector.Collect(); n > 0 {
		e.log.WithField("count", n).Debug("collected destroyed handles")
	}
	if e.cfg.Engine.Profiling {
		e.profiler.Tick()
	}
	e.frames++
}

func (e *engine) Frames() uint64 {
	return e.frames
}

// drainEvents handles every queued event, then hands it to the features that consume events.
func (e *engine) drainEvents() {
	for _, ev := range e.events.Poll() {
		switch ev.Kind {
		case event.KindResize:
			if err := e.pipeline.Resize(ev.Width, ev.Height); err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{"width": ev.Width, "height": ev.Height}).Error("resize failed")
			}
		case event.KindClose:
			e.Quit()
		case event.KindAssetLoaded:
			if e.assets.Apply(ev) {
				e.broadcast(message.Message{ID: message.IDAsset, Sender: e, Payload: ev, Filter: message.Filter{Recursive: true}})
			}
		}
		for _, f := range e.features {
			if h, ok := f.(feature.EventHandler); ok {
				h.OnEvent(ev)
			}
		}
	}
}

// broadcast sends msg to the root of every active scene.
func (e *engine) broadcast(msg message.Message) {
	for _, s := range e.activeScenes() {
		s.Root().SendMessage(msg)
	}
}

func (e *engine) Run(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	e.running = true
	defer func() { e.running = false }()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case rate := <-e.tickRateChannel:
			ticker.Reset(rate)
			e.tickRate = rate
		case <-ticker.C:
			if e.window != nil && !e.window.PollEvents() {
				e.Quit()
			}
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			e.Tick(dt)
		}
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() {
	if e.closed {
		return
	}
	e.Quit()
	e.closed = true

	e.tasks.Stop()
	e.events.Close()
	e.assets.Close()
	e.pipeline.Close()
	for _, f := range slices.Backward(e.features) {
		f.OnDeactivate()
	}
	e.features = nil
	for _, k := range slices.Sorted(maps.Keys(e.scenes)) {
		e.scenes[k].Close()
	}
	e.collector.Collect()
	e.dev.Release()
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.log.WithError(err).Warn("close window")
		}
	}
	e.log.Info("engine closed")
}
