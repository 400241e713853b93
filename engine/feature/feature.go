// Package feature defines the game features the engine drives once per frame, and the
// built-in input, physics, audio and script features.
package feature

import (
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/sirupsen/logrus"
)

// Context is what the engine hands a feature at activation.
type Context struct {
	Log    logrus.FieldLogger
	Events event.Queue

	// Root returns the root object of the scene that receives input and script
	// messages, or nil when no scene is active.
	Root func() game_object.GameObject

	// Camera returns the camera of that scene, or nil.
	Camera func() *game_object.CameraComponent
}

// ActiveRoot returns the current scene root, or nil.
func (c *Context) ActiveRoot() game_object.GameObject {
	if c == nil || c.Root == nil {
		return nil
	}
	return c.Root()
}

// ActiveCamera returns the current scene camera, or nil.
func (c *Context) ActiveCamera() *game_object.CameraComponent {
	if c == nil || c.Camera == nil {
		return nil
	}
	return c.Camera()
}

// Logger returns the context logger, or the standard logger.
func (c *Context) Logger() logrus.FieldLogger {
	if c == nil {
		return logrus.StandardLogger()
	}
	return logger.OrDefault(c.Log)
}

// Feature is a subsystem ticked by the engine. Frame hooks run in the order
// OnFrameBegin, OnFrame, OnFrameEnd for every feature, in registration order.
type Feature interface {
	// Name returns the feature name used in logs.
	Name() string

	// OnActivate binds the feature to the engine.
	//
	// Parameters:
	//   - ctx: the engine context
	//
	// Returns:
	//   - error: an error keeps the feature out of the frame loop
	OnActivate(ctx *Context) error

	// OnDeactivate releases what OnActivate acquired.
	OnDeactivate()

	// OnFrameBegin runs before scenes update.
	OnFrameBegin(dt float64)

	// OnFrame runs before scenes update, after every feature's OnFrameBegin.
	OnFrame(dt float64)

	// OnFrameEnd runs after the frame is rendered.
	OnFrameEnd(dt float64)
}

// EventHandler is implemented by features that consume the events the engine drains
// from its queue at the start of each frame.
type EventHandler interface {
	OnEvent(ev event.Event)
}

// BaseFeature is embedded by features. It stores the name and the activation context
// and supplies no-op hooks.
type BaseFeature struct {
	name string
	ctx  *Context
}

// NewBaseFeature returns the embeddable state for a feature.
func NewBaseFeature(name string) BaseFeature {
	return BaseFeature{name: name}
}

func (b *BaseFeature) Name() string {
	return b.name
}

// Context returns the activation context, or nil while inactive.
func (b *BaseFeature) Context() *Context {
	return b.ctx
}

func (b *BaseFeature) OnActivate(ctx *Context) error {
	b.ctx = ctx
	return nil
}

func (b *BaseFeature) OnDeactivate() {
	b.ctx = nil
}

func (b *BaseFeature) OnFrameBegin(float64) {}

func (b *BaseFeature) OnFrame(float64) {}

func (b *BaseFeature) OnFrameEnd(float64) {}
