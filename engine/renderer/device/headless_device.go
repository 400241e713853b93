package device

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// CommandKind tells recorded draws and fullscreen passes apart.
type CommandKind int

const (
	CommandDraw CommandKind = iota
	CommandFullscreen
)

// RecordedCommand is one command captured by the headless device.
type RecordedCommand struct {
	Frame    int
	Kind     CommandKind
	Label    string
	Pipeline string
	Queue    material.RenderQueue
	Pass     string
	// Target is the draw target or the fullscreen destination; nil means the surface.
	Target Framebuffer
	// Source is the framebuffer read by a fullscreen pass.
	Source Framebuffer
}

// HeadlessDevice is a GraphicsDevice without a GPU. It records every command so
// callers can inspect draw order and framebuffer flow.
type HeadlessDevice interface {
	GraphicsDevice

	// Commands returns a copy of every command recorded so far.
	//
	// Returns:
	//   - []RecordedCommand: the commands in submission order
	Commands() []RecordedCommand

	// ResetCommands drops the recorded commands.
	ResetCommands()

	// Frames returns how many frames have been presented.
	Frames() int

	// Live returns how many resources are currently allocated.
	Live() int

	// SetBudget caps the number of live resources; 0 removes the cap.
	SetBudget(n int)

	// Surface returns the current surface size.
	Surface() (width, height int)
}

type headlessDevice struct {
	mu       sync.Mutex
	log      logrus.FieldLogger
	budget   int
	live     int
	frames   int
	inFrame  bool
	released bool
	width    int
	height   int
	commands []RecordedCommand
}

var _ HeadlessDevice = &headlessDevice{}

// NewHeadlessDevice creates a recording device.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - HeadlessDevice: the device
func NewHeadlessDevice(options ...HeadlessBuilderOption) HeadlessDevice {
	d := &headlessDevice{
		log:    logrus.StandardLogger(),
		width:  1,
		height: 1,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func (d *headlessDevice) Type() config.GraphicsDeviceType {
	return config.DeviceHeadless
}

// allocate reserves one resource slot and returns its release callback.
func (d *headlessDevice) allocate(kind, label string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, fmt.Errorf("device: %s %q: %w", kind, label, ErrReleased)
	}
	if d.budget > 0 && d.live >= d.budget {
		return nil, fmt.Errorf("device: %s %q: %w (%d live)", kind, label, ErrResourceExhausted, d.live)
	}
	d.live++
	return func() {
		d.mu.Lock()
		d.live--
		d.mu.Unlock()
	}, nil
}

func (d *headlessDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	size := max(desc.Size, uint64(len(desc.Data)))
	if size == 0 {
		return nil, fmt.Errorf("device: buffer %q: %w: zero size", desc.Label, ErrInvalidDescriptor)
	}
	free, err := d.allocate("buffer", desc.Label)
	if err != nil {
		return nil, err
	}
	return &buffer{resource: newResource(desc.Label, free), size: size, usage: desc.Usage}, nil
}

func (d *headlessDevice) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	free, err := d.allocate("sampler", desc.Label)
	if err != nil {
		return nil, err
	}
	return &sampler{resource: newResource(desc.Label, free)}, nil
}

func (d *headlessDevice) CreateFramebuffer(desc FramebufferDescriptor) (Framebuffer, error) {
	if !validFramebuffer(desc) {
		return nil, fmt.Errorf("device: framebuffer %q: %w: %dx%d", desc.Label, ErrInvalidDescriptor, desc.Width, desc.Height)
	}
	free, err := d.allocate("framebuffer", desc.Label)
	if err != nil {
		return nil, err
	}
	return &framebuffer{
		resource:    newResource(desc.Label, free),
		width:       desc.Width,
		height:      desc.Height,
		format:      formatOrDefault(desc.Format),
		depthFormat: desc.DepthFormat,
	}, nil
}

func (d *headlessDevice) CreatePipelineState(p pipeline.Pipeline) (PipelineState, error) {
	if p == nil {
		return nil, fmt.Errorf("device: %w: nil pipeline", ErrInvalidDescriptor)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	free, err := d.allocate("pipeline", p.PipelineKey())
	if err != nil {
		return nil, err
	}
	return &pipelineState{resource: newResource(p.PipelineKey(), free), desc: p}, nil
}

func (d *headlessDevice) BeginFrame() (CommandList, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	if d.inFrame {
		return nil, ErrFrameInProgress
	}
	d.inFrame = true
	return &headlessCommandList{d: d, frame: d.frames}, nil
}

func (d *headlessDevice) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inFrame {
		return fmt.Errorf("device: present without a frame")
	}
	d.inFrame = false
	d.frames++
	return nil
}

func (d *headlessDevice) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("device: %w: surface %dx%d", ErrInvalidDescriptor, width, height)
	}
	d.mu.Lock()
	d.width, d.height = width, height
	d.mu.Unlock()
	return nil
}

func (d *headlessDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	if d.live > 0 {
		d.log.WithField("live", d.live).Warn("headless device released with live resources")
	}
}

func (d *headlessDevice) Commands() []RecordedCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RecordedCommand, len(d.commands))
	copy(out, d.commands)
	return out
}

func (d *headlessDevice) ResetCommands() {
	d.mu.Lock()
	d.commands = nil
	d.mu.Unlock()
}

func (d *headlessDevice) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *headlessDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *headlessDevice) SetBudget(n int) {
	d.mu.Lock()
	d.budget = n
	d.mu.Unlock()
}

func (d *headlessDevice) Surface() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

type headlessCommandList struct {
	d      *headlessDevice
	frame  int
	closed bool
}

func usable(r Resource) bool {
	return r != nil && !r.Released()
}

func (l *headlessCommandList) Draw(cmd DrawCommand) error {
	if l.closed {
		return ErrListClosed
	}
	if !usable(cmd.Pipeline) || !usable(cmd.Target) {
		return fmt.Errorf("device: draw %q: %w", cmd.Label, ErrReleased)
	}
	l.record(RecordedCommand{
		Kind:     CommandDraw,
		Label:    cmd.Label,
		Pipeline: cmd.Pipeline.Key(),
		Queue:    cmd.Queue,
		Pass:     cmd.Pass,
		Target:   cmd.Target,
	})
	return nil
}

func (l *headlessCommandList) Fullscreen(cmd FullscreenCommand) error {
	if l.closed {
		return ErrListClosed
	}
	if !usable(cmd.Pipeline) || !usable(cmd.Source) || (cmd.Dest != nil && cmd.Dest.Released()) {
		return fmt.Errorf("device: fullscreen %q: %w", cmd.Label, ErrReleased)
	}
	if cmd.Source == cmd.Dest {
		return fmt.Errorf("device: fullscreen %q: %w: source and destination are the same framebuffer", cmd.Label, ErrInvalidDescriptor)
	}
	l.record(RecordedCommand{
		Kind:     CommandFullscreen,
		Label:    cmd.Label,
		Pipeline: cmd.Pipeline.Key(),
		Queue:    material.QueuePostProcess,
		Target:   cmd.Dest,
		Source:   cmd.Source,
	})
	return nil
}

func (l *headlessCommandList) record(c RecordedCommand) {
	c.Frame = l.frame
	l.d.mu.Lock()
	l.d.commands = append(l.d.commands, c)
	l.d.mu.Unlock()
}

func (l *headlessCommandList) End() error {
	if l.closed {
		return ErrListClosed
	}
	l.closed = true
	return nil
}

// formatOrDefault fills in the engine's default color format.
func formatOrDefault(f wgpu.TextureFormat) wgpu.TextureFormat {
	if f == wgpu.TextureFormatUndefined {
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	return f
}
