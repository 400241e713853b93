// Package device holds the graphics device contracts consumed by the render pipeline,
// a headless implementation that records commands, and a WebGPU implementation.
package device

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrResourceExhausted is returned when the device cannot allocate a resource.
	ErrResourceExhausted = errors.New("device: resource exhausted")
	// ErrReleased is returned when a released resource is used.
	ErrReleased = errors.New("device: resource released")
	// ErrFrameInProgress is returned by BeginFrame while the previous frame is not presented.
	ErrFrameInProgress = errors.New("device: frame already in progress")
	// ErrListClosed is returned when a command is recorded after End.
	ErrListClosed = errors.New("device: command list closed")
	// ErrInvalidDescriptor is returned for descriptors the device cannot satisfy.
	ErrInvalidDescriptor = errors.New("device: invalid descriptor")
)

// Resource is a reference-counted GPU object. Release drops the creator's reference;
// the GPU object is freed when the last reference goes.
type Resource interface {
	Label() string
	Handle() *handle.Handle
	Release()
	Released() bool
}

// Buffer is a GPU data buffer.
type Buffer interface {
	Resource
	Size() uint64
	Usage() wgpu.BufferUsage
}

// Sampler is a texture sampler.
type Sampler interface {
	Resource
}

// Framebuffer is a sized render target with a color attachment and an optional depth
// attachment. Framebuffers are owned by the render pipeline's pool.
type Framebuffer interface {
	Resource
	Width() int
	Height() int
	Format() wgpu.TextureFormat
	HasDepth() bool
}

// PipelineState is a device-side pipeline state object.
type PipelineState interface {
	Resource
	Key() string
	Desc() pipeline.Pipeline
}

// BufferDescriptor describes a buffer. Data, when set, is uploaded after creation and
// Size defaults to its length.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
	Data  []byte
}

// SamplerDescriptor describes a sampler. Zero fields take linear/repeat defaults.
type SamplerDescriptor struct {
	Label string
	common.SamplerStagingData
}

// FramebufferDescriptor describes a render target.
type FramebufferDescriptor struct {
	Label       string
	Width       int
	Height      int
	Format      wgpu.TextureFormat
	DepthFormat wgpu.TextureFormat
}

// Mesh is geometry uploaded to the device.
type Mesh struct {
	Vertices   Buffer
	Indices    Buffer
	IndexCount uint32
}

// DrawCommand is one geometry draw into a framebuffer.
type DrawCommand struct {
	Label         string
	Pipeline      PipelineState
	Target        Framebuffer
	Mesh          Mesh
	InstanceCount uint32
	ViewProj      [16]float32
	World         [16]float32
	Params        material.GPUMaterialParams
	Queue         material.RenderQueue
	Pass          string
}

// FullscreenCommand reads Source and writes Dest with a fullscreen triangle. A nil
// Dest targets the presentation surface.
type FullscreenCommand struct {
	Label    string
	Pipeline PipelineState
	Source   Framebuffer
	Dest     Framebuffer
	Sampler  Sampler
	Params   map[string]float32
}

// CommandList records the commands of one frame.
type CommandList interface {
	// Draw records a geometry draw.
	//
	// Parameters:
	//   - cmd: the draw
	//
	// Returns:
	//   - error: ErrReleased if a referenced resource is gone, ErrListClosed after End
	Draw(cmd DrawCommand) error

	// Fullscreen records a fullscreen pass from cmd.Source into cmd.Dest.
	//
	// Parameters:
	//   - cmd: the pass
	//
	// Returns:
	//   - error: ErrReleased if a referenced resource is gone, ErrListClosed after End
	Fullscreen(cmd FullscreenCommand) error

	// End closes the list and submits it.
	End() error
}

// GraphicsDevice creates GPU resources and records frames. The render pipeline only
// talks to this interface.
type GraphicsDevice interface {
	// Type reports which implementation this is.
	Type() config.GraphicsDeviceType

	// CreateBuffer allocates a data buffer.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the buffer
	//   - error: ErrResourceExhausted or ErrInvalidDescriptor
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// CreateSampler allocates a sampler.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - Sampler: the sampler
	//   - error: ErrResourceExhausted
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// CreateFramebuffer allocates a render target.
	//
	// Parameters:
	//   - desc: the framebuffer descriptor
	//
	// Returns:
	//   - Framebuffer: the framebuffer
	//   - error: ErrResourceExhausted or ErrInvalidDescriptor
	CreateFramebuffer(desc FramebufferDescriptor) (Framebuffer, error)

	// CreatePipelineState builds a pipeline state object from its description.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - PipelineState: the pipeline state
	//   - error: an error if the description is invalid or a shader is unknown
	CreatePipelineState(p pipeline.Pipeline) (PipelineState, error)

	// BeginFrame starts recording a frame.
	//
	// Returns:
	//   - CommandList: the frame's command list
	//   - error: ErrFrameInProgress if the previous frame was not presented
	BeginFrame() (CommandList, error)

	// Present shows the frame recorded since BeginFrame.
	Present() error

	// Resize reconfigures the presentation surface.
	Resize(width, height int) error

	// Release frees the device. Resources created by it must not be used afterwards.
	Release()
}
