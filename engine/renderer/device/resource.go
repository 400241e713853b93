package device

import (
	"github.com/Carmen-Shannon/oxy-core/engine/handle"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// resource carries the label and handle shared by every device object.
type resource struct {
	label string
	h     *handle.Handle
}

func newResource(label string, free func()) resource {
	return resource{label: label, h: handle.New(free)}
}

func (r *resource) Label() string {
	return r.label
}

func (r *resource) Handle() *handle.Handle {
	return r.h
}

func (r *resource) Release() {
	r.h.Release()
}

func (r *resource) Released() bool {
	return r.h.Released()
}

type buffer struct {
	resource
	size  uint64
	usage wgpu.BufferUsage
	gpu   *wgpu.Buffer
}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Usage() wgpu.BufferUsage {
	return b.usage
}

type sampler struct {
	resource
	gpu *wgpu.Sampler
}

type framebuffer struct {
	resource
	width, height int
	format        wgpu.TextureFormat
	depthFormat   wgpu.TextureFormat

	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
}

func (f *framebuffer) Width() int {
	return f.width
}

func (f *framebuffer) Height() int {
	return f.height
}

func (f *framebuffer) Format() wgpu.TextureFormat {
	return f.format
}

func (f *framebuffer) HasDepth() bool {
	return f.depthFormat != wgpu.TextureFormatUndefined
}

type pipelineState struct {
	resource
	desc   pipeline.Pipeline
	render *wgpu.RenderPipeline
}

func (p *pipelineState) Key() string {
	return p.desc.PipelineKey()
}

func (p *pipelineState) Desc() pipeline.Pipeline {
	return p.desc
}

var (
	_ Buffer        = &buffer{}
	_ Sampler       = &sampler{}
	_ Framebuffer   = &framebuffer{}
	_ PipelineState = &pipelineState{}
)

func validFramebuffer(desc FramebufferDescriptor) bool {
	return desc.Width > 0 && desc.Height > 0
}
