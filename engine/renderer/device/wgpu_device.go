package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// drawUniformStride is the per-draw slot size in the uniform arena. WebGPU requires
// uniform buffer offsets aligned to 256 bytes.
const drawUniformStride = 256

// drawUniformSize is the view-projection matrix (64 bytes), the world matrix (64 bytes)
// and the material params (32 bytes).
const drawUniformSize = 160

// ShaderModule is a host-compiled shader module registered under a key.
type ShaderModule struct {
	Module     *wgpu.ShaderModule
	EntryPoint string
	// Buffers is the vertex buffer layout list of a vertex stage. Slot i binds buffer i.
	Buffers []wgpu.VertexBufferLayout
}

// WGPUDevice is the WebGPU GraphicsDevice.
type WGPUDevice interface {
	GraphicsDevice

	// Device returns the underlying WebGPU device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// SurfaceFormat returns the presentation format chosen at the last Resize.
	SurfaceFormat() wgpu.TextureFormat

	// RegisterShader makes a compiled module available to CreatePipelineState under key.
	//
	// Parameters:
	//   - key: the shader key referenced by pipeline descriptions
	//   - module: the compiled module and entry point
	RegisterShader(key string, module ShaderModule)

	// CompileShader compiles WGSL source and registers the module under key.
	//
	// Parameters:
	//   - key: the shader key referenced by pipeline descriptions
	//   - source: the WGSL source
	//   - entryPoint: the stage entry point
	//   - buffers: the vertex buffer layouts of a vertex stage
	//
	// Returns:
	//   - error: the compilation error, if any
	CompileShader(key, source, entryPoint string, buffers ...wgpu.VertexBufferLayout) error
}

type wgpuDevice struct {
	mu  *sync.Mutex
	log logrus.FieldLogger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	shaders              map[string]ShaderModule

	maxDraws       int
	uniformArena   *wgpu.Buffer
	defaultSampler *wgpu.Sampler

	// frame state
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	passTarget   *framebuffer
	surfacePass  bool
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	cleared      map[*framebuffer]bool
	drawSlot     int
	garbage      []*wgpu.BindGroup
	released     bool
}

var _ WGPUDevice = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU device. A nil surface descriptor creates an
// offscreen device whose frames are never presented.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from the window
//   - options: functional options to configure the device
//
// Returns:
//   - WGPUDevice: the device
//   - error: an error if no adapter or device could be acquired
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBuilderOption) (WGPUDevice, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:            &sync.Mutex{},
		log:           logrus.StandardLogger(),
		presentMode:   wgpu.PresentModeFifo,
		surfaceFormat: wgpu.TextureFormatBGRA8Unorm,
		shaders:       make(map[string]ShaderModule),
		maxDraws:      4096,
		cleared:       make(map[*framebuffer]bool),
	}
	for _, option := range options {
		option(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	if surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("device: request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("device: request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.uniformArena, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Draw Uniform Arena",
		Size:  uint64(d.maxDraws * drawUniformStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("device: uniform arena: %w: %w", ErrResourceExhausted, err)
	}

	d.defaultSampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Fullscreen Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("device: default sampler: %w", err)
	}
	return d, nil
}

func (d *wgpuDevice) Type() config.GraphicsDeviceType {
	return config.DeviceWGPU
}

func (d *wgpuDevice) Device() *wgpu.Device {
	return d.device
}

func (d *wgpuDevice) Queue() *wgpu.Queue {
	return d.queue
}

func (d *wgpuDevice) SurfaceFormat() wgpu.TextureFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceFormat
}

func (d *wgpuDevice) RegisterShader(key string, module ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shaders[key] = module
}

func (d *wgpuDevice) CompileShader(key, source, entryPoint string, buffers ...wgpu.VertexBufferLayout) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("device: compile shader %q: %w", key, err)
	}
	if old, ok := d.shaders[key]; ok && old.Module != nil {
		old.Module.Release()
	}
	d.shaders[key] = ShaderModule{Module: module, EntryPoint: entryPoint, Buffers: buffers}
	return nil
}

func (d *wgpuDevice) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("device: %w: surface %dx%d", ErrInvalidDescriptor, width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.surface == nil {
		return nil
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("device: surface reports no formats")
	}
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	return nil
}

func (d *wgpuDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	size := max(desc.Size, uint64(len(desc.Data)))
	if size == 0 {
		return nil, fmt.Errorf("device: buffer %q: %w: zero size", desc.Label, ErrInvalidDescriptor)
	}
	usage := desc.Usage
	if len(desc.Data) > 0 {
		usage |= wgpu.BufferUsageCopyDst
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	gpu, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("device: buffer %q: %w: %w", desc.Label, ErrResourceExhausted, err)
	}
	if len(desc.Data) > 0 {
		d.queue.WriteBuffer(gpu, 0, desc.Data)
	}
	return &buffer{
		resource: newResource(desc.Label, gpu.Release),
		size:     size,
		usage:    usage,
		gpu:      gpu,
	}, nil
}

func (d *wgpuDevice) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := desc.SamplerStagingData
	gpu, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(s.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
		Compare:       s.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("device: sampler %q: %w: %w", desc.Label, ErrResourceExhausted, err)
	}
	return &sampler{resource: newResource(desc.Label, gpu.Release), gpu: gpu}, nil
}

func (d *wgpuDevice) createAttachment(label string, width, height int, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (d *wgpuDevice) CreateFramebuffer(desc FramebufferDescriptor) (Framebuffer, error) {
	if !validFramebuffer(desc) {
		return nil, fmt.Errorf("device: framebuffer %q: %w: %dx%d", desc.Label, ErrInvalidDescriptor, desc.Width, desc.Height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	fb := &framebuffer{
		width:       desc.Width,
		height:      desc.Height,
		format:      formatOrDefault(desc.Format),
		depthFormat: desc.DepthFormat,
	}
	var err error
	fb.color, fb.colorView, err = d.createAttachment(desc.Label+" Color", desc.Width, desc.Height, fb.format)
	if err != nil {
		return nil, fmt.Errorf("device: framebuffer %q: %w", desc.Label, err)
	}
	if fb.HasDepth() {
		fb.depth, fb.depthView, err = d.createAttachment(desc.Label+" Depth", desc.Width, desc.Height, desc.DepthFormat)
		if err != nil {
			fb.colorView.Release()
			fb.color.Release()
			return nil, fmt.Errorf("device: framebuffer %q: %w", desc.Label, err)
		}
	}
	fb.resource = newResource(desc.Label, func() {
		for _, v := range []*wgpu.TextureView{fb.colorView, fb.depthView} {
			if v != nil {
				v.Release()
			}
		}
		for _, t := range []*wgpu.Texture{fb.color, fb.depth} {
			if t != nil {
				t.Release()
			}
		}
	})
	return fb, nil
}

func (d *wgpuDevice) shader(key string) (ShaderModule, error) {
	m, ok := d.shaders[key]
	if !ok || m.Module == nil {
		return ShaderModule{}, fmt.Errorf("device: shader %q is not registered", key)
	}
	return m, nil
}

func (d *wgpuDevice) CreatePipelineState(p pipeline.Pipeline) (PipelineState, error) {
	if p == nil {
		return nil, fmt.Errorf("device: %w: nil pipeline", ErrInvalidDescriptor)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Type() != pipeline.PipelineTypeRender {
		return nil, fmt.Errorf("device: pipeline %q: only render pipelines are supported", p.PipelineKey())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	vs, err := d.shader(p.Shader(pipeline.ShaderStageVertex))
	if err != nil {
		return nil, err
	}

	var fragment *wgpu.FragmentState
	if key := p.Shader(pipeline.ShaderStageFragment); key != "" {
		fs, err := d.shader(key)
		if err != nil {
			return nil, err
		}
		target := wgpu.ColorTargetState{
			Format:    common.Coalesce(p.ColorFormat(), d.surfaceFormat),
			WriteMask: p.WriteMask(),
		}
		if p.BlendEnabled() {
			target.Blend = p.BlendState()
		}
		fragment = &wgpu.FragmentState{
			Module:     fs.Module,
			EntryPoint: fs.EntryPoint,
			Targets:    []wgpu.ColorTargetState{target},
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              p.DepthFormat(),
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: p.PipelineKey() + " Render Pipeline",
		Vertex: wgpu.VertexState{
			Module:     vs.Module,
			EntryPoint: vs.EntryPoint,
			Buffers:    vs.Buffers,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("device: pipeline %q: %w", p.PipelineKey(), err)
	}
	return &pipelineState{
		resource: newResource(p.PipelineKey(), created.Release),
		desc:     p,
		render:   created,
	}, nil
}

func (d *wgpuDevice) BeginFrame() (CommandList, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil, ErrReleased
	}
	if d.frameEncoder != nil || d.frameSurface != nil {
		return nil, ErrFrameInProgress
	}

	if d.surface != nil {
		surfaceTexture, err := d.surface.GetCurrentTexture()
		if err != nil {
			return nil, fmt.Errorf("device: acquire surface: %w", err)
		}
		view, err := surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			return nil, err
		}
		d.frameSurface = surfaceTexture
		d.frameView = view
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		d.releaseSurfaceFrame()
		return nil, err
	}
	d.frameEncoder = encoder
	d.drawSlot = 0
	clear(d.cleared)
	return &wgpuCommandList{d: d}, nil
}

func (d *wgpuDevice) releaseSurfaceFrame() {
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
}

// beginPass switches the open render pass to target. A nil target is the surface.
// Caller must hold the mutex.
func (d *wgpuDevice) beginPass(target *framebuffer) error {
	toSurface := target == nil
	if d.framePass != nil && d.surfacePass == toSurface && d.passTarget == target {
		return nil
	}
	d.endPass()

	desc := &wgpu.RenderPassDescriptor{}
	if toSurface {
		if d.frameView == nil {
			return fmt.Errorf("device: no surface to present to")
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       d.frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}}
	} else {
		load := wgpu.LoadOpLoad
		if !d.cleared[target] {
			load = wgpu.LoadOpClear
			d.cleared[target] = true
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       target.colorView,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		}}
		if target.depthView != nil {
			desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            target.depthView,
				DepthLoadOp:     load,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
		}
	}
	d.framePass = d.frameEncoder.BeginRenderPass(desc)
	d.passTarget = target
	d.surfacePass = toSurface
	return nil
}

func (d *wgpuDevice) endPass() {
	if d.framePass == nil {
		return
	}
	d.framePass.End()
	d.framePass.Release()
	d.framePass = nil
	d.passTarget = nil
	d.surfacePass = false
}

func (d *wgpuDevice) bindGroup(ps *pipelineState, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	layout := ps.render.GetBindGroupLayout(0)
	defer layout.Release()
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   ps.Key() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	d.garbage = append(d.garbage, bg)
	return bg, nil
}

func marshalDrawUniforms(cmd DrawCommand) []byte {
	buf := make([]byte, drawUniformSize)
	for i, v := range cmd.ViewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range cmd.World {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	copy(buf[128:], cmd.Params.Marshal())
	return buf
}

func (d *wgpuDevice) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frameEncoder != nil {
		return fmt.Errorf("device: present before the command list ended")
	}
	if d.frameSurface == nil {
		return nil
	}
	d.surface.Present()
	d.releaseSurfaceFrame()
	return nil
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	d.endPass()
	if d.frameEncoder != nil {
		d.frameEncoder.Release()
		d.frameEncoder = nil
	}
	d.releaseSurfaceFrame()
	for _, m := range d.shaders {
		if m.Module != nil {
			m.Module.Release()
		}
	}
	if d.defaultSampler != nil {
		d.defaultSampler.Release()
	}
	if d.uniformArena != nil {
		d.uniformArena.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}

type wgpuCommandList struct {
	d      *wgpuDevice
	closed bool
}

func (l *wgpuCommandList) Draw(cmd DrawCommand) error {
	if l.closed {
		return ErrListClosed
	}
	ps, ok := cmd.Pipeline.(*pipelineState)
	if !ok || ps.Released() {
		return fmt.Errorf("device: draw %q: %w: pipeline", cmd.Label, ErrReleased)
	}
	target, ok := cmd.Target.(*framebuffer)
	if !ok || target.Released() {
		return fmt.Errorf("device: draw %q: %w: target", cmd.Label, ErrReleased)
	}
	vb, _ := cmd.Mesh.Vertices.(*buffer)
	ib, _ := cmd.Mesh.Indices.(*buffer)
	if vb == nil || ib == nil || vb.Released() || ib.Released() {
		return fmt.Errorf("device: draw %q: %w: mesh", cmd.Label, ErrReleased)
	}

	d := l.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.drawSlot >= d.maxDraws {
		return fmt.Errorf("device: draw %q: %w: more than %d draws in one frame", cmd.Label, ErrResourceExhausted, d.maxDraws)
	}
	offset := uint64(d.drawSlot * drawUniformStride)
	d.drawSlot++
	d.queue.WriteBuffer(d.uniformArena, offset, marshalDrawUniforms(cmd))

	if err := d.beginPass(target); err != nil {
		return err
	}
	bg, err := d.bindGroup(ps, []wgpu.BindGroupEntry{{
		Binding: 0,
		Buffer:  d.uniformArena,
		Offset:  offset,
		Size:    drawUniformSize,
	}})
	if err != nil {
		return fmt.Errorf("device: draw %q: %w", cmd.Label, err)
	}

	instances := max(cmd.InstanceCount, 1)
	d.framePass.SetPipeline(ps.render)
	d.framePass.SetBindGroup(0, bg, nil)
	d.framePass.SetVertexBuffer(0, vb.gpu, 0, wgpu.WholeSize)
	d.framePass.SetIndexBuffer(ib.gpu, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	d.framePass.DrawIndexed(cmd.Mesh.IndexCount, instances, 0, 0, 0)
	return nil
}

func (l *wgpuCommandList) Fullscreen(cmd FullscreenCommand) error {
	if l.closed {
		return ErrListClosed
	}
	ps, ok := cmd.Pipeline.(*pipelineState)
	if !ok || ps.Released() {
		return fmt.Errorf("device: fullscreen %q: %w: pipeline", cmd.Label, ErrReleased)
	}
	src, ok := cmd.Source.(*framebuffer)
	if !ok || src.Released() {
		return fmt.Errorf("device: fullscreen %q: %w: source", cmd.Label, ErrReleased)
	}
	var dst *framebuffer
	if cmd.Dest != nil {
		dst, ok = cmd.Dest.(*framebuffer)
		if !ok || dst.Released() {
			return fmt.Errorf("device: fullscreen %q: %w: destination", cmd.Label, ErrReleased)
		}
		if dst == src {
			return fmt.Errorf("device: fullscreen %q: %w: source and destination are the same framebuffer", cmd.Label, ErrInvalidDescriptor)
		}
	}
	samp := l.d.defaultSampler
	if s, ok := cmd.Sampler.(*sampler); ok && !s.Released() {
		samp = s.gpu
	}

	d := l.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.beginPass(dst); err != nil {
		return err
	}
	bg, err := d.bindGroup(ps, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: src.colorView},
		{Binding: 1, Sampler: samp},
	})
	if err != nil {
		return fmt.Errorf("device: fullscreen %q: %w", cmd.Label, err)
	}
	d.framePass.SetPipeline(ps.render)
	d.framePass.SetBindGroup(0, bg, nil)
	d.framePass.Draw(3, 1, 0, 0)
	return nil
}

func (l *wgpuCommandList) End() error {
	if l.closed {
		return ErrListClosed
	}
	l.closed = true

	d := l.d
	d.mu.Lock()
	defer d.mu.Unlock()

	d.endPass()
	defer func() {
		for _, bg := range d.garbage {
			bg.Release()
		}
		d.garbage = d.garbage[:0]
		d.frameEncoder.Release()
		d.frameEncoder = nil
	}()

	commandBuffer, err := d.frameEncoder.Finish(nil)
	if err != nil {
		d.releaseSurfaceFrame()
		return errors.Join(fmt.Errorf("device: finish frame"), err)
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}
