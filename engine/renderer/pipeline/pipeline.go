package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType selects the kind of GPU pipeline a description creates.
type PipelineType int

const (
	// PipelineTypeCompute runs one compute stage.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender runs a vertex stage and an optional fragment stage.
	PipelineTypeRender
)

// ShaderStage selects one programmable stage of a pipeline.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

// ErrMissingShader is returned by Validate when a required stage has no shader key.
var ErrMissingShader = errors.New("pipeline: missing shader key")

// pipeline is a description only; the device turns it into GPU objects.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	// keys of modules registered with the device
	vertexShader, fragmentShader, computeShader string

	colorFormat         wgpu.TextureFormat
	depthFormat         wgpu.TextureFormat
	sampleCount         uint32
	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a GPU pipeline state object: either a render pipeline (vertex +
// fragment shaders) or a compute pipeline (compute shader), plus every fixed-function
// setting needed to create it.
type Pipeline interface {
	// Type reports whether this is a render or a compute pipeline.
	//
	// Returns:
	//   - PipelineType: the pipeline type
	Type() PipelineType

	// PipelineKey returns the key materials name this pipeline by. Pipeline states are
	// cached per key.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the key of the shader module bound to a stage, or "" when unset.
	//
	// Parameters:
	//   - stage: the programmable stage (vertex, fragment, or compute)
	//
	// Returns:
	//   - string: the shader key
	Shader(stage ShaderStage) string

	// Validate checks that every stage the pipeline type requires has a shader key.
	//
	// Returns:
	//   - error: ErrMissingShader naming the stage, or nil
	Validate() error

	// The remaining methods expose the fixed-function state of a render pipeline.
	// Compute pipelines carry the defaults and ignore them.

	// ColorFormat is the format of the color target. Undefined means the surface format.
	ColorFormat() wgpu.TextureFormat
	// DepthFormat is the depth attachment format. Undefined disables the depth attachment.
	DepthFormat() wgpu.TextureFormat
	SampleCount() uint32
	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	// DepthBias and DepthBiasSlopeScale offset rasterized depth, as shadow casters need.
	DepthBias() int32
	DepthBiasSlopeScale() float32
	// BlendEnabled selects whether BlendState is applied to the color target.
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	// BlendState is the blend applied when BlendEnabled is true.
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// NewPipeline describes a pipeline. The defaults are an sRGB color target with a
// Depth24Plus attachment, depth test and write on, no culling, counter-clockwise
// triangle lists and straight alpha blending that stays off until WithBlendEnabled.
//
// Parameters:
//   - pipelineKey: the key materials reference the pipeline by
//   - pipelineType: render or compute
//   - opts: options overriding the defaults
//
// Returns:
//   - Pipeline: the description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      pipelineType,
		colorFormat:       wgpu.TextureFormatRGBA8UnormSrgb,
		depthFormat:       wgpu.TextureFormatDepth24Plus,
		sampleCount:       1,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(stage ShaderStage) string {
	switch stage {
	case ShaderStageVertex:
		return p.vertexShader
	case ShaderStageFragment:
		return p.fragmentShader
	case ShaderStageCompute:
		return p.computeShader
	default:
		return ""
	}
}

func (p *pipeline) Validate() error {
	switch p.pipelineType {
	case PipelineTypeRender:
		if p.vertexShader == "" {
			return fmt.Errorf("%w: %s has no vertex shader", ErrMissingShader, p.pipelineKey)
		}
		if p.fragmentShader == "" && p.depthFormat == wgpu.TextureFormatUndefined {
			return fmt.Errorf("%w: %s has neither a fragment shader nor a depth target", ErrMissingShader, p.pipelineKey)
		}
	case PipelineTypeCompute:
		if p.computeShader == "" {
			return fmt.Errorf("%w: %s has no compute shader", ErrMissingShader, p.pipelineKey)
		}
	default:
		return fmt.Errorf("pipeline: %s has unknown type %d", p.pipelineKey, p.pipelineType)
	}
	return nil
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}
