package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("lit", PipelineTypeRender, WithShaders("lit.vs", "lit.fs"))

	assert.Equal(t, "lit", p.PipelineKey())
	assert.Equal(t, "lit.vs", p.Shader(ShaderStageVertex))
	assert.Equal(t, "lit.fs", p.Shader(ShaderStageFragment))
	assert.Empty(t, p.Shader(ShaderStageCompute))
	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, uint32(1), p.SampleCount())
	require.NotNil(t, p.BlendState())
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, NewPipeline("a", PipelineTypeRender).Validate(), ErrMissingShader)
	assert.ErrorIs(t, NewPipeline("b", PipelineTypeCompute).Validate(), ErrMissingShader)
	assert.NoError(t, NewPipeline("c", PipelineTypeCompute, WithComputeShader("cull.cs")).Validate())

	// depth-only pipelines may omit the fragment stage
	shadow := NewPipeline("shadow", PipelineTypeRender,
		WithShaders("shadow.vs", ""),
		WithDepthFormat(wgpu.TextureFormatDepth32Float),
		WithCullMode(wgpu.CullModeFront),
	)
	assert.NoError(t, shadow.Validate())

	noDepth := NewPipeline("broken", PipelineTypeRender,
		WithShaders("x.vs", ""),
		WithDepthFormat(wgpu.TextureFormatUndefined),
	)
	assert.ErrorIs(t, noDepth.Validate(), ErrMissingShader)
}

func TestBuilderOptions(t *testing.T) {
	p := NewPipeline("fxaa", PipelineTypeRender,
		WithShaders("fullscreen.vs", "fxaa.fs"),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithBlendEnabled(true),
		WithDepthBias(2, 1.5),
		WithSampleCount(0),
		WithColorFormat(wgpu.TextureFormatBGRA8Unorm),
	)
	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(1.5), p.DepthBiasSlopeScale())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, p.ColorFormat())
}
