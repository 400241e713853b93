package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skinnedSource = `
/* per-vertex data
   /* nested */ still a comment */
struct Vertex {
    @location(0) position: vec3f,
    @location(1) uv: vec2<f32>,
    @location(2) joints: vec4u,
}

struct Out {
    @builtin(position) position: vec4f,
    @location(0) uv: vec2f,
}

// @vertex fn commented_out() {}
@vertex
fn main_vs(v: Vertex) -> Out {
    var out: Out;
    return out;
}

@fragment
fn main_fs(in: Out) -> @location(0) vec4f {
    return vec4f(1.0);
}
`

func TestParseVertexShader(t *testing.T) {
	s, err := Parse("skinned.vs", ShaderTypeVertex, skinnedSource)
	require.NoError(t, err)

	assert.Equal(t, "skinned.vs", s.Key())
	assert.Equal(t, ShaderTypeVertex, s.Type())
	assert.Equal(t, "main_vs", s.EntryPoint())
	assert.Equal(t, [3]uint32{1, 1, 1}, s.WorkgroupSize())

	buffers := s.VertexBuffers()
	require.Len(t, buffers, 1)
	assert.Equal(t, uint64(36), buffers[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, buffers[0].StepMode)
	assert.Equal(t, []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatUint32x4, Offset: 20, ShaderLocation: 2},
	}, buffers[0].Attributes)
}

func TestParseFragmentShader(t *testing.T) {
	s, err := Parse("skinned.fs", ShaderTypeFragment, skinnedSource)
	require.NoError(t, err)
	assert.Equal(t, "main_fs", s.EntryPoint())
	assert.Nil(t, s.VertexBuffers())
}

func TestParseComputeShader(t *testing.T) {
	s, err := Parse("cull.cs", ShaderTypeCompute, `
@compute @workgroup_size(64, 4)
fn cull(@builtin(global_invocation_id) id: vec3u) {}
`)
	require.NoError(t, err)
	assert.Equal(t, "cull", s.EntryPoint())
	assert.Equal(t, [3]uint32{64, 4, 1}, s.WorkgroupSize())
}

func TestParseMissingEntryPoint(t *testing.T) {
	_, err := Parse("x.cs", ShaderTypeCompute, skinnedSource)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestUnknownVertexTypeSkipsStruct(t *testing.T) {
	assert.Nil(t, parseVertexLayouts(`
struct V {
    @location(0) m: mat4x4f,
}
`))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blit.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(presentFragmentSource), 0o600))

	s, err := Load(PresentFragment, ShaderTypeFragment, path)
	require.NoError(t, err)
	assert.Equal(t, "fs_present", s.EntryPoint())

	_, err = Load("missing", ShaderTypeFragment, filepath.Join(t.TempDir(), "none.wgsl"))
	assert.Error(t, err)
}

func TestBuiltins(t *testing.T) {
	builtins, err := Builtins()
	require.NoError(t, err)

	byKey := make(map[string]Shader, len(builtins))
	for _, s := range builtins {
		byKey[s.Key()] = s
	}
	require.Contains(t, byKey, FullscreenVertex)
	assert.Nil(t, byKey[FullscreenVertex].VertexBuffers())
	assert.Equal(t, "vs_fullscreen", byKey[FullscreenVertex].EntryPoint())

	unlit := byKey[UnlitVertex]
	require.NotNil(t, unlit)
	require.Len(t, unlit.VertexBuffers(), 1)
	assert.Equal(t, uint64(32), unlit.VertexBuffers()[0].ArrayStride)
}
