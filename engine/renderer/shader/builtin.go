package shader

import "fmt"

// Builtin shader keys. Pipelines created by the render pipeline and the post-process
// stages reference the fullscreen vertex stage by FullscreenVertex.
const (
	FullscreenVertex = "fullscreen.vs"
	PresentFragment  = "present.fs"
	UnlitVertex      = "unlit.vs"
	UnlitFragment    = "unlit.fs"
)

// The draw uniform at group 0 binding 0 matches the 160 bytes the device writes
// for every draw.
const drawUniformSource = `
struct DrawUniform {
    view_proj: mat4x4f,
    world: mat4x4f,
    base_color: vec4f,
    surface: vec4f,
}

@group(0) @binding(0) var<uniform> draw: DrawUniform;
`

const fullscreenVertexSource = `
struct FullscreenOut {
    @builtin(position) position: vec4f,
    @location(0) uv: vec2f,
}

@vertex
fn vs_fullscreen(@builtin(vertex_index) index: u32) -> FullscreenOut {
    let uv = vec2f(f32((index << 1u) & 2u), f32(index & 2u));
    var out: FullscreenOut;
    out.position = vec4f(uv * vec2f(2.0, -2.0) + vec2f(-1.0, 1.0), 0.0, 1.0);
    out.uv = uv;
    return out;
}
`

const presentFragmentSource = `
@group(0) @binding(0) var source_texture: texture_2d<f32>;
@group(0) @binding(1) var source_sampler: sampler;

@fragment
fn fs_present(@builtin(position) position: vec4f, @location(0) uv: vec2f) -> @location(0) vec4f {
    return textureSample(source_texture, source_sampler, uv);
}
`

const unlitVertexSource = drawUniformSource + `
struct VertexInput {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
}

struct VertexOutput {
    @builtin(position) position: vec4f,
    @location(0) normal: vec3f,
    @location(1) uv: vec2f,
}

@vertex
fn vs_unlit(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = draw.view_proj * draw.world * vec4f(in.position, 1.0);
    out.normal = (draw.world * vec4f(in.normal, 0.0)).xyz;
    out.uv = in.uv;
    return out;
}
`

const unlitFragmentSource = drawUniformSource + `
@fragment
fn fs_unlit(@builtin(position) position: vec4f, @location(0) normal: vec3f, @location(1) uv: vec2f) -> @location(0) vec4f {
    return draw.base_color;
}
`

// Builtins returns the shaders the engine registers with a GPU device at startup.
//
// Returns:
//   - []Shader: the parsed builtin shaders
//   - error: a parse error, which indicates a broken builtin source
func Builtins() ([]Shader, error) {
	sources := []struct {
		key        string
		shaderType ShaderType
		source     string
	}{
		{FullscreenVertex, ShaderTypeVertex, fullscreenVertexSource},
		{PresentFragment, ShaderTypeFragment, presentFragmentSource},
		{UnlitVertex, ShaderTypeVertex, unlitVertexSource},
		{UnlitFragment, ShaderTypeFragment, unlitFragmentSource},
	}
	out := make([]Shader, 0, len(sources))
	for _, s := range sources {
		parsed, err := Parse(s.key, s.shaderType, s.source)
		if err != nil {
			return nil, fmt.Errorf("shader: builtin: %w", err)
		}
		out = append(out, parsed)
	}
	return out, nil
}
