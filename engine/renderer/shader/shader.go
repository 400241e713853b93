package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
var ErrNoEntryPoint = errors.New("shader: no entry point for stage")

// ShaderType identifies the pipeline stage a shader module is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is a module with a @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a module with a @fragment entry point.
	ShaderTypeFragment

	// ShaderTypeCompute is a module with a @compute entry point.
	ShaderTypeCompute
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	case ShaderTypeCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Shader is a parsed WGSL module, ready to be compiled by a device under its key.
type Shader interface {
	// Key returns the key pipeline descriptions reference this shader by.
	//
	// Returns:
	//   - string: the shader key, such as "fullscreen.vs"
	Key() string

	// Type returns the stage the shader was parsed for.
	//
	// Returns:
	//   - ShaderType: the shader stage
	Type() ShaderType

	// Source returns the WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// EntryPoint returns the name of the stage function found in the source.
	//
	// Returns:
	//   - string: the entry point function name
	EntryPoint() string

	// VertexBuffers returns one buffer layout per vertex input struct, in declaration
	// order. Slot i of the layout list is vertex buffer slot i. Fragment and compute
	// shaders, and vertex shaders that generate their own vertices, return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexBuffers() []wgpu.VertexBufferLayout

	// WorkgroupSize returns the @workgroup_size of a compute shader, or [1, 1, 1].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32
}

type shader struct {
	key           string
	shaderType    ShaderType
	source        string
	entryPoint    string
	vertexBuffers []wgpu.VertexBufferLayout
	workgroupSize [3]uint32
}

var _ Shader = &shader{}

// Parse reads the entry point and resource layouts of a WGSL module.
//
// Parameters:
//   - key: the key the shader is registered under
//   - shaderType: the stage to look for
//   - source: the WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrNoEntryPoint if the source has no function for the stage
func Parse(key string, shaderType ShaderType, source string) (Shader, error) {
	entry := parseEntryPoint(source, shaderType)
	if entry == "" {
		return nil, fmt.Errorf("%w: %s shader %q", ErrNoEntryPoint, shaderType, key)
	}
	s := &shader{
		key:           key,
		shaderType:    shaderType,
		source:        source,
		entryPoint:    entry,
		workgroupSize: [3]uint32{1, 1, 1},
	}
	switch shaderType {
	case ShaderTypeVertex:
		s.vertexBuffers = parseVertexLayouts(source)
	case ShaderTypeCompute:
		s.workgroupSize = parseWorkgroupSize(source)
	}
	return s, nil
}

// Load reads a WGSL file from disk and parses it.
//
// Parameters:
//   - key: the key the shader is registered under
//   - shaderType: the stage to look for
//   - path: the path of the .wgsl file
//
// Returns:
//   - Shader: the parsed shader
//   - error: a read or parse error
func Load(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: read %q: %w", path, err)
	}
	return Parse(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexBuffers() []wgpu.VertexBufferLayout {
	return s.vertexBuffers
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}
