package material

import "maps"

// pass is the implementation of the Pass interface.
type pass struct {
	name        string
	passType    PassType
	pipelineKey string
	params      map[string]float32
	textures    map[string]string
}

// Pass is a single shader pass of a technique. Passes are compared by identity: two
// passes with the same contents are still different passes.
type Pass interface {
	// Name returns the pass name, unique within its technique.
	//
	// Returns:
	//   - string: the pass name
	Name() string

	// Type returns the abstract role of the pass.
	//
	// Returns:
	//   - PassType: the pass type
	Type() PassType

	// PipelineKey returns the key of the pipeline state object the pass draws with.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Param returns a scalar parameter override.
	//
	// Parameters:
	//   - key: the parameter name
	//
	// Returns:
	//   - float32: the value
	//   - bool: true if the parameter is set
	Param(key string) (float32, bool)

	// SetParam sets a scalar parameter override.
	//
	// Parameters:
	//   - key: the parameter name
	//   - v: the value
	SetParam(key string, v float32)

	// Params returns a copy of every scalar parameter.
	//
	// Returns:
	//   - map[string]float32: parameter values by name
	Params() map[string]float32

	// Texture returns the asset name bound to a texture slot, or "" when unbound.
	Texture(slot string) string

	// SetTexture binds an asset name to a texture slot.
	SetTexture(slot, asset string)

	// Clone returns a deep copy of the pass. Parameter changes on the copy never reach
	// the original.
	//
	// Returns:
	//   - Pass: the copy
	Clone() Pass
}

var _ Pass = &pass{}

// NewPass creates a pass.
//
// Parameters:
//   - name: the pass name
//   - passType: the abstract role of the pass
//   - options: functional options to configure the pass
//
// Returns:
//   - Pass: the new pass
func NewPass(name string, passType PassType, options ...PassBuilderOption) Pass {
	p := &pass{
		name:     name,
		passType: passType,
		params:   make(map[string]float32),
		textures: make(map[string]string),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *pass) Name() string {
	return p.name
}

func (p *pass) Type() PassType {
	return p.passType
}

func (p *pass) PipelineKey() string {
	return p.pipelineKey
}

func (p *pass) Param(key string) (float32, bool) {
	v, ok := p.params[key]
	return v, ok
}

func (p *pass) SetParam(key string, v float32) {
	p.params[key] = v
}

func (p *pass) Params() map[string]float32 {
	return maps.Clone(p.params)
}

func (p *pass) Texture(slot string) string {
	return p.textures[slot]
}

func (p *pass) SetTexture(slot, asset string) {
	p.textures[slot] = asset
}

func (p *pass) Clone() Pass {
	return &pass{
		name:        p.name,
		passType:    p.passType,
		pipelineKey: p.pipelineKey,
		params:      maps.Clone(p.params),
		textures:    maps.Clone(p.textures),
	}
}
