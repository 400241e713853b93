package material

// PassBuilderOption is a function that configures a pass instance during construction.
type PassBuilderOption func(*pass)

// WithPassPipeline sets the pipeline state key the pass draws with.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - PassBuilderOption: a function that applies the pipeline key to a pass
func WithPassPipeline(key string) PassBuilderOption {
	return func(p *pass) {
		p.pipelineKey = key
	}
}

// WithPassParam sets a scalar parameter on the pass.
func WithPassParam(key string, v float32) PassBuilderOption {
	return func(p *pass) {
		p.params[key] = v
	}
}

// WithPassTexture binds an asset name to a texture slot of the pass.
func WithPassTexture(slot, asset string) PassBuilderOption {
	return func(p *pass) {
		p.textures[slot] = asset
	}
}
