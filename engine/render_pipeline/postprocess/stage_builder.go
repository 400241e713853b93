package postprocess

// StageBuilderOption is a functional option for configuring a post-process stage.
type StageBuilderOption func(*stage)

// WithMaterialName sets the library name of the stage material. The default is
// "postprocess/<stage name>".
func WithMaterialName(name string) StageBuilderOption {
	return func(s *stage) {
		s.materialName = name
	}
}

// WithPassName sets the name of the post-process pass looked up in the material. The
// default is the stage name.
func WithPassName(name string) StageBuilderOption {
	return func(s *stage) {
		s.passName = name
	}
}

// WithParam overrides one default parameter. Parameters set on the pass still win.
func WithParam(key string, v float32) StageBuilderOption {
	return func(s *stage) {
		if s.defaults == nil {
			s.defaults = make(map[string]float32)
		}
		s.defaults[key] = v
	}
}
