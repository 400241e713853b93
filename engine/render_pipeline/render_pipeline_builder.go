package render_pipeline

import (
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/sirupsen/logrus"
)

// RenderPipelineBuilderOption is a functional option for configuring a RenderPipeline.
type RenderPipelineBuilderOption func(*renderPipeline)

// WithMaterials sets the library post-process stages acquire their materials from.
//
// Parameters:
//   - lib: the material library
//
// Returns:
//   - RenderPipelineBuilderOption: a function that applies the library to a renderPipeline instance
func WithMaterials(lib material.Library) RenderPipelineBuilderOption {
	return func(p *renderPipeline) {
		p.materials = lib
	}
}

// WithPipelines registers pipeline descriptions up front. A description keyed
// PresentPipelineKey replaces the default present blit.
//
// Parameters:
//   - descs: the pipeline descriptions
//
// Returns:
//   - RenderPipelineBuilderOption: a function that registers the descriptions on a renderPipeline instance
func WithPipelines(descs ...pipeline.Pipeline) RenderPipelineBuilderOption {
	return func(p *renderPipeline) {
		for _, d := range descs {
			if d != nil {
				p.descs[d.PipelineKey()] = d
			}
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l logrus.FieldLogger) RenderPipelineBuilderOption {
	return func(p *renderPipeline) {
		p.log = l
	}
}

// WithObserver sets the receiver of frame statistics and configuration failures.
func WithObserver(o Observer) RenderPipelineBuilderOption {
	return func(p *renderPipeline) {
		p.observer = o
	}
}
