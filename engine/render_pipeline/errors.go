package render_pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed pipeline.
	ErrClosed = errors.New("render_pipeline: pipeline closed")
	// ErrUnknownPipeline is returned when no description is registered for a pipeline key.
	ErrUnknownPipeline = errors.New("render_pipeline: unknown pipeline")
	// ErrForeignController is returned when a controller belongs to another pipeline.
	ErrForeignController = errors.New("render_pipeline: controller belongs to another pipeline")
	// ErrDuplicateController is returned when a controller name is already in use.
	ErrDuplicateController = errors.New("render_pipeline: duplicate controller")
)

// ConfigurationError reports a controller that could not be activated with the
// current configuration. The controller is excluded and its setting flag cleared.
type ConfigurationError struct {
	Stage   string
	Feature Feature
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("render_pipeline: stage %q (%s) disabled: %v", e.Stage, e.Feature, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
