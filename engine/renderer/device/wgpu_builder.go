package device

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// WGPUBuilderOption is a functional option for configuring a WebGPU device.
type WGPUBuilderOption func(*wgpuDevice)

// WithVSync selects FIFO presentation when true and immediate presentation otherwise.
func WithVSync(enabled bool) WGPUBuilderOption {
	return func(d *wgpuDevice) {
		if enabled {
			d.presentMode = wgpu.PresentModeFifo
		} else {
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithFallbackAdapter forces the software adapter.
func WithFallbackAdapter(force bool) WGPUBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithMaxDraws sets how many draws fit in one frame's uniform arena.
func WithMaxDraws(n int) WGPUBuilderOption {
	return func(d *wgpuDevice) {
		if n > 0 {
			d.maxDraws = n
		}
	}
}

// WithShader registers a compiled shader module at construction.
//
// Parameters:
//   - key: the shader key
//   - module: the compiled module and entry point
//
// Returns:
//   - WGPUBuilderOption: a function that registers the shader
func WithShader(key string, module ShaderModule) WGPUBuilderOption {
	return func(d *wgpuDevice) {
		d.shaders[key] = module
	}
}

// WithWGPULogger sets the logger.
func WithWGPULogger(l logrus.FieldLogger) WGPUBuilderOption {
	return func(d *wgpuDevice) {
		if l != nil {
			d.log = l
		}
	}
}
