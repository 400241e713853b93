package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "OXY_"

// GraphicsDeviceType selects the GraphicsDevice implementation.
type GraphicsDeviceType string

const (
	// DeviceWGPU renders through WebGPU.
	DeviceWGPU GraphicsDeviceType = "wgpu"
	// DeviceHeadless records commands without a GPU; used by tests and servers.
	DeviceHeadless GraphicsDeviceType = "headless"
)

// UnmarshalText validates the device name while parsing the environment.
func (t *GraphicsDeviceType) UnmarshalText(text []byte) error {
	switch v := GraphicsDeviceType(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case DeviceWGPU, DeviceHeadless:
		*t = v
		return nil
	default:
		return fmt.Errorf("config: unknown graphics device type %q", string(text))
	}
}

// RenderSetting is the render pipeline configuration block. It is read once when the
// pipeline is built and again only on explicit resolution changes.
type RenderSetting struct {
	EnableSSAO        bool `env:"ENABLE_SSAO" envDefault:"false"`
	EnableSSR         bool `env:"ENABLE_SSR" envDefault:"false"`
	EnableFog         bool `env:"ENABLE_FOG" envDefault:"false"`
	EnableFXAA        bool `env:"ENABLE_FXAA" envDefault:"true"`
	EnableAtmospheric bool `env:"ENABLE_ATMOSPHERIC" envDefault:"false"`
	EnableShadow      bool `env:"ENABLE_SHADOW" envDefault:"true"`

	GraphicsDeviceType GraphicsDeviceType `env:"DEVICE" envDefault:"wgpu"`

	Width  int `env:"WIDTH" envDefault:"1280"`
	Height int `env:"HEIGHT" envDefault:"720"`

	ShadowMapResolution int `env:"SHADOW_MAP_RESOLUTION" envDefault:"2048"`
	FramebufferPoolSize int `env:"FRAMEBUFFER_POOL_SIZE" envDefault:"16"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title string `env:"TITLE" envDefault:"Oxy Engine"`
}

// LogConfig configures the engine logger.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	JSON  bool   `env:"JSON" envDefault:"false"`
}

// EngineConfig configures the frame loop and auxiliary workers.
type EngineConfig struct {
	TickRate        float64       `env:"TICK_RATE" envDefault:"60"`
	TaskWorkers     int           `env:"TASK_WORKERS" envDefault:"2"`
	TaskIdleTimeout time.Duration `env:"TASK_IDLE_TIMEOUT" envDefault:"1s"`
	Profiling       bool          `env:"PROFILING" envDefault:"false"`
}

// Config is the root configuration, loaded from OXY_* environment variables.
type Config struct {
	Render RenderSetting `envPrefix:"RENDER_"`
	Window WindowConfig  `envPrefix:"WINDOW_"`
	Log    LogConfig     `envPrefix:"LOG_"`
	Engine EngineConfig  `envPrefix:"ENGINE_"`
}

// Load reads the configuration from the process environment.
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if a variable fails to parse or validate
func Load() (Config, error) {
	return LoadFrom(environ())
}

// LoadFrom reads the configuration from the given variables instead of the process
// environment. Keys include the OXY_ prefix.
//
// Parameters:
//   - vars: environment variables by name
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if a variable fails to parse or validate
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the environment parser cannot express.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		result = multierror.Append(result, fmt.Errorf("config: render resolution must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if c.Render.ShadowMapResolution <= 0 {
		result = multierror.Append(result, fmt.Errorf("config: shadow map resolution must be positive, got %d", c.Render.ShadowMapResolution))
	}
	if c.Render.FramebufferPoolSize < 4 {
		result = multierror.Append(result, fmt.Errorf("config: framebuffer pool size must be at least 4, got %d", c.Render.FramebufferPoolSize))
	}
	if c.Engine.TaskWorkers < 1 {
		result = multierror.Append(result, fmt.Errorf("config: task workers must be at least 1, got %d", c.Engine.TaskWorkers))
	}
	return result.ErrorOrNil()
}

// DefaultRenderSetting returns the render settings used when nothing is configured.
func DefaultRenderSetting() RenderSetting {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		panic(fmt.Sprintf("config: defaults do not validate: %v", err))
	}
	return cfg.Render
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			out[k] = v
		}
	}
	return out
}
