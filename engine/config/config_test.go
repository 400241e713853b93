package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.True(t, cfg.Render.EnableFXAA)
	assert.True(t, cfg.Render.EnableShadow)
	assert.False(t, cfg.Render.EnableSSR)
	assert.Equal(t, DeviceWGPU, cfg.Render.GraphicsDeviceType)
	assert.Equal(t, 1280, cfg.Render.Width)
	assert.Equal(t, 720, cfg.Render.Height)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 60.0, cfg.Engine.TickRate)
	assert.Equal(t, time.Second, cfg.Engine.TaskIdleTimeout)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"OXY_RENDER_ENABLE_SSR":   "true",
		"OXY_RENDER_ENABLE_FXAA":  "false",
		"OXY_RENDER_DEVICE":       "Headless",
		"OXY_RENDER_WIDTH":        "640",
		"OXY_RENDER_HEIGHT":       "480",
		"OXY_LOG_LEVEL":           "debug",
		"OXY_WINDOW_TITLE":        "demo",
		"OXY_ENGINE_TASK_WORKERS": "4",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Render.EnableSSR)
	assert.False(t, cfg.Render.EnableFXAA)
	assert.Equal(t, DeviceHeadless, cfg.Render.GraphicsDeviceType)
	assert.Equal(t, 640, cfg.Render.Width)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 4, cfg.Engine.TaskWorkers)
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"OXY_RENDER_DEVICE": "vulkan"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"OXY_RENDER_WIDTH": "0", "OXY_ENGINE_TASK_WORKERS": "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolution")
	assert.Contains(t, err.Error(), "task workers")
}

func TestDefaultRenderSetting(t *testing.T) {
	rs := DefaultRenderSetting()
	assert.Equal(t, 2048, rs.ShadowMapResolution)
	assert.Equal(t, 16, rs.FramebufferPoolSize)
}
