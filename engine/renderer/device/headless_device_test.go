package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(opts ...HeadlessBuilderOption) HeadlessDevice {
	return NewHeadlessDevice(append([]HeadlessBuilderOption{WithHeadlessLogger(logger.Discard())}, opts...)...)
}

func TestHeadlessBudgetExhaustion(t *testing.T) {
	d := newTestDevice(WithBudget(2))
	assert.Equal(t, config.DeviceHeadless, d.Type())

	a, err := d.CreateBuffer(BufferDescriptor{Label: "a", Size: 16})
	require.NoError(t, err)
	_, err = d.CreateSampler(SamplerDescriptor{Label: "s"})
	require.NoError(t, err)

	_, err = d.CreateFramebuffer(FramebufferDescriptor{Label: "fb", Width: 4, Height: 4})
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.Equal(t, 2, d.Live())

	a.Release()
	assert.True(t, a.Released())
	assert.Equal(t, 1, d.Live())

	fb, err := d.CreateFramebuffer(FramebufferDescriptor{Label: "fb", Width: 4, Height: 4})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, fb.Format())
	assert.False(t, fb.HasDepth())

	d.SetBudget(0)
	_, err = d.CreateBuffer(BufferDescriptor{Label: "b", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
}

func TestHeadlessRejectsInvalidDescriptors(t *testing.T) {
	d := newTestDevice()
	_, err := d.CreateBuffer(BufferDescriptor{Label: "empty"})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	_, err = d.CreateFramebuffer(FramebufferDescriptor{Label: "flat", Width: 0, Height: 4})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	_, err = d.CreatePipelineState(pipeline.NewPipeline("no-shaders", pipeline.PipelineTypeRender))
	assert.ErrorIs(t, err, pipeline.ErrMissingShader)
	assert.ErrorIs(t, d.Resize(0, 10), ErrInvalidDescriptor)
}

func TestHeadlessFrameRecording(t *testing.T) {
	d := newTestDevice()
	ps, err := d.CreatePipelineState(pipeline.NewPipeline("lit", pipeline.PipelineTypeRender, pipeline.WithShaders("lit.vs", "lit.fs")))
	require.NoError(t, err)
	blit, err := d.CreatePipelineState(pipeline.NewPipeline("blit", pipeline.PipelineTypeRender, pipeline.WithShaders("fs.vs", "blit.fs")))
	require.NoError(t, err)
	scene, err := d.CreateFramebuffer(FramebufferDescriptor{Label: "scene", Width: 8, Height: 8, DepthFormat: wgpu.TextureFormatDepth24Plus})
	require.NoError(t, err)
	assert.True(t, scene.HasDepth())

	list, err := d.BeginFrame()
	require.NoError(t, err)

	_, err = d.BeginFrame()
	assert.ErrorIs(t, err, ErrFrameInProgress)

	require.NoError(t, list.Draw(DrawCommand{Label: "cube", Pipeline: ps, Target: scene, Queue: material.QueueOpaque, Pass: "color"}))
	assert.ErrorIs(t, list.Fullscreen(FullscreenCommand{Label: "self", Pipeline: blit, Source: scene, Dest: scene}), ErrInvalidDescriptor)
	require.NoError(t, list.Fullscreen(FullscreenCommand{Label: "present", Pipeline: blit, Source: scene}))
	require.NoError(t, list.End())
	assert.ErrorIs(t, list.End(), ErrListClosed)
	assert.ErrorIs(t, list.Draw(DrawCommand{Pipeline: ps, Target: scene}), ErrListClosed)
	require.NoError(t, d.Present())
	assert.Equal(t, 1, d.Frames())

	cmds := d.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, CommandDraw, cmds[0].Kind)
	assert.Equal(t, "lit", cmds[0].Pipeline)
	assert.Equal(t, material.QueueOpaque, cmds[0].Queue)
	assert.Same(t, scene, cmds[0].Target)
	assert.Equal(t, CommandFullscreen, cmds[1].Kind)
	assert.Nil(t, cmds[1].Target)
	assert.Same(t, scene, cmds[1].Source)
	assert.Equal(t, 0, cmds[1].Frame)

	d.ResetCommands()
	assert.Empty(t, d.Commands())
}

func TestHeadlessReleasedResourcesAreRejected(t *testing.T) {
	d := newTestDevice()
	ps, err := d.CreatePipelineState(pipeline.NewPipeline("lit", pipeline.PipelineTypeRender, pipeline.WithShaders("lit.vs", "lit.fs")))
	require.NoError(t, err)
	fb, err := d.CreateFramebuffer(FramebufferDescriptor{Label: "fb", Width: 2, Height: 2})
	require.NoError(t, err)
	fb.Release()

	list, err := d.BeginFrame()
	require.NoError(t, err)
	assert.ErrorIs(t, list.Draw(DrawCommand{Pipeline: ps, Target: fb}), ErrReleased)
	require.NoError(t, list.End())
	require.NoError(t, d.Present())

	d.Release()
	d.Release()
	_, err = d.BeginFrame()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = d.CreateSampler(SamplerDescriptor{})
	assert.ErrorIs(t, err, ErrReleased)
}

func TestHeadlessResize(t *testing.T) {
	d := newTestDevice()
	require.NoError(t, d.Resize(640, 480))
	w, h := d.Surface()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}
