package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForwardTechnique(t *testing.T) (Technique, Pass, Pass) {
	t.Helper()
	depth := NewPass("depth", PassDepthPrePass, WithPassPipeline("depth_only"))
	color := NewPass("color", PassColor, WithPassPipeline("lit"), WithPassParam("tint", 0.5))
	tech, err := NewTechnique(QueueOpaque, depth, color)
	require.NoError(t, err)
	return tech, depth, color
}

func TestAddThenRemoveRestoresPassList(t *testing.T) {
	tech, depth, color := newForwardTechnique(t)
	before := tech.Passes()

	outline := NewPass("outline", PassCustom)
	require.NoError(t, tech.AddPass(outline))
	assert.Equal(t, 3, tech.Len())
	require.NoError(t, tech.RemovePass(outline))
	assert.Equal(t, before, tech.Passes())

	// removing from the middle keeps the remaining order
	shadow := NewPass("shadow", PassShadowCaster)
	require.NoError(t, tech.AddPass(shadow))
	require.NoError(t, tech.RemovePass(color))
	assert.Equal(t, []Pass{depth, shadow}, tech.Passes())
}

func TestAddPassRejectsDuplicates(t *testing.T) {
	tech, depth, _ := newForwardTechnique(t)

	assert.ErrorIs(t, tech.AddPass(depth), ErrDuplicatePass)
	assert.ErrorIs(t, tech.AddPass(NewPass("depth", PassColor)), ErrDuplicatePassName)
	assert.Error(t, tech.AddPass(nil))
	assert.ErrorIs(t, tech.RemovePass(NewPass("depth", PassDepthPrePass)), ErrPassNotFound)
	assert.Equal(t, 2, tech.Len())
}

func TestPassLookup(t *testing.T) {
	tech, depth, color := newForwardTechnique(t)

	assert.Same(t, color, tech.Pass("color"))
	assert.Nil(t, tech.Pass("missing"))
	assert.Same(t, depth, tech.PassByType(PassDepthPrePass))
	assert.Nil(t, tech.PassByType(PassLighting))
	assert.Equal(t, 1, tech.PassIndex(color))
	assert.Equal(t, -1, tech.PassIndex(NewPass("x", PassColor)))
}

func TestTechniqueCloneIsDeep(t *testing.T) {
	tech, _, color := newForwardTechnique(t)
	clone := tech.Clone()

	require.Equal(t, tech.Len(), clone.Len())
	cloned := clone.Pass("color")
	require.NotNil(t, cloned)
	assert.NotSame(t, color, cloned)

	cloned.SetParam("tint", 0.9)
	cloned.SetTexture("albedo", "brick")
	v, _ := color.Param("tint")
	assert.Equal(t, float32(0.5), v)
	assert.Empty(t, color.Texture("albedo"))

	require.NoError(t, clone.AddPass(NewPass("extra", PassCustom)))
	assert.Equal(t, 2, tech.Len())
}

func TestNewTechniqueRejectsInvalidQueue(t *testing.T) {
	_, err := NewTechnique(RenderQueue(42))
	assert.Error(t, err)
}

func TestQueueNames(t *testing.T) {
	for _, q := range Queues() {
		parsed, err := ParseRenderQueue(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, parsed)
	}
	_, err := ParseRenderQueue("nope")
	assert.Error(t, err)
	assert.True(t, QueueOpaque < QueueTransparent)

	pt, err := ParsePassType("Shadow_Caster")
	require.NoError(t, err)
	assert.Equal(t, PassShadowCaster, pt)
}
