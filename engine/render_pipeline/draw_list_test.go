package render_pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawListOrdersByQueuePassAndSubmission(t *testing.T) {
	twoPass, err := material.NewTechnique(material.QueueOpaque,
		material.NewPass("depth", material.PassDepthPrePass),
		material.NewPass("color", material.PassColor),
		material.NewPass("shadow", material.PassShadowCaster),
	)
	require.NoError(t, err)
	blended, err := material.NewTechnique(material.QueueTransparent, material.NewPass("blend", material.PassColor))
	require.NoError(t, err)

	a := material.NewMaterial(material.WithName("a"), material.WithTechnique(twoPass))
	b := material.NewMaterial(material.WithName("b"), material.WithTechnique(twoPass.Clone()), material.WithTechnique(blended))

	l := NewDrawList(nil)
	l.Submit(game_object.DrawRequest{Material: b})
	l.Submit(game_object.DrawRequest{Material: a})
	l.Submit(game_object.DrawRequest{})

	var got []string
	for _, d := range l.Draws() {
		got = append(got, d.Request.Material.Name()+"/"+d.Pass.Name())
	}
	assert.Equal(t, []string{"b/depth", "a/depth", "b/color", "a/color", "b/blend"}, got)

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Draws())
}

func TestShadowCasterPasses(t *testing.T) {
	tech, err := material.NewTechnique(material.QueueOpaque,
		material.NewPass("color", material.PassColor),
		material.NewPass("shadow", material.PassShadowCaster),
	)
	require.NoError(t, err)
	m := material.NewMaterial(material.WithName("m"), material.WithTechnique(tech))

	caster := game_object.NewMeshRenderer(game_object.WithCastShadow(true))
	plain := game_object.NewMeshRenderer()

	l := NewDrawList(ShadowCasterPasses)
	l.Submit(game_object.DrawRequest{Source: &caster.RenderComponent, Material: m})
	l.Submit(game_object.DrawRequest{Source: &plain.RenderComponent, Material: m})

	require.Equal(t, 1, l.Len())
	assert.Equal(t, "shadow", l.Draws()[0].Pass.Name())
	assert.Same(t, &caster.RenderComponent, l.Draws()[0].Request.Source)
}
