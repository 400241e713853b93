package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity() []float32 {
	m := make([]float32, 16)
	Identity(m)
	return m
}

func TestMul4Identity(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 1, 2, 3, 0.3, 0.2, 0.1, 1, 2, 3)
	out := make([]float32, 16)
	Mul4(out, identity(), m)
	assert.Equal(t, m, out)

	// aliasing the destination
	Mul4(m, m, identity())
	assert.Equal(t, out, m)
}

func TestInvert4(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 4, -2, 7, 0.5, 1.1, -0.3, 2, 2, 2)
	inv := make([]float32, 16)
	assert.True(t, Invert4(inv, m))

	product := make([]float32, 16)
	Mul4(product, m, inv)
	assert.InDeltaSlice(t, identity(), product, 1e-5)

	singular := make([]float32, 16)
	before := append([]float32(nil), inv...)
	assert.False(t, Invert4(inv, singular))
	assert.Equal(t, before, inv)
}

func TestFrustumCulling(t *testing.T) {
	view, proj, vp := make([]float32, 16), make([]float32, 16), make([]float32, 16)
	LookAt(view, 0, 0, 5, 0, 0, 0, 0, 1, 0)
	Perspective(proj, math.Pi/3, 16.0/9.0, 0.1, 100)
	Mul4(vp, proj, view)
	f := ExtractFrustumFromMatrix(vp)

	assert.True(t, f.IntersectsSphere([3]float32{0, 0, 0}, 1))
	assert.False(t, f.IntersectsSphere([3]float32{0, 0, 50}, 1))
	assert.False(t, f.IntersectsSphere([3]float32{500, 0, 0}, 1))
}

func TestDirectionalLightVPKeepsCenterInClipSpace(t *testing.T) {
	vp := make([]float32, 16)
	DirectionalLightVP(vp, [3]float32{0, -1, 0.2}, [3]float32{3, 0, 3}, 10, 0.1, 50)
	f := ExtractFrustumFromMatrix(vp)
	assert.True(t, f.IntersectsSphere([3]float32{3, 0, 3}, 0.5))
	assert.False(t, f.IntersectsSphere([3]float32{40, 0, 3}, 0.5))
}
