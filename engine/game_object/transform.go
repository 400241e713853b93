package game_object

import "github.com/Carmen-Shannon/oxy-core/common"

// transform is the local TRS of an object plus its cached world matrix.
type transform struct {
	position [3]float32
	rotation [3]float32
	scale    [3]float32

	world [16]float32
	dirty bool
}

func newTransform() transform {
	t := transform{scale: [3]float32{1, 1, 1}, dirty: true}
	common.Identity(t.world[:])
	return t
}

func (t *transform) recompute(parent *[16]float32) {
	var local [16]float32
	common.BuildModelMatrix(local[:],
		t.position[0], t.position[1], t.position[2],
		t.rotation[0], t.rotation[1], t.rotation[2],
		t.scale[0], t.scale[1], t.scale[2],
	)
	if parent != nil {
		common.Mul4(t.world[:], parent[:], local[:])
	} else {
		t.world = local
	}
	t.dirty = false
}
