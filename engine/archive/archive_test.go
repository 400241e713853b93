package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeTypedAttributes(t *testing.T) {
	n := NewNode("object")
	n.SetString("name", "crate")
	n.SetBool("active", true)
	n.SetInt("id", 42)
	n.SetFloat("mass", 2.5)
	n.SetVec("position", 1, -2, 3.25)

	s, err := n.String("name")
	require.NoError(t, err)
	assert.Equal(t, "crate", s)

	b, err := n.Bool("active")
	require.NoError(t, err)
	assert.True(t, b)

	i, err := n.Int("id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	f, err := n.Float("mass")
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f)

	v, err := n.Vec3("position")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, -2, 3.25}, v)

	_, err = n.String("missing")
	assert.ErrorIs(t, err, ErrMissingAttr)
	assert.Equal(t, "fallback", n.StringOr("missing", "fallback"))

	_, err = n.Vec4("position")
	assert.Error(t, err)
}

func TestSetStringKeepsPosition(t *testing.T) {
	n := NewNode("x")
	n.SetString("a", "1")
	n.SetString("b", "2")
	n.SetString("a", "3")

	require.Len(t, n.Attrs, 2)
	assert.Equal(t, Attr{Key: "a", Value: "3"}, n.Attrs[0])
}

func TestEncodeDecodePreservesOrder(t *testing.T) {
	root := NewNode("scene")
	root.SetString("name", "level-1")
	first := root.AddChild("object")
	first.SetString("name", "first")
	second := root.AddChild("object")
	second.SetString("name", "second")
	second.AddChild("component").SetString("type", "MeshRenderer")

	var buf bytes.Buffer
	require.NoError(t, root.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, decoded)

	objs := decoded.ChildrenNamed("object")
	require.Len(t, objs, 2)
	assert.Equal(t, "first", objs[0].StringOr("name", ""))
	assert.NotNil(t, objs[1].Child("component"))
	assert.Nil(t, objs[0].Child("component"))
}
