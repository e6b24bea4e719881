package vkt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareOBJ = `o square
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJFanAndDedupe(t *testing.T) {
	mesh, err := ParseOBJ("square", strings.NewReader(squareOBJ))
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)

	first := mesh.Vertices[0]
	assert.Equal(t, [3]float32{-1, -1, 0}, first.Position)
	assert.Equal(t, [2]float32{0, 1}, first.UV)
	assert.Equal(t, [3]float32{0, 0, 1}, first.Normal)
	assert.Equal(t, first.Normal, first.Color)
}

func TestParseOBJWithoutFaces(t *testing.T) {
	_, err := ParseOBJ("empty", strings.NewReader("o empty\nv 0 0 0\n"))
	assert.Error(t, err)
}

func TestProceduralMeshes(t *testing.T) {
	tri := Triangle()
	assert.Len(t, tri.Vertices, 3)
	assert.False(t, tri.Indexed())

	quad := Quad()
	require.True(t, quad.Indexed())
	assert.Len(t, quad.Indices, 6)
	for _, index := range quad.Indices {
		assert.Less(t, int(index), len(quad.Vertices))
	}
	for _, v := range quad.Vertices {
		assert.InDelta(t, 1, abs32(v.Position[0]), 0)
		assert.InDelta(t, 1, abs32(v.Position[1]), 0)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
