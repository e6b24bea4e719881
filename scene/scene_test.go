package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lin "github.com/xlab/linmath"
)

func identity() lin.Mat4x4 {
	var m lin.Mat4x4
	m.Identity()
	return m
}

func transform(m *lin.Mat4x4, p [4]float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row] += m[col][row] * p[col]
		}
	}
	return out
}

func TestTimingFrameNumber(t *testing.T) {
	assert.Equal(t, 60.0, Timing{ProjectTime: 2, FrameRate: 30}.FrameNumber())
	assert.Zero(t, Timing{FrameRate: 30}.FrameNumber())
}

func TestBlockSizes(t *testing.T) {
	assert.Equal(t, 192, CameraDataSize)
	assert.Equal(t, 80, SceneDataSize)
	assert.Equal(t, 64, ObjectDataSize)
	assert.Equal(t, 8, PushConstantsSize)
}

func TestPushConstantsEncoding(t *testing.T) {
	b := PushConstants{ObjectID: 3, VideoParam: 0.5}.Bytes()
	require.Len(t, b, 8)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[0:4]))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])))
}

func TestEncodeObjectsBound(t *testing.T) {
	b, err := EncodeObjects(make([]ObjectData, 2))
	require.NoError(t, err)
	assert.Len(t, b, 128)

	_, err = EncodeObjects(make([]ObjectData, MaxObjects+1))
	assert.ErrorIs(t, err, ErrTooManyObjects)
}

func TestCameraDepthRange(t *testing.T) {
	cam := DefaultCamera()
	data := cam.Data(1280, 720)

	// a point on the near plane maps to depth 0, on the far plane to depth 1
	near := transform(&data.Proj, [4]float32{0, 0, -cam.Near, 1})
	far := transform(&data.Proj, [4]float32{0, 0, -cam.Far, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-4)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)

	origin := transform(&data.View, [4]float32{0, 0, 0, 1})
	assert.Equal(t, [4]float32{0, 0, -5, 1}, origin)
}

func TestCameraClampsDegenerateSize(t *testing.T) {
	data := DefaultCamera().Data(0, 0)
	for _, col := range data.Proj {
		for _, v := range col {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		}
	}
}

func TestModelRotationAtZero(t *testing.T) {
	m := ModelRotation(Timing{ProjectTime: 0, FrameRate: 30})
	id := identity()
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			assert.InDelta(t, id[c][r], m[c][r], 1e-6)
		}
	}
}

func TestRotation(t *testing.T) {
	assert.Equal(t, identity(), Rotation([4]float32{1, 0, 0, 0}))

	m := Rotation([4]float32{1, 0, 0, 90})
	p := transform(&m, [4]float32{0, 1, 0, 1})
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, 1, math.Abs(float64(p[2])), 1e-6)
}

func TestPlanElidesRedundantBinds(t *testing.T) {
	objects := []RenderObject{
		{Mesh: 0, Material: 0},
		{Mesh: 0, Material: 0},
		{Mesh: 1, Material: 0},
		{Mesh: 1, Material: 1},
	}
	steps := Plan(objects, 0.25)
	require.Len(t, steps, 4)

	bindMaterial := []bool{true, false, false, true}
	bindMesh := []bool{true, false, true, false}
	for i, s := range steps {
		assert.Equal(t, i, s.Object)
		assert.Equal(t, bindMaterial[i], s.BindMaterial, "step %d material", i)
		assert.Equal(t, bindMesh[i], s.BindMesh, "step %d mesh", i)
		assert.Equal(t, PushConstants{ObjectID: int32(i), VideoParam: 0.25}, s.Push)
	}
	assert.Empty(t, Plan(nil, 0))
}

func TestObjectBlocks(t *testing.T) {
	var moved lin.Mat4x4
	moved.Translate(1, 2, 3)
	objects := []RenderObject{{Transform: identity()}, {Transform: moved}}

	var model lin.Mat4x4
	model.Translate(10, 0, 0)
	blocks := ObjectBlocks(objects, model)
	require.Len(t, blocks, 2)
	assert.Equal(t, model, blocks[0].Model)
	p := transform(&blocks[1].Model, [4]float32{0, 0, 0, 1})
	assert.Equal(t, [4]float32{11, 2, 3, 1}, p)
}
