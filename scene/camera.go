package scene

import (
	"math"

	lin "github.com/xlab/linmath"
)

// Camera is a fixed perspective camera looking down +Z.
type Camera struct {
	Position [3]float32
	//Vertical field of view in degrees
	FovY float32
	Near float32
	Far  float32
}

func DefaultCamera() Camera {
	return Camera{
		Position: [3]float32{0, 0, -5},
		FovY:     70,
		Near:     0.1,
		Far:      200,
	}
}

// VulkanDepth remaps a GL style projection with clip depth in [-1, 1] to
// the [0, 1] range Vulkan expects. Y is left alone, the draw viewport is
// flipped instead.
func VulkanDepth(proj *lin.Mat4x4) lin.Mat4x4 {
	var fix, out lin.Mat4x4
	fix.Identity()
	fix[2][2] = 0.5
	fix[3][2] = 0.5
	out.Mult(&fix, proj)
	return out
}

// Data computes the camera block for a frame of the given size.
func (c Camera) Data(width, height uint32) CameraData {
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	var data CameraData
	data.View.Translate(c.Position[0], c.Position[1], c.Position[2])

	var gl lin.Mat4x4
	gl.Perspective(lin.DegreesToRadians(c.FovY), float32(width)/float32(height), c.Near, c.Far)
	data.Proj = VulkanDepth(&gl)
	data.ViewProj.Mult(&data.Proj, &data.View)
	return data
}

// ModelRotation is the scene wide spin applied on top of every object's
// local transform: one degree per frame around a slowly wobbling axis.
func ModelRotation(t Timing) lin.Mat4x4 {
	var identity, m lin.Mat4x4
	identity.Identity()
	angle := lin.DegreesToRadians(float32(t.FrameNumber()))
	x := float32(0.1 * math.Sin(t.ProjectTime))
	z := float32(0.05 * math.Cos(t.ProjectTime))
	m.Rotate(&identity, x, 1, z, angle)
	return m
}

// Rotation builds a local transform from an axis and an angle in degrees.
// A zero angle or a zero axis yields the identity.
func Rotation(axisAngle [4]float32) lin.Mat4x4 {
	var identity, m lin.Mat4x4
	identity.Identity()
	if axisAngle[3] == 0 {
		return identity
	}
	m.Rotate(&identity, axisAngle[0], axisAngle[1], axisAngle[2], lin.DegreesToRadians(axisAngle[3]))
	return m
}
