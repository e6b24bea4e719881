package scene

import lin "github.com/xlab/linmath"

type MeshID int
type MaterialID int

// RenderObject places a mesh with a material. The object list is fixed once
// the device is set up.
type RenderObject struct {
	Mesh      MeshID
	Material  MaterialID
	Transform lin.Mat4x4
}

// Step is one draw call of a frame with the state changes preceding it.
type Step struct {
	Object       int
	Mesh         MeshID
	Material     MaterialID
	BindMaterial bool
	BindMesh     bool
	Push         PushConstants
}

// Plan turns the object list into draw steps in list order. Material and
// mesh binds are only requested when they differ from the previous step.
func Plan(objects []RenderObject, videoParam float32) []Step {
	steps := make([]Step, 0, len(objects))
	for i, obj := range objects {
		s := Step{
			Object:   i,
			Mesh:     obj.Mesh,
			Material: obj.Material,
			Push:     PushConstants{ObjectID: int32(i), VideoParam: videoParam},
		}
		if i == 0 {
			s.BindMaterial, s.BindMesh = true, true
		} else {
			prev := objects[i-1]
			s.BindMaterial = prev.Material != obj.Material
			s.BindMesh = prev.Mesh != obj.Mesh
		}
		steps = append(steps, s)
	}
	return steps
}

// ObjectBlocks applies model on top of every object's local transform.
func ObjectBlocks(objects []RenderObject, model lin.Mat4x4) []ObjectData {
	blocks := make([]ObjectData, len(objects))
	for i := range objects {
		blocks[i].Model.Mult(&model, &objects[i].Transform)
	}
	return blocks
}
