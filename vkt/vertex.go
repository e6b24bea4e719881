package vkt

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

//Vertex layout shared by every mesh, locations 0..3 in the vertex shaders
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [3]float32
	UV       [2]float32
}

const vertexSize = uint32(unsafe.Sizeof(Vertex{}))

// VertexInput is the binding and attribute description of a pipeline's
// vertex stage.
type VertexInput struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

func VertexDescription() VertexInput {
	var v Vertex
	return VertexInput{
		Bindings: []vk.VertexInputBindingDescription{{
			Binding:   0,
			Stride:    vertexSize,
			InputRate: vk.VertexInputRateVertex,
		}},
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Position))},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Normal))},
			{Location: 2, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Color))},
			{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(v.UV))},
		},
	}
}
