package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestVertexDescription(t *testing.T) {
	d := VertexDescription()
	require.Len(t, d.Bindings, 1)
	assert.Equal(t, uint32(44), d.Bindings[0].Stride)

	require.Len(t, d.Attributes, 4)
	offsets := []uint32{0, 12, 24, 36}
	for i, a := range d.Attributes {
		assert.Equal(t, uint32(i), a.Location)
		assert.Equal(t, offsets[i], a.Offset)
	}
	assert.Equal(t, vk.FormatR32g32Sfloat, d.Attributes[3].Format)
}
