package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestLayoutBuilderValidation(t *testing.T) {
	var empty LayoutBuilder
	assert.ErrorIs(t, empty.validate(), ErrIncomplete)

	dup := (&LayoutBuilder{}).
		Add(0, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit).
		Add(0, vk.DescriptorTypeStorageBuffer, vk.ShaderStageVertexBit)
	assert.ErrorIs(t, dup.validate(), ErrIncomplete)

	noStage := (&LayoutBuilder{}).Add(0, vk.DescriptorTypeUniformBuffer, 0)
	assert.ErrorIs(t, noStage.validate(), ErrIncomplete)

	global := (&LayoutBuilder{}).
		Add(0, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit).
		Add(1, vk.DescriptorTypeUniformBufferDynamic, vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit)
	require.NoError(t, global.validate())
	require.Len(t, global.bindings, 2)
	assert.Equal(t, uint32(1), global.bindings[1].DescriptorCount)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), global.bindings[1].StageFlags)
}

func TestDescriptorWriterBuild(t *testing.T) {
	var empty DescriptorWriter
	_, err := empty.build(nil)
	assert.ErrorIs(t, err, ErrIncomplete)

	w := (&DescriptorWriter{}).
		Buffer(0, vk.DescriptorTypeUniformBuffer, vk.DescriptorBufferInfo{Range: 192}).
		Image(1, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorImageInfo{ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal})
	writes, err := w.build(nil)
	require.NoError(t, err)
	require.Len(t, writes, 2)
	assert.Len(t, writes[0].PBufferInfo, 1)
	assert.Empty(t, writes[0].PImageInfo)
	assert.Equal(t, vk.DeviceSize(192), writes[0].PBufferInfo[0].Range)
	assert.Len(t, writes[1].PImageInfo, 1)
	assert.Equal(t, uint32(1), writes[1].DstBinding)
}

func TestDescriptorWriterTypeMismatch(t *testing.T) {
	w := (&DescriptorWriter{}).Buffer(0, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorBufferInfo{})
	_, err := w.build(nil)
	assert.ErrorIs(t, err, ErrIncomplete)

	w = (&DescriptorWriter{}).Image(0, vk.DescriptorTypeStorageBuffer, vk.DescriptorImageInfo{})
	_, err = w.build(nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDescriptorPoolValidation(t *testing.T) {
	_, err := NewDescriptorPool(nil, 0, []PoolSize{{Type: vk.DescriptorTypeUniformBuffer, Count: 1}}, nil)
	assert.ErrorIs(t, err, ErrIncomplete)
	_, err = NewDescriptorPool(nil, 5, nil, nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}
