package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestPipelineBuilderValidation(t *testing.T) {
	b := NewPipelineBuilder("opaque")
	assert.ErrorIs(t, b.validate(), ErrIncomplete)

	b.Shaders(nil, nil)
	assert.ErrorIs(t, b.validate(), ErrIncomplete)

	b.VertexInput(VertexDescription()).Layout(nil, 6)
	assert.ErrorIs(t, b.validate(), ErrIncomplete)

	b.Layout(nil, 8)
	assert.NoError(t, b.validate())
}

func TestPipelineBuilderBlendAndPushConstants(t *testing.T) {
	b := NewPipelineBuilder("post_process")
	assert.Empty(t, b.pushConstantRanges())
	assert.Equal(t, vk.Bool32(vk.False), b.colorBlend().BlendEnable)

	b.Layout(nil, 8).AlphaBlend(true)
	ranges := b.pushConstantRanges()
	require.Len(t, ranges, 1)
	assert.Equal(t, uint32(8), ranges[0].Size)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), ranges[0].StageFlags)

	state := b.colorBlend()
	assert.Equal(t, vk.Bool32(vk.True), state.BlendEnable)
	assert.Equal(t, vk.BlendFactorSrcAlpha, state.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, state.DstColorBlendFactor)
}
