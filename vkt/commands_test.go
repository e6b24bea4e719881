package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestLayoutUsage(t *testing.T) {
	cases := []struct {
		layout vk.ImageLayout
		access vk.AccessFlagBits
		stage  vk.PipelineStageFlagBits
	}{
		{vk.ImageLayoutUndefined, 0, vk.PipelineStageTopOfPipeBit},
		{vk.ImageLayoutTransferSrcOptimal, vk.AccessTransferReadBit, vk.PipelineStageTransferBit},
		{vk.ImageLayoutTransferDstOptimal, vk.AccessTransferWriteBit, vk.PipelineStageTransferBit},
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessShaderReadBit, vk.PipelineStageFragmentShaderBit},
		{vk.ImageLayoutColorAttachmentOptimal, vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit,
			vk.PipelineStageColorAttachmentOutputBit},
	}
	for _, c := range cases {
		access, stage := layoutUsage(c.layout)
		assert.Equal(t, vk.AccessFlags(c.access), access, "layout %d", c.layout)
		assert.Equal(t, vk.PipelineStageFlags(c.stage), stage, "layout %d", c.layout)
	}

	access, stage := layoutUsage(vk.ImageLayoutGeneral)
	assert.NotZero(t, access&vk.AccessFlags(vk.AccessHostReadBit))
	assert.NotZero(t, stage&vk.PipelineStageFlags(vk.PipelineStageHostBit))
}

func TestImageLayoutTracking(t *testing.T) {
	img := &Image{Layout: vk.ImageLayoutTransferSrcOptimal}
	img.Discard()
	assert.Equal(t, vk.ImageLayoutUndefined, img.Layout)
	img.Assume(vk.ImageLayoutTransferSrcOptimal)
	assert.Equal(t, vk.ImageLayoutTransferSrcOptimal, img.Layout)
}
