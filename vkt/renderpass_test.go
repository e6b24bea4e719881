package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestRenderPassBuilderRequiresColor(t *testing.T) {
	b := (&RenderPassBuilder{}).Depth(Attachment{
		Format: vk.FormatD32Sfloat, Final: vk.ImageLayoutDepthStencilAttachmentOptimal,
		Subpass: vk.ImageLayoutDepthStencilAttachmentOptimal,
	})
	_, err := b.describe()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestRenderPassBuilderRejectsMissingFormat(t *testing.T) {
	b := (&RenderPassBuilder{}).Color(Attachment{
		Final: vk.ImageLayoutTransferSrcOptimal, Subpass: vk.ImageLayoutColorAttachmentOptimal,
	})
	_, err := b.describe()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestRenderPassBuilderDescribe(t *testing.T) {
	b := (&RenderPassBuilder{}).
		Color(Attachment{
			Format:  vk.FormatR8g8b8a8Unorm,
			Load:    vk.AttachmentLoadOpLoad,
			Store:   vk.AttachmentStoreOpStore,
			Initial: vk.ImageLayoutTransferDstOptimal,
			Final:   vk.ImageLayoutTransferSrcOptimal,
			Subpass: vk.ImageLayoutColorAttachmentOptimal,
		}).
		Depth(Attachment{
			Format:  vk.FormatD32Sfloat,
			Load:    vk.AttachmentLoadOpClear,
			Store:   vk.AttachmentStoreOpDontCare,
			Final:   vk.ImageLayoutDepthStencilAttachmentOptimal,
			Subpass: vk.ImageLayoutDepthStencilAttachmentOptimal,
		}).
		Dependency(Dependency{
			Src: vk.SubpassExternal, Dst: 0,
			SrcStage: vk.PipelineStageTransferBit, DstStage: vk.PipelineStageColorAttachmentOutputBit,
			SrcAccess: vk.AccessTransferWriteBit, DstAccess: vk.AccessColorAttachmentReadBit,
		})

	d, err := b.describe()
	require.NoError(t, err)
	require.Len(t, d.attachments, 2)
	assert.Equal(t, vk.AttachmentLoadOpLoad, d.attachments[0].LoadOp)
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, d.attachments[0].InitialLayout)
	assert.Equal(t, vk.ImageLayoutTransferSrcOptimal, d.attachments[0].FinalLayout)
	require.Len(t, d.colorRefs, 1)
	assert.Equal(t, uint32(0), d.colorRefs[0].Attachment)
	require.NotNil(t, d.depthRef)
	assert.Equal(t, uint32(1), d.depthRef.Attachment)
	require.Len(t, d.dependencies, 1)
	assert.Equal(t, uint32(vk.SubpassExternal), d.dependencies[0].SrcSubpass)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageTransferBit), d.dependencies[0].SrcStageMask)
}
