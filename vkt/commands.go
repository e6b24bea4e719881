package vkt

import vk "github.com/vulkan-go/vulkan"

// layoutUsage returns the accesses and stages that touch an image while it
// sits in layout. A barrier out of a layout waits for these, a barrier into
// a layout makes its writes visible to them.
func layoutUsage(layout vk.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch layout {
	case vk.ImageLayoutUndefined:
		return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	case vk.ImageLayoutGeneral:
		return vk.AccessFlags(vk.AccessHostReadBit | vk.AccessHostWriteBit | vk.AccessTransferReadBit | vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageHostBit | vk.PipelineStageTransferBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessShaderReadBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	default:
		return vk.AccessFlags(vk.AccessMemoryReadBit | vk.AccessMemoryWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}
}

// Transition records a barrier moving img from its tracked layout to layout
// and updates the tracked layout.
func (img *Image) Transition(cmd vk.CommandBuffer, layout vk.ImageLayout) {
	srcAccess, srcStage := layoutUsage(img.Layout)
	dstAccess, dstStage := layoutUsage(layout)
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           img.Layout,
		NewLayout:           layout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange:    img.Range(),
	}})
	img.Layout = layout
}

// Discard marks the current contents as disposable so the next transition
// starts from the undefined layout.
func (img *Image) Discard() {
	img.Layout = vk.ImageLayoutUndefined
}

//Assume records that something other than a barrier (a render pass) left img in layout
func (img *Image) Assume(layout vk.ImageLayout) {
	img.Layout = layout
}

//Bit exact copy of the whole image, both images must share extent and format size
func CopyImage(cmd vk.CommandBuffer, src, dst *Image) {
	vk.CmdCopyImage(cmd, src.Handle, src.Layout, dst.Handle, dst.Layout, 1, []vk.ImageCopy{{
		SrcSubresource: src.Layers(),
		DstSubresource: dst.Layers(),
		Extent:         src.Extent(),
	}})
}

//Blit of the whole image with format conversion and nearest filtering
func BlitImage(cmd vk.CommandBuffer, src, dst *Image) {
	srcEnd := vk.Offset3D{X: int32(src.Spec.Width), Y: int32(src.Spec.Height), Z: 1}
	dstEnd := vk.Offset3D{X: int32(dst.Spec.Width), Y: int32(dst.Spec.Height), Z: 1}
	vk.CmdBlitImage(cmd, src.Handle, src.Layout, dst.Handle, dst.Layout, 1, []vk.ImageBlit{{
		SrcSubresource: src.Layers(),
		SrcOffsets:     [2]vk.Offset3D{{}, srcEnd},
		DstSubresource: dst.Layers(),
		DstOffsets:     [2]vk.Offset3D{{}, dstEnd},
	}}, vk.FilterNearest)
}

//Copies a tightly packed buffer into the whole image
func CopyBufferToImage(cmd vk.CommandBuffer, src *Buffer, dst *Image) {
	vk.CmdCopyBufferToImage(cmd, src.Handle, dst.Handle, dst.Layout, 1, []vk.BufferImageCopy{{
		ImageSubresource: dst.Layers(),
		ImageExtent:      dst.Extent(),
	}})
}
