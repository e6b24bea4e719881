package framevk

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// All color images share one format so copies between them are bit exact.
const (
	colorFormat = vk.FormatR8g8b8a8Unorm
	depthFormat = vk.FormatD32Sfloat
	logoFormat  = vk.FormatR8g8b8a8Srgb
)

// renderTargets are the frame sized images. They all share one extent.
type renderTargets struct {
	width  uint32
	height uint32

	color         *vkt.Image
	depth         *vkt.Image
	frameTransfer *vkt.Image
	ppSource      *vkt.Image
	framebuffer   vk.Framebuffer

	//Where the frame transfer rows live inside its mapping
	rowOffset int
	rowPitch  int
}

func newRenderPass(device vk.Device, scope *lifetime.Queue) (vk.RenderPass, error) {
	return (&vkt.RenderPassBuilder{}).
		Color(vkt.Attachment{
			Format:  colorFormat,
			Load:    vk.AttachmentLoadOpLoad,
			Store:   vk.AttachmentStoreOpStore,
			Initial: vk.ImageLayoutTransferDstOptimal,
			Final:   vk.ImageLayoutTransferSrcOptimal,
			Subpass: vk.ImageLayoutColorAttachmentOptimal,
		}).
		Depth(vkt.Attachment{
			Format:  depthFormat,
			Load:    vk.AttachmentLoadOpClear,
			Store:   vk.AttachmentStoreOpDontCare,
			Initial: vk.ImageLayoutUndefined,
			Final:   vk.ImageLayoutDepthStencilAttachmentOptimal,
			Subpass: vk.ImageLayoutDepthStencilAttachmentOptimal,
		}).
		Dependency(vkt.Dependency{
			Src:       vk.SubpassExternal,
			Dst:       0,
			SrcStage:  vk.PipelineStageTransferBit,
			DstStage:  vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit,
			SrcAccess: vk.AccessTransferWriteBit,
			DstAccess: vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit,
		}).
		Dependency(vkt.Dependency{
			Src:       0,
			Dst:       vk.SubpassExternal,
			SrcStage:  vk.PipelineStageColorAttachmentOutputBit,
			DstStage:  vk.PipelineStageTransferBit,
			SrcAccess: vk.AccessColorAttachmentWriteBit,
			DstAccess: vk.AccessTransferReadBit,
		}).
		Build(device, scope)
}

func newRenderTargets(dev *vkt.Device, pass vk.RenderPass, width, height uint32, scope *lifetime.Queue) (*renderTargets, error) {
	t := &renderTargets{width: width, height: height}
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	specs := []struct {
		target **vkt.Image
		spec   vkt.ImageSpec
	}{
		{&t.color, vkt.ImageSpec{
			Name:   "color",
			Format: colorFormat,
			Tiling: vk.ImageTilingOptimal,
			Usage:  vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit,
			Memory: deviceLocal,
		}},
		{&t.depth, vkt.ImageSpec{
			Name:   "depth",
			Format: depthFormat,
			Tiling: vk.ImageTilingOptimal,
			Usage:  vk.ImageUsageDepthStencilAttachmentBit,
			Aspect: vk.ImageAspectDepthBit,
			Memory: deviceLocal,
		}},
		{&t.frameTransfer, vkt.ImageSpec{
			Name:   "frame transfer",
			Format: colorFormat,
			Tiling: vk.ImageTilingLinear,
			Usage:  vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit,
			Memory: vkt.HostVisible,
			Mapped: true,
		}},
		{&t.ppSource, vkt.ImageSpec{
			Name:   "post process source",
			Format: colorFormat,
			Tiling: vk.ImageTilingOptimal,
			Usage:  vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit,
			Memory: deviceLocal,
		}},
	}
	for _, s := range specs {
		s.spec.Width, s.spec.Height = width, height
		img, err := vkt.NewImage(dev, s.spec, scope)
		if err != nil {
			return nil, err
		}
		*s.target = img
	}

	layout := t.frameTransfer.Subresource(dev)
	t.rowOffset, t.rowPitch = int(layout.Offset), int(layout.RowPitch)
	if t.rowPitch < int(width)*4 {
		return nil, errors.Errorf("frame transfer row pitch %d below %d", t.rowPitch, width*4)
	}

	var err error
	t.framebuffer, err = vkt.NewFramebuffer(dev.Handle, pass,
		[]vk.ImageView{t.color.View, t.depth.View}, width, height, scope)
	if err != nil {
		return nil, err
	}

	// every image starts in the layout its first consumer expects
	err = dev.GraphicsPool().Immediate(dev.Graphics, func(cmd vk.CommandBuffer) {
		t.frameTransfer.Transition(cmd, vk.ImageLayoutGeneral)
		t.color.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
		t.ppSource.Transition(cmd, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	return t, errors.Wrap(err, "initial render target layouts")
}

func (t *renderTargets) frameBytes() int {
	return int(t.width) * int(t.height) * 4
}

// writeRows copies tightly packed RGBA rows into the frame transfer mapping.
func (t *renderTargets) writeRows(pixels []byte) {
	mem := t.frameTransfer.Mapped()
	row := int(t.width) * 4
	for y := 0; y < int(t.height); y++ {
		dst := t.rowOffset + y*t.rowPitch
		copy(mem[dst:dst+row], pixels[y*row:(y+1)*row])
	}
}

func (t *renderTargets) readRows(out []byte) {
	mem := t.frameTransfer.Mapped()
	row := int(t.width) * 4
	for y := 0; y < int(t.height); y++ {
		src := t.rowOffset + y*t.rowPitch
		copy(out[y*row:(y+1)*row], mem[src:src+row])
	}
}
