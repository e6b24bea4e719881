package framevk

import (
	"unsafe"

	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var errNoTargets = errors.New("frame phase without render targets")

// LoadBits uploads pixels into the frame transfer image and copies them into
// the color target and the post process source.
func (b *vulkanBackend) LoadBits(pixels []byte) error {
	t := b.targets
	if t == nil {
		return errNoTargets
	}
	if err := b.dev.Graphics.WaitIdle(); err != nil {
		return err
	}
	t.writeRows(pixels)

	cmd := b.ingestCmd
	if err := vkt.Restart(cmd); err != nil {
		return err
	}
	t.frameTransfer.Transition(cmd, vk.ImageLayoutTransferSrcOptimal)
	t.color.Discard()
	t.color.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
	t.ppSource.Discard()
	t.ppSource.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
	vkt.CopyImage(cmd, t.frameTransfer, t.color)
	vkt.CopyImage(cmd, t.frameTransfer, t.ppSource)
	t.ppSource.Transition(cmd, vk.ImageLayoutShaderReadOnlyOptimal)
	t.frameTransfer.Transition(cmd, vk.ImageLayoutGeneral)
	if err := vkt.End(cmd); err != nil {
		return err
	}

	submit := vkt.Submission{Fence: b.sync.Fence}
	if !b.imageAvailable {
		submit.Signal = []vk.Semaphore{b.sync.ImageAvailable}
	}
	if err := vkt.Submit(b.dev.Graphics, cmd, submit); err != nil {
		return errors.Wrap(err, "ingest")
	}
	b.imageAvailable = true
	if err := b.sync.WaitAndReset(); err != nil {
		return err
	}
	return b.res.bindFrame(t.ppSource)
}

func (b *vulkanBackend) updateBuffers(timing scene.Timing) error {
	t, res := b.targets, b.res
	camera := b.camera.Data(t.width, t.height)
	if err := res.cameraBuf.Write(0, camera.Bytes()); err != nil {
		return err
	}
	var data scene.SceneData
	if err := res.sceneBuf.Write(0, data.Bytes()); err != nil {
		return err
	}
	objects, err := scene.EncodeObjects(scene.ObjectBlocks(res.objects, scene.ModelRotation(timing)))
	if err != nil {
		return err
	}
	return res.objectBuf.Write(0, objects)
}

// Draw renders the object list over the color target.
func (b *vulkanBackend) Draw(timing scene.Timing) error {
	t, res := b.targets, b.res
	if t == nil {
		return errNoTargets
	}
	if err := b.dev.Graphics.WaitIdle(); err != nil {
		return err
	}
	if err := b.updateBuffers(timing); err != nil {
		return err
	}

	cmd := b.drawCmd
	if err := vkt.Restart(cmd); err != nil {
		return err
	}
	if t.color.Layout != vk.ImageLayoutTransferDstOptimal {
		t.color.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
	}

	extent := vk.Extent2D{Width: t.width, Height: t.height}
	clears := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 0}),
		vk.NewClearDepthStencil(1, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      b.pass,
		Framebuffer:     t.framebuffer,
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)

	// negative height flips y so +y points up in clip space
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        float32(t.height),
		Width:    float32(t.width),
		Height:   -float32(t.height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{Extent: extent}})

	var mat *vkt.Material
	for _, step := range scene.Plan(res.objects, float32(timing.ExternalParam)) {
		if step.BindMaterial {
			mat = res.materials[step.Material]
			vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, mat.Pipeline)
			vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, mat.Layout, 0, 1,
				[]vk.DescriptorSet{res.globalSet}, 1, []uint32{0})
			vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, mat.Layout, 1, 1,
				[]vk.DescriptorSet{res.objectSet}, 0, nil)
			if mat.TextureSet != nil {
				vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, mat.Layout, 2, 1,
					[]vk.DescriptorSet{mat.TextureSet}, 0, nil)
			}
		}
		mesh := res.meshes[step.Mesh]
		if step.BindMesh {
			mesh.Bind(cmd)
		}
		push := step.Push.Bytes()
		vk.CmdPushConstants(cmd, mat.Layout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
			0, uint32(len(push)), unsafe.Pointer(&push[0]))
		mesh.Draw(cmd)
	}

	vk.CmdEndRenderPass(cmd)
	t.color.Assume(vk.ImageLayoutTransferSrcOptimal)
	if err := vkt.End(cmd); err != nil {
		return err
	}

	var submit vkt.Submission
	if b.imageAvailable {
		submit.Wait = []vk.Semaphore{b.sync.ImageAvailable}
		submit.WaitStages = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageFragmentShaderBit),
		}
	}
	if !b.renderFinished {
		submit.Signal = []vk.Semaphore{b.sync.RenderFinished}
	}
	if err := vkt.Submit(b.dev.Graphics, cmd, submit); err != nil {
		return errors.Wrap(err, "draw")
	}
	b.imageAvailable = false
	b.renderFinished = true
	return nil
}

// Transfer copies the color target back through the frame transfer image
// into out.
func (b *vulkanBackend) Transfer(out []byte) error {
	t := b.targets
	if t == nil {
		return errNoTargets
	}
	if err := b.dev.Graphics.WaitIdle(); err != nil {
		return err
	}

	cmd := b.transferCmd
	if err := vkt.Restart(cmd); err != nil {
		return err
	}
	if t.color.Layout != vk.ImageLayoutTransferSrcOptimal {
		t.color.Transition(cmd, vk.ImageLayoutTransferSrcOptimal)
	}
	t.frameTransfer.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
	if b.dev.SupportsBlit() {
		vkt.BlitImage(cmd, t.color, t.frameTransfer)
	} else {
		vkt.CopyImage(cmd, t.color, t.frameTransfer)
	}
	t.frameTransfer.Transition(cmd, vk.ImageLayoutGeneral)
	if err := vkt.End(cmd); err != nil {
		return err
	}

	submit := vkt.Submission{Fence: b.sync.Fence}
	if b.renderFinished {
		submit.Wait = []vk.Semaphore{b.sync.RenderFinished}
		submit.WaitStages = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTransferBit)}
	}
	if err := vkt.Submit(b.dev.Graphics, cmd, submit); err != nil {
		return errors.Wrap(err, "readback")
	}
	b.renderFinished = false
	if err := b.sync.WaitAndReset(); err != nil {
		return err
	}
	t.readRows(out)
	return nil
}
