package vkt

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//Attachment of the single subpass render pass
type Attachment struct {
	Format  vk.Format
	Load    vk.AttachmentLoadOp
	Store   vk.AttachmentStoreOp
	Initial vk.ImageLayout
	Final   vk.ImageLayout
	//Layout while the subpass runs
	Subpass vk.ImageLayout
}

type Dependency struct {
	Src, Dst             uint32
	SrcStage, DstStage   vk.PipelineStageFlagBits
	SrcAccess, DstAccess vk.AccessFlagBits
}

// RenderPassBuilder describes a render pass with one graphics subpass:
// color attachments, an optional depth attachment and external dependencies.
type RenderPassBuilder struct {
	color []Attachment
	depth *Attachment
	deps  []Dependency
}

func (b *RenderPassBuilder) Color(a Attachment) *RenderPassBuilder {
	b.color = append(b.color, a)
	return b
}

func (b *RenderPassBuilder) Depth(a Attachment) *RenderPassBuilder {
	b.depth = &a
	return b
}

func (b *RenderPassBuilder) Dependency(d Dependency) *RenderPassBuilder {
	b.deps = append(b.deps, d)
	return b
}

type renderPassDescription struct {
	attachments  []vk.AttachmentDescription
	colorRefs    []vk.AttachmentReference
	depthRef     *vk.AttachmentReference
	dependencies []vk.SubpassDependency
}

func describeAttachment(a Attachment) vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         a.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         a.Load,
		StoreOp:        a.Store,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  a.Initial,
		FinalLayout:    a.Final,
	}
}

func (b *RenderPassBuilder) describe() (*renderPassDescription, error) {
	if len(b.color) == 0 {
		return nil, errors.Wrap(ErrIncomplete, "render pass without color attachment")
	}
	all := append([]Attachment(nil), b.color...)
	if b.depth != nil {
		all = append(all, *b.depth)
	}
	for i, a := range all {
		if a.Format == vk.FormatUndefined {
			return nil, errors.Wrapf(ErrIncomplete, "attachment %d has no format", i)
		}
		if a.Final == vk.ImageLayoutUndefined || a.Subpass == vk.ImageLayoutUndefined {
			return nil, errors.Wrapf(ErrIncomplete, "attachment %d has no final or subpass layout", i)
		}
	}

	d := &renderPassDescription{}
	for i, a := range b.color {
		d.attachments = append(d.attachments, describeAttachment(a))
		d.colorRefs = append(d.colorRefs, vk.AttachmentReference{Attachment: uint32(i), Layout: a.Subpass})
	}
	if b.depth != nil {
		d.attachments = append(d.attachments, describeAttachment(*b.depth))
		d.depthRef = &vk.AttachmentReference{Attachment: uint32(len(b.color)), Layout: b.depth.Subpass}
	}
	for _, dep := range b.deps {
		d.dependencies = append(d.dependencies, vk.SubpassDependency{
			SrcSubpass:    dep.Src,
			DstSubpass:    dep.Dst,
			SrcStageMask:  vk.PipelineStageFlags(dep.SrcStage),
			DstStageMask:  vk.PipelineStageFlags(dep.DstStage),
			SrcAccessMask: vk.AccessFlags(dep.SrcAccess),
			DstAccessMask: vk.AccessFlags(dep.DstAccess),
		})
	}
	return d, nil
}

func (b *RenderPassBuilder) Build(device vk.Device, scope *lifetime.Queue) (vk.RenderPass, error) {
	var pass vk.RenderPass
	d, err := b.describe()
	if err != nil {
		return pass, err
	}
	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(d.colorRefs)),
		PColorAttachments:       d.colorRefs,
		PDepthStencilAttachment: d.depthRef,
	}}
	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(d.attachments)),
		PAttachments:    d.attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(d.dependencies)),
		PDependencies:   d.dependencies,
	}, nil, &pass)
	if isError(ret) {
		return pass, errors.Wrap(NewError(ret), "create render pass")
	}
	scope.Push(func() { vk.DestroyRenderPass(device, pass, nil) })
	return pass, nil
}

func NewFramebuffer(device vk.Device, pass vk.RenderPass, views []vk.ImageView, width, height uint32, scope *lifetime.Queue) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           width,
		Height:          height,
		Layers:          1,
	}, nil, &fb)
	if isError(ret) {
		return fb, errors.Wrap(NewError(ret), "create framebuffer")
	}
	scope.Push(func() { vk.DestroyFramebuffer(device, fb, nil) })
	return fb, nil
}
