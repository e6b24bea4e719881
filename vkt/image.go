package vkt

import (
	"unsafe"

	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//ImageSpec describes an image to allocate
type ImageSpec struct {
	Name   string
	Width  uint32
	Height uint32
	Format vk.Format
	Tiling vk.ImageTiling
	Usage  vk.ImageUsageFlagBits
	Aspect vk.ImageAspectFlagBits
	Memory vk.MemoryPropertyFlags
	//Map the backing memory for the whole lifetime of the image
	Mapped bool
}

// Image is an image with its memory, its view and the layout it was last
// transitioned to. The tracked layout follows recording order, which matches
// execution order because frame phases are fully serialised.
type Image struct {
	Spec       ImageSpec
	Handle     vk.Image
	View       vk.ImageView
	Allocation *Allocation
	Layout     vk.ImageLayout

	ptr unsafe.Pointer
}

// NewImage creates, allocates, binds and views an image. Destruction is
// registered into scope.
func NewImage(dev *Device, spec ImageSpec, scope *lifetime.Queue) (img *Image, err error) {
	defer checkErr(&err)

	if spec.Width == 0 || spec.Height == 0 {
		return nil, errors.Errorf("image %s: zero extent %dx%d", spec.Name, spec.Width, spec.Height)
	}
	if spec.Aspect == 0 {
		spec.Aspect = vk.ImageAspectColorBit
	}

	img = &Image{Spec: spec, Layout: vk.ImageLayoutUndefined}
	ret := vk.CreateImage(dev.Handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        spec.Format,
		Extent:        vk.Extent3D{Width: spec.Width, Height: spec.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        spec.Tiling,
		Usage:         vk.ImageUsageFlags(spec.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img.Handle)
	orPanic(errors.Wrapf(Result(ret, "create image"), "image %s", spec.Name))
	handle := img.Handle
	scope.Push(func() { vk.DestroyImage(dev.Handle, handle, nil) })

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev.Handle, img.Handle, &req)
	req.Deref()
	img.Allocation, err = dev.Allocator.Allocate(req, spec.Memory, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "image %s", spec.Name)
	}
	alloc := img.Allocation
	scope.Push(func() { dev.Allocator.Free(alloc) })

	ret = vk.BindImageMemory(dev.Handle, img.Handle, alloc.Memory, 0)
	orPanic(errors.Wrapf(Result(ret, "bind image memory"), "image %s", spec.Name))

	if spec.Mapped {
		img.ptr, err = dev.Allocator.Map(alloc)
		if err != nil {
			return nil, errors.Wrapf(err, "image %s", spec.Name)
		}
	}

	// linear host images are only ever copied, they get no view
	if spec.Usage&(vk.ImageUsageSampledBit|vk.ImageUsageColorAttachmentBit|vk.ImageUsageDepthStencilAttachmentBit) != 0 {
		ret = vk.CreateImageView(dev.Handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img.Handle,
			ViewType: vk.ImageViewType2d,
			Format:   spec.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: img.Range(),
		}, nil, &img.View)
		orPanic(errors.Wrapf(Result(ret, "create image view"), "image %s", spec.Name))
		view := img.View
		scope.Push(func() { vk.DestroyImageView(dev.Handle, view, nil) })
	}
	return img, nil
}

func (img *Image) Range() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(img.Spec.Aspect),
		LevelCount: 1,
		LayerCount: 1,
	}
}

func (img *Image) Layers() vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{
		AspectMask: vk.ImageAspectFlags(img.Spec.Aspect),
		LayerCount: 1,
	}
}

func (img *Image) Extent() vk.Extent3D {
	return vk.Extent3D{Width: img.Spec.Width, Height: img.Spec.Height, Depth: 1}
}

// Subresource reports where the first mip level lives inside the image's
// memory. Only meaningful for linear images.
func (img *Image) Subresource(dev *Device) vk.SubresourceLayout {
	var layout vk.SubresourceLayout
	vk.GetImageSubresourceLayout(dev.Handle, img.Handle, &vk.ImageSubresource{
		AspectMask: vk.ImageAspectFlags(img.Spec.Aspect),
	}, &layout)
	layout.Deref()
	return layout
}

//Host view of a persistently mapped image
func (img *Image) Mapped() []byte {
	if img.ptr == nil {
		return nil
	}
	return mapped(img.ptr, int(img.Allocation.Size))
}
