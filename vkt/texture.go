package vkt

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/image/draw"
)

// ToRGBA returns img as tightly packed 8 bit RGBA with its origin at 0,0.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(rgba, image.Point{}, img, bounds, draw.Src, nil)
	return rgba
}

func DecodeImage(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return ToRGBA(img), nil
}

func LoadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()
	rgba, err := DecodeImage(f)
	return rgba, errors.Wrapf(err, "image %s", path)
}

// UploadTexture copies pixels into a new sampled image through a staging
// buffer. The image is left in SHADER_READ_ONLY.
func UploadTexture(dev *Device, name string, pixels *image.RGBA, format vk.Format, scope *lifetime.Queue) (*Image, error) {
	size := pixels.Rect.Size()
	img, err := NewImage(dev, ImageSpec{
		Name:   name,
		Width:  uint32(size.X),
		Height: uint32(size.Y),
		Format: format,
		Tiling: vk.ImageTilingOptimal,
		Usage:  vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit,
		Memory: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	}, scope)
	if err != nil {
		return nil, err
	}

	// staging memory dies with this call
	staging := lifetime.New("staging " + name)
	defer staging.Flush()
	buf, err := NewBufferWithData(dev, pixels.Pix, vk.BufferUsageTransferSrcBit, staging)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s staging", name)
	}
	err = dev.GraphicsPool().Immediate(dev.Graphics, func(cmd vk.CommandBuffer) {
		img.Transition(cmd, vk.ImageLayoutTransferDstOptimal)
		CopyBufferToImage(cmd, buf, img)
		img.Transition(cmd, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	return img, errors.Wrapf(err, "texture %s upload", name)
}

func NewSampler(device vk.Device, filter vk.Filter, scope *lifetime.Queue) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:         vk.StructureTypeSamplerCreateInfo,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapMode:    vk.SamplerMipmapModeNearest,
		AddressModeU:  vk.SamplerAddressModeClampToEdge,
		AddressModeV:  vk.SamplerAddressModeClampToEdge,
		AddressModeW:  vk.SamplerAddressModeClampToEdge,
		MaxAnisotropy: 1,
		CompareOp:     vk.CompareOpAlways,
		BorderColor:   vk.BorderColorFloatTransparentBlack,
	}, nil, &sampler)
	if isError(ret) {
		return sampler, errors.Wrap(NewError(ret), "create sampler")
	}
	scope.Push(func() { vk.DestroySampler(device, sampler, nil) })
	return sampler, nil
}
