package vkt

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a buffer with its dedicated allocation.
type Buffer struct {
	Handle     vk.Buffer
	Size       vk.DeviceSize
	Usage      vk.BufferUsageFlagBits
	Allocation *Allocation

	alloc *Allocator
}

// NewBuffer creates a buffer of size bytes backed by memory with the given
// properties. Destruction is registered into scope.
func NewBuffer(dev *Device, size int, usage vk.BufferUsageFlagBits, memory vk.MemoryPropertyFlags, scope *lifetime.Queue) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("buffer of %d bytes", size)
	}
	b := &Buffer{Size: vk.DeviceSize(size), Usage: usage, alloc: dev.Allocator}
	ret := vk.CreateBuffer(dev.Handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        b.Size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &b.Handle)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create buffer")
	}
	handle := b.Handle
	scope.Push(func() { vk.DestroyBuffer(dev.Handle, handle, nil) })

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev.Handle, b.Handle, &req)
	req.Deref()
	alloc, err := dev.Allocator.Allocate(req, memory, 0)
	if err != nil {
		return nil, errors.Wrap(err, "buffer memory")
	}
	b.Allocation = alloc
	scope.Push(func() { dev.Allocator.Free(alloc) })

	if ret := vk.BindBufferMemory(dev.Handle, b.Handle, alloc.Memory, 0); isError(ret) {
		return nil, errors.Wrap(NewError(ret), "bind buffer memory")
	}
	return b, nil
}

// NewBufferWithData creates a host visible buffer and fills it with data.
func NewBufferWithData(dev *Device, data []byte, usage vk.BufferUsageFlagBits, scope *lifetime.Queue) (*Buffer, error) {
	b, err := NewBuffer(dev, len(data), usage, HostVisible, scope)
	if err != nil {
		return nil, err
	}
	if err := b.Write(0, data); err != nil {
		return nil, err
	}
	return b, nil
}

// Write maps the buffer, copies data at offset and unmaps it.
func (b *Buffer) Write(offset int, data []byte) error {
	return b.alloc.Write(b.Allocation, offset, data)
}

func (b *Buffer) Descriptor() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{Buffer: b.Handle, Offset: 0, Range: b.Size}
}

//Descriptor covering only the first size bytes, for dynamic uniform bindings
func (b *Buffer) DescriptorRange(size int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{Buffer: b.Handle, Offset: 0, Range: vk.DeviceSize(size)}
}
