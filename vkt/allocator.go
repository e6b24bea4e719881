package vkt

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type MemoryType struct {
	Flags vk.MemoryPropertyFlags
	Heap  uint32
}

const (
	DeviceLocal  = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	HostVisible  = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	HostReadback = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyHostCachedBit)
)

// FindMemoryType returns the first memory type allowed by typeBits that has
// every flag in want.
func FindMemoryType(types []MemoryType, typeBits uint32, want vk.MemoryPropertyFlags) (uint32, error) {
	for i, t := range types {
		if typeBits&(1<<uint(i)) == 0 {
			continue
		}
		if t.Flags&want == want {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits %#x flags %#x", typeBits, want)
}

//Allocation is one dedicated device memory block
type Allocation struct {
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Flags  vk.MemoryPropertyFlags
	mapped unsafe.Pointer
}

// Allocator hands out one dedicated allocation per resource and keeps count
// of live blocks so that leaks show up when the device scope is flushed.
type Allocator struct {
	device vk.Device
	types  []MemoryType
	log    *slog.Logger

	mu   sync.Mutex
	live map[*Allocation]struct{}
}

func NewAllocator(device vk.Device, types []MemoryType, logger *slog.Logger) *Allocator {
	return &Allocator{
		device: device,
		types:  types,
		log:    logger,
		live:   make(map[*Allocation]struct{}),
	}
}

// Allocate reserves memory for the given requirements. When want cannot be
// satisfied and fallback is non-zero, fallback is tried instead.
func (a *Allocator) Allocate(req vk.MemoryRequirements, want, fallback vk.MemoryPropertyFlags) (*Allocation, error) {
	index, err := FindMemoryType(a.types, req.MemoryTypeBits, want)
	flags := want
	if err != nil && fallback != 0 {
		index, err = FindMemoryType(a.types, req.MemoryTypeBits, fallback)
		flags = fallback
	}
	if err != nil {
		return nil, err
	}

	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(a.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: index,
	}, nil, &memory)
	if isError(ret) {
		return nil, errors.Wrapf(NewError(ret), "allocate %d bytes", req.Size)
	}

	alloc := &Allocation{Memory: memory, Size: req.Size, Flags: flags}
	a.mu.Lock()
	a.live[alloc] = struct{}{}
	a.mu.Unlock()
	return alloc, nil
}

// Map maps the whole allocation. Repeated calls return the same pointer.
func (a *Allocator) Map(alloc *Allocation) (unsafe.Pointer, error) {
	if alloc.mapped != nil {
		return alloc.mapped, nil
	}
	var data unsafe.Pointer
	ret := vk.MapMemory(a.device, alloc.Memory, 0, alloc.Size, 0, &data)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "map memory")
	}
	alloc.mapped = data
	return data, nil
}

func (a *Allocator) Unmap(alloc *Allocation) {
	if alloc.mapped == nil {
		return
	}
	vk.UnmapMemory(a.device, alloc.Memory)
	alloc.mapped = nil
}

// Write copies data at offset through a temporary mapping. Persistently mapped
// allocations stay mapped.
func (a *Allocator) Write(alloc *Allocation, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > int(alloc.Size) {
		return errors.Errorf("write of %d bytes at %d overflows %d byte allocation", len(data), offset, alloc.Size)
	}
	persistent := alloc.mapped != nil
	ptr, err := a.Map(alloc)
	if err != nil {
		return err
	}
	copy(mapped(ptr, int(alloc.Size))[offset:], data)
	if !persistent {
		a.Unmap(alloc)
	}
	return nil
}

func (a *Allocator) Free(alloc *Allocation) {
	if alloc == nil {
		return
	}
	a.Unmap(alloc)
	vk.FreeMemory(a.device, alloc.Memory, nil)
	a.mu.Lock()
	delete(a.live, alloc)
	a.mu.Unlock()
}

//Number of allocations not yet freed
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Destroy frees whatever is still allocated. Anything left over at this point
// is a leak and gets logged.
func (a *Allocator) Destroy() {
	a.mu.Lock()
	leaked := make([]*Allocation, 0, len(a.live))
	for alloc := range a.live {
		leaked = append(leaked, alloc)
	}
	a.mu.Unlock()
	if len(leaked) > 0 {
		a.log.Warn("allocator destroyed with live allocations", "count", len(leaked))
	}
	for _, alloc := range leaked {
		a.Free(alloc)
	}
}
