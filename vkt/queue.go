package vkt

import (
	"math/bits"
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

const roleMask = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit)

//QueueFamilies holds the resolved family index per role. Transfer and Compute
//alias Graphics when the device offers no better family for them.
type QueueFamilies struct {
	Graphics uint32
	Transfer uint32
	Compute  uint32
}

//Distinct lists each family once, graphics first
func (q QueueFamilies) Distinct() []uint32 {
	out := []uint32{q.Graphics}
	for _, f := range []uint32{q.Transfer, q.Compute} {
		seen := false
		for _, o := range out {
			if o == f {
				seen = true
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}

//Returns true if any family exposes a graphics queue
func HasGraphicsFamily(families []vk.QueueFlags) bool {
	for _, f := range families {
		if f&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return true
		}
	}
	return false
}

// ResolveQueueFamilies assigns a family to each role. Families are considered
// from the most specialised (fewest role bits) to the most generic, ties kept
// in enumeration order, and each role takes the first family that supports
// it. A device without a graphics family cannot be resolved.
func ResolveQueueFamilies(families []vk.QueueFlags) (QueueFamilies, bool) {
	order := make([]int, 0, len(families))
	for i, f := range families {
		if f&roleMask != 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bits.OnesCount32(uint32(families[order[a]]&roleMask)) <
			bits.OnesCount32(uint32(families[order[b]]&roleMask))
	})

	find := func(bit vk.QueueFlagBits) (uint32, bool) {
		for _, i := range order {
			if families[i]&vk.QueueFlags(bit) != 0 {
				return uint32(i), true
			}
		}
		return 0, false
	}

	var q QueueFamilies
	graphics, ok := find(vk.QueueGraphicsBit)
	if !ok {
		return q, false
	}
	q.Graphics, q.Transfer, q.Compute = graphics, graphics, graphics
	if f, ok := find(vk.QueueTransferBit); ok {
		q.Transfer = f
	}
	if f, ok := find(vk.QueueComputeBit); ok {
		q.Compute = f
	}
	return q, true
}

//Queue is one device queue bound to its family
type Queue struct {
	Handle vk.Queue
	Family uint32
}

func queueCreateInfos(families []uint32) []vk.DeviceQueueCreateInfo {
	priority := float32(1.0)
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{priority},
		}
	}
	return infos
}

//Waits until all work submitted to the queue finished
func (q Queue) WaitIdle() error {
	return Result(vk.QueueWaitIdle(q.Handle), "queue wait idle")
}
