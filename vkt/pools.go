package vkt

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool allocates primary command buffers for one queue family. Buffers
// may be reset individually.
type CommandPool struct {
	device  vk.Device
	pool    vk.CommandPool
	family  uint32
	buffers []vk.CommandBuffer
}

func NewCommandPool(device vk.Device, family uint32) (*CommandPool, error) {
	core := &CommandPool{device: device, family: family}
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &core.pool)
	if isError(ret) {
		return nil, errors.Wrapf(NewError(ret), "create command pool for family %d", family)
	}
	return core, nil
}

func (c *CommandPool) Family() uint32 {
	return c.family
}

// Allocate returns a new primary command buffer owned by the pool. It is
// freed with the pool.
func (c *CommandPool) Allocate() (vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate command buffer")
	}
	c.buffers = append(c.buffers, buffers[0])
	return buffers[0], nil
}

func (c *CommandPool) Destroy() {
	if len(c.buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(c.buffers)), c.buffers)
		c.buffers = nil
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
}

// Restart resets cmd and begins recording into it again.
func Restart(cmd vk.CommandBuffer) error {
	ret := vk.ResetCommandBuffer(cmd, 0)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "reset command buffer")
	}
	return Begin(cmd, 0)
}

func Begin(cmd vk.CommandBuffer, flags vk.CommandBufferUsageFlagBits) error {
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(flags),
	})
	return Result(ret, "begin command buffer")
}

func End(cmd vk.CommandBuffer) error {
	return Result(vk.EndCommandBuffer(cmd), "end command buffer")
}

// Immediate records a one-time command buffer, submits it on queue and waits
// for the queue to drain. Used for uploads and layout setup outside the frame.
func (c *CommandPool) Immediate(queue Queue, record func(cmd vk.CommandBuffer)) error {
	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "allocate immediate command buffer")
	}
	defer vk.FreeCommandBuffers(c.device, c.pool, 1, buffers)

	cmd := buffers[0]
	if err := Begin(cmd, vk.CommandBufferUsageOneTimeSubmitBit); err != nil {
		return err
	}
	record(cmd)
	if err := End(cmd); err != nil {
		return err
	}
	if err := Submit(queue, cmd, Submission{}); err != nil {
		return err
	}
	return queue.WaitIdle()
}
