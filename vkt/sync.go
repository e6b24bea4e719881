package vkt

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SyncObjects coordinate the three frame phases: the fence blocks the CPU on
// ingest and readback, ImageAvailable orders draw after ingest and
// RenderFinished orders readback after draw.
type SyncObjects struct {
	device         vk.Device
	Fence          vk.Fence
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
}

func NewSyncObjects(device vk.Device, scope *lifetime.Queue) (s *SyncObjects, err error) {
	defer checkErr(&err)

	s = &SyncObjects{device: device}
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &s.Fence)
	orPanic(Result(ret, "create fence"))
	fence := s.Fence
	scope.Push(func() { vk.DestroyFence(device, fence, nil) })

	for _, sem := range []*vk.Semaphore{&s.ImageAvailable, &s.RenderFinished} {
		ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, sem)
		orPanic(Result(ret, "create semaphore"))
		handle := *sem
		scope.Push(func() { vk.DestroySemaphore(device, handle, nil) })
	}
	return s, nil
}

// WaitAndReset blocks until the fence signals and resets it for the next
// submission. The wait is unbounded.
func (s *SyncObjects) WaitAndReset() error {
	fences := []vk.Fence{s.Fence}
	ret := vk.WaitForFences(s.device, 1, fences, vk.True, vk.MaxUint64)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "wait for fence")
	}
	return Result(vk.ResetFences(s.device, 1, fences), "reset fence")
}

//Submission describes the synchronisation of one queue submit
type Submission struct {
	Wait       []vk.Semaphore
	WaitStages []vk.PipelineStageFlags
	Signal     []vk.Semaphore
	Fence      vk.Fence
}

func Submit(queue Queue, cmd vk.CommandBuffer, s Submission) error {
	if len(s.WaitStages) != len(s.Wait) {
		return errors.Errorf("submit: %d wait semaphores with %d stage masks", len(s.Wait), len(s.WaitStages))
	}
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(s.Wait)),
		PWaitSemaphores:      s.Wait,
		PWaitDstStageMask:    s.WaitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: uint32(len(s.Signal)),
		PSignalSemaphores:    s.Signal,
	}
	ret := vk.QueueSubmit(queue.Handle, 1, []vk.SubmitInfo{info}, s.Fence)
	return Result(ret, "queue submit")
}
