package vkt

import (
	"log/slog"

	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const extPortabilitySubset = "VK_KHR_portability_subset"

type DeviceOptions struct {
	//Layers enabled on the instance, repeated on the device for older loaders
	Layers []string
	Logger *slog.Logger
}

// Device is one logical device instantiated on a candidate. It owns the
// queues, one command pool per distinct queue family and the allocator.
type Device struct {
	Candidate DeviceCandidate
	Handle    vk.Device
	Families  QueueFamilies
	Graphics  Queue
	Transfer  Queue
	Compute   Queue
	Allocator *Allocator

	pools map[uint32]*CommandPool
	log   *slog.Logger
}

// NewDevice creates the logical device for candidate. Every handle created on
// the way is registered into scope in creation order, so flushing the scope
// tears the device down in reverse.
func NewDevice(candidate DeviceCandidate, opts DeviceOptions, scope *lifetime.Queue) (dev *Device, err error) {
	defer checkErr(&err)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	families, ok := ResolveQueueFamilies(candidate.QueueFamilies)
	if !ok {
		return nil, errors.Wrapf(ErrNoSuitableDevice, "%s has no graphics queue family", candidate.Info.Name)
	}
	distinct := families.Distinct()

	extensions := NewExtensionSet(candidate.Extensions, nil, []string{extPortabilitySubset}).Enabled()
	infos := queueCreateInfos(distinct)

	var handle vk.Device
	ret := vk.CreateDevice(candidate.Handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(infos)),
		PQueueCreateInfos:       infos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(opts.Layers)),
		PpEnabledLayerNames:     safeStrings(opts.Layers),
	}, nil, &handle)
	if isError(ret) {
		return nil, errors.Wrapf(NewError(ret), "create device on %s", candidate.Info.Name)
	}
	scope.Push(func() {
		vk.DestroyDevice(handle, nil)
	})

	dev = &Device{
		Candidate: candidate,
		Handle:    handle,
		Families:  families,
		pools:     make(map[uint32]*CommandPool, len(distinct)),
		log:       logger,
	}
	dev.Graphics = dev.queue(families.Graphics)
	dev.Transfer = dev.queue(families.Transfer)
	dev.Compute = dev.queue(families.Compute)

	for _, family := range distinct {
		pool, err := NewCommandPool(handle, family)
		if err != nil {
			return nil, err
		}
		scope.Push(pool.Destroy)
		dev.pools[family] = pool
	}

	dev.Allocator = NewAllocator(handle, candidate.MemoryTypes, logger)
	scope.Push(dev.Allocator.Destroy)

	logger.Info("device created",
		"name", candidate.Info.Name,
		"graphics", families.Graphics,
		"transfer", families.Transfer,
		"compute", families.Compute,
		"blit", candidate.SupportsBlit)
	return dev, nil
}

func (d *Device) queue(family uint32) Queue {
	q := Queue{Family: family}
	vk.GetDeviceQueue(d.Handle, family, 0, &q.Handle)
	return q
}

//Command pool for the given queue family, nil if the device has no queue there
func (d *Device) Pool(family uint32) *CommandPool {
	return d.pools[family]
}

func (d *Device) GraphicsPool() *CommandPool {
	return d.pools[d.Families.Graphics]
}

func (d *Device) WaitIdle() error {
	return Result(vk.DeviceWaitIdle(d.Handle), "device wait idle")
}

func (d *Device) SupportsBlit() bool {
	return d.Candidate.SupportsBlit
}
