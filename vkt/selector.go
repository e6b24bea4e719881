package vkt

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const blitFormat = vk.FormatR8g8b8a8Unorm

// DeviceInfo is the descriptive part of a candidate, safe to hand to a UI.
type DeviceInfo struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	APIVersion string `toml:"api_version"`
	VendorID   uint32 `toml:"vendor_id"`
	DeviceID   uint32 `toml:"device_id"`
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s, Vulkan %s)", d.Name, d.Type, d.APIVersion)
}

// DeviceCandidate is an enumerated GPU with its properties cached at
// enumeration time. Candidates are never mutated afterwards.
type DeviceCandidate struct {
	Handle        vk.PhysicalDevice
	Info          DeviceInfo
	QueueFamilies []vk.QueueFlags
	MemoryTypes   []MemoryType
	Extensions    []string
	//Linear R8G8B8A8 images may be blit destinations and optimal ones blit sources
	SupportsBlit bool
}

// DeviceSelector holds the ordered list of candidates.
type DeviceSelector struct {
	candidates []DeviceCandidate
}

//Wraps an already built candidate list, order is kept
func NewDeviceSelector(candidates []DeviceCandidate) *DeviceSelector {
	return &DeviceSelector{candidates: append([]DeviceCandidate(nil), candidates...)}
}

// EnumerateDevices lists every physical device visible to the instance.
func EnumerateDevices(instance *Instance) (sel *DeviceSelector, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance.Handle(), &count, nil)
	orPanic(Result(ret, "enumerate physical devices"))
	gpus := make([]vk.PhysicalDevice, count)
	if count > 0 {
		ret = vk.EnumeratePhysicalDevices(instance.Handle(), &count, gpus)
		orPanic(Result(ret, "enumerate physical devices"))
	}

	sel = &DeviceSelector{}
	for _, gpu := range gpus[:count] {
		candidate, err := describe(gpu)
		if err != nil {
			return nil, err
		}
		sel.candidates = append(sel.candidates, candidate)
	}
	return sel, nil
}

func describe(gpu vk.PhysicalDevice) (DeviceCandidate, error) {
	candidate := DeviceCandidate{Handle: gpu}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	candidate.Info = DeviceInfo{
		Name:       vk.ToString(props.DeviceName[:]),
		Type:       deviceTypeName(props.DeviceType),
		APIVersion: versionString(props.ApiVersion),
		VendorID:   props.VendorID,
		DeviceID:   props.DeviceID,
	}

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)
	for _, family := range families {
		family.Deref()
		candidate.QueueFamilies = append(candidate.QueueFamilies, family.QueueFlags)
	}

	var mem vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &mem)
	mem.Deref()
	for i := uint32(0); i < mem.MemoryTypeCount; i++ {
		mt := mem.MemoryTypes[i]
		mt.Deref()
		candidate.MemoryTypes = append(candidate.MemoryTypes, MemoryType{Flags: mt.PropertyFlags, Heap: mt.HeapIndex})
	}

	ext, err := DeviceExtensions(gpu)
	if err != nil {
		return candidate, errors.Wrapf(err, "extensions of %s", candidate.Info.Name)
	}
	candidate.Extensions = ext

	var format vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(gpu, blitFormat, &format)
	format.Deref()
	candidate.SupportsBlit = format.LinearTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureBlitDstBit) != 0 &&
		format.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureBlitSrcBit) != 0

	return candidate, nil
}

//Default suitability predicate: the device must offer a graphics queue family
func HasGraphicsQueue(c DeviceCandidate) bool {
	return HasGraphicsFamily(c.QueueFamilies)
}

// RemoveUnsuitable drops every candidate the predicate rejects, keeping the
// survivors in enumeration order. An empty result is ErrNoSuitableDevice.
func (s *DeviceSelector) RemoveUnsuitable(suitable func(DeviceCandidate) bool) error {
	kept := s.candidates[:0]
	for _, c := range s.candidates {
		if suitable(c) {
			kept = append(kept, c)
		}
	}
	s.candidates = kept
	if len(kept) == 0 {
		return ErrNoSuitableDevice
	}
	return nil
}

func (s *DeviceSelector) Len() int {
	return len(s.candidates)
}

func (s *DeviceSelector) Candidate(index int) (DeviceCandidate, bool) {
	if index < 0 || index >= len(s.candidates) {
		return DeviceCandidate{}, false
	}
	return s.candidates[index], true
}

//Descriptive properties of every candidate, in order
func (s *DeviceSelector) Infos() []DeviceInfo {
	out := make([]DeviceInfo, len(s.candidates))
	for i, c := range s.candidates {
		out[i] = c.Info
	}
	return out
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated GPU"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	case vk.PhysicalDeviceTypeOther:
		return "Other"
	default:
		return "Unknown"
	}
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
