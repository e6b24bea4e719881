package vkt

import vk "github.com/vulkan-go/vulkan"

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(NewError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(NewError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

//ExtensionSet resolves wanted and required names against what the platform offers.
//Used for instance extensions, device extensions and layers alike.
type ExtensionSet struct {
	wanted   []string
	required []string
	actual   []string
}

func NewExtensionSet(actual, required, wanted []string) *ExtensionSet {
	return &ExtensionSet{wanted: wanted, required: required, actual: actual}
}

//Required names the platform does not offer
func (e *ExtensionSet) Missing() []string {
	missing := []string{}
	for _, req := range e.required {
		if !contains(e.actual, req) {
			missing = append(missing, req)
		}
	}
	return missing
}

//Wanted names the platform does not offer, these are skipped silently
func (e *ExtensionSet) Unavailable() []string {
	out := []string{}
	for _, want := range e.wanted {
		if !contains(e.actual, want) {
			out = append(out, want)
		}
	}
	return out
}

//Names to enable: every required name then every available wanted name, without duplicates
func (e *ExtensionSet) Enabled() []string {
	implement := []string{}
	for _, req := range e.required {
		if !contains(implement, req) {
			implement = append(implement, req)
		}
	}
	for _, want := range e.wanted {
		if contains(e.actual, want) && !contains(implement, want) {
			implement = append(implement, want)
		}
	}
	return implement
}
