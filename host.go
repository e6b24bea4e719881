package framevk

import "github.com/andewx/framevk/vkt"

// Host is the parameter layer the renderer reports to. It persists the
// selected device index and presents the device list to the user.
type Host interface {
	RenderingDevice() int
	SetRenderingDevice(index int)
	SetRenderingDevices(devices []vkt.DeviceInfo)
}
