package framevk

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
)

// Backend does the GPU work behind the Renderer. The Renderer owns the
// lifetime scopes and the state machine, a Backend registers everything it
// creates into the scope it is handed.
type Backend interface {
	// Open creates the instance and returns the suitable devices in
	// enumeration order. Resources go into the main scope.
	Open(scope *lifetime.Queue) ([]vkt.DeviceInfo, error)
	// SetupDevice builds the device and every device wide resource for the
	// device at index.
	SetupDevice(index int, scope *lifetime.Queue) error
	// CreateRenderTargets builds the frame sized images and framebuffer.
	CreateRenderTargets(width, height uint32, scope *lifetime.Queue) error
	// WaitIdle drains the current device. It is a no-op without a device.
	WaitIdle() error

	LoadBits(pixels []byte) error
	Draw(t scene.Timing) error
	Transfer(out []byte) error
}
