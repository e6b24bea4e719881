package vkt

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	loaderOnce sync.Once
	loaderErr  error
	loaderGLFW bool
)

// InitLoader resolves vkGetInstanceProcAddr and loads the global Vulkan entry
// points. GLFW's loader lookup is tried first; on headless hosts where GLFW
// cannot initialise the system Vulkan loader is used directly. Safe to call
// more than once, only the first call does any work.
func InitLoader() error {
	loaderOnce.Do(func() {
		if err := glfw.Init(); err == nil && glfw.VulkanSupported() {
			vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
			loaderGLFW = true
		} else {
			if err == nil {
				glfw.Terminate()
			}
			if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
				loaderErr = errors.Wrap(err, "vulkan loader not found")
				return
			}
		}
		if err := vk.Init(); err != nil {
			loaderErr = errors.Wrap(err, "vulkan init")
		}
	})
	return loaderErr
}

// ReleaseLoader terminates GLFW if InitLoader brought it up.
func ReleaseLoader() {
	if loaderGLFW {
		glfw.Terminate()
	}
}
