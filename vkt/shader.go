package vkt

import (
	"os"

	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

// ErrNotSPIRV is returned for shader files without the SPIR-V header.
var ErrNotSPIRV = errors.New("not a SPIR-V module")

func checkSPIRV(code []byte) error {
	if len(code) < 20 || len(code)%4 != 0 {
		return errors.Wrapf(ErrNotSPIRV, "%d bytes", len(code))
	}
	words := sliceUint32(code[:4])
	if words[0] != spirvMagic {
		return errors.Wrapf(ErrNotSPIRV, "magic %#08x", words[0])
	}
	return nil
}

// NewShaderModule wraps compiled SPIR-V code in a shader module.
func NewShaderModule(device vk.Device, code []byte, scope *lifetime.Queue) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	if err := checkSPIRV(code); err != nil {
		return module, err
	}
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if isError(ret) {
		return module, errors.Wrap(NewError(ret), "create shader module")
	}
	scope.Push(func() { vk.DestroyShaderModule(device, module, nil) })
	return module, nil
}

func LoadShaderModule(device vk.Device, path string, scope *lifetime.Queue) (vk.ShaderModule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	module, err := NewShaderModule(device, code, scope)
	return module, errors.Wrapf(err, "shader %s", path)
}
