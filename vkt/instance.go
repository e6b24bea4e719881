package vkt

import (
	"log/slog"
	"runtime"

	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	extDebugReport            = "VK_EXT_debug_report"
	extPortabilityEnumerate   = "VK_KHR_portability_enumeration"
	instanceCreatePortability = vk.InstanceCreateFlags(0x00000001) //VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
)

// APIVersion is the Vulkan version requested for the instance. 1.1 is needed
// for negative viewport heights.
var APIVersion = vk.MakeVersion(1, 1, 0)

type InstanceOptions struct {
	AppName    string
	Validation bool
	Logger     *slog.Logger
}

// Instance is a Vulkan instance plus the layers it was created with.
type Instance struct {
	handle vk.Instance
	layers []string
	debug  *debugReporter
	log    *slog.Logger
}

func validationLayers() []string {
	return []string{
		"VK_LAYER_KHRONOS_synchronization2",
		"VK_LAYER_KHRONOS_validation",
	}
}

// NewInstance creates the instance and registers its destruction into scope.
// The loader must have been initialised with InitLoader.
func NewInstance(opts InstanceOptions, scope *lifetime.Queue) (inst *Instance, err error) {
	defer checkErr(&err)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inst = &Instance{log: logger}

	var wantedExt, wantedLayers []string
	if opts.Validation {
		wantedExt = append(wantedExt, extDebugReport)
		wantedLayers = validationLayers()
	}
	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" {
		wantedExt = append(wantedExt, extPortabilityEnumerate)
		flags = instanceCreatePortability
	}

	available, err := InstanceExtensions()
	if err != nil {
		return nil, err
	}
	extensions := NewExtensionSet(available, nil, wantedExt)
	if missing := extensions.Unavailable(); len(missing) > 0 {
		logger.Warn("instance extensions unavailable", "names", missing)
	}

	availableLayers, err := ValidationLayers()
	if err != nil {
		return nil, err
	}
	layers := NewExtensionSet(availableLayers, nil, wantedLayers)
	if missing := layers.Unavailable(); len(missing) > 0 {
		logger.Warn("validation layers unavailable", "names", missing)
	}
	inst.layers = layers.Enabled()
	enabledExt := extensions.Enabled()

	appName := opts.AppName
	if appName == "" {
		appName = "framevk"
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(APIVersion),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(appName),
			PEngineName:        safeString("framevk"),
		},
		EnabledExtensionCount:   uint32(len(enabledExt)),
		PpEnabledExtensionNames: safeStrings(enabledExt),
		EnabledLayerCount:       uint32(len(inst.layers)),
		PpEnabledLayerNames:     safeStrings(inst.layers),
		Flags:                   flags,
	}, nil, &instance)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create instance")
	}
	scope.Push(func() {
		vk.DestroyInstance(instance, nil)
	})
	inst.handle = instance

	if err := vk.InitInstance(instance); err != nil {
		return nil, errors.Wrap(err, "load instance entry points")
	}

	if contains(enabledExt, extDebugReport) {
		inst.debug, err = newDebugReporter(instance, logger)
		if err != nil {
			return nil, err
		}
		scope.Push(inst.debug.destroy)
	}

	logger.Info("vulkan instance created", "layers", inst.layers, "extensions", enabledExt)
	return inst, nil
}

func (i *Instance) Handle() vk.Instance {
	return i.handle
}

// Layers lists the layers enabled on the instance. Devices enable the same set.
func (i *Instance) Layers() []string {
	return i.layers
}
