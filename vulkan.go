package framevk

import (
	"log/slog"

	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// vulkanBackend is the Backend used outside of tests. Its fields are split
// by the scope that owns them; a scope's final action clears its fields so
// nothing outlives the handles it points at.
type vulkanBackend struct {
	cfg    Config
	log    *slog.Logger
	camera scene.Camera

	//Main scope
	instance *vkt.Instance
	selector *vkt.DeviceSelector

	//Device scope
	dev         *vkt.Device
	pass        vk.RenderPass
	res         *sceneResources
	sync        *vkt.SyncObjects
	ingestCmd   vk.CommandBuffer
	drawCmd     vk.CommandBuffer
	transferCmd vk.CommandBuffer

	//Semaphores signaled and not yet waited on
	imageAvailable bool
	renderFinished bool

	//Frame size scope
	targets *renderTargets
}

var _ Backend = (*vulkanBackend)(nil)

func newVulkanBackend(cfg Config, logger *slog.Logger) *vulkanBackend {
	return &vulkanBackend{
		cfg:    cfg,
		log:    logger.With("component", "vulkan"),
		camera: scene.DefaultCamera(),
	}
}

func (b *vulkanBackend) Open(scope *lifetime.Queue) ([]vkt.DeviceInfo, error) {
	if err := vkt.InitLoader(); err != nil {
		return nil, err
	}
	scope.Push(vkt.ReleaseLoader)
	scope.Push(func() {
		b.instance = nil
		b.selector = nil
	})

	instance, err := vkt.NewInstance(vkt.InstanceOptions{
		AppName:    "framevk",
		Validation: b.cfg.Validation,
		Logger:     b.log,
	}, scope)
	if err != nil {
		return nil, err
	}
	selector, err := vkt.EnumerateDevices(instance)
	if err != nil {
		return nil, err
	}
	if err := selector.RemoveUnsuitable(vkt.HasGraphicsQueue); err != nil {
		return nil, err
	}
	b.instance, b.selector = instance, selector

	infos := selector.Infos()
	for i, info := range infos {
		b.log.Info("suitable device", "index", i, "device", info.String())
	}
	return infos, nil
}

func (b *vulkanBackend) SetupDevice(index int, scope *lifetime.Queue) error {
	candidate, ok := b.selector.Candidate(index)
	if !ok {
		return errors.Errorf("no device at index %d", index)
	}
	scope.Push(func() {
		b.dev, b.pass, b.res, b.sync = nil, nil, nil, nil
		b.ingestCmd, b.drawCmd, b.transferCmd = nil, nil, nil
		b.imageAvailable, b.renderFinished = false, false
	})

	dev, err := vkt.NewDevice(candidate, vkt.DeviceOptions{
		Layers: b.instance.Layers(),
		Logger: b.log,
	}, scope)
	if err != nil {
		return err
	}
	if !dev.SupportsBlit() {
		b.log.Warn("device cannot blit into linear images, readback uses copies", "device", candidate.Info.Name)
	}

	pass, err := newRenderPass(dev.Handle, scope)
	if err != nil {
		return err
	}
	res, err := newSceneResources(b.cfg, dev, pass, scope, b.log)
	if err != nil {
		return err
	}
	sync, err := vkt.NewSyncObjects(dev.Handle, scope)
	if err != nil {
		return err
	}

	pool := dev.GraphicsPool()
	cmds := make([]vk.CommandBuffer, 3)
	for i := range cmds {
		if cmds[i], err = pool.Allocate(); err != nil {
			return err
		}
	}

	b.dev, b.pass, b.res, b.sync = dev, pass, res, sync
	b.ingestCmd, b.drawCmd, b.transferCmd = cmds[0], cmds[1], cmds[2]
	return nil
}

func (b *vulkanBackend) CreateRenderTargets(width, height uint32, scope *lifetime.Queue) error {
	if b.dev == nil {
		return errors.New("render targets without a device")
	}
	scope.Push(func() { b.targets = nil })
	targets, err := newRenderTargets(b.dev, b.pass, width, height, scope)
	if err != nil {
		return err
	}
	if err := b.res.bindFrame(targets.ppSource); err != nil {
		return err
	}
	b.targets = targets
	return nil
}

func (b *vulkanBackend) WaitIdle() error {
	if b.dev == nil {
		return nil
	}
	return b.dev.WaitIdle()
}
