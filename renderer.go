package framevk

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
)

var (
	// ErrBufferSize is returned by the frame phases for pixel buffers shorter
	// than width*height*4 bytes.
	ErrBufferSize = errors.New("framevk: pixel buffer smaller than the frame")
	// ErrAborted is returned by every tick after a tick failed on the GPU.
	ErrAborted = errors.New("framevk: renderer aborted after a failed tick")
	// ErrNoSuitableDevice is returned when no GPU exposes a graphics queue.
	ErrNoSuitableDevice = vkt.ErrNoSuitableDevice
)

type Option func(*Renderer)

// WithBackend replaces the Vulkan backend.
func WithBackend(b Backend) Option {
	return func(r *Renderer) { r.backend = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.log = logger }
}

// Renderer runs the ingest, draw and readback phases of a frame on a GPU
// that can be swapped at runtime.
//
// The frame phases and CheckFrameSize are meant for a single video thread.
// ChangeRenderingDevice may be called from any other thread, ticks racing it
// are dropped.
type Renderer struct {
	cfg     Config
	host    Host
	backend Backend
	log     *slog.Logger

	//Scopes, flushed frame first and main last
	main   *lifetime.Queue
	device *lifetime.Queue
	frame  *lifetime.Queue

	gate  gate
	state atomic.Int32

	//Frame size, guarded by gate
	width  uint32
	height uint32
	//Same size packed as width<<32|height, readable from any thread
	size atomic.Uint64

	infoMu  sync.RWMutex
	devices []vkt.DeviceInfo
	index   int

	initialized           atomic.Bool
	exceptionOnInitialize atomic.Bool
	aborted               atomic.Bool
	closed                atomic.Bool
}

func New(cfg Config, host Host, opts ...Option) *Renderer {
	width, height := clampSize(cfg.Width, cfg.Height)
	r := &Renderer{
		cfg:    cfg,
		host:   host,
		main:   lifetime.New("main"),
		device: lifetime.New("device"),
		frame:  lifetime.New("frame size"),
		width:  width,
		height: height,
	}
	r.size.Store(uint64(width)<<32 | uint64(height))
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = discardLogger()
	}
	if r.backend == nil {
		r.backend = newVulkanBackend(cfg, r.log)
	}
	r.log = r.log.With("component", "renderer")
	return r
}

func clampSize(width, height uint32) (uint32, uint32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// fail routes a setup error to the fatal path. The renderer stays alive but
// every later call becomes a no-op.
func (r *Renderer) fail(err error) {
	r.exceptionOnInitialize.Store(true)
	r.log.Error("renderer setup failed, rendering disabled", "err", err)
}

// Initialize creates the instance, picks the persisted device (falling back
// to index 0 when it no longer exists) and builds every device and frame
// resource. A failure disables the renderer instead of leaving it half
// built.
func (r *Renderer) Initialize() error {
	if r.initialized.Load() || r.exceptionOnInitialize.Load() || r.closed.Load() {
		return nil
	}
	r.gate.halt()
	defer r.gate.resume()

	err := vkt.Guard(func() error {
		devices, err := r.backend.Open(r.main)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			return errors.WithStack(ErrNoSuitableDevice)
		}
		r.setDevices(devices)
		r.host.SetRenderingDevices(devices)

		index := r.correctIndex(r.host.RenderingDevice())
		return r.setUpDevice(index)
	})
	if err != nil {
		r.fail(err)
		return err
	}
	r.initialized.Store(true)
	r.log.Info("renderer initialized", "device", r.DeviceIndex(), "width", r.width, "height", r.height)
	return nil
}

// correctIndex falls back to device 0 for an index outside the device list
// and persists the correction.
func (r *Renderer) correctIndex(index int) int {
	if index >= 0 && index < len(r.Devices()) {
		return index
	}
	r.log.Warn("rendering device index out of range, falling back to 0",
		"index", index, "devices", len(r.Devices()))
	r.host.SetRenderingDevice(0)
	return 0
}

func (r *Renderer) setUpDevice(index int) error {
	if err := r.backend.SetupDevice(index, r.device); err != nil {
		return errors.Wrapf(err, "set up device %d", index)
	}
	r.infoMu.Lock()
	r.index = index
	r.infoMu.Unlock()
	if err := r.backend.CreateRenderTargets(r.width, r.height, r.frame); err != nil {
		return errors.Wrapf(err, "render targets %dx%d", r.width, r.height)
	}
	return nil
}

// Shutdown waits for the device and flushes the frame size, device and main
// scopes in that order. The renderer cannot be used afterwards.
func (r *Renderer) Shutdown() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.gate.halt()
	defer r.gate.resume()

	err := vkt.Guard(r.backend.WaitIdle)
	// a faulting scope must not keep the outer ones alive
	for _, scope := range []*lifetime.Queue{r.frame, r.device, r.main} {
		scope := scope
		flushErr := vkt.Guard(func() error {
			scope.Flush()
			return nil
		})
		if flushErr != nil {
			r.log.Error("release failed", "scope", scope.Name(), "err", flushErr)
			if err == nil {
				err = errors.Wrapf(flushErr, "release %s scope", scope.Name())
			}
		}
	}
	r.initialized.Store(false)
	if err != nil {
		r.log.Error("shutdown", "err", err)
		return err
	}
	r.log.Info("renderer shut down")
	return nil
}

// ChangeRenderingDevice tears down every device resource and rebuilds it on
// the device at index. An index outside the device list selects device 0,
// and the correction is persisted through the host.
func (r *Renderer) ChangeRenderingDevice(index int) error {
	if !r.active() {
		return nil
	}
	r.gate.halt()
	defer r.gate.resume()
	if !r.active() {
		return nil
	}

	err := vkt.Guard(func() error {
		if err := r.backend.WaitIdle(); err != nil {
			return err
		}
		r.frame.Flush()
		r.device.Flush()
		index := r.correctIndex(index)
		return r.setUpDevice(index)
	})
	if err != nil {
		r.fail(err)
		return err
	}
	r.aborted.Store(false)
	r.log.Info("rendering device changed", "device", r.DeviceIndex())
	return nil
}

// CheckFrameSize rebuilds the render targets when the frame size changed.
// Both dimensions are clamped to at least 1. onResized, if set, runs after a
// successful rebuild, once the frame phases are unlocked again. Before
// Initialize the size is only recorded.
func (r *Renderer) CheckFrameSize(width, height uint32, onResized func(width, height uint32)) error {
	width, height = clampSize(width, height)
	resized, err := r.resize(width, height)
	if err != nil || !resized {
		return err
	}
	if onResized != nil {
		onResized(width, height)
	}
	return nil
}

func (r *Renderer) resize(width, height uint32) (bool, error) {
	if r.exceptionOnInitialize.Load() || r.closed.Load() {
		return false, nil
	}
	if !r.gate.enter() {
		return false, nil
	}
	defer r.gate.leave()

	if width == r.width && height == r.height {
		return false, nil
	}
	if !r.initialized.Load() {
		r.setSize(width, height)
		return false, nil
	}
	if r.aborted.Load() {
		return false, ErrAborted
	}
	if err := r.backend.WaitIdle(); err != nil {
		return false, r.abort(err)
	}
	r.frame.Flush()
	if err := r.backend.CreateRenderTargets(width, height, r.frame); err != nil {
		return false, r.abort(errors.Wrapf(err, "render targets %dx%d", width, height))
	}
	r.log.Debug("frame resized", "from_width", r.width, "from_height", r.height, "width", width, "height", height)
	r.setSize(width, height)
	return true, nil
}

// setSize stores the frame size for the phases and publishes it to
// FrameSize. Callers hold the gate.
func (r *Renderer) setSize(width, height uint32) {
	r.width, r.height = width, height
	r.size.Store(uint64(width)<<32 | uint64(height))
}

func (r *Renderer) abort(err error) error {
	r.aborted.Store(true)
	r.log.Error("frame failed, renderer aborted", "state", r.State(), "err", err)
	return err
}

func (r *Renderer) active() bool {
	return r.initialized.Load() && !r.exceptionOnInitialize.Load() && !r.closed.Load()
}

func (r *Renderer) frameBytes() int {
	return int(r.width) * int(r.height) * 4
}

// phase runs one tick phase under the gate. A rejected or disabled phase is
// a silent no-op.
func (r *Renderer) phase(s State, buffer []byte, run func() error) error {
	if !r.gate.enter() {
		r.log.Debug("tick dropped during device change", "phase", s)
		return nil
	}
	defer r.gate.leave()
	if !r.active() {
		return nil
	}
	if r.aborted.Load() {
		return ErrAborted
	}
	if buffer != nil && len(buffer) < r.frameBytes() {
		return errors.Wrapf(ErrBufferSize, "%d bytes for a %dx%d frame", len(buffer), r.width, r.height)
	}

	r.state.Store(int32(s))
	defer r.state.Store(int32(Idle))
	if err := run(); err != nil {
		return r.abort(err)
	}
	return nil
}

// LoadBitsToImage uploads one packed RGBA frame as the background of the
// next draw and as the post-process source.
func (r *Renderer) LoadBitsToImage(pixels []byte) error {
	if pixels == nil {
		pixels = []byte{}
	}
	return r.phase(Ingesting, pixels, func() error {
		return r.backend.LoadBits(pixels[:r.frameBytes()])
	})
}

func (r *Renderer) DrawFrame(t scene.Timing) error {
	return r.phase(Drawing, nil, func() error {
		return r.backend.Draw(t)
	})
}

// TransferFrame reads the composited frame into out as packed RGBA.
func (r *Renderer) TransferFrame(out []byte) error {
	if out == nil {
		out = []byte{}
	}
	return r.phase(ReadingBack, out, func() error {
		return r.backend.Transfer(out[:r.frameBytes()])
	})
}

func (r *Renderer) setDevices(devices []vkt.DeviceInfo) {
	r.infoMu.Lock()
	defer r.infoMu.Unlock()
	r.devices = append([]vkt.DeviceInfo(nil), devices...)
}

// Devices lists the suitable devices in enumeration order.
func (r *Renderer) Devices() []vkt.DeviceInfo {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return append([]vkt.DeviceInfo(nil), r.devices...)
}

func (r *Renderer) DeviceIndex() int {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.index
}

func (r *Renderer) State() State {
	return State(r.state.Load())
}

func (r *Renderer) Aborted() bool {
	return r.aborted.Load()
}

//Size the render targets are currently built for, safe from any thread
func (r *Renderer) FrameSize() (width, height uint32) {
	size := r.size.Load()
	return uint32(size >> 32), uint32(size)
}

// Disabled reports whether setup failed and rendering was turned off.
func (r *Renderer) Disabled() bool {
	return r.exceptionOnInitialize.Load()
}
