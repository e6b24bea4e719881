package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/andewx/framevk"
	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParamsOverridesPreset(t *testing.T) {
	preset := filepath.Join(t.TempDir(), "preset.toml")
	require.NoError(t, os.WriteFile(preset, []byte("[uint8s]\nrenderingDevice = 3\n[floats]\nvideoParam = 0.75\n"), 0o644))

	params, err := loadParams(options{preset: preset, device: -1, param: -1})
	require.NoError(t, err)
	assert.Equal(t, 3, params.RenderingDevice())
	assert.Equal(t, 0.75, params.VideoParam())

	params, err = loadParams(options{preset: preset, device: 1, param: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 1, params.RenderingDevice())
	assert.Equal(t, 0.1, params.VideoParam())
}

func TestLoadParamsBadPreset(t *testing.T) {
	_, err := loadParams(options{preset: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)

	preset := filepath.Join(t.TempDir(), "preset.toml")
	require.NoError(t, os.WriteFile(preset, []byte("[floats]\nbrightness = 1.0\n"), 0o644))
	_, err = loadParams(options{preset: preset})
	assert.ErrorIs(t, err, framevk.ErrUnknownParam)
}

func TestLoadInputScales(t *testing.T) {
	frame, err := loadInput("", 4, 3)
	require.NoError(t, err)
	assert.Len(t, frame.Pix, 4*3*4)

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	frame, err = loadInput(path, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), frame.Bounds())
	got := frame.RGBAAt(4, 4)
	assert.InDelta(t, 200, int(got.R), 1)
	assert.InDelta(t, 100, int(got.G), 1)
	assert.InDelta(t, 50, int(got.B), 1)
	assert.InDelta(t, 255, int(got.A), 1)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	require.NoError(t, writePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

// setupFailingBackend enumerates devices but cannot build on any of them,
// like a machine without compiled shaders.
type setupFailingBackend struct {
	devices []vkt.DeviceInfo
}

func (b *setupFailingBackend) Open(*lifetime.Queue) ([]vkt.DeviceInfo, error) {
	return b.devices, nil
}

func (b *setupFailingBackend) SetupDevice(int, *lifetime.Queue) error {
	return errors.New("shader opaque.vert.spv not found")
}

func (b *setupFailingBackend) CreateRenderTargets(uint32, uint32, *lifetime.Queue) error { return nil }
func (b *setupFailingBackend) WaitIdle() error { return nil }
func (b *setupFailingBackend) LoadBits([]byte) error { return nil }
func (b *setupFailingBackend) Draw(scene.Timing) error { return nil }
func (b *setupFailingBackend) Transfer([]byte) error { return nil }

func TestListDevicesAfterSetupFailure(t *testing.T) {
	backend := &setupFailingBackend{devices: []vkt.DeviceInfo{
		{Name: "Integrated", Type: "integrated", APIVersion: "1.3.0", VendorID: 0x8086},
		{Name: "Discrete", Type: "discrete", APIVersion: "1.3.0", VendorID: 0x10de},
	}}
	r := framevk.New(framevk.DefaultConfig(), framevk.NewParams(), framevk.WithBackend(backend))
	initErr := r.Initialize()
	require.Error(t, initErr)

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	var list bytes.Buffer
	require.NoError(t, listDevices(&list, r, initErr, logger))
	assert.Contains(t, list.String(), "0  Integrated")
	assert.Contains(t, list.String(), "1  Discrete")
	assert.Contains(t, out.String(), "device setup failed")
}

func TestListDevicesWithoutDevices(t *testing.T) {
	r := framevk.New(framevk.DefaultConfig(), framevk.NewParams(),
		framevk.WithBackend(&setupFailingBackend{}))
	initErr := r.Initialize()

	var list bytes.Buffer
	err := listDevices(&list, r, initErr, slog.Default())
	assert.ErrorIs(t, err, framevk.ErrNoSuitableDevice)
	assert.Empty(t, list.String())
}
