package framevk

import (
	"os"
	"testing"

	"github.com/andewx/framevk/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGPURenderer skips the test on machines without compiled shaders or a
// usable Vulkan device.
func newGPURenderer(t *testing.T, cfg Config) *Renderer {
	t.Helper()
	for _, name := range []string{"opaque.vert", "opaque.frag", "post_process.vert", "post_process.frag"} {
		if _, err := os.Stat(cfg.Shader(name)); err != nil {
			t.Skipf("shader %s not compiled, run go generate", name)
		}
	}
	r := New(cfg, NewParams())
	if err := r.Initialize(); err != nil {
		t.Skipf("no vulkan device: %v", err)
	}
	t.Cleanup(func() { assert.NoError(t, r.Shutdown()) })
	return r
}

func TestVulkanIdentityRoundTrip(t *testing.T) {
	cfg := testConfig(64, 48)
	cfg.Objects = []ObjectConfig{{Mesh: MeshQuad, Material: MaterialPostProcess}}
	cfg.Logo = ""
	r := newGPURenderer(t, cfg)

	in := make([]byte, 64*48*4)
	for i := 0; i < len(in); i += 4 {
		px := i / 4
		in[i], in[i+1], in[i+2], in[i+3] = byte(px%64*4), byte(px/64*5), 0x40, 0xff
	}
	out := make([]byte, len(in))

	for tick := 0; tick < 3; tick++ {
		require.NoError(t, r.LoadBitsToImage(in))
		require.NoError(t, r.DrawFrame(scene.Timing{ProjectTime: float64(tick) / 30, FrameRate: 30}))
		require.NoError(t, r.TransferFrame(out))
		require.Equal(t, in, out, "tick %d", tick)
	}
}

func TestVulkanDefaultScene(t *testing.T) {
	r := newGPURenderer(t, testConfig(1280, 720))

	in := make([]byte, 1280*720*4)
	out := make([]byte, len(in))
	require.NoError(t, r.LoadBitsToImage(in))
	require.NoError(t, r.DrawFrame(scene.Timing{ProjectTime: 2, FrameRate: 25, ExternalParam: 0.5}))
	require.NoError(t, r.TransferFrame(out))
	assert.Len(t, out, 1280*720*4)
	assert.NotEqual(t, in, out, "the logo is drawn over the black input")

	var resized bool
	require.NoError(t, r.CheckFrameSize(320, 200, func(w, h uint32) { resized = true }))
	assert.True(t, resized)
	small := make([]byte, 320*200*4)
	require.NoError(t, r.LoadBitsToImage(small))
	require.NoError(t, r.DrawFrame(scene.Timing{}))
	require.NoError(t, r.TransferFrame(small))
}

func TestVulkanDeviceSwap(t *testing.T) {
	cfg := testConfig(32, 32)
	cfg.Objects = []ObjectConfig{{Mesh: MeshQuad, Material: MaterialPostProcess}}
	cfg.Logo = ""
	r := newGPURenderer(t, cfg)

	require.NoError(t, r.ChangeRenderingDevice(len(r.Devices())))
	assert.Equal(t, 0, r.DeviceIndex())

	in := make([]byte, 32*32*4)
	for i := range in {
		in[i] = byte(i)
	}
	out := make([]byte, len(in))
	require.NoError(t, r.LoadBitsToImage(in))
	require.NoError(t, r.DrawFrame(scene.Timing{}))
	require.NoError(t, r.TransferFrame(out))
	assert.Equal(t, in, out)
}
