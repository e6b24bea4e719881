package framevk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andewx/framevk/vkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsDefaults(t *testing.T) {
	p := NewParams()
	assert.Equal(t, 0.5, p.VideoParam())
	assert.Equal(t, 0, p.RenderingDevice())
	name, ok := p.Text(ParamCustomShaderName)
	assert.True(t, ok)
	assert.Empty(t, name)

	assert.Equal(t, []string{ParamAudioGain, ParamVideoParam}, p.IDs(GroupMain))
	assert.Equal(t, []string{ParamRenderingDevice}, p.IDs(GroupRenderingDeviceSelect))
	assert.Equal(t, []string{ParamCustomShaderName}, p.IDs(GroupShader))
}

func TestParamsClamp(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.SetFloat(ParamVideoParam, 3))
	assert.Equal(t, 1.0, p.VideoParam())
	require.NoError(t, p.SetFloat(ParamAudioGain, -1))
	gain, _ := p.Float(ParamAudioGain)
	assert.Zero(t, gain)

	p.SetRenderingDevice(300)
	assert.Equal(t, 255, p.RenderingDevice())
	p.SetRenderingDevice(-2)
	assert.Equal(t, 0, p.RenderingDevice())
}

func TestParamsUnknownIDs(t *testing.T) {
	p := NewParams()
	assert.ErrorIs(t, p.SetFloat("brightness", 1), ErrUnknownParam)
	assert.ErrorIs(t, p.SetText(ParamVideoParam, "x"), ErrUnknownParam)
	_, ok := p.Float(ParamCustomShaderName)
	assert.False(t, ok)
}

func TestPresetRoundTrip(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.SetFloat(ParamVideoParam, 0.25))
	require.NoError(t, p.SetText(ParamCustomShaderName, "sepia"))
	p.SetRenderingDevice(2)
	p.SetRenderingDevices([]vkt.DeviceInfo{{Name: "GPU 0", Type: "integrated"}})

	var buf bytes.Buffer
	require.NoError(t, p.SavePreset(&buf))

	q := NewParams()
	require.NoError(t, q.LoadPreset(&buf))
	assert.Equal(t, 0.25, q.VideoParam())
	assert.Equal(t, 2, q.RenderingDevice())
	name, _ := q.Text(ParamCustomShaderName)
	assert.Equal(t, "sepia", name)
}

func TestLoadPresetRejectsUnknownAtomically(t *testing.T) {
	p := NewParams()
	err := p.LoadPreset(strings.NewReader(`
[floats]
videoParam = 0.9
brightness = 0.1
`))
	assert.ErrorIs(t, err, ErrUnknownParam)
	assert.Equal(t, 0.5, p.VideoParam(), "nothing applied")
}

func TestLoadPresetClamps(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.LoadPreset(strings.NewReader(`
[floats]
audioGain = 7.5

[uint8s]
renderingDevice = 1000
`)))
	gain, _ := p.Float(ParamAudioGain)
	assert.Equal(t, 1.0, gain)
	assert.Equal(t, 255, p.RenderingDevice())

	assert.Error(t, p.LoadPreset(strings.NewReader("floats = [")))
}
