package framevk

import (
	"io"
	"sort"
	"sync"

	"github.com/andewx/framevk/vkt"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type ParamGroup string

const (
	GroupMain                  ParamGroup = "main"
	GroupRenderingDeviceSelect ParamGroup = "renderingDeviceSelect"
	GroupShader                ParamGroup = "shader"
)

// Parameter ids known to the renderer.
const (
	ParamAudioGain        = "audioGain"
	ParamVideoParam       = "videoParam"
	ParamRenderingDevice  = "renderingDevice"
	ParamCustomShaderName = "customShaderName"
)

// ErrUnknownParam is returned when a preset names a parameter that does not
// exist or has a different type.
var ErrUnknownParam = errors.New("framevk: unknown parameter")

//Automatable parameter normalized to [0, 1]
type FloatParam struct {
	Title   string
	Units   string
	Group   ParamGroup
	Default float64
	Value   float64
}

type Uint8Param struct {
	Title string
	Group ParamGroup
	Value uint8
}

type StringParam struct {
	Title string
	Group ParamGroup
	Value string
}

// Params is an in-process parameter store. Values live in one map per type,
// keyed by parameter id. It implements Host and is safe for concurrent use.
type Params struct {
	mu      sync.RWMutex
	floats  map[string]*FloatParam
	uint8s  map[string]*Uint8Param
	strings map[string]*StringParam
	devices []vkt.DeviceInfo
}

var _ Host = (*Params)(nil)

func NewParams() *Params {
	return &Params{
		floats: map[string]*FloatParam{
			ParamAudioGain:  {Title: "Audio Gain", Units: "dB", Group: GroupMain, Default: 0.5, Value: 0.5},
			ParamVideoParam: {Title: "Video Param", Units: "units", Group: GroupMain, Default: 0.5, Value: 0.5},
		},
		uint8s: map[string]*Uint8Param{
			ParamRenderingDevice: {Title: "Rendering Device", Group: GroupRenderingDeviceSelect},
		},
		strings: map[string]*StringParam{
			ParamCustomShaderName: {Title: "Custom Shader", Group: GroupShader},
		},
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (p *Params) Float(id string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	param, ok := p.floats[id]
	if !ok {
		return 0, false
	}
	return param.Value, true
}

func (p *Params) SetFloat(id string, v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	param, ok := p.floats[id]
	if !ok {
		return errors.Wrapf(ErrUnknownParam, "float %q", id)
	}
	param.Value = clamp01(v)
	return nil
}

func (p *Params) Text(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	param, ok := p.strings[id]
	if !ok {
		return "", false
	}
	return param.Value, true
}

func (p *Params) SetText(id, v string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	param, ok := p.strings[id]
	if !ok {
		return errors.Wrapf(ErrUnknownParam, "string %q", id)
	}
	param.Value = v
	return nil
}

//Current video parameter forwarded into scene.Timing
func (p *Params) VideoParam() float64 {
	v, _ := p.Float(ParamVideoParam)
	return v
}

func (p *Params) RenderingDevice() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int(p.uint8s[ParamRenderingDevice].Value)
}

// SetRenderingDevice stores index, clamped to the uint8 range of the
// parameter.
func (p *Params) SetRenderingDevice(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uint8s[ParamRenderingDevice].Value = clampUint8(int64(index))
}

func (p *Params) SetRenderingDevices(devices []vkt.DeviceInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices = append([]vkt.DeviceInfo(nil), devices...)
}

func (p *Params) RenderingDevices() []vkt.DeviceInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]vkt.DeviceInfo(nil), p.devices...)
}

// IDs lists the parameter ids of group in sorted order.
func (p *Params) IDs(group ParamGroup) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for id, param := range p.floats {
		if param.Group == group {
			ids = append(ids, id)
		}
	}
	for id, param := range p.uint8s {
		if param.Group == group {
			ids = append(ids, id)
		}
	}
	for id, param := range p.strings {
		if param.Group == group {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func clampUint8(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

type preset struct {
	Floats  map[string]float64 `toml:"floats"`
	Uint8s  map[string]int64   `toml:"uint8s"`
	Strings map[string]string  `toml:"strings"`
	Devices []vkt.DeviceInfo   `toml:"devices,omitempty"`
}

// SavePreset writes every parameter value as TOML.
func (p *Params) SavePreset(w io.Writer) error {
	p.mu.RLock()
	pr := preset{
		Floats:  make(map[string]float64, len(p.floats)),
		Uint8s:  make(map[string]int64, len(p.uint8s)),
		Strings: make(map[string]string, len(p.strings)),
		Devices: p.devices,
	}
	for id, param := range p.floats {
		pr.Floats[id] = param.Value
	}
	for id, param := range p.uint8s {
		pr.Uint8s[id] = int64(param.Value)
	}
	for id, param := range p.strings {
		pr.Strings[id] = param.Value
	}
	p.mu.RUnlock()
	return errors.Wrap(toml.NewEncoder(w).Encode(pr), "encode preset")
}

// LoadPreset applies a preset written by SavePreset. Unknown ids fail the
// whole load without changing any value. Out of range values are clamped.
func (p *Params) LoadPreset(r io.Reader) error {
	var pr preset
	if err := toml.NewDecoder(r).Decode(&pr); err != nil {
		return errors.Wrap(err, "decode preset")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range pr.Floats {
		if _, ok := p.floats[id]; !ok {
			return errors.Wrapf(ErrUnknownParam, "float %q", id)
		}
	}
	for id := range pr.Uint8s {
		if _, ok := p.uint8s[id]; !ok {
			return errors.Wrapf(ErrUnknownParam, "uint8 %q", id)
		}
	}
	for id := range pr.Strings {
		if _, ok := p.strings[id]; !ok {
			return errors.Wrapf(ErrUnknownParam, "string %q", id)
		}
	}
	for id, v := range pr.Floats {
		p.floats[id].Value = clamp01(v)
	}
	for id, v := range pr.Uint8s {
		p.uint8s[id].Value = clampUint8(v)
	}
	for id, v := range pr.Strings {
		p.strings[id].Value = v
	}
	return nil
}
