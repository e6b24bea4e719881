package scene

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	lin "github.com/xlab/linmath"
)

// MaxObjects bounds the per object storage buffer.
const MaxObjects = 100

// ErrTooManyObjects is returned when a scene exceeds MaxObjects.
var ErrTooManyObjects = errors.Errorf("scene: more than %d objects", MaxObjects)

// CameraData is the set 0 binding 0 uniform block.
type CameraData struct {
	View     lin.Mat4x4
	Proj     lin.Mat4x4
	ViewProj lin.Mat4x4
}

// SceneData is the set 0 binding 1 dynamic uniform block. No lighting model
// reads it yet, it is uploaded zeroed unless the caller fills it.
type SceneData struct {
	FogColor          [4]float32
	FogDistances      [4]float32
	AmbientColor      [4]float32
	SunlightDirection [4]float32
	SunlightColor     [4]float32
}

//Set 1 storage buffer element
type ObjectData struct {
	Model lin.Mat4x4
}

// PushConstants is uploaded before every draw call.
type PushConstants struct {
	ObjectID   int32
	VideoParam float32
}

var (
	CameraDataSize    = binary.Size(CameraData{})
	SceneDataSize     = binary.Size(SceneData{})
	ObjectDataSize    = binary.Size(ObjectData{})
	PushConstantsSize = binary.Size(PushConstants{})
)

func encode(v interface{}) []byte {
	var buf bytes.Buffer
	// fixed size values only, Write cannot fail on a bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (c *CameraData) Bytes() []byte {
	return encode(c)
}

func (s *SceneData) Bytes() []byte {
	return encode(s)
}

func (p PushConstants) Bytes() []byte {
	return encode(p)
}

// EncodeObjects lays out objects as the storage buffer expects them.
func EncodeObjects(objects []ObjectData) ([]byte, error) {
	if len(objects) > MaxObjects {
		return nil, errors.Wrapf(ErrTooManyObjects, "%d objects", len(objects))
	}
	return encode(objects), nil
}
