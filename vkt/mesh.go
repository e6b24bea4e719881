package vkt

import (
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/andewx/framevk/lifetime"
	"github.com/g3n/engine/loader/obj"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// MeshData is a CPU side mesh. Indices may be empty, in which case the
// vertices are drawn as a plain triangle list.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

func Triangle() *MeshData {
	return &MeshData{
		Name: "triangle",
		Vertices: []Vertex{
			{Position: [3]float32{1, 1, 0}, Normal: [3]float32{0, 0, 1}, Color: [3]float32{0, 1, 0}, UV: [2]float32{1, 1}},
			{Position: [3]float32{-1, 1, 0}, Normal: [3]float32{0, 0, 1}, Color: [3]float32{0.5, 1, 0}, UV: [2]float32{0, 1}},
			{Position: [3]float32{0, -1, 0}, Normal: [3]float32{0, 0, 1}, Color: [3]float32{1, 0, 0.5}, UV: [2]float32{0.5, 0}},
		},
	}
}

//Full screen quad in clip space, uv (0,0) at the first row of the frame
func Quad() *MeshData {
	corner := func(x, y, u, v float32) Vertex {
		return Vertex{
			Position: [3]float32{x, y, 0},
			Normal:   [3]float32{0, 0, 1},
			Color:    [3]float32{1, 1, 1},
			UV:       [2]float32{u, v},
		}
	}
	return &MeshData{
		Name: "quad",
		Vertices: []Vertex{
			corner(-1, -1, 0, 1),
			corner(1, -1, 1, 1),
			corner(1, 1, 1, 0),
			corner(-1, 1, 0, 0),
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

type objKey struct {
	vertex, uv, normal int
}

// ParseOBJ decodes Wavefront OBJ data. Polygons are fanned into triangles,
// identical position/uv/normal triples share one vertex, the v texture
// coordinate is flipped and the vertex color is taken from the normal.
func ParseOBJ(name string, r io.Reader) (*MeshData, error) {
	dec, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return nil, errors.Wrapf(err, "decode obj %s", name)
	}
	mesh := &MeshData{Name: name}
	seen := map[objKey]uint32{}

	at := func(list []int, i int) int {
		if i < len(list) {
			return list[i]
		}
		return -1
	}
	add := func(face obj.Face, i int) error {
		key := objKey{at(face.Vertices, i), at(face.Uvs, i), at(face.Normals, i)}
		if index, ok := seen[key]; ok {
			mesh.Indices = append(mesh.Indices, index)
			return nil
		}
		var v Vertex
		if key.vertex < 0 || (key.vertex+1)*3 > len(dec.Vertices) {
			return errors.Errorf("obj %s: vertex index %d out of range", name, key.vertex)
		}
		copy(v.Position[:], dec.Vertices[key.vertex*3:key.vertex*3+3])
		if key.uv >= 0 && (key.uv+1)*2 <= len(dec.Uvs) {
			v.UV = [2]float32{dec.Uvs[key.uv*2], 1 - dec.Uvs[key.uv*2+1]}
		}
		if key.normal >= 0 && (key.normal+1)*3 <= len(dec.Normals) {
			copy(v.Normal[:], dec.Normals[key.normal*3:key.normal*3+3])
		}
		v.Color = v.Normal

		index := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
		mesh.Indices = append(mesh.Indices, index)
		seen[key] = index
		return nil
	}

	for _, o := range dec.Objects {
		for _, face := range o.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					if err := add(face, corner); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if len(mesh.Indices) == 0 {
		return nil, errors.Errorf("obj %s has no faces", name)
	}
	return mesh, nil
}

func LoadOBJ(name, path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer f.Close()
	return ParseOBJ(name, f)
}

// Mesh is a mesh resident in host visible vertex and index buffers.
type Mesh struct {
	Name   string
	Vertex *Buffer
	//Nil for non indexed meshes
	Index *Buffer
	Count uint32
}

func (m *MeshData) Indexed() bool {
	return len(m.Indices) > 0
}

func (m *MeshData) Upload(dev *Device, scope *lifetime.Queue) (*Mesh, error) {
	if len(m.Vertices) == 0 {
		return nil, errors.Errorf("mesh %s has no vertices", m.Name)
	}
	vertices, err := Bytes(m.Vertices)
	if err != nil {
		return nil, err
	}
	mesh := &Mesh{Name: m.Name, Count: uint32(len(m.Vertices))}
	mesh.Vertex, err = NewBufferWithData(dev, vertices, vk.BufferUsageVertexBufferBit, scope)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s vertices", m.Name)
	}
	if m.Indexed() {
		indices := make([]byte, 4*len(m.Indices))
		for i, index := range m.Indices {
			binary.LittleEndian.PutUint32(indices[i*4:], index)
		}
		mesh.Index, err = NewBufferWithData(dev, indices, vk.BufferUsageIndexBufferBit, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %s indices", m.Name)
		}
		mesh.Count = uint32(len(m.Indices))
	}
	return mesh, nil
}

// Bind binds the mesh buffers into cmd.
func (m *Mesh) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{m.Vertex.Handle}, []vk.DeviceSize{0})
	if m.Index != nil {
		vk.CmdBindIndexBuffer(cmd, m.Index.Handle, 0, vk.IndexTypeUint32)
	}
}

func (m *Mesh) Draw(cmd vk.CommandBuffer) {
	if m.Index != nil {
		vk.CmdDrawIndexed(cmd, m.Count, 1, 0, 0, 0)
		return
	}
	vk.CmdDraw(cmd, m.Count, 1, 0, 0)
}
