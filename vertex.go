package meshvk

import (
	"encoding/binary"
	"math"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Vertex is one face-vertex of the mesh as laid out in the vertex buffer.
type Vertex struct {
	Pos      [3]float32
	TexCoord [2]float32
}

const vertexSize = int(unsafe.Sizeof(Vertex{}))

// Mesh is a flat vertex list with its index buffer.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func vertexBindings() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}}
}

func vertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Location: 0,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Location: 1,
			Binding:  0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.TexCoord)),
		},
	}
}

// vertexBytes packs vertices in little-endian order, matching the attribute layout.
func vertexBytes(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*vertexSize)
	for _, v := range vertices {
		for _, f := range v.Pos {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.TexCoord {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

func indexBytes(indices []uint32) []byte {
	out := make([]byte, 0, len(indices)*4)
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}
