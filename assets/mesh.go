// Package assets decodes the mesh and texture files the renderer draws.
package assets

import (
	"io"
	"os"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/pkg/errors"

	"github.com/andewx/meshvk"
)

// LoadMesh decodes a Wavefront OBJ file. Materials are ignored.
func LoadMesh(path string) (*meshvk.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer file.Close()
	mesh, err := DecodeMesh(file)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s", path)
	}
	return mesh, nil
}

// DecodeMesh triangulates every face as a fan and emits one vertex per
// face-vertex; the index buffer is the identity. V is flipped for Vulkan's
// top-left texture origin.
func DecodeMesh(r io.Reader) (*meshvk.Mesh, error) {
	decoder, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	mesh := &meshvk.Mesh{}
	for _, object := range decoder.Objects {
		for _, face := range object.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range [3]int{0, i - 1, i} {
					v, err := faceVertex(decoder, face, corner)
					if err != nil {
						return nil, err
					}
					mesh.Indices = append(mesh.Indices, uint32(len(mesh.Vertices)))
					mesh.Vertices = append(mesh.Vertices, v)
				}
			}
		}
	}
	if len(mesh.Vertices) == 0 {
		return nil, errors.New("obj has no faces")
	}
	return mesh, nil
}

func faceVertex(decoder *obj.Decoder, face obj.Face, corner int) (meshvk.Vertex, error) {
	var v meshvk.Vertex
	pos := face.Vertices[corner]
	if pos < 0 || pos*3+2 >= len(decoder.Vertices) {
		return v, errors.Errorf("vertex index %d out of range", pos)
	}
	v.Pos = [3]float32{
		decoder.Vertices[pos*3],
		decoder.Vertices[pos*3+1],
		decoder.Vertices[pos*3+2],
	}
	// Faces without texture coordinates keep (0, 0).
	if corner < len(face.Uvs) {
		uv := face.Uvs[corner]
		if uv >= 0 && uv*2+1 < len(decoder.Uvs) {
			v.TexCoord = [2]float32{
				decoder.Uvs[uv*2],
				1.0 - decoder.Uvs[uv*2+1],
			}
		}
	}
	return v, nil
}
