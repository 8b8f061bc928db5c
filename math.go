package meshvk

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Transform is the uniform block read by the vertex shader.
type Transform struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

const transformSize = 3 * 16 * 4

var (
	eye    = mgl32.Vec3{2, 2, 2}
	center = mgl32.Vec3{0, 0, 0}
	up     = mgl32.Vec3{0, 0, 1}
)

const (
	rotationSpeed = 90 // degrees per second
	fovy          = 45
	nearPlane     = 0.1
	farPlane      = 10
)

// VulkanProjectionMat converts an OpenGL style projection matrix to Vulkan style.
// Vulkan has a top-left clip space with a [0, 1] depth range instead of [-1, 1].
func VulkanProjectionMat(proj mgl32.Mat4) mgl32.Mat4 {
	// Flip Y, then map z from [-w, w] to [0, w].
	clip := mgl32.Translate3D(0, 0, 0.5).Mul4(mgl32.Scale3D(1, -1, 0.5))
	return clip.Mul4(proj)
}

// TransformAt spins the model around Z and views it from (2,2,2).
func TransformAt(elapsed time.Duration, extent vk.Extent2D) Transform {
	angle := float32(elapsed.Seconds()) * mgl32.DegToRad(rotationSpeed)
	aspect := float32(1)
	if extent.Height != 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}
	return Transform{
		Model: mgl32.HomogRotate3DZ(angle),
		View:  mgl32.LookAtV(eye, center, up),
		Proj:  VulkanProjectionMat(mgl32.Perspective(mgl32.DegToRad(fovy), aspect, nearPlane, farPlane)),
	}
}

// Put writes t into dst in column-major order, as std140 expects for mat4.
func (t *Transform) Put(dst []byte) {
	off := 0
	for _, m := range []*mgl32.Mat4{&t.Model, &t.View, &t.Proj} {
		for _, f := range m {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
			off += 4
		}
	}
}
