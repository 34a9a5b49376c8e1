package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraUniformSize is the byte size of the camera uniform at render group 0.
const CameraUniformSize = 80

// GPUCameraUniformSource is the WGSL CameraUniform struct matching GPUCameraUniform.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the camera uniform as the vertex shader reads it.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0: column-major view-projection
	CameraPosition [3]float32  // offset 64: world-space eye position
	_pad           float32     // offset 76
}

// NewGPUCameraUniform packs a view-projection matrix and eye position.
//
// Parameters:
//   - viewProj: projection × view
//   - position: the camera position in world space
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func NewGPUCameraUniform(viewProj mgl32.Mat4, position mgl32.Vec3) GPUCameraUniform {
	return GPUCameraUniform{ViewProj: viewProj, CameraPosition: position}
}

// Size returns the byte size of the uniform.
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal writes the uniform as little-endian float32s.
//
// Returns:
//   - []byte: CameraUniformSize bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, CameraUniformSize)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i, v := range g.ViewProj {
		put(i*4, v)
	}
	for i, v := range g.CameraPosition {
		put(64+i*4, v)
	}
	return buf
}
