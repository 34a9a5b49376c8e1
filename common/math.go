package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Projection defaults used when a camera is built without explicit settings.
const (
	DefaultFovY float32 = 60    // vertical field of view in degrees
	DefaultNear float32 = 0.1   // near clipping plane distance
	DefaultFar  float32 = 100.0 // far clipping plane distance
)

// ModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The result is T · Rx · Ry · Rz · S, so a vertex is scaled, then rotated about Z, Y and X,
// then translated. All matrices are column-major.
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(position[0], position[1], position[2])
	m = m.Mul4(mgl32.HomogRotate3DX(rotation[0]))
	m = m.Mul4(mgl32.HomogRotate3DY(rotation[1]))
	m = m.Mul4(mgl32.HomogRotate3DZ(rotation[2]))
	return m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Perspective creates a perspective projection matrix with OpenGL clip-space depth [-1, 1],
// matching the near/far rows FrustumFromMatrix extracts.
//
// Parameters:
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovYDegrees, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovYDegrees), aspect, near, far)
}

// ViewMatrix returns the view matrix for a camera placed at position with the given Euler
// rotation, computed as the inverse of the camera's own model matrix.
//
// Parameters:
//   - position: camera position in world space
//   - rotation: camera rotation angles in radians
//
// Returns:
//   - mgl32.Mat4: the world-to-view transform
func ViewMatrix(position, rotation mgl32.Vec3) mgl32.Mat4 {
	return ModelMatrix(position, rotation, mgl32.Vec3{1, 1, 1}).Inv()
}
