package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// FrustumPlaneBufferSize is the byte size of the packed plane buffer: 6 planes × 4 float32.
const FrustumPlaneBufferSize = 6 * 4 * 4

// FrustumFromMatrix extracts frustum planes from a projection or view-projection matrix.
// Uses the Gribb/Hartmann method for plane extraction. The planes are expressed in the space
// the matrix maps from: view space for a bare projection, world space for projection × view.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - m: the projection (× view) matrix, column-major as stored by mgl32
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	var f Frustum

	// For column-major matrix M, element M[row][col] is at index col*4 + row,
	// so row i is (m[i], m[4+i], m[8+i], m[12+i]).
	row := func(i int) [4]float32 {
		return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combine := func(a, b [4]float32, sign float32) Plane {
		return NewPlane(a[0]+sign*b[0], a[1]+sign*b[1], a[2]+sign*b[2], a[3]+sign*b[3]).Normalize()
	}

	f.Planes[FrustumLeft] = combine(r3, r0, 1)
	f.Planes[FrustumRight] = combine(r3, r0, -1)
	f.Planes[FrustumBottom] = combine(r3, r1, 1)
	f.Planes[FrustumTop] = combine(r3, r1, -1)
	f.Planes[FrustumNear] = combine(r3, r2, 1)
	f.Planes[FrustumFar] = combine(r3, r2, -1)

	return f
}

// IntersectsBox tests b against each plane using the corner furthest along the plane normal
// (the positive vertex). The box is rejected as soon as that corner lies behind any plane.
// The test is conservative: boxes near frustum edges may be accepted while invisible.
//
// Parameters:
//   - b: the box to test
//
// Returns:
//   - bool: false if any plane places the box entirely outside
func (f *Frustum) IntersectsBox(b Box) bool {
	if b.IsEmpty() {
		return false
	}
	for i := range f.Planes {
		p := &f.Planes[i]
		x := b.Min[0]
		if p.Normal[0] > 0 {
			x = b.Max[0]
		}
		y := b.Min[1]
		if p.Normal[1] > 0 {
			y = b.Max[1]
		}
		z := b.Min[2]
		if p.Normal[2] > 0 {
			z = b.Max[2]
		}
		if p.Normal[0]*x+p.Normal[1]*y+p.Normal[2]*z+p.Constant < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere rejects s if its center lies further than its radius behind any plane.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: true if the sphere is at least partially inside
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	if s.IsEmpty() {
		return false
	}
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether point lies inside or on every plane.
func (f *Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(point) < 0 {
			return false
		}
	}
	return true
}

// PlaneData packs the planes as [nx, ny, nz, constant] in frustum order.
//
// Returns:
//   - [24]float32: the packed plane coefficients
func (f *Frustum) PlaneData() [24]float32 {
	var out [24]float32
	for i, p := range f.Planes {
		out[i*4+0] = p.Normal[0]
		out[i*4+1] = p.Normal[1]
		out[i*4+2] = p.Normal[2]
		out[i*4+3] = p.Constant
	}
	return out
}

// MarshalPlanes serializes the planes into the 96-byte little-endian buffer consumed by the
// GPU culling stage.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (f *Frustum) MarshalPlanes() []byte {
	buf := make([]byte, FrustumPlaneBufferSize)
	for i, v := range f.PlaneData() {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
