package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: dot(Normal, p) + Constant = 0.
// A point p is in front of the plane (inside the positive half-space) when
// dot(Normal, p) + Constant > 0.
type Plane struct {
	Normal   mgl32.Vec3
	Constant float32
}

// NewPlane creates a Plane from its normal components and constant. The normal is
// stored as given; call Normalize to rescale it to unit length.
//
// Parameters:
//   - x, y, z: the plane normal components
//   - constant: the signed offset of the plane
//
// Returns:
//   - Plane: the constructed plane
func NewPlane(x, y, z, constant float32) Plane {
	return Plane{Normal: mgl32.Vec3{x, y, z}, Constant: constant}
}

// PlaneFromNormalAndCoplanarPoint creates a plane with the given normal passing through point.
//
// Parameters:
//   - normal: the plane normal (expected unit length)
//   - point: any point lying on the plane
//
// Returns:
//   - Plane: the constructed plane
func PlaneFromNormalAndCoplanarPoint(normal, point mgl32.Vec3) Plane {
	return Plane{Normal: normal, Constant: -point.Dot(normal)}
}

// PlaneFromCoplanarPoints creates the plane through a, b and c with counter-clockwise winding
// determining the normal direction. Collinear points produce a degenerate plane.
//
// Parameters:
//   - a, b, c: three non-collinear points on the plane
//
// Returns:
//   - Plane: the constructed plane with a unit normal
func PlaneFromCoplanarPoints(a, b, c mgl32.Vec3) Plane {
	normal := c.Sub(b).Cross(a.Sub(b))
	return PlaneFromNormalAndCoplanarPoint(normal.Normalize(), a)
}

// Normalize returns a copy of the plane whose normal has unit length, with the constant
// rescaled by the same factor. A zero-length normal yields non-finite components.
//
// Returns:
//   - Plane: the normalized plane
func (p Plane) Normalize() Plane {
	inv := 1.0 / p.Normal.Len()
	return Plane{Normal: p.Normal.Mul(inv), Constant: p.Constant * inv}
}

// Negate returns the plane facing the opposite direction.
//
// Returns:
//   - Plane: the flipped plane
func (p Plane) Negate() Plane {
	return Plane{Normal: p.Normal.Mul(-1), Constant: -p.Constant}
}

// DistanceToPoint returns the signed distance from the plane to point.
// Positive values lie in the interior half-space.
//
// Parameters:
//   - point: the point to measure
//
// Returns:
//   - float32: the signed distance
func (p Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Constant
}

// DistanceToSphere returns the signed distance from the plane to the surface of s.
//
// Parameters:
//   - s: the sphere to measure
//
// Returns:
//   - float32: the distance to the sphere's center minus its radius
func (p Plane) DistanceToSphere(s Sphere) float32 {
	return p.DistanceToPoint(s.Center) - s.Radius
}

// ProjectPoint projects point orthogonally onto the plane.
//
// Parameters:
//   - point: the point to project
//
// Returns:
//   - mgl32.Vec3: the projected point
func (p Plane) ProjectPoint(point mgl32.Vec3) mgl32.Vec3 {
	return point.Sub(p.Normal.Mul(p.DistanceToPoint(point)))
}

// CoplanarPoint returns the point on the plane closest to the origin.
//
// Returns:
//   - mgl32.Vec3: a point on the plane
func (p Plane) CoplanarPoint() mgl32.Vec3 {
	return p.Normal.Mul(-p.Constant)
}

// Translate returns the plane moved by offset.
//
// Parameters:
//   - offset: the translation to apply
//
// Returns:
//   - Plane: the translated plane
func (p Plane) Translate(offset mgl32.Vec3) Plane {
	return Plane{Normal: p.Normal, Constant: p.Constant - offset.Dot(p.Normal)}
}

// IntersectsBox reports whether the plane passes through b.
//
// Parameters:
//   - b: the box to test
//
// Returns:
//   - bool: true if the plane intersects the box
func (p Plane) IntersectsBox(b Box) bool {
	return b.IntersectsPlane(p)
}

// IntersectsSphere reports whether the plane passes through s.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: true if the plane intersects the sphere
func (p Plane) IntersectsSphere(s Sphere) bool {
	return s.IntersectsPlane(p)
}

// IsFinite reports whether every component of the plane is a finite number.
//
// Returns:
//   - bool: false when normalization of a degenerate plane produced NaN or Inf
func (p Plane) IsFinite() bool {
	for _, v := range [4]float32{p.Normal[0], p.Normal[1], p.Normal[2], p.Constant} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
