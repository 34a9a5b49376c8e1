package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere described by its center and a non-negative radius.
// A negative radius marks an empty sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// IsEmpty reports whether the sphere has a negative radius.
func (s Sphere) IsEmpty() bool {
	return s.Radius < 0
}

// ContainsPoint reports whether point lies inside or on the sphere.
func (s Sphere) ContainsPoint(point mgl32.Vec3) bool {
	d := point.Sub(s.Center)
	return d.Dot(d) <= s.Radius*s.Radius
}

// DistanceToPoint returns the distance from the sphere's surface to point.
// Points inside the sphere yield negative values.
func (s Sphere) DistanceToPoint(point mgl32.Vec3) float32 {
	return point.Sub(s.Center).Len() - s.Radius
}

// Translate returns the sphere moved by offset.
func (s Sphere) Translate(offset mgl32.Vec3) Sphere {
	return Sphere{Center: s.Center.Add(offset), Radius: s.Radius}
}

// IntersectsSphere reports whether s and other overlap or touch.
//
// Parameters:
//   - other: the sphere to test against
//
// Returns:
//   - bool: true if the distance between centers is at most the sum of radii
func (s Sphere) IntersectsSphere(other Sphere) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return false
	}
	d := s.Center.Sub(other.Center)
	r := s.Radius + other.Radius
	return d.Dot(d) <= r*r
}

// IntersectsPlane reports whether the plane passes through the sphere.
//
// Parameters:
//   - p: the plane to test against
//
// Returns:
//   - bool: true if |distance(center)| <= radius
func (s Sphere) IntersectsPlane(p Plane) bool {
	if s.IsEmpty() {
		return false
	}
	return float32(math.Abs(float64(p.DistanceToPoint(s.Center)))) <= s.Radius
}

// IntersectsBox reports whether the sphere overlaps b.
//
// Parameters:
//   - b: the box to test against
//
// Returns:
//   - bool: true if the sphere and box overlap
func (s Sphere) IntersectsBox(b Box) bool {
	return b.IntersectsSphere(s)
}
