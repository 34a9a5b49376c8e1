package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box. A populated box satisfies Min[i] <= Max[i] on every
// axis; the empty box returned by EmptyBox has Min = +Inf and Max = -Inf so that expanding it
// by any point yields that point, and it never intersects anything.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// EmptyBox returns a box that contains nothing.
//
// Returns:
//   - Box: a box with Min = +Inf and Max = -Inf
func EmptyBox() Box {
	return Box{
		Min: mgl32.Vec3{posInf, posInf, posInf},
		Max: mgl32.Vec3{negInf, negInf, negInf},
	}
}

// BoxFromPoints returns the smallest box containing every point.
// An empty argument list returns the empty box.
//
// Parameters:
//   - points: the points to enclose
//
// Returns:
//   - Box: the enclosing box
func BoxFromPoints(points ...mgl32.Vec3) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.ExpandByPoint(p)
	}
	return b
}

// BoxFromCenterAndSize returns the box centered at center with the given full extent.
//
// Parameters:
//   - center: the box center
//   - size: the full width, height and depth
//
// Returns:
//   - Box: the constructed box
func BoxFromCenterAndSize(center, size mgl32.Vec3) Box {
	half := size.Mul(0.5)
	return Box{Min: center.Sub(half), Max: center.Add(half)}
}

// IsEmpty reports whether the box has any inverted axis.
func (b Box) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the midpoint of the box. The result is undefined for an empty box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis, or zero for an empty box.
func (b Box) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// ExpandByPoint returns the smallest box containing both b and point.
func (b Box) ExpandByPoint(point mgl32.Vec3) Box {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], point[i])
		b.Max[i] = max(b.Max[i], point[i])
	}
	return b
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], other.Min[i])
		b.Max[i] = max(b.Max[i], other.Max[i])
	}
	return b
}

// Translate returns the box moved rigidly by offset.
func (b Box) Translate(offset mgl32.Vec3) Box {
	return Box{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// ApplyMatrix returns the axis-aligned box enclosing b's eight corners transformed by m.
//
// Parameters:
//   - m: the affine transform to apply
//
// Returns:
//   - Box: the transformed bounds, or the empty box if b is empty
func (b Box) ApplyMatrix(m mgl32.Mat4) Box {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for i := range 8 {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.ExpandByPoint(m.Mul4x1(corner.Vec4(1)).Vec3())
	}
	return out
}

// ContainsPoint reports whether point lies inside or on the box.
func (b Box) ContainsPoint(point mgl32.Vec3) bool {
	return point[0] >= b.Min[0] && point[0] <= b.Max[0] &&
		point[1] >= b.Min[1] && point[1] <= b.Max[1] &&
		point[2] >= b.Min[2] && point[2] <= b.Max[2]
}

// ClampPoint returns the point inside the box closest to point.
func (b Box) ClampPoint(point mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(point[0], b.Min[0], b.Max[0]),
		mgl32.Clamp(point[1], b.Min[1], b.Max[1]),
		mgl32.Clamp(point[2], b.Min[2], b.Max[2]),
	}
}

// DistanceToPoint returns the distance from point to the closest point of the box.
func (b Box) DistanceToPoint(point mgl32.Vec3) float32 {
	return b.ClampPoint(point).Sub(point).Len()
}

// BoundingSphere returns the sphere centered on the box that encloses it.
// The empty box yields an empty sphere.
func (b Box) BoundingSphere() Sphere {
	if b.IsEmpty() {
		return Sphere{Radius: -1}
	}
	return Sphere{Center: b.Center(), Radius: b.Size().Len() * 0.5}
}

// IntersectsBox reports whether b and other overlap, using a separating test on each of
// the six axis-aligned faces.
//
// Parameters:
//   - other: the box to test against
//
// Returns:
//   - bool: true unless the boxes are separated on some axis
func (b Box) IntersectsBox(other Box) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !(other.Max[0] < b.Min[0] || other.Min[0] > b.Max[0] ||
		other.Max[1] < b.Min[1] || other.Min[1] > b.Max[1] ||
		other.Max[2] < b.Min[2] || other.Min[2] > b.Max[2])
}

// IntersectsSphere reports whether the box overlaps s by clamping the sphere's center into
// the box and comparing the squared distance against the squared radius.
//
// Parameters:
//   - s: the sphere to test against
//
// Returns:
//   - bool: true if the box and sphere overlap
func (b Box) IntersectsSphere(s Sphere) bool {
	if b.IsEmpty() || s.IsEmpty() {
		return false
	}
	d := b.ClampPoint(s.Center).Sub(s.Center)
	return d.Dot(d) <= s.Radius*s.Radius
}

// IntersectsPlane reports whether the plane passes through the box. Per axis, the box corner
// coordinate minimizing and maximizing the dot product with the plane normal is selected, and
// the plane intersects if -Constant lies within [min, max].
//
// Parameters:
//   - p: the plane to test against
//
// Returns:
//   - bool: true if the plane intersects the box
func (b Box) IntersectsPlane(p Plane) bool {
	if b.IsEmpty() {
		return false
	}
	var lo, hi float32
	for i := range 3 {
		n := p.Normal[i]
		if n > 0 {
			lo += n * b.Min[i]
			hi += n * b.Max[i]
		} else {
			lo += n * b.Max[i]
			hi += n * b.Min[i]
		}
	}
	return lo <= -p.Constant && -p.Constant <= hi
}
