package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrustumFromMatrixPlaneCoefficients(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))

	// cos(30°) and sin(30°) for a 60° vertical field of view at aspect 1.
	c, s := float32(0.8660254), float32(0.5)
	tests := []struct {
		name  string
		index int
		want  Plane
		eps   float32
	}{
		{"left", FrustumLeft, NewPlane(c, 0, -s, 0), 1e-5},
		{"right", FrustumRight, NewPlane(-c, 0, -s, 0), 1e-5},
		{"bottom", FrustumBottom, NewPlane(0, c, -s, 0), 1e-5},
		{"top", FrustumTop, NewPlane(0, -c, -s, 0), 1e-5},
		{"near", FrustumNear, NewPlane(0, 0, -1, -0.1), 1e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPlane(t, tt.name, f.Planes[tt.index], tt.want, tt.eps)
		})
	}

	// The far row is a small difference of nearly equal float32 values, so its constant is
	// pinned against the same difference taken from the matrix elements.
	m := Perspective(60, 1, 0.1, 1000)
	z, w := m[11]-m[10], m[15]-m[14]
	assertPlane(t, "far", f.Planes[FrustumFar], NewPlane(0, 0, 1, w/z), 1e-3)
	if got := f.Planes[FrustumFar].Constant; !approxEqual(got/1000, 1, 1e-3) {
		t.Errorf("far.Constant = %v, want 1000 within 0.1%%", got)
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	view := ViewMatrix(mgl32.Vec3{3, 2, 10}, mgl32.Vec3{0.2, -0.4, 0})
	f := FrustumFromMatrix(Perspective(45, 16.0/9.0, 0.5, 200).Mul4(view))

	for i, p := range f.Planes {
		if l := p.Normal.Len(); !approxEqual(l, 1, 1e-5) {
			t.Errorf("Planes[%d].Normal.Len() = %v, want 1", i, l)
		}
		again := p.Normalize()
		assertPlane(t, "Normalize()", again, p, 1e-5)
	}
}

func TestFrustumIntersectsBoxScenario(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))

	tests := []struct {
		name   string
		center mgl32.Vec3
		want   bool
	}{
		{"in front of camera", mgl32.Vec3{0, 0, -5}, true},
		{"beyond far plane", mgl32.Vec3{0, 0, -5000}, false},
		{"outside side planes", mgl32.Vec3{100000, 0, -5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsBox(unitBoxAt(tt.center)); got != tt.want {
				t.Errorf("IntersectsBox(%v) = %v, want %v", tt.center, got, tt.want)
			}
		})
	}
}

func TestFrustumIntersectsBox(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))

	tests := []struct {
		name string
		box  Box
		want bool
	}{
		{"behind camera", unitBoxAt(mgl32.Vec3{0, 0, 5}), false},
		{"straddling near plane", unitBoxAt(mgl32.Vec3{0, 0, 0}), true},
		{"straddling left plane", unitBoxAt(mgl32.Vec3{-5.77, 0, -10}), true},
		{"just past left plane", unitBoxAt(mgl32.Vec3{-7, 0, -10}), false},
		{"above top plane", unitBoxAt(mgl32.Vec3{0, 20, -10}), false},
		{"straddling far plane", BoxFromCenterAndSize(mgl32.Vec3{0, 0, -1000}, mgl32.Vec3{4, 4, 4}), true},
		{"empty", EmptyBox(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsBox(tt.box); got != tt.want {
				t.Errorf("IntersectsBox() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))

	tests := []struct {
		name string
		s    Sphere
		want bool
	}{
		{"inside", Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}, true},
		{"behind camera", Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}, false},
		{"overlapping near plane", Sphere{Center: mgl32.Vec3{0, 0, 0.5}, Radius: 1}, true},
		{"beyond far plane", Sphere{Center: mgl32.Vec3{0, 0, -1100}, Radius: 50}, false},
		{"empty", Sphere{Radius: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tt.s); got != tt.want {
				t.Errorf("IntersectsSphere() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))
	if !f.ContainsPoint(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("ContainsPoint(0,0,-1) = false, want true")
	}
	if f.ContainsPoint(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("ContainsPoint(0,0,1) = true, want false")
	}
}

func TestFrustumMarshalPlanes(t *testing.T) {
	f := FrustumFromMatrix(Perspective(60, 1, 0.1, 1000))
	buf := f.MarshalPlanes()

	if len(buf) != FrustumPlaneBufferSize {
		t.Fatalf("len(MarshalPlanes()) = %d, want %d", len(buf), FrustumPlaneBufferSize)
	}
	data := f.PlaneData()
	for i := range data {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != data[i] {
			t.Errorf("lane %d = %v, want %v", i, got, data[i])
		}
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[FrustumNear*16+8:])); !approxEqual(got, -1, 1e-5) {
		t.Errorf("near normal z = %v, want -1", got)
	}
}
