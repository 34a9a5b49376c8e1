package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func assertVec3(t *testing.T, name string, got, want mgl32.Vec3, eps float32) {
	t.Helper()
	for i := range 3 {
		if !approxEqual(got[i], want[i], eps) {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func assertPlane(t *testing.T, name string, got, want Plane, eps float32) {
	t.Helper()
	assertVec3(t, name+".Normal", got.Normal, want.Normal, eps)
	if !approxEqual(got.Constant, want.Constant, eps) {
		t.Errorf("%s.Constant = %v, want %v", name, got.Constant, want.Constant)
	}
}

func unitBoxAt(center mgl32.Vec3) Box {
	return BoxFromCenterAndSize(center, mgl32.Vec3{1, 1, 1})
}
