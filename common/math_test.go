package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestModelMatrix(t *testing.T) {
	tests := []struct {
		name     string
		pos      mgl32.Vec3
		rot      mgl32.Vec3
		scale    mgl32.Vec3
		in, want mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}},
		{"translate", mgl32.Vec3{5, -1, 2}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{6, 0, 3}},
		{"scale then translate", mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, mgl32.Vec3{2, 3, 4}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 3, -1}},
		{"rotate z quarter", mgl32.Vec3{}, mgl32.Vec3{0, 0, mgl32.DegToRad(90)}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		// Z is applied before X: (1,0,0) -> (0,1,0) -> (0,0,1).
		{"rotation order", mgl32.Vec3{}, mgl32.Vec3{mgl32.DegToRad(90), 0, mgl32.DegToRad(90)}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ModelMatrix(tt.pos, tt.rot, tt.scale)
			assertVec3(t, "ModelMatrix() * p", m.Mul4x1(tt.in.Vec4(1)).Vec3(), tt.want, 1e-5)
		})
	}
}

func TestViewMatrixInvertsModel(t *testing.T) {
	pos, rot := mgl32.Vec3{4, 5, 6}, mgl32.Vec3{0.3, 1.1, 0}
	v := ViewMatrix(pos, rot)
	assertVec3(t, "ViewMatrix() * position", v.Mul4x1(pos.Vec4(1)).Vec3(), mgl32.Vec3{}, 1e-4)
}
