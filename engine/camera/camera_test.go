package camera

import (
	"math"
	"testing"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3) bool {
	for i := range 3 {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestCameraFrustum(t *testing.T) {
	tests := []struct {
		name   string
		yaw    float32
		pos    mgl32.Vec3
		point  mgl32.Vec3
		inside bool
	}{
		{"ahead on -Z", 0, mgl32.Vec3{}, mgl32.Vec3{0, 0, -10}, true},
		{"behind on +Z", 0, mgl32.Vec3{}, mgl32.Vec3{0, 0, 10}, false},
		{"closer than near", 0, mgl32.Vec3{}, mgl32.Vec3{0, 0, -0.05}, false},
		{"beyond far", 0, mgl32.Vec3{}, mgl32.Vec3{0, 0, -150}, false},
		{"far off to the side", 0, mgl32.Vec3{}, mgl32.Vec3{50, 0, -10}, false},
		{"turned around", math.Pi, mgl32.Vec3{}, mgl32.Vec3{0, 0, 10}, true},
		{"translated", 0, mgl32.Vec3{0, 0, 20}, mgl32.Vec3{0, 0, 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCameraController(WithYaw(tt.yaw), WithPosition(tt.pos))
			cam := NewCamera(WithController(ctrl))
			f := cam.Frustum()
			if got := f.ContainsPoint(tt.point); got != tt.inside {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.inside)
			}
		})
	}
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera()
	if cam.Fov() != common.DefaultFovY || cam.Near() != common.DefaultNear || cam.Far() != common.DefaultFar {
		t.Errorf("defaults = (%v, %v, %v), want (%v, %v, %v)",
			cam.Fov(), cam.Near(), cam.Far(), common.DefaultFovY, common.DefaultNear, common.DefaultFar)
	}
	if cam.ViewMatrix() != mgl32.Ident4() {
		t.Errorf("ViewMatrix() without controller = %v, want identity", cam.ViewMatrix())
	}
	if cam.ViewProjection() != cam.ProjectionMatrix() {
		t.Error("ViewProjection() should equal ProjectionMatrix() at the origin")
	}
}

func TestCameraSetAspect(t *testing.T) {
	cam := NewCamera(WithAspect(2))
	before := cam.ProjectionMatrix()

	cam.SetAspect(0)
	if cam.Aspect() != 2 || cam.ProjectionMatrix() != before {
		t.Errorf("SetAspect(0) changed aspect to %v", cam.Aspect())
	}

	cam.SetAspect(1)
	if cam.ProjectionMatrix() == before {
		t.Error("SetAspect(1) did not recompute the projection")
	}
}

func TestCameraUniform(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{1, 2, 3}))
	cam := NewCamera(WithController(ctrl))
	u := cam.Uniform()
	if mgl32.Mat4(u.ViewProj) != cam.ViewProjection() {
		t.Error("Uniform().ViewProj does not match ViewProjection()")
	}
	if u.CameraPosition != [3]float32{1, 2, 3} {
		t.Errorf("Uniform().CameraPosition = %v, want [1 2 3]", u.CameraPosition)
	}
	if got := len(u.Marshal()); got != 80 {
		t.Errorf("len(Marshal()) = %d, want 80", got)
	}
}

func TestControllerMove(t *testing.T) {
	tests := []struct {
		name           string
		yaw            float32
		forward, right float32
		want           mgl32.Vec3
	}{
		{"forward", 0, 5, 0, mgl32.Vec3{0, 0, -5}},
		{"right", 0, 0, 2, mgl32.Vec3{2, 0, 0}},
		{"forward after quarter turn left", math.Pi / 2, 3, 0, mgl32.Vec3{-3, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCameraController(WithYaw(tt.yaw))
			ctrl.Move(tt.forward, tt.right)
			if got := ctrl.Position(); !vecNear(got, tt.want) {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestControllerTick(t *testing.T) {
	ctrl := NewCameraController(WithMoveSpeed(10), WithTurnSpeed(1))
	ctrl.KeyDown(common.KeyW)
	ctrl.Tick(0.5)
	if got, want := ctrl.Position(), (mgl32.Vec3{0, 0, -5}); !vecNear(got, want) {
		t.Errorf("Position() after W = %v, want %v", got, want)
	}

	ctrl.KeyUp(common.KeyW)
	ctrl.KeyDown(common.KeyLeft)
	ctrl.Tick(0.25)
	if got := ctrl.Rotation()[1]; math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("yaw after Left = %v, want 0.25", got)
	}
	if got, want := ctrl.Position(), (mgl32.Vec3{0, 0, -5}); !vecNear(got, want) {
		t.Errorf("Position() moved after releasing W: %v", got)
	}
}

func TestControllerPitchClamp(t *testing.T) {
	ctrl := NewCameraController(WithPitch(10))
	if got := ctrl.Rotation()[0]; got != maxPitch {
		t.Errorf("pitch = %v, want %v", got, float32(maxPitch))
	}
	ctrl.Turn(0, -20)
	if got := ctrl.Rotation()[0]; got != -maxPitch {
		t.Errorf("pitch = %v, want %v", got, float32(-maxPitch))
	}
}
