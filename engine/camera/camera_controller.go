package camera

import (
	"math"
	"sync"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the camera just short of looking straight up or down.
const maxPitch = math.Pi/2 - 0.01

type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	pitch    float32
	yaw      float32

	moveSpeed float32
	turnSpeed float32

	pressed map[uint32]bool
}

// CameraController owns the camera pose: a world position plus yaw (about +Y) and pitch
// (about +X). Keyboard state is fed in through KeyDown/KeyUp and applied by Tick.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Rotation returns the camera Euler rotation in radians as (pitch, yaw, 0).
	//
	// Returns:
	//   - mgl32.Vec3: rotation about X, Y and Z
	Rotation() mgl32.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - position: world-space coordinates
	SetPosition(position mgl32.Vec3)

	// Turn adds to yaw and pitch. Pitch is clamped short of ±90°.
	//
	// Parameters:
	//   - dYaw: yaw delta in radians, positive turns left
	//   - dPitch: pitch delta in radians, positive looks up
	Turn(dYaw, dPitch float32)

	// Move translates the camera along its own forward and right axes.
	//
	// Parameters:
	//   - forward: distance along the view direction
	//   - right: distance along the camera's right axis
	Move(forward, right float32)

	// KeyDown records a pressed key.
	//
	// Parameters:
	//   - key: the key code
	KeyDown(key uint32)

	// KeyUp records a released key.
	//
	// Parameters:
	//   - key: the key code
	KeyUp(key uint32)

	// Tick applies the held movement and turn keys for dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Tick(dt float32)
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller at the origin looking down -Z.
// Default speeds: 10 units/s movement, 1 rad/s turning.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the configured controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		moveSpeed: 10,
		turnSpeed: 1,
		pressed:   make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(cc)
	}
	cc.pitch = clampPitch(cc.pitch)
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Rotation() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return mgl32.Vec3{cc.pitch, cc.yaw, 0}
}

func (cc *cameraControllerImpl) SetPosition(position mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
}

func (cc *cameraControllerImpl) Turn(dYaw, dPitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.turn(dYaw, dPitch)
}

func (cc *cameraControllerImpl) Move(forward, right float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.move(forward, right)
}

func (cc *cameraControllerImpl) KeyDown(key uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pressed[key] = true
}

func (cc *cameraControllerImpl) KeyUp(key uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.pressed, key)
}

func (cc *cameraControllerImpl) Tick(dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	axis := func(pos, neg uint32) float32 {
		var v float32
		if cc.pressed[pos] {
			v++
		}
		if cc.pressed[neg] {
			v--
		}
		return v
	}

	turn := cc.turnSpeed * dt
	cc.turn(axis(common.KeyLeft, common.KeyRight)*turn, axis(common.KeyUp, common.KeyDown)*turn)

	step := cc.moveSpeed * dt
	cc.move(axis(common.KeyW, common.KeyS)*step, axis(common.KeyD, common.KeyA)*step)
}

func (cc *cameraControllerImpl) turn(dYaw, dPitch float32) {
	cc.yaw += dYaw
	cc.pitch = clampPitch(cc.pitch + dPitch)
}

// move steps along the camera's local axes: forward is -Z and right is +X rotated by
// the current pitch and yaw.
func (cc *cameraControllerImpl) move(forward, right float32) {
	if forward == 0 && right == 0 {
		return
	}
	rot := mgl32.HomogRotate3DX(cc.pitch).Mul4(mgl32.HomogRotate3DY(cc.yaw))
	fwd := rot.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	rgt := rot.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	cc.position = cc.position.Add(fwd.Mul(forward)).Add(rgt.Mul(right))
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, -maxPitch, maxPitch)
}
