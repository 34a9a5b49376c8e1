package instance

import (
	"math"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/go-gl/mathgl/mgl32"
)

// UnitBox is the local-space bounds of every instance mesh before its model matrix is applied.
var UnitBox = common.Box{
	Min: mgl32.Vec3{-0.5, -0.5, -0.5},
	Max: mgl32.Vec3{0.5, 0.5, 0.5},
}

// Instance is one rigid body of the population. Index is stable for the lifetime of the run
// and doubles as the slot in the model-data and indirect buffers.
type Instance struct {
	Index    uint32
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Euler angles in radians, applied X then Y then Z
	Scale    mgl32.Vec3
	Velocity mgl32.Vec3 // displacement per animation step

	Matrix mgl32.Mat4 // T · Rx · Ry · Rz · S
	Box    common.Box // world-space bounds, same space as the culling frustum
}

// New builds an instance and derives its model matrix and world-space box.
//
// Parameters:
//   - index: the stable slot of the instance
//   - position: world-space translation
//   - rotation: Euler angles in radians
//   - scale: per-axis scale
//   - velocity: displacement applied per animation step
//
// Returns:
//   - Instance: the constructed instance
func New(index uint32, position, rotation, scale, velocity mgl32.Vec3) Instance {
	m := common.ModelMatrix(position, rotation, scale)
	return Instance{
		Index:    index,
		Position: position,
		Rotation: rotation,
		Scale:    scale,
		Velocity: velocity,
		Matrix:   m,
		Box:      UnitBox.ApplyMatrix(m),
	}
}

// BoundingSphere returns the sphere enclosing the instance's world-space box.
func (i Instance) BoundingSphere() common.Sphere {
	return i.Box.BoundingSphere()
}

// GPU converts the instance into its 256-byte model-data record.
//
// Returns:
//   - GPUModelData: the GPU-aligned record
func (i Instance) GPU() GPUModelData {
	return GPUModelData{
		Model:    [16]float32(i.Matrix),
		BoxMin:   [3]float32(i.Box.Min),
		BoxMax:   [3]float32(i.Box.Max),
		Velocity: [3]float32(i.Velocity),
	}
}

// OscillationSign returns the direction of travel at time t for an oscillation period.
// The round floor(t/period) moves forward when even and backward when odd.
// A non-positive period never reverses.
//
// Parameters:
//   - t: elapsed time in seconds
//   - period: seconds per round
//
// Returns:
//   - float32: +1 or -1
func OscillationSign(t, period float64) float32 {
	if period <= 0 {
		return 1
	}
	if int64(math.Floor(t/period))&1 == 0 {
		return 1
	}
	return -1
}

// Advance returns a copy of inst moved one animation step at time t. The position, the
// translation column of the matrix and both box corners shift by Velocity times the
// oscillation sign. Advance has no side effects: the same inputs always give the same result.
//
// Parameters:
//   - inst: the instance to advance
//   - t: elapsed time in seconds
//   - period: seconds per oscillation round
//
// Returns:
//   - Instance: the advanced copy
func Advance(inst Instance, t, period float64) Instance {
	step := inst.Velocity.Mul(OscillationSign(t, period))
	out := inst
	out.Position = inst.Position.Add(step)
	out.Matrix[12] += step[0]
	out.Matrix[13] += step[1]
	out.Matrix[14] += step[2]
	out.Box = inst.Box.Translate(step)
	return out
}
