package instance

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RingLayout places instances on concentric rings stacked in layers receding along -Z.
// Ring r of a layer holds Base + r*Growth slots at radius Radius*(r+1).
// Placement depends only on the index, so a population is reproducible.
type RingLayout struct {
	Origin       mgl32.Vec3 // center of the first layer
	Base         int        // slots on the innermost ring
	Growth       int        // extra slots per ring
	Radius       float32    // radius step between rings
	Depth        int        // number of layers
	LayerSpacing float32    // distance between layers along -Z
}

// DefaultRingLayout returns the layout used when a store is built without one.
func DefaultRingLayout() RingLayout {
	return RingLayout{
		Origin:       mgl32.Vec3{0, 0, -30},
		Base:         8,
		Growth:       6,
		Radius:       2.5,
		Depth:        8,
		LayerSpacing: 6,
	}
}

// Position returns the world-space position of the instance at index.
//
// Parameters:
//   - index: the instance index
//
// Returns:
//   - mgl32.Vec3: the slot position
func (l RingLayout) Position(index int) mgl32.Vec3 {
	depth := max(l.Depth, 1)
	base := max(l.Base, 1)
	growth := max(l.Growth, 0)

	layer := index % depth
	slot := index / depth

	ring := 0
	capacity := base
	for slot >= capacity {
		slot -= capacity
		ring++
		capacity = base + ring*growth
	}

	angle := 2 * math.Pi * float64(slot) / float64(capacity)
	r := l.Radius * float32(ring+1)
	return l.Origin.Add(mgl32.Vec3{
		r * float32(math.Cos(angle)),
		r * float32(math.Sin(angle)),
		-l.LayerSpacing * float32(layer),
	})
}
