package instance

import (
	"math"
	"math/rand/v2"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default population settings.
const (
	DefaultCount         = 20000
	DefaultPeriod        = 2.0  // seconds per oscillation round
	DefaultVelocityScale = 0.05 // max displacement per axis per step
	DefaultSeed          = 1
)

type storeImpl struct {
	count         int
	period        float64
	velocityScale float32
	seed          uint64
	scale         mgl32.Vec3
	layout        RingLayout
	explicit      []Instance

	initial   []Instance
	instances []Instance

	// modelData is reused between ModelData calls.
	modelData []byte
}

// Store owns the fixed instance population and its animation state.
//
// A Store is not safe for general concurrent use. UpdateRange and UpdateAt may run
// concurrently as long as the index ranges they touch are disjoint.
type Store interface {
	// Len returns the population size.
	//
	// Returns:
	//   - int: the number of instances
	Len() int

	// At returns a copy of the instance at index i.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - Instance: the current instance state
	At(i int) Instance

	// Box returns the world-space bounds of the instance at index i.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - common.Box: the current bounds
	Box(i int) common.Box

	// Update advances every instance one animation step at time t.
	//
	// Parameters:
	//   - t: elapsed time in seconds
	Update(t float64)

	// UpdateRange advances the instances in [lo, hi) one animation step at time t.
	//
	// Parameters:
	//   - lo: first index, inclusive
	//   - hi: last index, exclusive
	//   - t: elapsed time in seconds
	UpdateRange(lo, hi int, t float64)

	// UpdateAt advances the instance at index i one animation step at time t.
	//
	// Parameters:
	//   - i: the instance index
	//   - t: elapsed time in seconds
	UpdateAt(i int, t float64)

	// Period returns the oscillation period in seconds.
	//
	// Returns:
	//   - float64: seconds per round
	Period() float64

	// ModelData serializes every instance into consecutive 256-byte records.
	// The returned slice is reused by the next call.
	//
	// Returns:
	//   - []byte: Len()*256 bytes ready for GPU upload
	ModelData() []byte

	// MarshalInstance serializes a single instance record.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - []byte: a fresh 256-byte record
	MarshalInstance(i int) []byte

	// Reset restores every instance to its state at construction.
	Reset()

	// Snapshot returns a copy of the current population.
	//
	// Returns:
	//   - []Instance: the copied instances
	Snapshot() []Instance
}

var _ Store = &storeImpl{}

// NewStore creates a Store. Without WithInstances the population is generated from the ring
// layout, with rotations and velocities drawn from a PCG source seeded by WithSeed.
//
// Parameters:
//   - options: functional options applied before the population is built
//
// Returns:
//   - Store: the populated store
func NewStore(options ...StoreBuilderOption) Store {
	s := &storeImpl{
		count:         DefaultCount,
		period:        DefaultPeriod,
		velocityScale: DefaultVelocityScale,
		seed:          DefaultSeed,
		scale:         mgl32.Vec3{1, 1, 1},
		layout:        DefaultRingLayout(),
	}
	for _, option := range options {
		option(s)
	}

	if s.explicit != nil {
		s.initial = make([]Instance, len(s.explicit))
		for i, inst := range s.explicit {
			inst.Index = uint32(i)
			s.initial[i] = inst
		}
	} else {
		s.initial = s.generate()
	}
	s.instances = make([]Instance, len(s.initial))
	copy(s.instances, s.initial)
	s.modelData = make([]byte, len(s.instances)*ModelDataStride)

	common.Logger().Info("instance population created",
		"instances", len(s.instances),
		"period", s.period,
		"seed", s.seed,
	)
	return s
}

func (s *storeImpl) generate() []Instance {
	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	out := make([]Instance, s.count)
	for i := range out {
		rotation := mgl32.Vec3{
			rng.Float32() * 2 * math.Pi,
			rng.Float32() * 2 * math.Pi,
			rng.Float32() * 2 * math.Pi,
		}
		velocity := mgl32.Vec3{
			(rng.Float32()*2 - 1) * s.velocityScale,
			(rng.Float32()*2 - 1) * s.velocityScale,
			(rng.Float32()*2 - 1) * s.velocityScale,
		}
		out[i] = New(uint32(i), s.layout.Position(i), rotation, s.scale, velocity)
	}
	return out
}

func (s *storeImpl) Len() int {
	return len(s.instances)
}

func (s *storeImpl) At(i int) Instance {
	return s.instances[i]
}

func (s *storeImpl) Box(i int) common.Box {
	return s.instances[i].Box
}

func (s *storeImpl) Update(t float64) {
	s.UpdateRange(0, len(s.instances), t)
}

func (s *storeImpl) UpdateRange(lo, hi int, t float64) {
	for i := lo; i < hi; i++ {
		s.instances[i] = Advance(s.instances[i], t, s.period)
	}
}

func (s *storeImpl) UpdateAt(i int, t float64) {
	s.instances[i] = Advance(s.instances[i], t, s.period)
}

func (s *storeImpl) Period() float64 {
	return s.period
}

func (s *storeImpl) ModelData() []byte {
	for i := range s.instances {
		rec := s.instances[i].GPU()
		rec.MarshalInto(s.modelData[i*ModelDataStride:])
	}
	return s.modelData
}

func (s *storeImpl) MarshalInstance(i int) []byte {
	rec := s.instances[i].GPU()
	return rec.Marshal()
}

func (s *storeImpl) Reset() {
	copy(s.instances, s.initial)
}

func (s *storeImpl) Snapshot() []Instance {
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}
