package instance

import (
	"github.com/go-gl/mathgl/mgl32"
)

// StoreBuilderOption is a functional option for configuring a Store during construction.
type StoreBuilderOption func(*storeImpl)

// WithCount sets the number of generated instances.
//
// Parameters:
//   - count: the population size
//
// Returns:
//   - StoreBuilderOption: a function that applies the count option to a store
func WithCount(count int) StoreBuilderOption {
	return func(s *storeImpl) {
		s.count = max(count, 0)
	}
}

// WithSeed sets the seed of the PCG source used for rotations and velocities.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - StoreBuilderOption: a function that applies the seed option to a store
func WithSeed(seed uint64) StoreBuilderOption {
	return func(s *storeImpl) {
		s.seed = seed
	}
}

// WithPeriod sets the oscillation period in seconds.
//
// Parameters:
//   - seconds: seconds per oscillation round
//
// Returns:
//   - StoreBuilderOption: a function that applies the period option to a store
func WithPeriod(seconds float64) StoreBuilderOption {
	return func(s *storeImpl) {
		s.period = seconds
	}
}

// WithVelocityScale sets the maximum per-axis displacement per animation step.
//
// Parameters:
//   - scale: the velocity magnitude bound
//
// Returns:
//   - StoreBuilderOption: a function that applies the velocity scale option to a store
func WithVelocityScale(scale float32) StoreBuilderOption {
	return func(s *storeImpl) {
		s.velocityScale = scale
	}
}

// WithInstanceScale sets the scale shared by every generated instance.
//
// Parameters:
//   - scale: per-axis scale
//
// Returns:
//   - StoreBuilderOption: a function that applies the scale option to a store
func WithInstanceScale(scale mgl32.Vec3) StoreBuilderOption {
	return func(s *storeImpl) {
		s.scale = scale
	}
}

// WithLayout sets the ring layout used to place generated instances.
//
// Parameters:
//   - layout: the placement layout
//
// Returns:
//   - StoreBuilderOption: a function that applies the layout option to a store
func WithLayout(layout RingLayout) StoreBuilderOption {
	return func(s *storeImpl) {
		s.layout = layout
	}
}

// WithInstances supplies an explicit population instead of generating one.
// Indices are reassigned to match slice order.
//
// Parameters:
//   - instances: the population to own
//
// Returns:
//   - StoreBuilderOption: a function that applies the explicit population to a store
func WithInstances(instances []Instance) StoreBuilderOption {
	return func(s *storeImpl) {
		s.explicit = make([]Instance, len(instances))
		copy(s.explicit, instances)
	}
}
