package dispatch

import (
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/culling"
)

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controllerImpl)

// WithConfig sets the initial configuration. It is validated when the controller is built.
//
// Parameters:
//   - cfg: the initial modes
//
// Returns:
//   - ControllerBuilderOption: a function that applies the config to a controller
func WithConfig(cfg Config) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.cfg = cfg
	}
}

// WithCuller registers the culler used for backend, replacing any default.
//
// Parameters:
//   - backend: the backend the culler serves
//   - culler: the culler implementation
//
// Returns:
//   - ControllerBuilderOption: a function that registers the culler on a controller
func WithCuller(backend CullBackend, culler culling.Culler) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.cullers[backend] = culler
	}
}

// WithBulkWorkers builds the bulk culler with the given worker count.
//
// Parameters:
//   - workers: the pool worker count
//
// Returns:
//   - ControllerBuilderOption: a function that registers a sized bulk culler on a controller
func WithBulkWorkers(workers int) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.cullers[BackendBulk] = culling.NewBulk(culling.WithWorkers(workers))
	}
}
