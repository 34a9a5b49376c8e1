package scene

import (
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/camera"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/model"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the camera whose frustum drives culling.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithMesh sets the mesh drawn for every instance. Defaults to the unit cube.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMesh(m model.Model) SceneBuilderOption {
	return func(s *scene) {
		s.mesh = m
	}
}

// WithStore sets the instance population. Defaults to instance.NewStore().
//
// Parameters:
//   - store: the population
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithStore(store instance.Store) SceneBuilderOption {
	return func(s *scene) {
		s.store = store
	}
}

// WithConfig sets the initial dispatch modes. Validated when the scene is built.
//
// Parameters:
//   - cfg: the modes
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithConfig(cfg dispatch.Config) SceneBuilderOption {
	return func(s *scene) {
		s.cfg = cfg
	}
}

// WithBulkWorkers sets the worker count of the bulk culler.
// Values < 1 keep the culler's default.
//
// Parameters:
//   - n: the number of pool workers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBulkWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.bulkWorkers = n
	}
}

// WithReadbackInterval sets how many frames pass between GPU visibility readbacks.
// 0 disables the readback.
//
// Parameters:
//   - frames: the interval in frames
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithReadbackInterval(frames uint64) SceneBuilderOption {
	return func(s *scene) {
		s.readbackInterval = frames
	}
}
