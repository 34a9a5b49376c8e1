package culling

import (
	"errors"
	"fmt"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
)

// ErrSizeMismatch is returned when the store and the command table disagree on population size.
var ErrSizeMismatch = errors.New("culling: instance store and command table sizes differ")

// Culler advances the animation of every instance at time t and records in the table whether
// each instance intersects the frustum.
type Culler interface {
	// Cull runs one animation step plus visibility test over the whole population.
	//
	// Parameters:
	//   - store: the instance population, advanced in place
	//   - table: the command table receiving visibility flags
	//   - frustum: the camera frustum in world space
	//   - t: elapsed time in seconds
	//
	// Returns:
	//   - error: ErrSizeMismatch if the store and table sizes differ
	Cull(store instance.Store, table indirect.Table, frustum common.Frustum, t float64) error
}

func checkSizes(store instance.Store, table indirect.Table) error {
	if store.Len() != table.Len() {
		return fmt.Errorf("%w: %d instances, %d commands", ErrSizeMismatch, store.Len(), table.Len())
	}
	return nil
}

type serialCuller struct{}

// NewSerial returns a Culler that updates and tests instances one at a time on the caller's
// goroutine.
//
// Returns:
//   - Culler: the serial culler
func NewSerial() Culler {
	return serialCuller{}
}

func (serialCuller) Cull(store instance.Store, table indirect.Table, frustum common.Frustum, t float64) error {
	if err := checkSizes(store, table); err != nil {
		return err
	}
	for i := range store.Len() {
		store.UpdateAt(i, t)
		table.SetVisible(i, frustum.IntersectsBox(store.Box(i)))
	}
	return nil
}

type disabledCuller struct{}

// NewDisabled returns a Culler that only animates and marks every instance visible.
//
// Returns:
//   - Culler: the pass-through culler
func NewDisabled() Culler {
	return disabledCuller{}
}

func (disabledCuller) Cull(store instance.Store, table indirect.Table, _ common.Frustum, t float64) error {
	if err := checkSizes(store, table); err != nil {
		return err
	}
	store.Update(t)
	table.ForceAllVisible()
	return nil
}
