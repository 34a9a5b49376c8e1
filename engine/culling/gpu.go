package culling

import (
	_ "embed"
	"fmt"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
)

// WorkgroupSize is the invocation count of one compute workgroup in both kernels.
const WorkgroupSize = 64

// Binding slots of the compute bind group shared by both kernels.
const (
	BindingGlobals  = 0 // uniform GlobalData
	BindingModels   = 1 // storage array<ModelData>
	BindingCommands = 2 // storage array<IndirectCommand>
)

//go:embed assets/kernels.wgsl
var kernelSource string

// Kernel identifies one compute entry point.
type Kernel int

const (
	// KernelUpdate advances every model-data record one animation step.
	KernelUpdate Kernel = iota
	// KernelCull writes the instance_count of every indirect record.
	KernelCull
)

// EntryPoint returns the WGSL function name of the kernel.
func (k Kernel) EntryPoint() string {
	switch k {
	case KernelUpdate:
		return "update"
	case KernelCull:
		return "cull"
	default:
		return ""
	}
}

func (k Kernel) String() string {
	return k.EntryPoint()
}

// KernelSource returns the annotated WGSL of both kernels. It includes the model_data,
// indirect_command and globals structs and must be run through a shader pre-processor
// that has them registered.
//
// Returns:
//   - string: the annotated WGSL source
func KernelSource() string {
	return kernelSource
}

// Workgroups returns the number of workgroups needed to cover n instances.
func Workgroups(n int) uint32 {
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize)
}

// ComputeEncoder records compute work into the current frame's command encoder.
type ComputeEncoder interface {
	// WriteGlobals stages the 112-byte GlobalData uniform for this frame.
	//
	// Parameters:
	//   - data: the marshalled uniform
	//
	// Returns:
	//   - error: non-nil if the write could not be staged
	WriteGlobals(data []byte) error

	// Dispatch encodes one compute pass running kernel over workgroups groups.
	//
	// Parameters:
	//   - kernel: the entry point to run
	//   - workgroups: the X workgroup count
	//
	// Returns:
	//   - error: non-nil if no frame encoder is open
	Dispatch(kernel Kernel, workgroups uint32) error
}

type gpuCuller struct {
	encoder ComputeEncoder
}

// NewGPU returns a Culler that leaves both animation and visibility to compute kernels.
// The update kernel mutates the GPU model-data buffer and the cull kernel writes instance
// counts straight into the indirect buffer. The host store takes the same step after the
// dispatches are recorded so it stays in lockstep with the device copy; the table is not
// touched.
//
// Parameters:
//   - encoder: the frame encoder the dispatches are recorded into
//
// Returns:
//   - Culler: the GPU culler
func NewGPU(encoder ComputeEncoder) Culler {
	return &gpuCuller{encoder: encoder}
}

func (g *gpuCuller) Cull(store instance.Store, table indirect.Table, frustum common.Frustum, t float64) error {
	if err := checkSizes(store, table); err != nil {
		return err
	}
	globals := NewGPUGlobalData(store.Len(), t, store.Period(), frustum)
	if err := g.encoder.WriteGlobals(globals.Marshal()); err != nil {
		return fmt.Errorf("culling: write globals: %w", err)
	}
	groups := Workgroups(store.Len())
	for _, k := range []Kernel{KernelUpdate, KernelCull} {
		if err := g.encoder.Dispatch(k, groups); err != nil {
			return fmt.Errorf("culling: dispatch %s: %w", k, err)
		}
	}
	store.Update(t)
	return nil
}
