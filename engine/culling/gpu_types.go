package culling

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
)

// GPUGlobalDataSource is the canonical WGSL definition of the GlobalData struct.
// Matches GPUGlobalData layout exactly (112 bytes, std140 aligned).
//
//go:embed assets/globals.wgsl
var GPUGlobalDataSource string

// GPUGlobalData is the GPU-aligned per-frame uniform for the update and cull kernels.
// Size: 112 bytes (instance_count u32 + time f32 + period f32 + pad + 6 planes).
type GPUGlobalData struct {
	InstanceCount uint32      // offset 0
	Time          float32     // offset 4: elapsed seconds
	Period        float32     // offset 8: seconds per oscillation round
	_padding      float32     // offset 12: pad to 16 bytes before planes array
	Planes        [24]float32 // offset 16: 6 × [nx, ny, nz, constant]
}

// NewGPUGlobalData builds the uniform for one frame.
//
// Parameters:
//   - count: the population size
//   - t: elapsed time in seconds
//   - period: seconds per oscillation round
//   - frustum: the camera frustum
//
// Returns:
//   - GPUGlobalData: the populated uniform
func NewGPUGlobalData(count int, t, period float64, frustum common.Frustum) GPUGlobalData {
	return GPUGlobalData{
		InstanceCount: uint32(count),
		Time:          float32(t),
		Period:        float32(period),
		Planes:        frustum.PlaneData(),
	}
}

// Size returns the size of the GPUGlobalData struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUGlobalData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGlobalData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload.
func (g *GPUGlobalData) Marshal() []byte {
	buf := make([]byte, 112)
	binary.LittleEndian.PutUint32(buf[0:4], g.InstanceCount)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Period))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // _padding
	for i, v := range g.Planes {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	return buf
}
