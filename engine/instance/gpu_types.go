package instance

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// ModelDataStride is the byte size of one model-data record and the dynamic uniform offset
// step between instances.
const ModelDataStride = 256

// GPUModelDataSource is the canonical WGSL definition of the ModelData struct.
// Matches GPUModelData layout exactly (256 bytes).
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUModelData is the GPU-aligned per-instance record.
// Size: 256 bytes (64 float32 lanes).
type GPUModelData struct {
	Model    [16]float32 // lanes 0-15: column-major model matrix
	BoxMin   [3]float32  // lanes 16-18: world-space box minimum
	BoxMax   [3]float32  // lanes 19-21: world-space box maximum
	Velocity [3]float32  // lanes 22-24: displacement per animation step
	_pad     [39]float32 // lanes 25-63: zero padding up to the uniform offset alignment
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, ModelDataStride)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto writes the record into the first 256 bytes of dst, zeroing the padding lanes.
//
// Parameters:
//   - dst: destination slice of at least 256 bytes
func (g *GPUModelData) MarshalInto(dst []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(dst[64+i*4:], math.Float32bits(g.BoxMin[i]))
		binary.LittleEndian.PutUint32(dst[76+i*4:], math.Float32bits(g.BoxMax[i]))
		binary.LittleEndian.PutUint32(dst[88+i*4:], math.Float32bits(g.Velocity[i]))
	}
	clear(dst[100:ModelDataStride])
}
