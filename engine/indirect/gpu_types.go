package indirect

import (
	_ "embed"
	"encoding/binary"
	"unsafe"
)

// CommandStride is the byte size of one indirect draw record.
const CommandStride = 20

// GPUIndirectCommandSource is the canonical WGSL definition of the IndirectCommand struct.
// Matches Command layout exactly (20 bytes).
//
//go:embed assets/indirect_command.wgsl
var GPUIndirectCommandSource string

// Command is the GPU-aligned drawIndexedIndirect argument record.
// InstanceCount is the visibility flag: 1 draws the instance, 0 skips it.
// Size: 20 bytes (5 × u32).
type Command struct {
	IndexCount    uint32 // offset 0: number of indices per instance
	InstanceCount uint32 // offset 4: 0 or 1
	FirstIndex    uint32 // offset 8: offset into the index buffer
	BaseVertex    int32  // offset 12: added to each index value (signed)
	FirstInstance uint32 // offset 16: first instance ID
}

// Size returns the size of the Command struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (c *Command) Size() int {
	return int(unsafe.Sizeof(*c))
}

// Marshal serializes the Command struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (c *Command) Marshal() []byte {
	buf := make([]byte, CommandStride)
	c.MarshalInto(buf)
	return buf
}

// MarshalInto writes the record into the first 20 bytes of dst.
//
// Parameters:
//   - dst: destination slice of at least 20 bytes
func (c *Command) MarshalInto(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], c.IndexCount)
	binary.LittleEndian.PutUint32(dst[4:8], c.InstanceCount)
	binary.LittleEndian.PutUint32(dst[8:12], c.FirstIndex)
	binary.LittleEndian.PutUint32(dst[12:16], uint32(c.BaseVertex))
	binary.LittleEndian.PutUint32(dst[16:20], c.FirstInstance)
}

// UnmarshalCommand decodes a 20-byte record.
//
// Parameters:
//   - src: source slice of at least 20 bytes
//
// Returns:
//   - Command: the decoded record
func UnmarshalCommand(src []byte) Command {
	return Command{
		IndexCount:    binary.LittleEndian.Uint32(src[0:4]),
		InstanceCount: binary.LittleEndian.Uint32(src[4:8]),
		FirstIndex:    binary.LittleEndian.Uint32(src[8:12]),
		BaseVertex:    int32(binary.LittleEndian.Uint32(src[12:16])),
		FirstInstance: binary.LittleEndian.Uint32(src[16:20]),
	}
}
