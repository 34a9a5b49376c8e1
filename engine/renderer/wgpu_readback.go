package renderer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/readback"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMapPending is returned by MapRead while a previous map request is still in flight.
var ErrMapPending = errors.New("renderer: buffer map already pending")

// readbackAllocator creates host-readable buffers on the renderer's device.
type readbackAllocator struct {
	backend wgpuRendererBackend
}

var _ readback.Allocator = &readbackAllocator{}

func (a *readbackAllocator) Allocate(size uint64) (readback.Buffer, error) {
	buf, err := a.backend.CreateBuffer("Readback Buffer", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	return &readbackBuffer{buffer: buf, size: size}, nil
}

// readbackBuffer is a MapRead buffer. It counts as mapped from the map request until the
// callback has copied the contents out and unmapped it.
type readbackBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	mapped atomic.Bool
}

var _ readback.Buffer = &readbackBuffer{}

func (b *readbackBuffer) Size() uint64 {
	return b.size
}

func (b *readbackBuffer) Mapped() bool {
	return b.mapped.Load()
}

func (b *readbackBuffer) Destroy() {
	b.buffer.Destroy()
	b.buffer.Release()
}

func (b *readbackBuffer) mapRead(done func(data []byte, err error)) error {
	if !b.mapped.CompareAndSwap(false, true) {
		return ErrMapPending
	}
	b.buffer.MapAsync(wgpu.MapModeRead, 0, b.size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			b.mapped.Store(false)
			done(nil, fmt.Errorf("renderer: map readback buffer: status %v", status))
			return
		}
		data := make([]byte, b.size)
		copy(data, b.buffer.GetMappedRange(0, uint(b.size)))
		b.buffer.Unmap()
		b.mapped.Store(false)
		done(data, nil)
	})
	return nil
}
