package readback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
)

var (
	// ErrStillMapped is returned when a buffer is released before it was unmapped.
	ErrStillMapped = errors.New("readback: buffer released while still mapped")
	// ErrDrained is returned by Acquire after the pool has been drained.
	ErrDrained = errors.New("readback: pool drained")
)

// Buffer is a host-readable GPU buffer handed out by a Pool.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64
	// Mapped reports whether the buffer is currently mapped for host access.
	Mapped() bool
	// Destroy frees the underlying GPU allocation.
	Destroy()
}

// Allocator creates readback buffers on the device.
type Allocator interface {
	// Allocate creates a buffer of exactly size bytes.
	//
	// Parameters:
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: non-nil if the device could not allocate
	Allocate(size uint64) (Buffer, error)
}

type poolImpl struct {
	mu *sync.Mutex

	allocator  Allocator
	free       map[uint64][]Buffer
	maxPerSize int
	inUse      int
	drained    bool
}

// Pool recycles readback buffers keyed by exact size. Ownership moves to the caller on
// Acquire and back to the pool on Release. All methods are safe for concurrent use.
type Pool interface {
	// Acquire pops a free buffer of exactly size bytes, allocating one on a miss.
	//
	// Parameters:
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Buffer: a buffer owned by the caller until Release
	//   - error: ErrDrained after Drain, or the wrapped allocation failure
	Acquire(size uint64) (Buffer, error)

	// Release returns an unmapped buffer to the pool.
	//
	// Parameters:
	//   - buf: a buffer obtained from Acquire
	//
	// Returns:
	//   - error: ErrStillMapped if buf is still mapped; the caller keeps ownership
	Release(buf Buffer) error

	// Drain destroys every pooled buffer and rejects further acquisitions.
	// Buffers still held by callers must be destroyed by their holders.
	Drain()

	// Free returns how many idle buffers of size bytes the pool holds.
	//
	// Parameters:
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - int: the idle buffer count
	Free(size uint64) int

	// InUse returns how many acquired buffers have not been released.
	//
	// Returns:
	//   - int: the outstanding buffer count
	InUse() int
}

var _ Pool = &poolImpl{}

// NewPool creates a readback pool over allocator.
//
// Parameters:
//   - allocator: creates buffers on a miss
//   - options: functional options for the pool
//
// Returns:
//   - Pool: the empty pool
func NewPool(allocator Allocator, options ...PoolBuilderOption) Pool {
	p := &poolImpl{
		mu:         &sync.Mutex{},
		allocator:  allocator,
		free:       make(map[uint64][]Buffer),
		maxPerSize: 4,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *poolImpl) Acquire(size uint64) (Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drained {
		return nil, ErrDrained
	}
	if list := p.free[size]; len(list) > 0 {
		buf := list[len(list)-1]
		p.free[size] = list[:len(list)-1]
		p.inUse++
		return buf, nil
	}
	buf, err := p.allocator.Allocate(size)
	if err != nil {
		return nil, fmt.Errorf("readback: allocate %d bytes: %w", size, err)
	}
	p.inUse++
	common.Logger().Debug("readback buffer allocated", "size", size)
	return buf, nil
}

func (p *poolImpl) Release(buf Buffer) error {
	if buf.Mapped() {
		return ErrStillMapped
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse = max(p.inUse-1, 0)
	size := buf.Size()
	if p.drained || len(p.free[size]) >= p.maxPerSize {
		buf.Destroy()
		return nil
	}
	p.free[size] = append(p.free[size], buf)
	return nil
}

func (p *poolImpl) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for size, list := range p.free {
		for _, buf := range list {
			buf.Destroy()
		}
		delete(p.free, size)
	}
	p.drained = true
}

func (p *poolImpl) Free(size uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free[size])
}

func (p *poolImpl) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}
