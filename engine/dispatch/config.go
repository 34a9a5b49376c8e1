package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReplayWithCPUSkip rejects a replayed command list combined with host-side culling,
	// since a fixed recording cannot skip instances per frame.
	ErrReplayWithCPUSkip = errors.New("dispatch: static replay requires indirect draw when culling is enabled")
	// ErrGPUCullingNeedsIndirect rejects GPU culling without indirect draw, since the GPU
	// result only reaches the draw through the indirect buffer.
	ErrGPUCullingNeedsIndirect = errors.New("dispatch: gpu culling requires indirect draw")
	// ErrUnknownBackend rejects a culling backend outside the known set.
	ErrUnknownBackend = errors.New("dispatch: unknown culling backend")
)

// CullBackend selects where visibility is computed.
type CullBackend int

const (
	// BackendSerial tests every instance on the frame goroutine.
	BackendSerial CullBackend = iota
	// BackendBulk splits the population across a worker pool.
	BackendBulk
	// BackendGPU runs the update and cull compute kernels.
	BackendGPU
)

var backendNames = [...]string{
	BackendSerial: "serial",
	BackendBulk:   "bulk",
	BackendGPU:    "gpu",
}

func (b CullBackend) String() string {
	if b < 0 || int(b) >= len(backendNames) {
		return fmt.Sprintf("CullBackend(%d)", int(b))
	}
	return backendNames[b]
}

// Next returns the backend after b in cycling order.
func (b CullBackend) Next() CullBackend {
	return CullBackend((int(b) + 1) % len(backendNames))
}

// MarshalText implements encoding.TextMarshaler.
func (b CullBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *CullBackend) UnmarshalText(text []byte) error {
	parsed, err := ParseCullBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseCullBackend maps a backend name to its value.
//
// Parameters:
//   - name: serial, bulk or gpu (case-insensitive)
//
// Returns:
//   - CullBackend: the parsed backend
//   - error: ErrUnknownBackend for any other name
func ParseCullBackend(name string) (CullBackend, error) {
	for i, n := range backendNames {
		if strings.EqualFold(name, n) {
			return CullBackend(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// Config is the per-frame rendering mode. It is validated once when applied, never per frame.
type Config struct {
	CullingEnabled bool        `json:"culling"`
	Backend        CullBackend `json:"backend"`
	IndirectDraw   bool        `json:"indirect"`
	StaticReplay   bool        `json:"replay"`
}

// DefaultConfig returns indirect drawing with serial culling and no replay.
func DefaultConfig() Config {
	return Config{
		CullingEnabled: true,
		Backend:        BackendSerial,
		IndirectDraw:   true,
	}
}

// Validate reports whether the combination of modes can be rendered.
//
// Returns:
//   - error: ErrUnknownBackend, ErrGPUCullingNeedsIndirect or ErrReplayWithCPUSkip
func (c Config) Validate() error {
	if c.Backend < 0 || int(c.Backend) >= len(backendNames) {
		return fmt.Errorf("%w: %d", ErrUnknownBackend, int(c.Backend))
	}
	if c.CullingEnabled && c.Backend == BackendGPU && !c.IndirectDraw {
		return ErrGPUCullingNeedsIndirect
	}
	if c.StaticReplay && c.CullingEnabled && !c.IndirectDraw {
		return ErrReplayWithCPUSkip
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("culling=%t backend=%s indirect=%t replay=%t",
		c.CullingEnabled, c.Backend, c.IndirectDraw, c.StaticReplay)
}
