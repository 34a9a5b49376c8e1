package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/culling"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
)

// ErrBackendUnavailable is returned when a config selects a backend no culler was registered for.
var ErrBackendUnavailable = errors.New("dispatch: culling backend unavailable")

// FrameStats summarizes one frame of dispatch.
type FrameStats struct {
	Frame     uint64  `json:"frame"`
	Time      float64 `json:"time"`
	Instances int     `json:"instances"`
	Visible   int     `json:"visible"`   // host-known visible count; GPU culling reports it late
	Submitted int     `json:"submitted"` // draw calls issued to the pass
	Replayed  bool    `json:"replayed"`  // draws came from the recorded command list
	Recorded  bool    `json:"recorded"`  // the command list was re-recorded this frame
	Config    Config  `json:"config"`
}

type replayCache struct {
	list    CommandList
	version uint64
	size    int
	valid   bool
}

type controllerImpl struct {
	mu *sync.Mutex

	store   instance.Store
	table   indirect.Table
	cullers map[CullBackend]culling.Culler
	pass    culling.Culler

	cfg        Config
	version    uint64
	frame      uint64
	gpuVisible int

	replay replayCache
}

// Controller sequences animation, culling and submission for each frame under the active
// Config. SetConfig and ReportGPUVisible may be called from any goroutine; Frame must be
// called from a single frame goroutine.
type Controller interface {
	// Config returns the active configuration.
	//
	// Returns:
	//   - Config: the current modes
	Config() Config

	// SetConfig validates and applies cfg. A rejected config leaves the controller unchanged.
	// Applying a config that differs from the current one bumps the version and invalidates
	// the replay cache.
	//
	// Parameters:
	//   - cfg: the new modes
	//
	// Returns:
	//   - error: a validation error or ErrBackendUnavailable
	SetConfig(cfg Config) error

	// Version returns the configuration version, incremented on every applied change.
	//
	// Returns:
	//   - uint64: the version counter
	Version() uint64

	// Frame runs animation and culling at time t and issues this frame's draws to sub.
	//
	// Parameters:
	//   - t: elapsed time in seconds
	//   - frustum: the camera frustum in world space
	//   - sub: the submitter for the open render pass
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: a wrapped culling error
	Frame(t float64, frustum common.Frustum, sub Submitter) (FrameStats, error)

	// ReportGPUVisible records the visible count read back from a GPU culling frame.
	//
	// Parameters:
	//   - n: the number of instances the cull kernel marked visible
	ReportGPUVisible(n int)

	// Store returns the instance population driven by the controller.
	Store() instance.Store

	// Table returns the command table driven by the controller.
	Table() indirect.Table
}

var _ Controller = &controllerImpl{}

// NewController creates a Controller over store and table. Serial and bulk cullers are
// registered by default; a GPU culler must be supplied with WithCuller.
//
// Parameters:
//   - store: the instance population
//   - table: the command table, one record per instance
//   - options: functional options applied before the initial config is validated
//
// Returns:
//   - Controller: the controller
//   - error: culling.ErrSizeMismatch, a validation error, or ErrBackendUnavailable
func NewController(store instance.Store, table indirect.Table, options ...ControllerBuilderOption) (Controller, error) {
	if store.Len() != table.Len() {
		return nil, fmt.Errorf("%w: %d instances, %d commands", culling.ErrSizeMismatch, store.Len(), table.Len())
	}
	c := &controllerImpl{
		mu:      &sync.Mutex{},
		store:   store,
		table:   table,
		cullers: make(map[CullBackend]culling.Culler),
		pass:    culling.NewDisabled(),
		cfg:     DefaultConfig(),
	}
	for _, option := range options {
		option(c)
	}
	if _, ok := c.cullers[BackendSerial]; !ok {
		c.cullers[BackendSerial] = culling.NewSerial()
	}
	if _, ok := c.cullers[BackendBulk]; !ok {
		c.cullers[BackendBulk] = culling.NewBulk()
	}
	if err := c.check(c.cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *controllerImpl) check(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.CullingEnabled && cfg.IndirectDraw {
		if _, ok := c.cullers[cfg.Backend]; !ok {
			return fmt.Errorf("%w: %s", ErrBackendUnavailable, cfg.Backend)
		}
	}
	return nil
}

func (c *controllerImpl) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *controllerImpl) SetConfig(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(cfg); err != nil {
		return err
	}
	if cfg == c.cfg {
		return nil
	}
	if gpuCulled(c.cfg) && !gpuCulled(cfg) {
		// The kernels wrote instance counts the host table never saw.
		c.table.MarkAllDirty()
	}
	c.cfg = cfg
	c.version++
	common.Logger().Info("dispatch config applied", "config", cfg.String(), "version", c.version)
	return nil
}

func (c *controllerImpl) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *controllerImpl) ReportGPUVisible(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gpuVisible = n
}

func (c *controllerImpl) Store() instance.Store {
	return c.store
}

func (c *controllerImpl) Table() indirect.Table {
	return c.table
}

func gpuCulled(cfg Config) bool {
	return cfg.CullingEnabled && cfg.IndirectDraw && cfg.Backend == BackendGPU
}

func (c *controllerImpl) Frame(t float64, frustum common.Frustum, sub Submitter) (FrameStats, error) {
	c.mu.Lock()
	cfg, version, gpuVisible := c.cfg, c.version, c.gpuVisible
	c.mu.Unlock()

	c.frame++
	stats := FrameStats{
		Frame:     c.frame,
		Time:      t,
		Instances: c.store.Len(),
		Config:    cfg,
	}

	hostSkip := cfg.CullingEnabled && !cfg.IndirectDraw
	switch {
	case !cfg.CullingEnabled:
		if err := c.pass.Cull(c.store, c.table, frustum, t); err != nil {
			return stats, fmt.Errorf("dispatch: animate: %w", err)
		}
	case hostSkip:
		c.store.Update(t)
	default:
		if err := c.cullers[cfg.Backend].Cull(c.store, c.table, frustum, t); err != nil {
			return stats, fmt.Errorf("dispatch: cull %s: %w", cfg.Backend, err)
		}
	}

	switch {
	case cfg.StaticReplay:
		if !c.replay.valid || c.replay.version != version || c.replay.size != c.store.Len() {
			c.replay.list.Reset()
			c.record(&c.replay.list, cfg, frustum)
			c.replay.version = version
			c.replay.size = c.store.Len()
			c.replay.valid = true
			stats.Recorded = true
			common.Logger().Debug("command list recorded", "version", version, "calls", c.replay.list.Len())
		}
		stats.Submitted = c.replay.list.Replay(sub)
		stats.Replayed = true
	default:
		stats.Submitted = c.record(sub, cfg, frustum)
	}

	if gpuCulled(cfg) {
		stats.Visible = gpuVisible
	} else {
		stats.Visible = c.table.VisibleCount()
	}
	return stats, nil
}

// record issues the draws for cfg to sub and returns the number of draw calls.
func (c *controllerImpl) record(sub Submitter, cfg Config, frustum common.Frustum) int {
	n := c.store.Len()
	draws := 0
	for i := range n {
		idx := uint32(i)
		switch {
		case cfg.IndirectDraw:
			sub.BindInstance(idx)
			sub.DrawIndexedIndirect(c.table.Offset(i))
			draws++
		case cfg.CullingEnabled:
			visible := frustum.IntersectsBox(c.store.Box(i))
			c.table.SetVisible(i, visible)
			if !visible {
				continue
			}
			sub.BindInstance(idx)
			sub.DrawIndexed(c.table.Command(i))
			draws++
		default:
			sub.BindInstance(idx)
			sub.DrawIndexed(c.table.Command(i))
			draws++
		}
	}
	return draws
}
