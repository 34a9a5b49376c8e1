package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/camera"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/profiler"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/scene"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/telemetry"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/window"
)

// ErrNoScene is returned by Run when the engine was built without a scene.
var ErrNoScene = errors.New("engine: no scene")

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	scene  scene.Scene
	hub    telemetry.Hub

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	frameCallback  func(stats dispatch.FrameStats)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64        // stop after this many frames; 0 = unlimited
	frameErrors      int
}

// Engine drives one scene: a fixed-rate tick loop that moves the camera, a render loop that
// calls Scene.Render with the elapsed time, and the window message loop on the main thread.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene being rendered.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// EnableProfiler enables the frame-rate log.
	EnableProfiler()

	// DisableProfiler disables the frame-rate log.
	DisableProfiler()

	// SetTickRate sets the camera tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetFrameCallback registers the function called after every rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the frame statistics
	SetFrameCallback(callback func(stats dispatch.FrameStats))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// HandleKey applies a key press: C toggles culling, I toggles indirect draw, R toggles
	// static replay, B cycles the culling backend and P toggles the profiler. Any other key
	// is forwarded to the camera controller. Rejected mode changes are logged and ignored.
	//
	// Parameters:
	//   - key: the key code
	HandleKey(key uint32)

	// Run starts the tick and render goroutines and runs the window message loop.
	// Blocks until the window closes, Quit is called, or the frame limit is reached.
	//
	// Returns:
	//   - error: ErrNoScene if no scene is set
	Run() error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options and wires the window's resize,
// key and close callbacks to the scene.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.scene != nil {
				e.scene.Resize(width, height)
			}
		})
		e.window.SetKeyDownCallback(e.HandleKey)
		e.window.SetKeyUpCallback(func(key uint32) {
			if cc := e.cameraController(); cc != nil {
				cc.KeyUp(key)
			}
		})
		e.window.SetCloseCallback(e.signalQuit)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() error {
	if e.scene == nil {
		return ErrNoScene
	}
	e.running = true
	e.handle()
	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				// The surface must outlive the last frame.
				e.wg.Wait()
				_ = e.window.Close()
			default:
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	common.Logger().Info("engine stopped", "frameErrors", e.frameErrors)
	return nil
}

// Quit signals all engine goroutines to stop.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleTick()
	go e.handleRender()
}

// handleTick advances the camera controller at the configured tick rate and listens for
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if cc := e.cameraController(); cc != nil {
				cc.Tick(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop: one Scene.Render per iteration at the elapsed time since
// the loop started, then telemetry, the frame callback and the profiler.
// Recovers from panics so the window thread can shut down cleanly.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", fmt.Sprint(r))
			e.signalQuit()
		}
	}()

	start := time.Now()
	var frames uint64

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		stats, err := e.scene.Render(frameStart.Sub(start).Seconds())
		if err != nil {
			e.frameErrors++
			common.Logger().Warn("frame failed", "frame", stats.Frame, "error", err)
		}

		if e.hub != nil {
			e.hub.Publish(stats)
		}
		if e.frameCallback != nil {
			e.frameCallback(stats)
		}
		if e.profilingEnabled.Load() && e.profiler != nil {
			e.profiler.Tick()
		}

		frames++
		if e.maxFrames > 0 && frames >= e.maxFrames {
			common.Logger().Info("frame limit reached", "frames", frames)
			e.signalQuit()
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the camera tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update with the newest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetFrameCallback(callback func(stats dispatch.FrameStats)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) HandleKey(key uint32) {
	if key == common.KeyP {
		enabled := !e.profilingEnabled.Load()
		e.profilingEnabled.Store(enabled)
		common.Logger().Info("profiler toggled", "enabled", enabled)
		return
	}
	if e.scene == nil {
		return
	}
	current := e.scene.Controller().Config()
	next, ok := ToggleConfig(current, key)
	if !ok {
		if cc := e.cameraController(); cc != nil {
			cc.KeyDown(key)
		}
		return
	}
	if err := e.scene.SetConfig(next); err != nil {
		common.Logger().Warn("mode change rejected", "key", key, "config", next.String(), "error", err)
	}
}

// cameraController returns the scene camera's controller, or nil.
func (e *engine) cameraController() camera.CameraController {
	if e.scene == nil || e.scene.Camera() == nil {
		return nil
	}
	return e.scene.Camera().Controller()
}

// ToggleConfig returns cfg with the mode bound to key flipped: C culling, I indirect draw,
// R static replay, B the next culling backend. The result is not validated.
//
// Parameters:
//   - cfg: the current modes
//   - key: the key code
//
// Returns:
//   - dispatch.Config: the toggled modes
//   - bool: false if key is not a mode key
func ToggleConfig(cfg dispatch.Config, key uint32) (dispatch.Config, bool) {
	switch key {
	case common.KeyC:
		cfg.CullingEnabled = !cfg.CullingEnabled
	case common.KeyI:
		cfg.IndirectDraw = !cfg.IndirectDraw
	case common.KeyR:
		cfg.StaticReplay = !cfg.StaticReplay
	case common.KeyB:
		cfg.Backend = cfg.Backend.Next()
	default:
		return cfg, false
	}
	return cfg, true
}
