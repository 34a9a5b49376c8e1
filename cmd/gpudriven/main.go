// Command gpudriven renders a large instanced cube population with frustum culling and
// indirect draws, switchable at runtime between host, worker-pool and compute-shader culling.
//
// Keys: C culling, I indirect draw, R static replay, B culling backend, P profiler,
// WASD and arrows move the camera, Escape quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/camera"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/scene"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/telemetry"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/window"
)

// options holds the parsed command line.
type options struct {
	instances int
	config    dispatch.Config
	workers   int
	period    float64
	seed      uint64
	msaa      renderer.MSAASampleCount
	vsync     bool
	software  bool
	telemetry string
	profile   bool
	logLevel  slog.Level
	frames    uint64
	fov       float64
	width     int
	height    int
}

// parseFlags parses args (without the program name) into options and validates them.
func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("gpudriven", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		opts     options
		culling  string
		msaa     int
		logLevel string
	)
	fs.IntVar(&opts.instances, "instances", instance.DefaultCount, "number of cube instances")
	fs.StringVar(&culling, "culling", "serial", "culling backend: off, serial, bulk or gpu")
	fs.BoolVar(&opts.config.IndirectDraw, "indirect", true, "draw through the indirect buffer")
	fs.BoolVar(&opts.config.StaticReplay, "replay", false, "replay a recorded command list")
	fs.IntVar(&opts.workers, "workers", 0, "bulk culling workers (0 = one per CPU)")
	fs.Float64Var(&opts.period, "period", instance.DefaultPeriod, "animation period in seconds")
	fs.Uint64Var(&opts.seed, "seed", instance.DefaultSeed, "random seed for rotations and velocities")
	fs.IntVar(&msaa, "msaa", 4, "MSAA sample count: 1, 4, 8 or 16")
	fs.BoolVar(&opts.vsync, "vsync", false, "wait for vertical blank")
	fs.BoolVar(&opts.software, "software", false, "force a software (fallback) adapter")
	fs.StringVar(&opts.telemetry, "telemetry", "", "serve frame stats over websocket at this address, e.g. :8080")
	fs.BoolVar(&opts.profile, "profile", false, "log frame rate and heap use")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.Float64Var(&opts.fov, "fov", float64(common.DefaultFovY), "vertical field of view in degrees")
	fs.Uint64Var(&opts.frames, "frames", 0, "exit after this many frames (0 = run until closed)")
	fs.IntVar(&opts.width, "width", 1280, "window width")
	fs.IntVar(&opts.height, "height", 720, "window height")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if culling == "off" {
		opts.config.CullingEnabled = false
		opts.config.Backend = dispatch.BackendSerial
	} else {
		backend, err := dispatch.ParseCullBackend(culling)
		if err != nil {
			return options{}, err
		}
		opts.config.CullingEnabled = true
		opts.config.Backend = backend
	}
	if err := opts.config.Validate(); err != nil {
		return options{}, err
	}

	if opts.instances <= 0 {
		return options{}, fmt.Errorf("-instances must be positive, got %d", opts.instances)
	}
	if opts.period <= 0 {
		return options{}, fmt.Errorf("-period must be positive, got %v", opts.period)
	}
	if opts.fov <= 0 || opts.fov >= 180 {
		return options{}, fmt.Errorf("-fov must be in (0, 180), got %v", opts.fov)
	}
	if opts.workers < 0 {
		return options{}, fmt.Errorf("-workers must not be negative, got %d", opts.workers)
	}

	sampleCount, err := renderer.ParseMSAASampleCount(msaa)
	if err != nil {
		return options{}, err
	}
	opts.msaa = sampleCount

	if err := opts.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return options{}, fmt.Errorf("-log-level: %w", err)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "gpudriven:", err)
		os.Exit(2)
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.logLevel})))

	if err := run(opts); err != nil {
		common.Logger().Error("gpudriven failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	w := window.NewWindow(
		window.WithTitle("GPU Driven Rendering"),
		window.WithSize(opts.width, opts.height),
	)
	defer w.Close()

	presentMode := renderer.PresentModeUncapped
	if opts.vsync {
		presentMode = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		w,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(opts.msaa),
		renderer.WithForceSoftwareRenderer(opts.software),
		renderer.WithClearColor(0.02, 0.02, 0.05),
	)

	cam := camera.NewCamera(
		camera.WithFov(float32(opts.fov)),
		camera.WithAspect(float32(w.Width())/float32(w.Height())),
		camera.WithController(camera.NewCameraController()),
	)
	store := instance.NewStore(
		instance.WithCount(opts.instances),
		instance.WithSeed(opts.seed),
		instance.WithPeriod(opts.period),
	)

	sceneOpts := []scene.SceneBuilderOption{
		scene.WithCamera(cam),
		scene.WithStore(store),
		scene.WithConfig(opts.config),
	}
	if opts.workers > 0 {
		sceneOpts = append(sceneOpts, scene.WithBulkWorkers(opts.workers))
	}
	s, err := scene.NewScene(r, sceneOpts...)
	if err != nil {
		return err
	}
	defer s.Release()

	engineOpts := []engine.EngineBuilderOption{
		engine.WithWindow(w),
		engine.WithScene(s),
		engine.WithProfiling(opts.profile),
		engine.WithMaxFrames(opts.frames),
	}

	if opts.telemetry != "" {
		hub := telemetry.NewHub()
		defer hub.Close()

		mux := http.NewServeMux()
		mux.Handle("/frames", hub)
		srv := &http.Server{Addr: opts.telemetry, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				common.Logger().Error("telemetry server stopped", "addr", opts.telemetry, "error", err)
			}
		}()
		defer srv.Close()

		common.Logger().Info("telemetry listening", "addr", opts.telemetry, "path", "/frames")
		engineOpts = append(engineOpts, engine.WithTelemetry(hub))
	}

	common.Logger().Info("starting",
		"instances", opts.instances,
		"config", opts.config.String(),
		"msaa", int(opts.msaa),
		"present", presentMode.String(),
	)
	return engine.NewEngine(engineOpts...).Run()
}
