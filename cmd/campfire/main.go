package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare"
	"github.com/gekko3d/flare/config"
	"github.com/gekko3d/flare/gpu"
	"github.com/gekko3d/flare/platform"
	"github.com/gekko3d/flare/raystage"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	backendName := flag.String("backend", "", "Render backend: wgpu or raylib (empty = use config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	telemetryDir := flag.String("telemetry", "", "Directory for CSV telemetry (empty = use config)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.Parse()

	logger := flare.NewDefaultLogger("campfire", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if *backendName != "" {
		cfg.Window.Backend = *backendName
	}
	if *telemetryDir != "" {
		cfg.Telemetry.Dir = *telemetryDir
	}

	backend, err := flare.ParseBackend(cfg.Window.Backend)
	if err != nil {
		logger.Errorf("%v (available: %v)", err, flare.Backends())
		os.Exit(1)
	}

	opts := runOptions{
		cfg:      cfg,
		baseDir:  configDir(*configPath),
		debug:    *debug,
		maxTicks: *maxTicks,
	}
	switch backend {
	case flare.BackendRaylib:
		err = runRaylib(opts)
	default:
		err = runWGPU(opts)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

type runOptions struct {
	cfg      *config.Config
	baseDir  string
	debug    bool
	maxTicks uint64
}

func configDir(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}

// newApp installs every module shared by the backends. The render target
// and input source are backend specific.
func newApp(opts runOptions, source flare.InputSource, name string, stage flare.FrameStage) (*flare.App, error) {
	cfg := opts.cfg
	app := flare.NewAppBuilder().UseModule(
		flare.LoggingModule{Prefix: "flare", Debug: opts.debug},
		flare.TimeModule{FixedStep: cfg.Derived.FixedStep},
		flare.InputModule{Source: source},
		flare.AssetServerModule{},
		flare.FlyingCameraModule{Camera: cameraFromConfig(cfg)},
		flare.ParticlesModule{},
		flare.TelemetryModule{
			Dir:         cfg.Telemetry.Dir,
			WindowTicks: cfg.Telemetry.WindowTicks,
			Config:      cfg,
		},
		flare.RenderTargetModule{Name: name, Stage: stage},
	).Build()

	emitters, _ := flare.Resource[flare.Emitters](app)
	assets, _ := flare.Resource[flare.AssetServer](app)
	scene := &flare.SceneDef{
		Effects: cfg.Effects,
		BaseDir: opts.baseDir,
		Seed:    cfg.Simulation.Seed,
	}
	if err := flare.LoadScene(emitters, assets, scene, app.Logger()); err != nil {
		app.Close()
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	app.Logger().Infof("Loaded %d effects", emitters.Len())
	return app, nil
}

func cameraFromConfig(cfg *config.Config) flare.Camera {
	c := cfg.Camera
	return flare.Camera{
		Position:    mgl32.Vec3(c.Position),
		Yaw:         c.Yaw,
		Pitch:       c.Pitch,
		Fov:         c.Fov,
		Near:        c.Near,
		Far:         c.Far,
		Aspect:      cfg.Derived.Aspect,
		Speed:       c.Speed,
		Sensitivity: c.Sensitivity,
	}
}

func done(app *flare.App, maxTicks uint64) bool {
	if app.Quitting() {
		return true
	}
	return maxTicks > 0 && app.Ticks() >= maxTicks
}

func runWGPU(opts runOptions) error {
	cfg := opts.cfg
	win, err := platform.OpenWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return err
	}
	defer win.Close()

	width, height := win.FramebufferSize()
	ctx, err := gpu.NewContext(win.SurfaceDescriptor(), width, height)
	if err != nil {
		return err
	}
	defer ctx.Release()

	pass, err := gpu.NewParticlePass(ctx)
	if err != nil {
		return err
	}
	defer pass.Release()

	app, err := newApp(opts, win, string(flare.BackendWGPU), pass)
	if err != nil {
		return err
	}
	defer app.Close()

	for !win.ShouldClose() && !done(app, opts.maxTicks) {
		if w, h, ok := win.TakeResize(); ok {
			if err := ctx.Resize(w, h); err != nil {
				app.Logger().Warnf("Resize to %dx%d: %v", w, h, err)
			}
		}
		app.Step()
	}
	return nil
}

func runRaylib(opts runOptions) error {
	cfg := opts.cfg
	raystage.OpenWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	defer raystage.CloseWindow()

	stage := raystage.NewStage()
	defer stage.Release()

	app, err := newApp(opts, &raystage.Input{}, string(flare.BackendRaylib), stage)
	if err != nil {
		return err
	}
	app.UseModules(raystage.PanelModule{Stage: stage})
	defer app.Close()

	for !raystage.WindowShouldClose() && !done(app, opts.maxTicks) {
		app.Step()
	}
	return nil
}
