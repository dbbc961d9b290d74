// Package game hosts the koi pond: it owns the flock, the raylib window
// surface, user input, and the telemetry pipeline.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/camera"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/systems"
	"github.com/pthm-cable/koipond/telemetry"
	"github.com/pthm-cable/koipond/ui"
	"github.com/pthm-cable/koipond/vmath"
)

// Game holds the complete pond state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	flock *systems.FlockSystem
	rng   *rand.Rand
	seed  int64

	// Live flocking parameters, edited by the parameters panel
	params config.FlockingConfig

	// Simulated clock: tick n happens at start + n*DT
	start time.Time
	tick  int32

	paused         bool
	stepsPerUpdate int
	headless       bool

	// Attraction point in pond coordinates (nil when the pointer is idle)
	target *vmath.Vec

	// Rendering
	camera  *camera.Camera
	surface *surface // nil until the first frame is needed
	screenW int32
	screenH int32

	// UI
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	inspector     *ui.Inspector
	paramsPanel   *ui.ParamsPanel
	controlsPanel *ui.ControlsPanel
	overlays      *ui.OverlayRegistry
	showPerf      bool

	// Selection
	selectedEntity ecs.Entity
	hasSelection   bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	lastReport       *systems.TickReport
}

// NewGameWithOptions creates a pond populated per opts.Config (or the
// global config) and opts. Graphics resources are not touched when opts.Headless is set.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if opts.ShapesDir != "" {
		cfg.Rendering.ShapesDir = opts.ShapesDir
	}
	if opts.TexturesDir != "" {
		cfg.Rendering.TexturesDir = opts.TexturesDir
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:            cfg,
		world:          world,
		flock:          systems.NewFlockSystem(world, cfg),
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		params:         cfg.Flocking,
		start:          time.Now(),
		stepsPerUpdate: steps,
		headless:       opts.Headless,
		screenW:        int32(cfg.Screen.Width),
		screenH:        int32(cfg.Screen.Height),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
	}

	population := cfg.Pond.Population
	if opts.Population > 0 {
		population = opts.Population
	}
	g.flock.Populate(population, g.start, g.rng, cfg)

	pondW, pondH := g.flock.Bounds()
	g.camera = camera.New(float64(g.screenW), float64(g.screenH), pondW, pondH)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT.Seconds())
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if !g.headless {
		g.initUI()
	}

	slog.Info("pond created",
		"seed", opts.Seed,
		"population", population,
		"width", pondW,
		"height", pondH,
		"headless", opts.Headless,
	)
	return g
}

// initUI builds the raylib panels. Positions are refreshed on resize.
func (g *Game) initUI() {
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 100)
	g.inspector = ui.NewInspector(10, 100, inspectorWidth)
	g.paramsPanel = ui.NewParamsPanel(g.screenW-panelWidth-10, 10, panelWidth)
	g.controlsPanel = ui.NewControlsPanel(g.screenW-panelWidth-10, 10, panelWidth)
	g.overlays = ui.NewOverlayRegistry()
}

// now returns the simulated time of the current tick.
func (g *Game) now() time.Time {
	return g.start.Add(time.Duration(g.tick) * g.cfg.Derived.DT)
}

// elapsed returns simulated seconds since start.
func (g *Game) elapsed() float64 {
	return g.now().Sub(g.start).Seconds()
}

// Update handles input and runs stepsPerUpdate ticks unless paused. The
// perf sample it opens is closed by Draw.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs stepsPerUpdate ticks without input or drawing.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
	g.perfCollector.EndTick()
}

// step advances the flock one tick and feeds telemetry.
func (g *Game) step() {
	g.perfCollector.StartPhase(telemetry.PhaseFlock)
	g.tick++
	g.lastReport = g.flock.Update(g.params, g.target, g.now(), g.rng)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Record(g.lastReport)
	g.flushTelemetry()
}

// Tick returns the current tick count.
func (g *Game) Tick() int32 {
	return g.tick
}

// Population returns the number of koi.
func (g *Game) Population() int {
	return g.flock.Len()
}

// Params returns the live flocking parameters.
func (g *Game) Params() config.FlockingConfig {
	return g.params
}

// SetTarget sets or clears the attraction point in pond coordinates.
func (g *Game) SetTarget(p *vmath.Vec) {
	g.target = p
}

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	if g.surface != nil {
		g.surface.unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
