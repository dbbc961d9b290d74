package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without a window")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	population := flag.Int("population", 0, "Number of koi (0 = use config)")
	logStats := flag.Bool("log-stats", false, "Log telemetry windows via slog")
	statsWindow := flag.Float64("stats-window", 0, "Telemetry window in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Directory for CSV logs, the config snapshot and koi snapshots")
	snapshot := flag.String("snapshot", "", "Write a PNG of the last frame to this path (headless)")
	shapesDir := flag.String("shapes", "", "Directory of SVG body part outlines (overrides config)")
	texturesDir := flag.String("textures", "", "Directory of brush texture PNGs (overrides config)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Ticks per update call in headless mode")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	opts := game.Options{
		Seed:           *seed,
		Population:     *population,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		ShapesDir:      *shapesDir,
		TexturesDir:    *texturesDir,
	}

	if !*headless {
		runWindow(config.Cfg(), opts, int32(*maxTicks))
		return
	}
	if err := runHeadless(opts, int32(*maxTicks), *snapshot); err != nil {
		slog.Error("headless run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless advances the pond without raylib until maxTicks, then
// optionally rasterises the final frame.
func runHeadless(opts game.Options, maxTicks int32, snapshot string) error {
	if maxTicks <= 0 && snapshot != "" {
		return fmt.Errorf("-snapshot needs -max-ticks")
	}

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"population", g.Population(),
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)
	for maxTicks <= 0 || g.Tick() < maxTicks {
		g.UpdateHeadless()
	}
	slog.Info("max ticks reached", "tick", g.Tick())

	if snapshot == "" {
		return nil
	}
	if err := g.WritePNG(snapshot); err != nil {
		return err
	}
	slog.Info("snapshot written", "path", snapshot)
	return nil
}

func runWindow(cfg *config.Config, opts game.Options, maxTicks int32) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Koi Pond")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
}
