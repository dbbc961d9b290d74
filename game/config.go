package game

import (
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/telemetry"
)

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64   // RNG seed
	Population     int     // koi count (0 = config)
	LogStats       bool    // log telemetry windows via slog
	StatsWindowSec float64 // telemetry window (0 = config)
	OutputDir      string  // CSV, config and snapshot output (empty = disabled)
	Headless       bool    // no window, no GPU resources
	StepsPerUpdate int     // ticks per Update call
	ShapesDir      string  // override rendering.shapes_dir
	TexturesDir    string  // override rendering.textures_dir

	Config        *config.Config               // nil = global config
	StatsCallback func(telemetry.WindowStats) // called on every window flush
}

const (
	maxStepsPerUpdate = 10
	pickRadius        = 20.0 // pond units
	panSpeed          = 8.0  // screen pixels per frame
	wheelZoomStep     = 0.1
	panelWidth        = 240
	inspectorWidth    = 240
)

// controlsLegend is shown along the bottom edge.
const controlsLegend = "SPACE pause | , . speed | S sumi-e | TAB params | O overlays | hold LMB attract | RMB select | wheel zoom | HOME reset | F3 perf | F5 snapshot | F12 png"
