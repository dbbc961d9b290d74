// Package config provides configuration loading and access for the pond.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Pond      PondConfig      `yaml:"pond"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Flocking  FlockingConfig  `yaml:"flocking"`
	Koi       KoiConfig       `yaml:"koi"`
	Animation AnimationConfig `yaml:"animation"`
	Rendering RenderingConfig `yaml:"rendering"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PondConfig holds the simulated domain.
type PondConfig struct {
	Population   int     `yaml:"population"`
	Width        int     `yaml:"width"`  // 0 = screen width
	Height       int     `yaml:"height"` // 0 = screen height
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// Weights is a separation/alignment/cohesion weighting triple.
type Weights struct {
	Separation float64 `yaml:"separation"`
	Alignment  float64 `yaml:"alignment"`
	Cohesion   float64 `yaml:"cohesion"`
}

// Range is an inclusive [min, max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PhysicsConfig holds per-agent steering and stabilisation constants.
// Durations are in seconds.
type PhysicsConfig struct {
	ForceSmoothing    float64 `yaml:"force_smoothing"`
	VelocitySmoothing float64 `yaml:"velocity_smoothing"`
	DeadZone          float64 `yaml:"dead_zone"`
	PerceptionRadius  float64 `yaml:"perception_radius"`
	Damping           float64 `yaml:"damping"`
	MinDampingSpeed   float64 `yaml:"min_damping_speed"`
	MinSpeedFraction  float64 `yaml:"min_speed_fraction"`

	SeparationHigh float64 `yaml:"separation_high"`
	SeparationMed  float64 `yaml:"separation_med"`
	PriorityHigh   Weights `yaml:"priority_high"`
	PriorityMedium Weights `yaml:"priority_medium"`

	MaxNeighbors int `yaml:"max_neighbors"`

	OscillationHistory   int `yaml:"oscillation_history"`
	OscillationCheck     int `yaml:"oscillation_check"`
	OscillationReversals int `yaml:"oscillation_reversals"`

	OvercrowdNeighbors int     `yaml:"overcrowd_neighbors"`
	OvercrowdForce     float64 `yaml:"overcrowd_force"`

	EscapeDuration        Range   `yaml:"escape_duration"`
	EscapeCooldown        Range   `yaml:"escape_cooldown"`
	EscapeAngleDeg        Range   `yaml:"escape_angle_deg"`
	EscapeForceMultiplier float64 `yaml:"escape_force_multiplier"`

	IndependenceCheck    Range `yaml:"independence_check_interval"`
	IndependenceChance   Range `yaml:"independence_chance"`
	IndependenceDuration Range `yaml:"independence_duration"`
}

// FlockingConfig holds the tunable per-tick steering parameters.
type FlockingConfig struct {
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxForce         float64 `yaml:"max_force"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	SeparationWeight float64 `yaml:"separation_weight"`
	AttractionWeight float64 `yaml:"attraction_weight"`
	AttractionRadius float64 `yaml:"attraction_radius"`
	AttractionBoost  float64 `yaml:"attraction_boost"`
}

// KoiConfig holds per-koi variation ranges drawn at creation.
type KoiConfig struct {
	Size         Range `yaml:"size"`
	Length       Range `yaml:"length"`
	Tail         Range `yaml:"tail"`
	Speed        Range `yaml:"speed"`
	InitialSpeed Range `yaml:"initial_speed"`
}

// FinMotion holds rotation and sway for one fin pair.
type FinMotion struct {
	Rotation  float64 `yaml:"rotation"`
	Sway      float64 `yaml:"sway"`
	Frequency float64 `yaml:"frequency"`
}

// AnimationConfig holds swimming-wave and fin motion constants.
type AnimationConfig struct {
	WaveSpeed       float64   `yaml:"wave_speed"`
	PhaseGradient   float64   `yaml:"phase_gradient"`
	Amplitude       float64   `yaml:"amplitude"`
	Dampening       float64   `yaml:"dampening"`
	DorsalDampening float64   `yaml:"dorsal_dampening"`
	TailSegments    int       `yaml:"tail_segments"`
	Pectoral        FinMotion `yaml:"pectoral"`
	Ventral         FinMotion `yaml:"ventral"`
}

// RenderingConfig holds renderer switches and stamp constants.
type RenderingConfig struct {
	SumiE           bool              `yaml:"sumi_e"`
	BaseScale       float64           `yaml:"base_scale"`
	ShapesDir       string            `yaml:"shapes_dir"`
	TexturesDir     string            `yaml:"textures_dir"`
	PathSamples     int               `yaml:"path_samples"`
	StampCacheSize  int               `yaml:"stamp_cache_size"`
	SpotScale       float64           `yaml:"spot_scale"`
	SpotJitter      Range             `yaml:"spot_jitter"`
	SpotRotationDeg float64           `yaml:"spot_rotation_deg"`
	SpotHeightRatio float64           `yaml:"spot_height_ratio"`
	DarkThreshold   float64           `yaml:"dark_threshold"`
	DarkSpotAlpha   float64           `yaml:"dark_spot_alpha"`
	LightSpotAlpha  float64           `yaml:"light_spot_alpha"`
	BodyTexAlpha    float64           `yaml:"body_texture_alpha"`
	BodyTexScale    float64           `yaml:"body_texture_scale"`
	Deformations    map[string]string `yaml:"deformations"`
	Water           WaterConfig       `yaml:"water"`
}

// WaterConfig holds the pond backdrop noise parameters.
type WaterConfig struct {
	Scale    float64 `yaml:"scale"`
	Octaves  int     `yaml:"octaves"`
	Contrast float64 `yaml:"contrast"`
	Hue      float64 `yaml:"hue"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds
	PerfWindow  int     `yaml:"perf_window"`  // ticks
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT    time.Duration
	PondW float64
	PondH float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Pond.Population < 1 {
		errs = append(errs, fmt.Errorf("pond.population must be >= 1, got %d", c.Pond.Population))
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Pond.Width < 0 || c.Pond.Height < 0 {
		errs = append(errs, fmt.Errorf("pond size must not be negative, got %dx%d", c.Pond.Width, c.Pond.Height))
	}
	if c.Physics.OscillationHistory < c.Physics.OscillationCheck {
		errs = append(errs, fmt.Errorf("physics.oscillation_history (%d) must be >= oscillation_check (%d)",
			c.Physics.OscillationHistory, c.Physics.OscillationCheck))
	}

	ranges := map[string]Range{
		"physics.escape_duration":             c.Physics.EscapeDuration,
		"physics.escape_cooldown":             c.Physics.EscapeCooldown,
		"physics.escape_angle_deg":            c.Physics.EscapeAngleDeg,
		"physics.independence_check_interval": c.Physics.IndependenceCheck,
		"physics.independence_chance":         c.Physics.IndependenceChance,
		"physics.independence_duration":       c.Physics.IndependenceDuration,
		"koi.size":                            c.Koi.Size,
		"koi.length":                          c.Koi.Length,
		"koi.tail":                            c.Koi.Tail,
		"koi.speed":                           c.Koi.Speed,
		"koi.initial_speed":                   c.Koi.InitialSpeed,
		"rendering.spot_jitter":               c.Rendering.SpotJitter,
	}
	for name, r := range ranges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%s: min %v > max %v", name, r.Min, r.Max))
		}
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.DT = time.Second / time.Duration(fps)

	// Pond defaults to screen size if not specified
	c.Derived.PondW = float64(c.Pond.Width)
	if c.Pond.Width == 0 {
		c.Derived.PondW = float64(c.Screen.Width)
	}
	c.Derived.PondH = float64(c.Pond.Height)
	if c.Pond.Height == 0 {
		c.Derived.PondH = float64(c.Screen.Height)
	}
}

// Durations converts a range in seconds to durations.
func (r Range) Durations() (lo, hi time.Duration) {
	return time.Duration(r.Min * float64(time.Second)), time.Duration(r.Max * float64(time.Second))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
