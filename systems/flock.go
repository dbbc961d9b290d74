package systems

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
	"gonum.org/v1/gonum/spatial/r2"
)

// TickReport summarises one flock update for telemetry.
type TickReport struct {
	OvercrowdEscapes   int
	OscillationEscapes int
	IndependenceStarts int

	// Mode counts after the tick
	Escaping    int
	Independent int

	// Per-koi samples, reused between ticks
	Speeds    []float64
	Neighbors []float64
}

func (r *TickReport) reset() {
	r.OvercrowdEscapes = 0
	r.OscillationEscapes = 0
	r.IndependenceStarts = 0
	r.Escaping = 0
	r.Independent = 0
	r.Speeds = r.Speeds[:0]
	r.Neighbors = r.Neighbors[:0]
}

// FlockSystem owns the koi entities and advances them one tick at a time.
// Koi are updated sequentially in creation order; each reads neighbours
// that may already have moved this tick.
type FlockSystem struct {
	world   *ecs.World
	mapper  *ecs.Map2[components.Koi, components.Appearance]
	filter  *ecs.Filter2[components.Koi, components.Appearance]
	koiMap  *ecs.Map1[components.Koi]
	grid    *SpatialGrid
	physics *config.PhysicsConfig

	order   []ecs.Entity // creation order
	width   float64
	height  float64
	scratch []Neighbor
	report  TickReport
}

// NewFlockSystem creates an empty flock in a w x h pond.
func NewFlockSystem(world *ecs.World, cfg *config.Config) *FlockSystem {
	w, h := cfg.Derived.PondW, cfg.Derived.PondH
	return &FlockSystem{
		world:   world,
		mapper:  ecs.NewMap2[components.Koi, components.Appearance](world),
		filter:  ecs.NewFilter2[components.Koi, components.Appearance](world),
		koiMap:  ecs.NewMap1[components.Koi](world),
		grid:    NewSpatialGrid(w, h, cfg.Pond.GridCellSize),
		physics: &cfg.Physics,
		width:   w,
		height:  h,
		scratch: make([]Neighbor, 0, 32),
	}
}

// Populate creates n koi with appearance and tunables drawn from rng.
func (s *FlockSystem) Populate(n int, now time.Time, rng *rand.Rand, cfg *config.Config) {
	for i := 0; i < n; i++ {
		k, app := components.NewKoi(len(s.order), s.width, s.height, now, rng, cfg)
		e := s.mapper.NewEntity(&k, &app)
		s.order = append(s.order, e)
		s.grid.Insert(e, k.Pos)
	}
}

// Len returns the number of koi.
func (s *FlockSystem) Len() int { return len(s.order) }

// Bounds returns the pond size.
func (s *FlockSystem) Bounds() (w, h float64) { return s.width, s.height }

// Resize changes the pond size and rebuilds the spatial index. Koi outside
// the new bounds wrap on their next update.
func (s *FlockSystem) Resize(w, h, cellSize float64) {
	s.width, s.height = w, h
	s.grid = NewSpatialGrid(w, h, cellSize)
	for _, e := range s.order {
		s.grid.Insert(e, s.koiMap.Get(e).Pos)
	}
}

// Update advances every koi by one tick. target is the optional attraction
// point (nil for none).
func (s *FlockSystem) Update(params config.FlockingConfig, target *vmath.Vec, now time.Time, rng *rand.Rand) *TickReport {
	s.report.reset()

	for _, e := range s.order {
		k := s.koiMap.Get(e)

		found := s.grid.QueryRadiusInto(s.scratch[:0], k.Pos, k.PerceptionRadius, e, s.koiMap)
		total := len(found)
		neighbors := Nearest(found, s.physics.MaxNeighbors)
		s.scratch = found[:0]

		var tr components.Transition
		switch k.Behavior.Mode() {
		case components.ModeEscaping:
			if heading, ok := k.Behavior.EscapeHeading(now); ok {
				k.Accelerate(EscapeForce(heading, params.MaxForce, s.physics.EscapeForceMultiplier))
			}
			k.Neighbors = total
		case components.ModeIndependent:
			k.Neighbors = total
		default:
			forces := s.flockingForces(k, neighbors, params, target)
			tr |= k.ApplyForces(forces, total, now, rng, s.physics)
		}

		from := k.Pos
		tr |= k.Update(params.MaxSpeed, now, rng, s.physics)
		k.Edges(s.width, s.height)
		s.grid.Move(e, from, k.Pos)

		s.record(k, tr)
	}
	return &s.report
}

// flockingForces computes the parameter-weighted steering inputs.
func (s *FlockSystem) flockingForces(k *components.Koi, neighbors []Neighbor, params config.FlockingConfig, target *vmath.Vec) components.Forces {
	f := components.Forces{
		Alignment:  r2.Scale(params.AlignmentWeight, Alignment(k, neighbors, params.MaxSpeed, params.MaxForce)),
		Cohesion:   r2.Scale(params.CohesionWeight, Cohesion(k, neighbors, params.MaxSpeed, params.MaxForce)),
		Separation: r2.Scale(params.SeparationWeight, Separation(k, neighbors, k.PerceptionRadius, params.MaxSpeed, params.MaxForce)),
	}
	if target != nil {
		attr := Attraction(k, *target, params.AttractionRadius, params.AttractionBoost, params.MaxSpeed, params.MaxForce)
		f.Attraction = r2.Scale(params.AttractionWeight, attr)
	}
	return f
}

func (s *FlockSystem) record(k *components.Koi, tr components.Transition) {
	r := &s.report
	if tr.Has(components.EscapeStarted) {
		cause := components.CauseNone
		if e, ok := k.Behavior.State.(components.Escaping); ok {
			cause = e.Cause
		}
		switch cause {
		case components.CauseOvercrowding:
			r.OvercrowdEscapes++
		case components.CauseOscillation:
			r.OscillationEscapes++
		}
		slog.Debug("escape", "koi", k.ID, "cause", cause.String(), "neighbors", k.Neighbors)
	}
	if tr.Has(components.IndependenceStarted) {
		r.IndependenceStarts++
	}

	switch k.Behavior.Mode() {
	case components.ModeEscaping:
		r.Escaping++
	case components.ModeIndependent:
		r.Independent++
	}
	r.Speeds = append(r.Speeds, k.Speed())
	r.Neighbors = append(r.Neighbors, float64(k.Neighbors))
}

// Each calls fn for every koi in creation order.
func (s *FlockSystem) Each(fn func(e ecs.Entity, k *components.Koi, a *components.Appearance)) {
	for _, e := range s.order {
		k, a := s.mapper.Get(e)
		fn(e, k, a)
	}
}

// Snapshot copies every koi and appearance out of the world, in storage order.
func (s *FlockSystem) Snapshot() ([]components.Koi, []components.Appearance) {
	kois := make([]components.Koi, 0, len(s.order))
	apps := make([]components.Appearance, 0, len(s.order))
	query := s.filter.Query()
	for query.Next() {
		k, a := query.Get()
		kois = append(kois, *k)
		apps = append(apps, *a)
	}
	return kois, apps
}

// Koi returns the component for e, or nil.
func (s *FlockSystem) Koi(e ecs.Entity) *components.Koi {
	if !s.world.Alive(e) {
		return nil
	}
	return s.koiMap.Get(e)
}

// Appearance returns the appearance of e, or nil.
func (s *FlockSystem) Appearance(e ecs.Entity) *components.Appearance {
	if !s.world.Alive(e) {
		return nil
	}
	_, a := s.mapper.Get(e)
	return a
}

// Neighbors returns the neighbours e would steer by this tick, nearest
// first. The slice is only valid until the next query.
func (s *FlockSystem) Neighbors(e ecs.Entity) []Neighbor {
	k := s.Koi(e)
	if k == nil {
		return nil
	}
	found := s.grid.QueryRadiusInto(s.scratch[:0], k.Pos, k.PerceptionRadius, e, s.koiMap)
	s.scratch = found[:0]
	return Nearest(found, s.physics.MaxNeighbors)
}

// CellSize returns the spatial grid cell size.
func (s *FlockSystem) CellSize() float64 { return s.grid.cellSize }

// Pick returns the koi closest to pos within radius.
func (s *FlockSystem) Pick(pos vmath.Vec, radius float64) (ecs.Entity, bool) {
	found := Nearest(s.grid.QueryRadiusInto(s.scratch[:0], pos, radius, ecs.Entity{}, s.koiMap), 1)
	s.scratch = found[:0]
	if len(found) == 0 {
		return ecs.Entity{}, false
	}
	return found[0].E, true
}
