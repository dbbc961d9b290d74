package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestFlock(t *testing.T, n int, seed int64) (*FlockSystem, *rand.Rand) {
	t.Helper()
	cfg := config.Cfg()
	rng := rand.New(rand.NewSource(seed))
	s := NewFlockSystem(ecs.NewWorld(), cfg)
	s.Populate(n, epoch, rng, cfg)
	return s, rng
}

func TestSpatialGridQuery(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Koi](world)
	grid := NewSpatialGrid(400, 400, 50)

	positions := []vmath.Vec{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 10, Y: 84}, {X: 300, Y: 300}}
	entities := make([]ecs.Entity, len(positions))
	for i, p := range positions {
		k := components.Koi{ID: i, Pos: p}
		entities[i] = mapper.NewEntity(&k)
		grid.Insert(entities[i], p)
	}

	got := grid.QueryRadiusInto(nil, positions[0], 75, entities[0], mapper)
	if len(got) != 2 {
		t.Fatalf("found %d neighbours, want 2", len(got))
	}
	for _, n := range got {
		if n.E == entities[0] || n.E == entities[3] {
			t.Errorf("unexpected neighbour %v", n.Koi.ID)
		}
	}

	// Strictly within radius
	if got := grid.QueryRadiusInto(nil, positions[0], 50, entities[0], mapper); len(got) != 0 {
		t.Errorf("neighbour at exactly the radius was included")
	}
}

func TestSpatialGridMove(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Koi](world)
	grid := NewSpatialGrid(400, 400, 50)

	k := components.Koi{Pos: vmath.Vec{X: 10, Y: 10}}
	e := mapper.NewEntity(&k)
	grid.Insert(e, k.Pos)

	kp := mapper.Get(e)
	from := kp.Pos
	kp.Pos = vmath.Vec{X: 380, Y: 380}
	grid.Move(e, from, kp.Pos)

	if got := grid.QueryRadiusInto(nil, vmath.Vec{X: 10, Y: 10}, 40, ecs.Entity{}, mapper); len(got) != 0 {
		t.Errorf("koi still indexed at its old cell")
	}
	if got := grid.QueryRadiusInto(nil, vmath.Vec{X: 390, Y: 390}, 40, ecs.Entity{}, mapper); len(got) != 1 {
		t.Errorf("koi not indexed at its new cell")
	}
}

func TestNearestSortsAndTruncates(t *testing.T) {
	ns := []Neighbor{
		{Koi: &components.Koi{ID: 3}, Dist: 5},
		{Koi: &components.Koi{ID: 1}, Dist: 9},
		{Koi: &components.Koi{ID: 2}, Dist: 5},
		{Koi: &components.Koi{ID: 0}, Dist: 1},
	}
	got := Nearest(ns, 3)
	wantIDs := []int{0, 2, 3}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].Koi.ID != id {
			t.Errorf("got[%d] = koi %d, want %d", i, got[i].Koi.ID, id)
		}
	}
}

// TestFlockStaysFinite advances a small flock and checks that motion stays
// finite and bounded by each koi's own speed cap.
func TestFlockStaysFinite(t *testing.T) {
	cfg := config.Cfg()
	s, rng := newTestFlock(t, 3, 7)
	w, h := s.Bounds()

	now := epoch
	for tick := 0; tick < 100; tick++ {
		before := make(map[int]vmath.Vec, s.Len())
		s.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
			before[k.ID] = k.Pos
		})

		now = now.Add(cfg.Derived.DT)
		s.Update(cfg.Flocking, nil, now, rng)

		s.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
			if !vmath.Finite(k.Pos) || !vmath.Finite(k.Vel) {
				t.Fatalf("tick %d koi %d: non-finite state pos=%v vel=%v", tick, k.ID, k.Pos, k.Vel)
			}
			dx := wrapDelta(k.Pos.X-before[k.ID].X, w)
			dy := wrapDelta(k.Pos.Y-before[k.ID].Y, h)
			moved := math.Hypot(dx, dy)
			if limit := k.MaxSpeed(cfg.Flocking.MaxSpeed); moved > limit+1e-6 {
				t.Fatalf("tick %d koi %d: moved %v, cap %v", tick, k.ID, moved, limit)
			}
		})
	}
}

// wrapDelta undoes a wrap across an edge of length size.
func wrapDelta(d, size float64) float64 {
	if d > size/2 {
		return d - size
	}
	if d < -size/2 {
		return d + size
	}
	return d
}

func TestFlockDeterministic(t *testing.T) {
	cfg := config.Cfg()
	run := func() []components.Koi {
		s, rng := newTestFlock(t, 5, 21)
		now := epoch
		target := vmath.Vec{X: 200, Y: 200}
		for tick := 0; tick < 200; tick++ {
			now = now.Add(cfg.Derived.DT)
			s.Update(cfg.Flocking, &target, now, rng)
		}
		kois, _ := s.Snapshot()
		return kois
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("flock sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel {
			t.Errorf("koi %d diverged: %v/%v vs %v/%v", i, a[i].Pos, a[i].Vel, b[i].Pos, b[i].Vel)
		}
	}
}

func TestFlockOvercrowdingReport(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Pond.Population = 20
	cfg.Derived.PondW, cfg.Derived.PondH = 60, 60
	cfg.Physics.OvercrowdNeighbors = 3

	rng := rand.New(rand.NewSource(3))
	s := NewFlockSystem(ecs.NewWorld(), &cfg)
	s.Populate(cfg.Pond.Population, epoch, rng, &cfg)

	report := s.Update(cfg.Flocking, nil, epoch.Add(cfg.Derived.DT), rng)
	if report.OvercrowdEscapes == 0 {
		t.Fatal("crowded pond produced no overcrowding escapes")
	}
	if report.Escaping < report.OvercrowdEscapes {
		t.Errorf("escaping count %d < escapes started %d", report.Escaping, report.OvercrowdEscapes)
	}
	if len(report.Speeds) != s.Len() || len(report.Neighbors) != s.Len() {
		t.Errorf("samples = %d/%d, want %d", len(report.Speeds), len(report.Neighbors), s.Len())
	}
}

func TestFlockPick(t *testing.T) {
	s, _ := newTestFlock(t, 4, 9)
	var target components.Koi
	s.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
		if k.ID == 2 {
			target = *k
		}
	})

	e, ok := s.Pick(target.Pos, 1)
	if !ok {
		t.Fatal("Pick found nothing at a koi's position")
	}
	if got := s.Koi(e); got == nil || got.ID != 2 {
		t.Errorf("Pick returned %v, want koi 2", got)
	}
}

func TestFlockNeighbors(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Derived.PondW, cfg.Derived.PondH = 40, 40
	cfg.Physics.MaxNeighbors = 3

	rng := rand.New(rand.NewSource(5))
	s := NewFlockSystem(ecs.NewWorld(), &cfg)
	s.Populate(10, epoch, rng, &cfg)

	var first ecs.Entity
	s.Each(func(e ecs.Entity, k *components.Koi, _ *components.Appearance) {
		if k.ID == 0 {
			first = e
		}
	})

	got := s.Neighbors(first)
	if len(got) != 3 {
		t.Fatalf("got %d neighbours, want 3", len(got))
	}
	for i, n := range got {
		if n.E == first {
			t.Error("koi listed as its own neighbour")
		}
		if i > 0 && n.Dist < got[i-1].Dist {
			t.Errorf("neighbours not sorted: %v after %v", n.Dist, got[i-1].Dist)
		}
	}

	if s.CellSize() != cfg.Pond.GridCellSize {
		t.Errorf("CellSize = %v, want %v", s.CellSize(), cfg.Pond.GridCellSize)
	}
}

// TestFlockUpdateModes places three koi close together near a target and
// forces the first koi into each behaviour mode. Its motion must match a
// copy steered only by what that mode allows.
func TestFlockUpdateModes(t *testing.T) {
	base := *config.Cfg()
	base.Derived.PondW, base.Derived.PondH = 400, 400
	base.Physics.MaxNeighbors = 10
	base.Physics.OvercrowdNeighbors = 100
	base.Physics.OvercrowdForce = math.Inf(1)

	until := epoch.Add(10 * time.Second)
	sentinel := components.Forces{
		Separation: vmath.Vec{X: 0.01, Y: 0},
		Alignment:  vmath.Vec{X: 0, Y: 0.02},
		Cohesion:   vmath.Vec{X: -0.03, Y: 0},
	}

	tests := []struct {
		name      string
		state     components.State
		steer     func(s *FlockSystem, k *components.Koi, ns []Neighbor, params config.FlockingConfig, target *vmath.Vec)
		keepsPrev bool
	}{
		{
			name:  "normal flocks and follows the target",
			state: components.Normal{},
			steer: func(s *FlockSystem, k *components.Koi, ns []Neighbor, params config.FlockingConfig, target *vmath.Vec) {
				k.ApplyForces(s.flockingForces(k, ns, params, target), len(ns), epoch, nil, s.physics)
			},
		},
		{
			name:  "escaping follows the escape force only",
			state: components.Escaping{Heading: math.Pi / 3, Until: until},
			steer: func(s *FlockSystem, k *components.Koi, _ []Neighbor, params config.FlockingConfig, _ *vmath.Vec) {
				k.Accelerate(EscapeForce(math.Pi/3, params.MaxForce, s.physics.EscapeForceMultiplier))
			},
			keepsPrev: true,
		},
		{
			name:      "independent ignores flock and target",
			state:     components.Independent{Until: until},
			steer:     func(*FlockSystem, *components.Koi, []Neighbor, config.FlockingConfig, *vmath.Vec) {},
			keepsPrev: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			rng := rand.New(rand.NewSource(11))
			s := NewFlockSystem(ecs.NewWorld(), &cfg)
			s.Populate(3, epoch, rng, &cfg)

			var first ecs.Entity
			positions := []vmath.Vec{{X: 200, Y: 200}, {X: 215, Y: 205}, {X: 190, Y: 220}}
			s.Each(func(e ecs.Entity, k *components.Koi, _ *components.Appearance) {
				k.Pos = positions[k.ID]
				if k.ID == 0 {
					first = e
				}
			})
			s.Resize(cfg.Derived.PondW, cfg.Derived.PondH, cfg.Pond.GridCellSize)

			k := s.Koi(first)
			k.Vel = vmath.Vec{X: 1, Y: 0}
			k.PrevHeading = 0
			k.Behavior.State = tt.state
			k.Behavior.NextCheck = until
			k.PrevSeparation, k.PrevAlignment, k.PrevCohesion = sentinel.Separation, sentinel.Alignment, sentinel.Cohesion

			target := vmath.Vec{X: 240, Y: 180}
			ns := s.Neighbors(first)
			if len(ns) != 2 {
				t.Fatalf("got %d neighbours, want 2", len(ns))
			}
			if f := s.flockingForces(k, ns, cfg.Flocking, &target); f.Attraction == vmath.Zero {
				t.Fatal("target exerts no attraction")
			}

			want := *k
			want.History = components.NewHeadingHistory(k.History.Cap())
			tt.steer(s, &want, ns, cfg.Flocking, &target)
			now := epoch.Add(cfg.Derived.DT)
			want.Update(cfg.Flocking.MaxSpeed, now, nil, s.physics)
			want.Edges(cfg.Derived.PondW, cfg.Derived.PondH)

			s.Update(cfg.Flocking, &target, now, rng)

			got := s.Koi(first)
			if d := vmath.Mag(r2.Sub(got.Vel, want.Vel)); d > 1e-12 {
				t.Errorf("vel = %v, want %v", got.Vel, want.Vel)
			}
			if d := vmath.Mag(r2.Sub(got.Pos, want.Pos)); d > 1e-12 {
				t.Errorf("pos = %v, want %v", got.Pos, want.Pos)
			}
			if got.Neighbors != 2 {
				t.Errorf("neighbours = %d, want 2", got.Neighbors)
			}
			if got.Behavior.Mode() != tt.state.Mode() {
				t.Errorf("mode = %v, want %v", got.Behavior.Mode(), tt.state.Mode())
			}

			prev := components.Forces{Separation: got.PrevSeparation, Alignment: got.PrevAlignment, Cohesion: got.PrevCohesion}
			if kept := prev == sentinel; kept != tt.keepsPrev {
				t.Errorf("previous forces kept = %v, want %v", kept, tt.keepsPrev)
			}
		})
	}
}
