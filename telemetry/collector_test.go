package telemetry

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/systems"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("WindowDurationTicks = %d, want 10", c.WindowDurationTicks())
	}

	c.Record(&systems.TickReport{OvercrowdEscapes: 1, IndependenceStarts: 2})
	c.Record(&systems.TickReport{OvercrowdEscapes: 1, OscillationEscapes: 1})

	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before window end")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at window end")
	}

	last := &systems.TickReport{
		Escaping:    1,
		Independent: 2,
		Speeds:      []float64{1, 2, 3, 4},
		Neighbors:   []float64{0, 2, 2, 4},
	}
	s := c.Flush(10, last)

	if s.WindowStartTick != 0 || s.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", s.WindowStartTick, s.WindowEndTick)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 1", s.SimTimeSec)
	}
	if s.OvercrowdEscapes != 2 || s.OscillationEscapes != 1 || s.IndependenceStarts != 2 {
		t.Errorf("events = %d/%d/%d, want 2/1/2", s.OvercrowdEscapes, s.OscillationEscapes, s.IndependenceStarts)
	}
	if s.Population != 4 || s.EscapingFrac != 0.25 || s.IndependentFrac != 0.5 {
		t.Errorf("population = %d, fracs %v/%v", s.Population, s.EscapingFrac, s.IndependentFrac)
	}
	if s.SpeedMean != 2.5 || s.SpeedP50 != 2.5 {
		t.Errorf("speed mean/p50 = %v/%v, want 2.5", s.SpeedMean, s.SpeedP50)
	}
	if s.NeighborMean != 2 || s.NeighborMax != 4 {
		t.Errorf("neighbours mean/max = %v/%v, want 2/4", s.NeighborMean, s.NeighborMax)
	}

	// counters reset
	next := c.Flush(20, nil)
	if next.WindowStartTick != 10 || next.Escapes() != 0 || next.IndependenceStarts != 0 {
		t.Errorf("after flush = %+v", next)
	}
	if next.Population != 0 {
		t.Errorf("nil report population = %d", next.Population)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0.001, 1)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("WindowDurationTicks = %d, want 1", c.WindowDurationTicks())
	}
}

func TestCollectorWithFlock(t *testing.T) {
	cfg := config.Cfg()
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	flock := systems.NewFlockSystem(ecs.NewWorld(), cfg)
	flock.Populate(12, now, rng, cfg)

	c := NewCollector(0.5, 1.0/60)
	var (
		tick int32
		last *systems.TickReport
	)
	for !c.ShouldFlush(tick) {
		now = now.Add(time.Second / 60)
		last = flock.Update(cfg.Flocking, nil, now, rng)
		c.Record(last)
		tick++
	}
	s := c.Flush(tick, last)

	if s.Population != 12 {
		t.Errorf("Population = %d, want 12", s.Population)
	}
	if s.SpeedMean <= 0 || math.IsNaN(s.SpeedStd) {
		t.Errorf("speed mean/std = %v/%v", s.SpeedMean, s.SpeedStd)
	}
	if s.EscapingFrac < 0 || s.EscapingFrac > 1 || s.IndependentFrac < 0 || s.IndependentFrac > 1 {
		t.Errorf("fractions out of range: %v/%v", s.EscapingFrac, s.IndependentFrac)
	}
}
