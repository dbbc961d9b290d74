// Package telemetry provides flock behaviour statistics, bookmarks, and
// snapshots.
package telemetry

import "github.com/pthm-cable/koipond/systems"

// Collector accumulates tick reports within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	overcrowdEscapes   int
	oscillationEscapes int
	independenceStarts int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one tick's events to the current window.
func (c *Collector) Record(r *systems.TickReport) {
	c.overcrowdEscapes += r.OvercrowdEscapes
	c.oscillationEscapes += r.OscillationEscapes
	c.independenceStarts += r.IndependenceStarts
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the accumulated events and the latest
// tick report, then resets counters for the next window.
func (c *Collector) Flush(currentTick int32, last *systems.TickReport) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		OvercrowdEscapes:   c.overcrowdEscapes,
		OscillationEscapes: c.oscillationEscapes,
		IndependenceStarts: c.independenceStarts,
	}

	if last != nil {
		n := len(last.Speeds)
		stats.Population = n
		if n > 0 {
			stats.EscapingFrac = float64(last.Escaping) / float64(n)
			stats.IndependentFrac = float64(last.Independent) / float64(n)
		}

		speed := Summarize(last.Speeds)
		stats.SpeedMean = speed.Mean
		stats.SpeedStd = speed.Std
		stats.SpeedP10 = speed.P10
		stats.SpeedP50 = speed.P50
		stats.SpeedP90 = speed.P90

		nb := Summarize(last.Neighbors)
		stats.NeighborMean = nb.Mean
		stats.NeighborStd = nb.Std
		stats.NeighborMax = nb.Max
	}

	c.windowStartTick = currentTick
	c.overcrowdEscapes = 0
	c.oscillationEscapes = 0
	c.independenceStarts = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
