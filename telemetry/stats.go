package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Population int `csv:"population"`

	// Events during window
	OvercrowdEscapes   int `csv:"overcrowd_escapes"`
	OscillationEscapes int `csv:"oscillation_escapes"`
	IndependenceStarts int `csv:"independence_starts"`

	// Behaviour at window end
	EscapingFrac    float64 `csv:"escaping_frac"`
	IndependentFrac float64 `csv:"independent_frac"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Neighbour counts (sampled at window end)
	NeighborMean float64 `csv:"neighbor_mean"`
	NeighborStd  float64 `csv:"neighbor_std"`
	NeighborMax  float64 `csv:"neighbor_max"`
}

// Escapes returns the number of escapes triggered during the window.
func (s WindowStats) Escapes() int {
	return s.OvercrowdEscapes + s.OscillationEscapes
}

// Summary is the mean, spread and percentiles of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Summarize computes a Summary of values. The sample standard deviation is
// zero for fewer than two values.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	var s Summary
	if n < 2 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	s.Max = sorted[n-1]
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("overcrowd_escapes", s.OvercrowdEscapes),
		slog.Int("oscillation_escapes", s.OscillationEscapes),
		slog.Int("independence_starts", s.IndependenceStarts),
		slog.Float64("escaping_frac", s.EscapingFrac),
		slog.Float64("independent_frac", s.IndependentFrac),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("neighbor_mean", s.NeighborMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"overcrowd_escapes", s.OvercrowdEscapes,
		"oscillation_escapes", s.OscillationEscapes,
		"independence_starts", s.IndependenceStarts,
		"escaping_frac", s.EscapingFrac,
		"independent_frac", s.IndependentFrac,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"neighbor_mean", s.NeighborMean,
		"neighbor_std", s.NeighborStd,
		"neighbor_max", s.NeighborMax,
	)
}
