package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed stage of a pond frame.
type Phase uint8

// Phases of one frame, in the order they run.
const (
	PhaseFlock Phase = iota
	PhaseTelemetry
	PhaseWater
	PhaseRender
	NumPhases
)

var phaseNames = [NumPhases]string{"flock", "telemetry", "water", "render"}

// String returns the phase name used in logs and CSV columns.
func (p Phase) String() string {
	if p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// phaseTimes holds the time spent in each phase during one frame.
type phaseTimes [NumPhases]time.Duration

// PerfCollector times frames over a rolling window. A frame opens with
// StartTick, is split by StartPhase, and is recorded by EndTick.
type PerfCollector struct {
	windowSize int
	ticks      []time.Duration
	phases     []phaseTimes
	next       int
	count      int

	current    phaseTimes
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	// Wall time between presented frames (graphics mode)
	lastFrame time.Time
	frames    []time.Duration
	nextFrame int
	numFrames int
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		ticks:      make([]time.Duration, windowSize),
		phases:     make([]phaseTimes, windowSize),
		frames:     make([]time.Duration, windowSize),
	}
}

// StartTick begins timing a frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = phaseTimes{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
	p.inPhase = phase < NumPhases
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick finishes the frame and stores its sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.ticks[p.next] = now.Sub(p.tickStart)
	p.phases[p.next] = p.current
	p.next = (p.next + 1) % p.windowSize
	if p.count < p.windowSize {
		p.count++
	}
}

// RecordFrame marks a presented frame; the gap since the previous call is
// the frame time.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frames[p.nextFrame] = now.Sub(p.lastFrame)
		p.nextFrame = (p.nextFrame + 1) % p.windowSize
		if p.numFrames < p.windowSize {
			p.numFrames++
		}
	}
	p.lastFrame = now
}

// PerfStats summarises the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // share of the average tick

	// Presented frames; zero when headless
	FrameDuration time.Duration // mean
	FrameP90      time.Duration
	FPS           float64
}

// Stats computes the window summary.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats

	if p.numFrames > 0 {
		ms := make([]float64, p.numFrames)
		for i := range ms {
			ms[i] = float64(p.frames[i]) / float64(time.Millisecond)
		}
		sum := Summarize(ms)
		s.FrameDuration = time.Duration(sum.Mean * float64(time.Millisecond))
		s.FrameP90 = time.Duration(sum.P90 * float64(time.Millisecond))
		if s.FrameDuration > 0 {
			s.FPS = float64(time.Second) / float64(s.FrameDuration)
		}
	}

	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum phaseTimes
	for i := 0; i < p.count; i++ {
		d := p.ticks[i]
		total += d
		if i == 0 || d < s.MinTickDuration {
			s.MinTickDuration = d
		}
		s.MaxTickDuration = max(s.MaxTickDuration, d)
		for ph, pd := range p.phases[i] {
			phaseSum[ph] += pd
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs,
			slog.Int("fps", int(s.FPS)),
			slog.Int64("frame_p90_us", s.FrameP90.Microseconds()),
		)
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	FrameP90US   int64   `csv:"frame_p90_us"`
	FlockPct     float64 `csv:"flock_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	WaterPct     float64 `csv:"water_pct"`
	RenderPct    float64 `csv:"render_pct"`
}

// ToCSV flattens the summary for perf.csv.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		FrameP90US:   s.FrameP90.Microseconds(),
		FlockPct:     s.PhasePct[PhaseFlock],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
		WaterPct:     s.PhasePct[PhaseWater],
		RenderPct:    s.PhasePct[PhaseRender],
	}
}
