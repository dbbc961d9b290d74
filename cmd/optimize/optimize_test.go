package main

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/telemetry"
)

func init() {
	config.MustInit("")
}

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: round trip %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = -1e6
	}
	for i, c := range pv.Clamp(v) {
		if c != pv.Specs[i].Min {
			t.Errorf("%s: clamp = %v, want %v", pv.Specs[i].Name, c, pv.Specs[i].Min)
		}
	}
}

func TestApplyExtract(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := pv.Denormalize([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7})
	pv.ApplyToConfig(cfg, want)
	got := pv.ExtractFromConfig(cfg)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestComputeQuality(t *testing.T) {
	cfg := config.Cfg()
	fe := NewFitnessEvaluator(NewParamVector(), 0, nil, 0, cfg)

	calm := telemetry.WindowStats{
		Population:   20,
		NeighborMean: targetNeighbors,
		SpeedMean:    targetPace * cfg.Flocking.MaxSpeed,
	}
	chaotic := telemetry.WindowStats{
		Population:       20,
		NeighborMean:     14,
		SpeedMean:        0.1 * cfg.Flocking.MaxSpeed,
		OvercrowdEscapes: 15,
	}

	repeat := func(w telemetry.WindowStats, n int) []telemetry.WindowStats {
		out := make([]telemetry.WindowStats, n)
		for i := range out {
			out[i] = w
		}
		return out
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		min     float64
		max     float64
	}{
		{"warmup only", repeat(calm, qualityWarmupWindows), 0, 0},
		{"ideal school", repeat(calm, 6), 0.999, 1},
		{"chaotic school", repeat(chaotic, 6), 0, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := fe.computeQuality(tt.windows)
			if q < tt.min-1e-9 || q > tt.max+1e-9 {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.min, tt.max)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 120, []int64{1, 2}, 6, config.Cfg())
	fe.statsWindow = 0.25

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(f) || f > 0 || f < -1 {
		t.Errorf("fitness = %v, want in [-1, 0]", f)
	}
	if math.Abs(fe.LastQuality()+f) > 1e-12 {
		t.Errorf("LastQuality = %v, want %v", fe.LastQuality(), -f)
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{65 * time.Second, "1m05s"},
		{time.Hour + 2*time.Minute + 3400*time.Millisecond, "1h02m03s"},
	}
	for _, tt := range tests {
		if got := clock(tt.d); got != tt.want {
			t.Errorf("clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTunerRecordHeaderOnce(t *testing.T) {
	pv := NewParamVector()
	var log, out bytes.Buffer
	tu := newTuner(pv, NewFitnessEvaluator(pv, 0, nil, 0, config.Cfg()), &log, &out, 2)

	for i := 0; i < 2; i++ {
		tu.evals++
		if err := tu.record(-0.5, pv.DefaultVector()); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), log.String())
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,quality,alignment_weight") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "2,") {
		t.Errorf("second row = %q", lines[2])
	}
}
