package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/game"
	"github.com/pthm-cable/koipond/telemetry"
)

// FitnessEvaluator runs headless ponds and scores how calm the school is.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int32
	seeds       []int64
	population  int
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, seeds []int64, population int, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		seeds:       seeds,
		population:  population,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			qualities[idx] = fe.computeQuality(fe.runSimulation(x, s))
		}(i, seed)
	}
	wg.Wait()

	q := stat.Mean(qualities, nil)
	fe.mu.Lock()
	fe.lastQuality = q
	fe.mu.Unlock()
	return -q
}

// runSimulation executes one headless pond and returns its window stats.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Population:     fe.population,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.ticks {
		g.UpdateHeadless()
	}
	return windows
}

// copyConfig returns a copy of the base config that one run may modify.
// Maps are shared and only read.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Quality component weights.
const (
	qualityWeightCohesion  = 0.35
	qualityWeightCalm      = 0.30
	qualityWeightPace      = 0.20
	qualityWeightStability = 0.15

	qualityWarmupWindows = 2 // skip first N windows (warmup)

	targetNeighbors = 4.0 // koi in range of each koi
	targetPace      = 0.7 // mean speed as a fraction of max speed
	escapeScale     = 0.2 // escapes per koi per window that halve the calm score
)

// computeQuality scores a run in [0, 1] from its window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]
	maxSpeed := fe.baseConfig.Flocking.MaxSpeed

	var cohesionSum, calmSum, paceSum float64
	neighborMeans := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Population == 0 {
			continue
		}
		neighborMeans = append(neighborMeans, w.NeighborMean)

		// 1. Koi keep a few neighbours in range
		d := (w.NeighborMean - targetNeighbors) / 2
		cohesionSum += math.Exp(-d * d)

		// 2. Few escapes
		perKoi := float64(w.Escapes()) / float64(w.Population)
		calmSum += math.Exp(-perKoi * math.Ln2 / escapeScale)

		// 3. Unhurried but moving
		if maxSpeed > 0 {
			p := (w.SpeedMean/maxSpeed - targetPace) / 0.2
			paceSum += math.Exp(-p * p)
		}
	}

	n := float64(len(neighborMeans))
	if n == 0 {
		return 0
	}

	// 4. The school does not repeatedly form and break up
	stabilityScore := 0.0
	if len(neighborMeans) >= 2 {
		c := cv(neighborMeans)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightCohesion*cohesionSum/n +
		qualityWeightCalm*calmSum/n +
		qualityWeightPace*paceSum/n +
		qualityWeightStability*stabilityScore

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
