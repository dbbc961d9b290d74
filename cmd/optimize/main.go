package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/koipond/config"
)

// evalRecord is one row of optimize_log.csv. Parameter columns follow
// NewParamVector order.
type evalRecord struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	Quality          float64 `csv:"quality"`
	AlignmentWeight  float64 `csv:"alignment_weight"`
	CohesionWeight   float64 `csv:"cohesion_weight"`
	SeparationWeight float64 `csv:"separation_weight"`
	MaxForce         float64 `csv:"max_force"`
	PerceptionRadius float64 `csv:"perception_radius"`
	Damping          float64 `csv:"damping"`
	ForceSmoothing   float64 `csv:"force_smoothing"`
}

func newEvalRecord(eval int, fitness, quality float64, v []float64) evalRecord {
	r := evalRecord{Eval: eval, Fitness: fitness, Quality: quality}
	cols := []*float64{
		&r.AlignmentWeight, &r.CohesionWeight, &r.SeparationWeight, &r.MaxForce,
		&r.PerceptionRadius, &r.Damping, &r.ForceSmoothing,
	}
	for i, c := range cols {
		*c = v[i]
	}
	return r
}

// tuner owns the objective, its progress log and the best point seen.
type tuner struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       io.Writer
	out       io.Writer
	maxEvals  int

	evals   int
	best    float64
	bestX   []float64
	started time.Time
}

func newTuner(params *ParamVector, evaluator *FitnessEvaluator, log, out io.Writer, maxEvals int) *tuner {
	return &tuner{
		params:    params,
		evaluator: evaluator,
		log:       log,
		out:       out,
		maxEvals:  maxEvals,
		best:      math.Inf(1),
		started:   time.Now(),
	}
}

// objective is minimised by CMA-ES over normalised coordinates.
func (t *tuner) objective(x []float64) float64 {
	raw := t.params.Denormalize(x)
	fitness := t.evaluator.Evaluate(raw)
	t.evals++

	simulated := t.params.Clamp(raw)
	if fitness < t.best {
		t.best = fitness
		t.bestX = simulated
	}
	if err := t.record(fitness, simulated); err != nil {
		slog.Error("failed to write log row", "error", err)
	}
	t.progress()
	return fitness
}

func (t *tuner) record(fitness float64, values []float64) error {
	rows := []evalRecord{newEvalRecord(t.evals, fitness, t.evaluator.LastQuality(), values)}
	if t.evals == 1 {
		return gocsv.Marshal(rows, t.log)
	}
	return gocsv.MarshalWithoutHeaders(rows, t.log)
}

func (t *tuner) progress() {
	elapsed := time.Since(t.started)
	eta := time.Duration(t.maxEvals-t.evals) * (elapsed / time.Duration(t.evals))
	fmt.Fprintf(t.out, "eval %d/%d  quality %.3f  best %.3f  elapsed %s  eta %s\n",
		t.evals, t.maxEvals, t.evaluator.LastQuality(), -t.best, clock(elapsed), clock(eta))
}

// clock formats d as 1h02m03s or 2m03s.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 3600, "Simulation ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	koi := flag.Int("koi", 0, "Koi per pond (0 = use config)")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "-output is required")
		os.Exit(2)
	}
	if err := run(*configPath, *outputDir, int32(*ticks), *seeds, *koi, *maxEvals, *population); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, ticks int32, seeds, koi, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	base := config.Cfg()
	params := NewParamVector()

	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = 42 + int64(i)*1000
	}

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	defer logFile.Close()

	t := newTuner(params, NewFitnessEvaluator(params, ticks, evalSeeds, koi, base), logFile, os.Stdout, maxEvals)

	if population == 0 {
		population = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: population}
	// Seeds already run in parallel inside each evaluation.
	settings := &optimize.Settings{FuncEvaluations: maxEvals}

	fmt.Printf("CMA-ES: %d parameters, population %d, %d evals, %d seeds x %d ticks\n",
		params.Dim(), population, maxEvals, seeds, ticks)

	x0 := params.Normalize(params.ExtractFromConfig(base))
	result, err := optimize.Minimize(optimize.Problem{Func: t.objective}, x0, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	best := t.bestX
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\n%d evaluations in %s, best quality %.3f\n", t.evals, clock(time.Since(t.started)), -t.best)
	for i, s := range params.Specs {
		fmt.Printf("  %-28s %.6f\n", s.Path, best[i])
	}

	// Reload so the written file carries the user's values, not the
	// mutated global.
	bestCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	params.ApplyToConfig(bestCfg, best)
	path := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return fmt.Errorf("write best config: %w", err)
	}
	fmt.Printf("best config saved to %s\n", path)
	return nil
}
