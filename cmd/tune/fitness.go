package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/glimmer/config"
	"github.com/pthm-cable/glimmer/game"
	"github.com/pthm-cable/glimmer/systems"
)

// FitnessEvaluator runs headless games with one control and scores how
// steadily its population sits at the target fill.
type FitnessEvaluator struct {
	params     *ParamVector
	configPath string
	bounds     systems.Rect
	ticks      int
	warmup     int
	target     float64 // desired mean live/cap
	seeds      []int64

	mu       sync.Mutex
	lastRun  runResult
	bestRun  runResult
	bestSeen float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, configPath string, bounds systems.Rect, ticks int, target float64, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		configPath: configPath,
		bounds:     bounds,
		ticks:      ticks,
		warmup:     min(ticks/3, 600),
		target:     target,
		seeds:      seeds,
		bestSeen:   math.Inf(1),
	}
}

// runResult summarizes one run after warmup.
type runResult struct {
	fill    float64 // mean live/cap
	cv      float64 // coefficient of variation of live
	atCap   float64 // share of ticks spent at the cap
	fitness float64
}

// Fitness weights.
const (
	weightCV    = 0.5
	weightAtCap = 0.5
)

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	preset := fe.params.Apply(x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.run(preset, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runResult
	for _, r := range results {
		avg.fill += r.fill
		avg.cv += r.cv
		avg.atCap += r.atCap
		avg.fitness += r.fitness
	}
	n := float64(len(results))
	avg.fill /= n
	avg.cv /= n
	avg.atCap /= n
	avg.fitness /= n

	fe.mu.Lock()
	fe.lastRun = avg
	if avg.fitness < fe.bestSeen {
		fe.bestSeen = avg.fitness
		fe.bestRun = avg
	}
	fe.mu.Unlock()

	return avg.fitness
}

// LastRun returns the averaged result of the most recent evaluation.
func (fe *FitnessEvaluator) LastRun() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRun
}

// BestRun returns the averaged result of the best evaluation so far.
func (fe *FitnessEvaluator) BestRun() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun
}

// run plays one seed and scores it.
func (fe *FitnessEvaluator) run(preset systems.Preset, seed int64) runResult {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return runResult{fitness: math.Inf(1)}
	}
	cfg.Presets = append(cfg.Presets, preset.Config())
	cfg.Layout = []config.ControlConfig{{
		Preset: preset.ID,
		X:      fe.bounds.X, Y: fe.bounds.Y, W: fe.bounds.W, H: fe.bounds.H,
	}}
	cfg.Telemetry.PerfLogInterval = 0

	g := game.NewGameWithOptions(game.Options{
		Seed:     seed,
		Headless: true,
		Config:   cfg,
	})
	defer g.Unload()

	hosts := g.Hosts()
	if len(hosts) == 0 {
		return runResult{fitness: math.Inf(1)}
	}
	sys := hosts[0].System()

	samples := make([]float64, 0, fe.ticks-fe.warmup)
	atCap := 0
	for int(g.Tick()) < fe.ticks {
		g.UpdateHeadless()
		if int(g.Tick()) <= fe.warmup {
			continue
		}
		live := sys.Count()
		samples = append(samples, float64(live))
		if live >= sys.Cap() {
			atCap++
		}
	}
	return fe.score(samples, atCap, sys.Cap())
}

// score turns per-tick live counts into a fitness.
func (fe *FitnessEvaluator) score(samples []float64, atCap, capacity int) runResult {
	if len(samples) == 0 || capacity <= 0 {
		return runResult{fitness: math.Inf(1)}
	}
	mean, std := stat.MeanStdDev(samples, nil)
	r := runResult{
		fill:  mean / float64(capacity),
		atCap: float64(atCap) / float64(len(samples)),
	}
	if mean > 0 {
		r.cv = std / mean
	} else {
		r.cv = 1
	}
	r.fitness = math.Abs(r.fill-fe.target) + weightCV*r.cv + weightAtCap*r.atCap
	return r
}
