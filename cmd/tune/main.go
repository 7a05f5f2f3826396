// Package main tunes a preset's emitter spawn rates and lifetimes with
// CMA-ES so its control holds a steady population under the cap.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/glimmer/config"
	"github.com/pthm-cable/glimmer/systems"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	presetID := flag.String("preset", "market_stream", "Preset to tune")
	width := flag.Float64("width", 380, "Control width")
	height := flag.Float64("height", 280, "Control height")
	ticks := flag.Int("ticks", 1800, "Ticks per run")
	target := flag.Float64("target", 0.7, "Target mean fill (live/cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target <= 0 || *target > 1 {
		log.Fatal("--target must be in (0, 1]")
	}

	// Games log their setup at info; keep the progress output readable
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	presets := systems.NewPresetRegistry()
	presets.Merge(baseCfg.Presets)
	preset, ok := presets.Get(*presetID)
	if !ok {
		log.Fatalf("unknown preset %q (known: %v)", *presetID, presets.IDs())
	}

	bounds := systems.Rect{W: *width, H: *height}
	params, err := NewParamVector(preset, bounds)
	if err != nil {
		log.Fatal(err)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *configPath, bounds, *ticks, *target, evalSeeds)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "fill", "cv", "at_cap"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			run := evaluator.LastRun()
			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.4f", run.fill),
				fmt.Sprintf("%.4f", run.cv),
				fmt.Sprintf("%.4f", run.atCap),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: fill=%.2f cv=%.3f at_cap=%.2f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, run.fill, run.cv, run.atCap, fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Tuning %s with %d parameters, population=%d, max_evals=%d\n",
		preset.ID, dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, target fill: %.2f\n", *seeds, *ticks, *target)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	best := evaluator.BestRun()
	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f (fill=%.2f cv=%.3f at_cap=%.2f)\n", bestFitness, best.fill, best.cv, best.atCap)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Name, bestParams[i])
	}

	// Save the tuned preset as a config override
	bestCfg, _ := config.Load(*configPath)
	tuned := params.Apply(bestParams).Config()
	if i, ok := bestCfg.Derived.PresetIndex[tuned.ID]; ok {
		bestCfg.Presets[i] = tuned
	} else {
		bestCfg.Presets = append(bestCfg.Presets, tuned)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
