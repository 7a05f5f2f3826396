package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultBudget is the frame budget used when none is configured (50 FPS).
const DefaultBudget = 20 * time.Millisecond

// PerfTracker keeps a rolling window of frame durations.
// Once the window is full the oldest sample is overwritten.
type PerfTracker struct {
	windowSize  int
	samples     []time.Duration
	writeIndex  int
	sampleCount int
	sum         time.Duration
	budget      time.Duration
}

// NewPerfTracker creates a tracker.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
// budget: the largest acceptable average frame duration.
func NewPerfTracker(windowSize int, budget time.Duration) *PerfTracker {
	if windowSize < 2 {
		windowSize = 60
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &PerfTracker{
		windowSize: windowSize,
		samples:    make([]time.Duration, windowSize),
		budget:     budget,
	}
}

// Record pushes one measured frame duration. Negative durations count as zero.
func (p *PerfTracker) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if p.sampleCount == p.windowSize {
		p.sum -= p.samples[p.writeIndex]
	} else {
		p.sampleCount++
	}
	p.samples[p.writeIndex] = d
	p.sum += d
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
}

// Average returns the arithmetic mean of the samples in the window.
func (p *PerfTracker) Average() time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	return p.sum / time.Duration(p.sampleCount)
}

// ShouldShedLoad reports whether the window is at least half full and
// its average exceeds the budget.
func (p *PerfTracker) ShouldShedLoad() bool {
	if p.sampleCount*2 < p.windowSize {
		return false
	}
	return p.Average() > p.budget
}

// Len returns the number of samples currently held.
func (p *PerfTracker) Len() int {
	return p.sampleCount
}

// Capacity returns the window size.
func (p *PerfTracker) Capacity() int {
	return p.windowSize
}

// Budget returns the frame budget.
func (p *PerfTracker) Budget() time.Duration {
	return p.budget
}

// Reset drops all samples.
func (p *PerfTracker) Reset() {
	for i := range p.samples {
		p.samples[i] = 0
	}
	p.writeIndex = 0
	p.sampleCount = 0
	p.sum = 0
}

// window returns the held samples oldest first.
func (p *PerfTracker) window() []time.Duration {
	out := make([]time.Duration, 0, p.sampleCount)
	start := 0
	if p.sampleCount == p.windowSize {
		start = p.writeIndex
	}
	for i := 0; i < p.sampleCount; i++ {
		out = append(out, p.samples[(start+i)%p.windowSize])
	}
	return out
}

// PerfStats holds aggregated frame statistics.
type PerfStats struct {
	Samples int
	Avg     time.Duration
	Min     time.Duration
	Max     time.Duration
	StdDev  time.Duration
	P95     time.Duration
	FPS     float64
	Budget  time.Duration
	Shed    bool
}

// Stats computes aggregated statistics over the current window.
func (p *PerfTracker) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{Budget: p.budget}
	}

	w := p.window()
	xs := make([]float64, len(w))
	for i, d := range w {
		xs[i] = float64(d)
	}

	mean := stat.Mean(xs, nil)
	var std float64
	if len(xs) > 1 {
		std = stat.StdDev(xs, nil)
	}

	sort.Float64s(xs)
	p95 := stat.Quantile(0.95, stat.Empirical, xs, nil)

	var fps float64
	if mean > 0 {
		fps = float64(time.Second) / mean
	}

	return PerfStats{
		Samples: len(xs),
		Avg:     time.Duration(mean),
		Min:     time.Duration(xs[0]),
		Max:     time.Duration(xs[len(xs)-1]),
		StdDev:  time.Duration(std),
		P95:     time.Duration(p95),
		FPS:     fps,
		Budget:  p.budget,
		Shed:    p.ShouldShedLoad(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Int64("avg_frame_us", s.Avg.Microseconds()),
		slog.Int64("min_frame_us", s.Min.Microseconds()),
		slog.Int64("max_frame_us", s.Max.Microseconds()),
		slog.Int64("std_frame_us", s.StdDev.Microseconds()),
		slog.Int64("p95_frame_us", s.P95.Microseconds()),
		slog.Float64("fps", s.FPS),
		slog.Bool("shed", s.Shed),
	)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd int32   `csv:"window_end"`
	Samples   int     `csv:"samples"`
	AvgUS     int64   `csv:"avg_frame_us"`
	MinUS     int64   `csv:"min_frame_us"`
	MaxUS     int64   `csv:"max_frame_us"`
	StdUS     int64   `csv:"std_frame_us"`
	P95US     int64   `csv:"p95_frame_us"`
	FPS       float64 `csv:"fps"`
	BudgetUS  int64   `csv:"budget_us"`
	Shed      bool    `csv:"shed"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd: windowEnd,
		Samples:   s.Samples,
		AvgUS:     s.Avg.Microseconds(),
		MinUS:     s.Min.Microseconds(),
		MaxUS:     s.Max.Microseconds(),
		StdUS:     s.StdDev.Microseconds(),
		P95US:     s.P95.Microseconds(),
		FPS:       s.FPS,
		BudgetUS:  s.Budget.Microseconds(),
		Shed:      s.Shed,
	}
}
