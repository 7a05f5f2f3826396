package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// EffectStats holds aggregated effect statistics for a time window.
type EffectStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Host population at window end
	Hosts      int `csv:"hosts"`
	Throttled  int `csv:"throttled_hosts"`
	Simplified int `csv:"simplified_hosts"`

	// Particles at window end
	Live     int     `csv:"live"`
	Capacity int     `csv:"capacity"`
	Fill     float64 `csv:"fill"` // Live / Capacity

	// Lifecycle events during window
	Spawned  int `csv:"spawned"`
	Recycled int `csv:"recycled"`
	Expired  int `csv:"expired"`
	Culled   int `csv:"culled"`
	Shed     int `csv:"shed"`

	// Control events during window
	Broadcasts     int `csv:"broadcasts"`
	HostsCreated   int `csv:"hosts_created"`
	HostsDestroyed int `csv:"hosts_destroyed"`

	// Per-host fill distribution (sampled at window end)
	FillMean float64 `csv:"fill_mean"`
	FillStd  float64 `csv:"fill_std"`
	FillP10  float64 `csv:"fill_p10"`
	FillP50  float64 `csv:"fill_p50"`
	FillP90  float64 `csv:"fill_p90"`
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

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFillStats calculates mean, population std and percentiles of
// per-host fill ratios.
func ComputeFillStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s EffectStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("hosts", s.Hosts),
		slog.Int("throttled_hosts", s.Throttled),
		slog.Int("simplified_hosts", s.Simplified),
		slog.Int("live", s.Live),
		slog.Int("capacity", s.Capacity),
		slog.Float64("fill", s.Fill),
		slog.Int("spawned", s.Spawned),
		slog.Int("recycled", s.Recycled),
		slog.Int("expired", s.Expired),
		slog.Int("culled", s.Culled),
		slog.Int("shed", s.Shed),
		slog.Int("broadcasts", s.Broadcasts),
		slog.Int("hosts_created", s.HostsCreated),
		slog.Int("hosts_destroyed", s.HostsDestroyed),
		slog.Float64("fill_mean", s.FillMean),
		slog.Float64("fill_std", s.FillStd),
		slog.Float64("fill_p10", s.FillP10),
		slog.Float64("fill_p50", s.FillP50),
		slog.Float64("fill_p90", s.FillP90),
	)
}

// LogStats logs the window stats using slog.
func (s EffectStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"hosts", s.Hosts,
		"throttled_hosts", s.Throttled,
		"simplified_hosts", s.Simplified,
		"live", s.Live,
		"capacity", s.Capacity,
		"fill", s.Fill,
		"spawned", s.Spawned,
		"recycled", s.Recycled,
		"expired", s.Expired,
		"culled", s.Culled,
		"shed", s.Shed,
		"broadcasts", s.Broadcasts,
		"fill_p50", s.FillP50,
	)
}
