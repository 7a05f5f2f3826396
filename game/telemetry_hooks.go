package game

import (
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/glimmer/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.simTime) {
		return
	}

	stats := g.collector.Flush(g.tick, g.simTime, g.sampleHosts())
	perfStats := g.frameTracker.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		slog.Info("perf", "tick", g.tick, "frame", perfStats)
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteEffects(stats); err != nil {
			slog.Error("failed to write effects", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			snap := g.Snapshot()
			snap.Bookmark = &bm
			path, err := telemetry.SaveSnapshot(snap, filepath.Join(g.outputManager.Dir(), "snapshots"))
			if err != nil {
				slog.Error("failed to save snapshot", "error", err)
			} else {
				slog.Debug("snapshot saved", "path", path)
			}
		}
	}
}

// Snapshot captures every control, particles included.
func (g *Game) Snapshot() *telemetry.Snapshot {
	s := g.registry.Current()
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: g.rngSeed,
		Tick:    g.tick,
		SimTime: g.simTime,
		Settings: telemetry.SettingsState{
			Master:         s.Master,
			Glow:           s.Glow,
			Particle:       s.Particle,
			AnimationSpeed: s.AnimationSpeed,
			Features:       s.Features.String(),
			Mode:           s.Mode.String(),
		},
	}

	for _, h := range g.Hosts() {
		sys := h.System()
		b := h.Bounds()
		cs := telemetry.ControlState{
			HostSample: h.Sample(),
			Preset:     h.Preset().ID,
			Bounds:     [4]float64{b.X, b.Y, b.W, b.H},
			Attached:   h.Attached(),
			Limit:      sys.Limit(),
			Scale:      sys.IntensityScale(),
			Glow:       h.Glow(),
		}
		for _, p := range sys.Particles() {
			cs.Particles = append(cs.Particles, telemetry.ParticleState{
				X: p.Pos.X, Y: p.Pos.Y,
				VelX: p.Vel.X, VelY: p.Vel.Y,
				Life: p.Life, Size: p.Size,
				Kind: p.Kind.String(),
			})
		}
		snap.Controls = append(snap.Controls, cs)
	}
	return snap
}

// sampleHosts collects every live control's counters, detached ones included.
func (g *Game) sampleHosts() []telemetry.HostSample {
	samples := make([]telemetry.HostSample, 0, len(g.hosts))
	query := g.controlFilter.Query()
	for query.Next() {
		_, _, ctl, _ := query.Get()
		if h := g.hosts[ctl.ID]; h != nil {
			samples = append(samples, h.Sample())
		}
	}
	return samples
}
