package game

import (
	"fmt"
	"io"
	"os"
	"time"
)

// logWriter is the destination for log output.
var logWriter io.Writer = os.Stderr

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	fmt.Fprintln(logWriter, fmt.Sprintf(format, args...))
}

// logPerfStats logs per-control tick times and the frame summary.
func (g *Game) logPerfStats() {
	rows, total := g.controlTimes()
	frame := g.frameTracker.Stats()
	Logf("=== Perf @ Tick %d (speed %dx) | %.0f FPS equivalent ===", g.tick, g.stepsPerUpdate, frame.FPS)
	Logf("Total step time: %s (p95 %s, budget %s)",
		total.Round(time.Microsecond), frame.P95.Round(time.Microsecond), frame.Budget)

	for _, r := range rows {
		pct := float64(0)
		if total > 0 {
			pct = float64(r.Avg) / float64(total) * 100
		}
		Logf("  %-24s %10s  %5.1f%%", r.Label, r.Avg.Round(time.Microsecond), pct)
	}
	Logf("")
}

// logControlState logs every control's particle counts.
func (g *Game) logControlState() {
	Logf("=== Tick %d (%.1fs) | mode %s ===", g.tick, g.simTime, g.registry.Current().Mode)
	for _, h := range g.Hosts() {
		s := h.Sample()
		state := "ok"
		switch {
		case !h.Attached():
			state = "detached"
		case s.Throttled:
			state = "throttled"
		case s.Simplified:
			state = "simplified"
		}
		Logf("  %-24s live=%3d/%-3d limit=%-3d spawned=%-6d shed=%-4d %s",
			h.Label(), s.Live, s.Cap, h.System().Limit(), s.Spawned, s.Shed, state)
	}
	Logf("")
}
