package systems

import (
	"math"
	"time"

	"github.com/pthm-cable/glimmer/telemetry"
)

// ControllerConfig tunes the adaptive quality controller.
type ControllerConfig struct {
	EvalInterval      int     // observations between evaluations
	ShedFraction      float64 // share of live particles removed per shed
	RegrowAfter       int     // healthy evaluations before the ceiling lifts
	SimplifiedDensity float64 // share of cap allowed in simplified mode
}

// DefaultControllerConfig returns the controller defaults.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		EvalInterval:      30,
		ShedFraction:      0.10,
		RegrowAfter:       2,
		SimplifiedDensity: 0.2,
	}
}

func (c ControllerConfig) normalize() ControllerConfig {
	d := DefaultControllerConfig()
	if c.EvalInterval <= 0 {
		c.EvalInterval = d.EvalInterval
	}
	if c.ShedFraction <= 0 || math.IsNaN(c.ShedFraction) {
		c.ShedFraction = d.ShedFraction
	}
	c.ShedFraction = clampFloat(c.ShedFraction, 0, 1)
	if c.RegrowAfter <= 0 {
		c.RegrowAfter = d.RegrowAfter
	}
	c.SimplifiedDensity = clamp01(c.SimplifiedDensity)
	return c
}

// Decision is the controller's verdict for one tick.
type Decision struct {
	// Shed is how many live particles to remove this tick.
	Shed int
	// Limit is the effective particle cap this tick.
	Limit int
	// AllowGrowth is false on the tick a shed happens.
	AllowGrowth bool
}

// AdaptiveController turns the tracker's shed signal into per-tick
// decisions. Sheds happen at most once per evaluation. After a shed the
// population is held at its post-shed level until the tracker has been
// healthy for RegrowAfter evaluations in a row.
type AdaptiveController struct {
	tracker *telemetry.PerfTracker
	cfg     ControllerConfig

	ticks   int
	ceiling int // -1 when unthrottled
	healthy int

	simplified  bool
	evaluations int
	shedEvents  int
}

// NewAdaptiveController creates a controller reading from tracker.
// A nil tracker gets a default one.
func NewAdaptiveController(tracker *telemetry.PerfTracker, cfg ControllerConfig) *AdaptiveController {
	if tracker == nil {
		tracker = telemetry.NewPerfTracker(0, 0)
	}
	return &AdaptiveController{
		tracker: tracker,
		cfg:     cfg.normalize(),
		ceiling: -1,
	}
}

// Observe records one frame and returns the decision for this tick.
func (c *AdaptiveController) Observe(frame time.Duration, live, hardCap int) Decision {
	c.tracker.Record(frame)
	d := Decision{AllowGrowth: true}

	c.ticks++
	if c.ticks >= c.cfg.EvalInterval {
		c.ticks = 0
		c.evaluations++
		if c.tracker.ShouldShedLoad() {
			c.healthy = 0
			if live > 0 {
				shed := int(math.Round(float64(live) * c.cfg.ShedFraction))
				shed = max(1, min(shed, live))
				d.Shed = shed
				d.AllowGrowth = false
				c.ceiling = live - shed
				c.shedEvents++
			}
		} else if c.ceiling >= 0 {
			c.healthy++
			if c.healthy >= c.cfg.RegrowAfter {
				c.ceiling = -1
				c.healthy = 0
			}
		}
	}

	d.Limit = c.limit(hardCap)
	return d
}

// limit returns the effective cap for a system of the given capacity.
func (c *AdaptiveController) limit(hardCap int) int {
	l := hardCap
	if c.ceiling >= 0 && c.ceiling < l {
		l = c.ceiling
	}
	if c.simplified {
		s := int(math.Floor(float64(hardCap) * c.cfg.SimplifiedDensity))
		if s < l {
			l = s
		}
	}
	return max(l, 0)
}

// SetSimplifiedMode forces the fixed low-density state on or off.
func (c *AdaptiveController) SetSimplifiedMode(on bool) {
	c.simplified = on
}

// Simplified reports whether simplified mode is forced.
func (c *AdaptiveController) Simplified() bool {
	return c.simplified
}

// Throttled reports whether a post-shed ceiling is in force.
func (c *AdaptiveController) Throttled() bool {
	return c.ceiling >= 0
}

// Evaluations returns how many evaluation windows have completed.
func (c *AdaptiveController) Evaluations() int {
	return c.evaluations
}

// ShedEvents returns how many evaluations resulted in a shed.
func (c *AdaptiveController) ShedEvents() int {
	return c.shedEvents
}

// Tracker exposes the underlying performance tracker.
func (c *AdaptiveController) Tracker() *telemetry.PerfTracker {
	return c.tracker
}
