package systems

import (
	"testing"
	"time"

	"github.com/pthm-cable/glimmer/telemetry"
)

func newTestController() *AdaptiveController {
	return NewAdaptiveController(telemetry.NewPerfTracker(60, 20*time.Millisecond), DefaultControllerConfig())
}

func TestAdaptiveController_ShedsOncePerEvaluation(t *testing.T) {
	c := newTestController()

	for i := 1; i < 30; i++ {
		d := c.Observe(40*time.Millisecond, 50, 50)
		if d.Shed != 0 || d.Limit != 50 || !d.AllowGrowth {
			t.Fatalf("observation %d: expected no action before the first evaluation, got %+v", i, d)
		}
	}

	d := c.Observe(40*time.Millisecond, 50, 50)
	if d.Shed != 5 || d.Limit != 45 || d.AllowGrowth {
		t.Errorf("expected shed 5 with limit 45, got %+v", d)
	}
	if !c.Throttled() || c.ShedEvents() != 1 || c.Evaluations() != 1 {
		t.Errorf("expected one throttling evaluation, got throttled=%v sheds=%d evals=%d",
			c.Throttled(), c.ShedEvents(), c.Evaluations())
	}

	// Between evaluations the ceiling holds but nothing more is shed
	d = c.Observe(40*time.Millisecond, 45, 50)
	if d.Shed != 0 || d.Limit != 45 || !d.AllowGrowth {
		t.Errorf("expected the ceiling without a second shed, got %+v", d)
	}
}

func TestAdaptiveController_MinimumShedIsOne(t *testing.T) {
	c := newTestController()
	var d Decision
	for i := 0; i < 30; i++ {
		d = c.Observe(50*time.Millisecond, 3, 50)
	}
	if d.Shed != 1 {
		t.Errorf("expected at least one particle shed, got %d", d.Shed)
	}

	// Nothing to shed
	c = newTestController()
	for i := 0; i < 30; i++ {
		d = c.Observe(50*time.Millisecond, 0, 50)
	}
	if d.Shed != 0 || c.ShedEvents() != 0 {
		t.Errorf("expected no shed for an empty system, got %+v", d)
	}
}

func TestAdaptiveController_RecoversAfterHealthyEvaluations(t *testing.T) {
	c := newTestController()
	live := 50
	for i := 0; i < 60; i++ {
		d := c.Observe(40*time.Millisecond, live, 50)
		live -= d.Shed
	}
	if live != 40 {
		t.Fatalf("expected two sheds down to 40, got %d", live)
	}

	// Window mixes slow and fast samples for one more evaluation
	for i := 0; i < 30; i++ {
		d := c.Observe(10*time.Millisecond, live, 50)
		live -= d.Shed
	}
	sheds := c.ShedEvents()

	var d Decision
	for i := 0; i < 120; i++ {
		d = c.Observe(10*time.Millisecond, live, 50)
		if d.Shed != 0 {
			t.Fatalf("expected no shed while healthy, got %+v", d)
		}
	}
	if c.ShedEvents() != sheds {
		t.Errorf("expected shed count to stabilize at %d, got %d", sheds, c.ShedEvents())
	}
	if c.Throttled() || d.Limit != 50 {
		t.Errorf("expected the ceiling to lift, throttled=%v limit=%d", c.Throttled(), d.Limit)
	}
}

func TestAdaptiveController_SimplifiedLimit(t *testing.T) {
	c := newTestController()
	c.SetSimplifiedMode(true)
	if d := c.Observe(time.Millisecond, 0, 50); d.Limit != 10 {
		t.Errorf("expected simplified limit 10, got %d", d.Limit)
	}
	c.SetSimplifiedMode(false)
	if d := c.Observe(time.Millisecond, 0, 50); d.Limit != 50 {
		t.Errorf("expected full limit 50, got %d", d.Limit)
	}
}

func TestAdaptiveController_ConfigDefaults(t *testing.T) {
	c := NewAdaptiveController(nil, ControllerConfig{SimplifiedDensity: 5})
	if c.Tracker() == nil {
		t.Fatal("expected a default tracker")
	}
	if c.cfg.EvalInterval != 30 || c.cfg.ShedFraction != 0.10 || c.cfg.RegrowAfter != 2 {
		t.Errorf("expected defaults, got %+v", c.cfg)
	}
	if c.cfg.SimplifiedDensity != 1 {
		t.Errorf("expected density clamped to 1, got %f", c.cfg.SimplifiedDensity)
	}
}
