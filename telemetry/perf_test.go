package telemetry

import (
	"testing"
	"time"
)

func TestPerfTracker_Average(t *testing.T) {
	pt := NewPerfTracker(10, 20*time.Millisecond)

	pt.Record(10 * time.Millisecond)
	pt.Record(20 * time.Millisecond)
	pt.Record(30 * time.Millisecond)

	if got := pt.Average(); got != 20*time.Millisecond {
		t.Errorf("expected average 20ms, got %v", got)
	}
	if pt.Len() != 3 {
		t.Errorf("expected 3 samples, got %d", pt.Len())
	}
}

func TestPerfTracker_RollingWindow(t *testing.T) {
	pt := NewPerfTracker(5, 20*time.Millisecond)

	// Old slow samples must be evicted by newer fast ones
	for i := 0; i < 5; i++ {
		pt.Record(100 * time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		pt.Record(10 * time.Millisecond)
	}

	if pt.Len() != pt.Capacity() {
		t.Errorf("expected window to stay at capacity %d, got %d", pt.Capacity(), pt.Len())
	}
	if got := pt.Average(); got != 10*time.Millisecond {
		t.Errorf("expected average 10ms after eviction, got %v", got)
	}
}

func TestPerfTracker_ShouldShedLoad(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		each    time.Duration
		want    bool
	}{
		{"empty", 0, 0, false},
		{"under half full", 29, 40 * time.Millisecond, false},
		{"half full and slow", 30, 40 * time.Millisecond, true},
		{"full and slow", 60, 25 * time.Millisecond, true},
		{"at budget", 60, 20 * time.Millisecond, false},
		{"fast", 60, 16 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := NewPerfTracker(60, 20*time.Millisecond)
			for i := 0; i < tt.samples; i++ {
				pt.Record(tt.each)
			}
			if got := pt.ShouldShedLoad(); got != tt.want {
				t.Errorf("expected ShouldShedLoad=%v, got %v (avg %v)", tt.want, got, pt.Average())
			}
		})
	}
}

func TestPerfTracker_RecoversAfterHealthySamples(t *testing.T) {
	pt := NewPerfTracker(60, 20*time.Millisecond)
	for i := 0; i < 40; i++ {
		pt.Record(35 * time.Millisecond)
	}
	if !pt.ShouldShedLoad() {
		t.Fatal("expected shed signal after slow frames")
	}

	for i := 0; i < 60; i++ {
		pt.Record(15 * time.Millisecond)
	}
	if pt.ShouldShedLoad() {
		t.Errorf("expected healthy window after fast frames, avg %v", pt.Average())
	}
}

func TestPerfTracker_Defaults(t *testing.T) {
	pt := NewPerfTracker(0, 0)
	if pt.Capacity() != 60 {
		t.Errorf("expected default capacity 60, got %d", pt.Capacity())
	}
	if pt.Budget() != DefaultBudget {
		t.Errorf("expected default budget %v, got %v", DefaultBudget, pt.Budget())
	}

	pt.Record(-5 * time.Millisecond)
	if pt.Average() != 0 {
		t.Errorf("expected negative sample clamped to 0, got %v", pt.Average())
	}
}

func TestPerfTracker_Stats(t *testing.T) {
	pt := NewPerfTracker(10, 20*time.Millisecond)

	stats := pt.Stats()
	if stats.Samples != 0 || stats.Avg != 0 {
		t.Errorf("expected zero stats for empty tracker, got %+v", stats)
	}

	for i := 1; i <= 10; i++ {
		pt.Record(time.Duration(i) * time.Millisecond)
	}
	stats = pt.Stats()

	if stats.Min != time.Millisecond {
		t.Errorf("expected min 1ms, got %v", stats.Min)
	}
	if stats.Max != 10*time.Millisecond {
		t.Errorf("expected max 10ms, got %v", stats.Max)
	}
	if stats.Avg < 5*time.Millisecond || stats.Avg > 6*time.Millisecond {
		t.Errorf("expected avg ~5.5ms, got %v", stats.Avg)
	}
	if stats.P95 < 9*time.Millisecond {
		t.Errorf("expected p95 >= 9ms, got %v", stats.P95)
	}
	if stats.FPS < 150 || stats.FPS > 200 {
		t.Errorf("expected ~180 fps, got %v", stats.FPS)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.MaxUS != 10000 {
		t.Errorf("unexpected csv row %+v", row)
	}
}

func TestPerfTracker_Reset(t *testing.T) {
	pt := NewPerfTracker(4, 20*time.Millisecond)
	for i := 0; i < 4; i++ {
		pt.Record(50 * time.Millisecond)
	}
	pt.Reset()

	if pt.Len() != 0 || pt.Average() != 0 || pt.ShouldShedLoad() {
		t.Errorf("expected empty tracker after reset, got len=%d avg=%v", pt.Len(), pt.Average())
	}
}
