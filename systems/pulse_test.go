package systems

import (
	"math"
	"testing"
)

func TestPulse_PingPong(t *testing.T) {
	p := NewPulse(0, 1, 2)

	mid := p.Update(0.5)
	if mid <= 0 || mid >= 1 {
		t.Errorf("expected a value between min and max mid-rise, got %f", mid)
	}
	if v := p.Update(0.5); v != 1 {
		t.Errorf("expected max at the half period, got %f", v)
	}
	if v := p.Update(1); v != 0 {
		t.Errorf("expected min after a full period, got %f", v)
	}
}

func TestPulse_SpeedAndAmplitude(t *testing.T) {
	p := NewPulse(0, 1, 2)
	p.SetSpeed(2)
	if v := p.Update(0.5); v != 1 {
		t.Errorf("expected double speed to reach max in 0.5s, got %f", v)
	}
	p.SetAmplitude(0.5)
	if v := p.Value(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("expected amplitude to halve the value, got %f", v)
	}

	p.SetSpeed(0)
	before := p.Value()
	if v := p.Update(1); v != before {
		t.Errorf("expected zero speed to freeze the pulse, %f -> %f", before, v)
	}
}

func TestPulse_StopRestsAtMin(t *testing.T) {
	p := NewPulse(0.25, 1, 2)
	p.Update(0.7)
	p.Stop()
	if p.Running() {
		t.Error("expected stopped pulse")
	}
	if v := p.Update(0.3); v != 0.25 {
		t.Errorf("expected stopped pulse to rest at min, got %f", v)
	}
	p.Start()
	if v := p.Update(0.3); v <= 0.25 {
		t.Errorf("expected restarted pulse to rise, got %f", v)
	}
}
