package systems

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Pulse is a breathing glow value that ping-pongs between Min and Max.
type Pulse struct {
	min, max float64
	period   float64 // seconds for one full breath
	speed    float64
	amp      float64

	tween   *gween.Tween
	rising  bool
	running bool
	value   float64
}

// NewPulse creates a running pulse. A non-positive period defaults to 2s.
func NewPulse(minVal, maxVal, period float64) *Pulse {
	if minVal > maxVal {
		minVal, maxVal = maxVal, minVal
	}
	if period <= 0 {
		period = 2
	}
	p := &Pulse{
		min:     minVal,
		max:     maxVal,
		period:  period,
		speed:   1,
		amp:     1,
		rising:  true,
		running: true,
		value:   minVal,
	}
	p.tween = p.leg()
	return p
}

// leg builds the tween for the current half-period.
func (p *Pulse) leg() *gween.Tween {
	from, to := float32(p.min), float32(p.max)
	if !p.rising {
		from, to = to, from
	}
	return gween.New(from, to, float32(p.period/2), ease.InOutSine)
}

// Update advances the pulse by dt seconds scaled by the speed and
// returns the current value scaled by the amplitude.
func (p *Pulse) Update(dt float64) float64 {
	if !p.running || dt <= 0 || p.speed <= 0 {
		return p.Value()
	}
	current, finished := p.tween.Update(float32(dt * p.speed))
	p.value = float64(current)
	if finished {
		p.rising = !p.rising
		p.tween = p.leg()
	}
	return p.Value()
}

// Value returns the current value scaled by the amplitude.
func (p *Pulse) Value() float64 {
	return p.value * p.amp
}

// SetSpeed scales how fast the pulse breathes. 0 freezes it.
func (p *Pulse) SetSpeed(speed float64) {
	p.speed = clampFloat(speed, 0, 10)
}

// SetAmplitude scales the output value.
func (p *Pulse) SetAmplitude(amp float64) {
	p.amp = clamp01(amp)
}

// Start resumes the pulse.
func (p *Pulse) Start() {
	p.running = true
}

// Stop freezes the pulse at its resting (minimum) value.
func (p *Pulse) Stop() {
	p.running = false
	p.rising = true
	p.value = p.min
	p.tween = p.leg()
}

// Running reports whether the pulse is animating.
func (p *Pulse) Running() bool {
	return p.running
}
