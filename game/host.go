package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/glimmer/config"
	"github.com/pthm-cable/glimmer/intensity"
	"github.com/pthm-cable/glimmer/systems"
	"github.com/pthm-cable/glimmer/telemetry"
)

// HostDeps carries everything a Host needs from the composition root.
type HostDeps struct {
	Registry *intensity.Registry
	Renderer systems.Renderer // nil draws nothing
	Flow     systems.FlowSampler
	Rand     *rand.Rand
	Clock    func() time.Time

	DefaultCap   int
	MaxDT        float64
	BoundsMargin float64

	PerfWindow int
	Budget     time.Duration
	Controller systems.ControllerConfig
	Pulse      config.PulseConfig
}

// DepsFromConfig fills the tunables of HostDeps from cfg.
// Registry, renderer, flow and RNG are left for the caller.
func DepsFromConfig(cfg *config.Config) HostDeps {
	return HostDeps{
		DefaultCap:   cfg.Simulation.DefaultCap,
		MaxDT:        cfg.Simulation.MaxDT,
		BoundsMargin: cfg.Simulation.BoundsMargin,
		PerfWindow:   cfg.Performance.Window,
		Budget:       cfg.Derived.Budget,
		Controller: systems.ControllerConfig{
			EvalInterval:      cfg.Performance.EvalInterval,
			ShedFraction:      cfg.Performance.ShedFraction,
			RegrowAfter:       cfg.Performance.RegrowAfter,
			SimplifiedDensity: cfg.Performance.SimplifiedDensity,
		},
		Pulse: cfg.Pulse,
	}
}

// Host is a visual control carrying a particle effect and a glow pulse.
// It receives intensity pushes through the registry.
type Host struct {
	id     uint32
	preset systems.Preset
	label  string

	system     *systems.ParticleSystem
	controller *systems.AdaptiveController
	tickTimes  *telemetry.PerfTracker // wall time of this host's Tick
	pulse      *systems.Pulse
	registry   *intensity.Registry

	settings intensity.Settings

	// Simplified mode is on when either the host was forced into it
	// (constrained hardware) or the broadcast settings ask for it.
	forcedSimplified   bool
	settingsSimplified bool

	attached  bool
	destroyed bool
}

// NewHost builds the effect for preset inside bounds, registers the host
// and applies the registry's current settings.
func NewHost(id uint32, preset systems.Preset, bounds systems.Rect, deps HostDeps) *Host {
	tracker := telemetry.NewPerfTracker(deps.PerfWindow, deps.Budget)
	controller := systems.NewAdaptiveController(tracker, deps.Controller)

	cfg := preset.SystemConfig(bounds, deps.DefaultCap)
	cfg.MaxDT = deps.MaxDT
	cfg.BoundsMargin = deps.BoundsMargin

	opts := []systems.Option{systems.WithController(controller)}
	if deps.Renderer != nil {
		opts = append(opts, systems.WithRenderer(deps.Renderer))
	}
	if deps.Flow != nil {
		opts = append(opts, systems.WithFlow(deps.Flow))
	}
	if deps.Rand != nil {
		opts = append(opts, systems.WithRand(deps.Rand))
	}
	if deps.Clock != nil {
		opts = append(opts, systems.WithClock(deps.Clock))
	}

	h := &Host{
		id:         id,
		preset:     preset,
		label:      fmt.Sprintf("%s#%d", preset.ID, id),
		system:     systems.NewParticleSystem(cfg, opts...),
		controller: controller,
		tickTimes:  telemetry.NewPerfTracker(tickTimeWindow, deps.Budget),
		pulse:      systems.NewPulse(deps.Pulse.Min, deps.Pulse.Max, deps.Pulse.Period),
		registry:   deps.Registry,
		attached:   true,
	}

	if h.registry != nil {
		intensity.Register(h.registry, h)
		h.Apply(h.registry.Current())
	} else {
		h.Apply(intensity.DefaultSettings())
	}
	return h
}

// Apply maps global settings onto this host's knobs.
func (h *Host) Apply(s intensity.Settings) {
	if h.destroyed {
		return
	}
	s = s.Clamped()
	h.settings = s

	particle := s.EffectiveParticle()
	h.system.SetEmissionEnabled(particle > 0)
	h.system.SetIntensityScale(particle)

	h.pulse.SetAmplitude(s.EffectiveGlow())
	if s.Features.Has(intensity.FeatureUIAnimations) && s.AnimationSpeed > 0 {
		h.pulse.SetSpeed(s.AnimationSpeed)
		h.pulse.Start()
	} else {
		h.pulse.Stop()
	}

	h.settingsSimplified = s.Simplified()
	h.system.SetSimplifiedMode(h.forcedSimplified || h.settingsSimplified)
}

// Valid reports whether the host still exists on an active surface.
func (h *Host) Valid() bool {
	return !h.destroyed && h.attached
}

// Tick advances the effect by dt seconds. Detached hosts are paused.
func (h *Host) Tick(dt float64) {
	if !h.Valid() {
		return
	}

	start := time.Now()
	defer func() { h.tickTimes.Record(time.Since(start)) }()

	throttled := h.controller.Throttled()
	shedBefore := h.system.Stats().Shed

	h.system.Step(dt)
	h.pulse.Update(dt)

	if n := h.system.Stats().Shed - shedBefore; n > 0 {
		slog.Debug("particles shed", "host", h.label, "shed", n, "live", h.system.Count(), "limit", h.system.Limit())
	}
	if now := h.controller.Throttled(); now != throttled {
		slog.Debug("host throttle changed", "host", h.label, "throttled", now)
	}
}

// TickTime returns the rolling average wall time of Tick.
func (h *Host) TickTime() time.Duration {
	return h.tickTimes.Average()
}

// TickTimes exposes the tick timing window.
func (h *Host) TickTimes() *telemetry.PerfTracker {
	return h.tickTimes
}

// Resize changes the host's size, keeping its origin.
func (h *Host) Resize(width, height float64) {
	if h.destroyed {
		return
	}
	h.system.Resize(width, height)
}

// SetBounds moves and resizes the host.
func (h *Host) SetBounds(r systems.Rect) {
	if h.destroyed {
		return
	}
	h.system.SetBounds(r)
}

// SetSimplifiedMode forces the host into low density regardless of the
// broadcast mode.
func (h *Host) SetSimplifiedMode(on bool) {
	if h.destroyed {
		return
	}
	h.forcedSimplified = on
	h.system.SetSimplifiedMode(h.forcedSimplified || h.settingsSimplified)
}

// Detach takes the host off screen. The registry evicts it on the next
// broadcast.
func (h *Host) Detach() {
	h.attached = false
}

// Attach puts the host back on screen, re-registers it and catches up
// with the current settings.
func (h *Host) Attach() {
	if h.destroyed || h.attached {
		return
	}
	h.attached = true
	if h.registry != nil {
		intensity.Register(h.registry, h)
		h.Apply(h.registry.Current())
	}
}

// Destroy unregisters the host and stops its effect. Safe to call twice.
func (h *Host) Destroy() {
	if h.destroyed {
		return
	}
	if h.registry != nil {
		intensity.Unregister(h.registry, h)
	}
	h.system.Stop()
	h.pulse.Stop()
	h.destroyed = true
	h.attached = false
}

// Sample reports the host's counters for telemetry.
func (h *Host) Sample() telemetry.HostSample {
	st := h.system.Stats()
	return telemetry.HostSample{
		ID:         h.id,
		Live:       h.system.Count(),
		Cap:        h.system.Cap(),
		Spawned:    st.Spawned,
		Recycled:   st.Recycled,
		Expired:    st.Expired,
		Culled:     st.Culled,
		Shed:       st.Shed,
		Throttled:  h.controller.Throttled(),
		Simplified: h.system.Simplified(),
	}
}

// Glow returns the current glow strength in [0, 1].
func (h *Host) Glow() float64 {
	if !h.Valid() {
		return 0
	}
	return h.pulse.Value()
}

func (h *Host) ID() uint32 { return h.id }

func (h *Host) Label() string { return h.label }

func (h *Host) Preset() systems.Preset { return h.preset }

func (h *Host) Bounds() systems.Rect { return h.system.Bounds() }

func (h *Host) System() *systems.ParticleSystem { return h.system }

func (h *Host) Controller() *systems.AdaptiveController { return h.controller }

func (h *Host) Settings() intensity.Settings { return h.settings }

func (h *Host) Destroyed() bool { return h.destroyed }

func (h *Host) Attached() bool { return h.attached }
