package systems

import (
	"log/slog"

	"github.com/pthm-cable/glimmer/config"
)

// Preset is a named emitter arrangement a host control can be built from.
// Emitter geometry is stored in bounds fractions so a preset can be
// rebuilt for any size.
type Preset struct {
	ID              string // Internal identifier (used for layout and telemetry)
	Name            string // Display name
	Description     string
	Category        string // Grouping (e.g., "stream", "focus", "ambient")
	Cap             int    // 0 uses the configured default cap
	AmbientFallback bool
	Emitters        []config.EmitterSpec
}

// Build returns absolute emitter configs for the given bounds.
func (p Preset) Build(bounds Rect) []EmitterConfig {
	out := make([]EmitterConfig, len(p.Emitters))
	for i, spec := range p.Emitters {
		out[i] = EmitterFromSpec(spec, bounds)
	}
	return out
}

// SystemConfig returns a system config for this preset in the given bounds.
func (p Preset) SystemConfig(bounds Rect, defaultCap int) SystemConfig {
	c := p.Cap
	if c <= 0 {
		c = defaultCap
	}
	return SystemConfig{
		Bounds:          bounds,
		Cap:             c,
		Emitters:        p.Build(bounds),
		AmbientFallback: p.AmbientFallback,
	}
}

// PresetFromConfig converts a YAML preset.
func PresetFromConfig(c config.PresetConfig) Preset {
	for i, e := range c.Emitters {
		if _, ok := ParseEmitterKind(e.Kind); !ok && e.Kind != "" {
			slog.Warn("unknown emitter kind, using ambient",
				"preset", c.ID, "emitter", i, "kind", e.Kind)
		}
	}
	return Preset{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Category:        c.Category,
		Cap:             c.Cap,
		AmbientFallback: c.AmbientFallback,
		Emitters:        append([]config.EmitterSpec(nil), c.Emitters...),
	}
}

// PresetRegistry holds every known preset.
// This centralizes preset naming so the layout, UI and telemetry stay in sync.
type PresetRegistry struct {
	presets []Preset
	byID    map[string]int
}

// NewPresetRegistry creates a registry with the built-in presets.
func NewPresetRegistry() *PresetRegistry {
	reg := &PresetRegistry{
		byID: make(map[string]int),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the built-in presets.
func (r *PresetRegistry) registerDefaults() {
	// Streams
	r.Register(Preset{
		ID: "market_stream", Name: "Market Stream", Category: "stream",
		Description: "Rising ticks behind a price card",
		Emitters: []config.EmitterSpec{
			{Kind: "vertical", SpawnRate: 10, FlowInfluence: 0.3},
		},
	})
	r.Register(Preset{
		ID: "data_flow", Name: "Data Flow", Category: "stream",
		Description: "Packets moving left to right",
		Emitters: []config.EmitterSpec{
			{Kind: "horizontal", SpawnRate: 12, Region: [4]float64{0, 0.2, 0.05, 0.6}},
			{Kind: "ambient", SpawnRate: 1, MaxParticles: 8},
		},
	})
	r.Register(Preset{
		ID: "diagonal_sweep", Name: "Diagonal Sweep", Category: "stream",
		Description: "Sparks sweeping up and to the right",
		Emitters: []config.EmitterSpec{
			{Kind: "diagonal", SpawnRate: 8, IntensityScale: config.Float(1.2), FlowInfluence: 0.5},
		},
	})

	// Focus effects
	r.Register(Preset{
		ID: "selection_burst", Name: "Selection Burst", Category: "focus",
		Description: "Short-lived ring bursting outward from the center",
		Emitters: []config.EmitterSpec{
			{Kind: "radial", Focus: [2]float64{0.5, 0.5}, Radius: 0.1, SpawnRate: 20},
		},
	})
	r.Register(Preset{
		ID: "hover_orbit", Name: "Hover Orbit", Category: "focus",
		Description: "Particles circling a hovered element",
		Cap:         40,
		Emitters: []config.EmitterSpec{
			{Kind: "orbit", Focus: [2]float64{0.5, 0.5}, Radius: 0.3, SpawnRate: 10},
		},
	})

	// Ambient
	r.Register(Preset{
		ID: "background_drift", Name: "Background Drift", Category: "ambient",
		Description:     "Slow motes drifting behind content",
		AmbientFallback: true,
	})
}

// Register adds a preset. A preset with an existing id replaces it in place.
func (r *PresetRegistry) Register(p Preset) {
	if i, ok := r.byID[p.ID]; ok {
		r.presets[i] = p
		return
	}
	r.byID[p.ID] = len(r.presets)
	r.presets = append(r.presets, p)
}

// Merge registers every preset from config, overriding built-ins by id.
func (r *PresetRegistry) Merge(cfgs []config.PresetConfig) {
	for _, c := range cfgs {
		if c.ID == "" {
			continue
		}
		r.Register(PresetFromConfig(c))
	}
}

// Get returns a preset by id.
func (r *PresetRegistry) Get(id string) (Preset, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Preset{}, false
	}
	return r.presets[i], true
}

// GetName returns the display name for a preset id.
// Falls back to the id itself if not found.
func (r *PresetRegistry) GetName(id string) string {
	if p, ok := r.Get(id); ok {
		return p.Name
	}
	return id
}

// All returns all registered presets.
func (r *PresetRegistry) All() []Preset {
	return r.presets
}

// ByCategory returns presets filtered by category.
func (r *PresetRegistry) ByCategory(category string) []Preset {
	var result []Preset
	for _, p := range r.presets {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *PresetRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range r.presets {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats
}

// IDs returns all preset ids in registration order.
func (r *PresetRegistry) IDs() []string {
	ids := make([]string, len(r.presets))
	for i, p := range r.presets {
		ids[i] = p.ID
	}
	return ids
}

// Config returns the YAML form of the preset.
func (p Preset) Config() config.PresetConfig {
	return config.PresetConfig{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		Cap:             p.Cap,
		AmbientFallback: p.AmbientFallback,
		Emitters:        append([]config.EmitterSpec(nil), p.Emitters...),
	}
}
