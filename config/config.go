// Package config provides configuration loading and access for the effects runtime.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all effects configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Performance PerformanceConfig `yaml:"performance"`
	Intensity   IntensityConfig   `yaml:"intensity"`
	Flow        FlowConfig        `yaml:"flow"`
	Pulse       PulseConfig       `yaml:"pulse"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Presets     []PresetConfig    `yaml:"presets"`
	Layout      []ControlConfig   `yaml:"layout"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds particle engine limits.
type SimulationConfig struct {
	MaxDT        float64 `yaml:"max_dt"`        // Largest step a single tick may integrate (seconds)
	BoundsMargin float64 `yaml:"bounds_margin"` // Stream particles die this far outside bounds
	DefaultCap   int     `yaml:"default_cap"`   // Particle cap when a preset does not name one
}

// PerformanceConfig holds adaptive quality parameters.
type PerformanceConfig struct {
	Window            int     `yaml:"window"`             // Rolling frame-time samples
	BudgetMS          float64 `yaml:"budget_ms"`          // Frame budget in milliseconds (20 = 50 FPS)
	EvalInterval      int     `yaml:"eval_interval"`      // Ticks between shedding evaluations
	ShedFraction      float64 `yaml:"shed_fraction"`      // Fraction of live particles removed per positive evaluation
	RegrowAfter       int     `yaml:"regrow_after"`       // Healthy evaluations required before re-growth
	SimplifiedDensity float64 `yaml:"simplified_density"` // Fraction of the cap allowed in simplified mode
}

// IntensityConfig holds the initial global animation intensity.
type IntensityConfig struct {
	Master         float64  `yaml:"master"`
	Glow           float64  `yaml:"glow"`
	Particle       float64  `yaml:"particle"`
	AnimationSpeed float64  `yaml:"animation_speed"`
	Features       []string `yaml:"features"` // particle_effects, basic_glow, complex_transitions, ui_animations
	Mode           string   `yaml:"mode"`     // full | power_saver
}

// FlowConfig holds flow-field steering parameters.
type FlowConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scale     float64 `yaml:"scale"`      // Spatial noise frequency
	TimeSpeed float64 `yaml:"time_speed"` // Noise drift per second
	Strength  float64 `yaml:"strength"`   // Acceleration magnitude (units/s^2)
}

// PulseConfig holds glow breathing parameters.
type PulseConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Period float64 `yaml:"period"` // Seconds for a full in-out cycle
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow     float64 `yaml:"stats_window"`      // Seconds per aggregated stats window
	PerfLogInterval int     `yaml:"perf_log_interval"` // Ticks between perf log lines (0 = off)
}

// PresetConfig defines a named emitter arrangement for a host control.
type PresetConfig struct {
	ID              string        `yaml:"id"`
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	Category        string        `yaml:"category"`
	Cap             int           `yaml:"cap"`
	AmbientFallback bool          `yaml:"ambient_fallback"`
	Emitters        []EmitterSpec `yaml:"emitters"`
}

// EmitterSpec is the YAML form of an emitter.
// Geometry fields are fractions of the host bounds so presets survive resizes.
type EmitterSpec struct {
	Kind           string     `yaml:"kind"` // vertical | horizontal | diagonal | radial | orbit | ambient
	Direction      [2]float64 `yaml:"direction"`
	Focus          [2]float64 `yaml:"focus"`  // Fraction of bounds
	Radius         float64    `yaml:"radius"` // Fraction of min(width, height)
	Region         [4]float64 `yaml:"region"` // x, y, w, h as fractions of bounds
	SpawnRate      float64    `yaml:"spawn_rate"`
	IntensityScale *float64   `yaml:"intensity_scale,omitempty"` // nil means 1; 0 disables the emitter
	MaxParticles   int        `yaml:"max_particles"`
	Life           [2]float64 `yaml:"life"`
	Size           [2]float64 `yaml:"size"`
	Speed          [2]float64 `yaml:"speed"`
	FlowInfluence  float64    `yaml:"flow_influence"`
}

// Scale returns the emitter's intensity scale. An absent value is 1.
func (e EmitterSpec) Scale() float64 {
	if e.IntensityScale == nil {
		return 1
	}
	return *e.IntensityScale
}

// Float returns a pointer to v, for optional spec fields.
func Float(v float64) *float64 {
	return &v
}

// ControlConfig places a host control in the demo layout.
type ControlConfig struct {
	Preset string  `yaml:"preset"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	W      float64 `yaml:"w"`
	H      float64 `yaml:"h"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Budget      time.Duration  // Performance.BudgetMS as a duration
	PresetIndex map[string]int // preset id -> index into Presets
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
// Out-of-range values are clamped; nothing here fails.
func (c *Config) computeDerived() {
	if c.Simulation.MaxDT <= 0 {
		c.Simulation.MaxDT = 0.1
	}
	if c.Simulation.DefaultCap <= 0 {
		c.Simulation.DefaultCap = 50
	}
	if c.Performance.Window < 2 {
		c.Performance.Window = 60
	}
	if c.Performance.BudgetMS <= 0 {
		c.Performance.BudgetMS = 20
	}
	if c.Performance.EvalInterval < 1 {
		c.Performance.EvalInterval = c.Performance.Window / 2
	}
	if c.Performance.ShedFraction <= 0 || c.Performance.ShedFraction > 1 {
		c.Performance.ShedFraction = 0.1
	}
	if c.Performance.RegrowAfter < 1 {
		c.Performance.RegrowAfter = 2
	}
	if c.Performance.SimplifiedDensity < 0 {
		c.Performance.SimplifiedDensity = 0
	}
	if c.Performance.SimplifiedDensity > 1 {
		c.Performance.SimplifiedDensity = 1
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 10
	}

	c.Derived.Budget = time.Duration(c.Performance.BudgetMS * float64(time.Millisecond))

	c.Derived.PresetIndex = make(map[string]int, len(c.Presets))
	for i, p := range c.Presets {
		c.Derived.PresetIndex[p.ID] = i
	}
}

// Preset returns the preset config with the given id.
func (c *Config) Preset(id string) (PresetConfig, bool) {
	i, ok := c.Derived.PresetIndex[id]
	if !ok {
		return PresetConfig{}, false
	}
	return c.Presets[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
