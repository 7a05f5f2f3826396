package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/glimmer/camera"
	"github.com/pthm-cable/glimmer/components"
	"github.com/pthm-cable/glimmer/config"
	"github.com/pthm-cable/glimmer/intensity"
	"github.com/pthm-cable/glimmer/renderer"
	"github.com/pthm-cable/glimmer/systems"
	"github.com/pthm-cable/glimmer/telemetry"
	"github.com/pthm-cable/glimmer/ui"
)

// DefaultDT is the headless frame interval in seconds.
const DefaultDT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Scenario       Scenario

	// Config overrides the global config.Cfg().
	Config *config.Config
}

// Game is the composition root: a world of host controls, the intensity
// registry they subscribe to and the telemetry around them.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	controlMap *ecs.Map4[
		components.Position,
		components.Size,
		components.Control,
		components.Attached,
	]
	controlFilter *ecs.Filter4[
		components.Position,
		components.Size,
		components.Control,
		components.Attached,
	]

	hosts    map[uint32]*Host
	entities map[uint32]ecs.Entity

	registry *intensity.Registry
	presets  *systems.PresetRegistry
	deps     HostDeps

	// Rendering
	particleRenderer *renderer.ParticleRenderer
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	hostPanel        *ui.HostPanel
	intensityPanel   *ui.IntensityPanel
	controlsPanel    *ui.ControlsPanel
	overlays         *ui.OverlayRegistry
	flowRenderer     *renderer.FlowRenderer
	camera           *camera.Camera

	// Telemetry
	frameTracker     *telemetry.PerfTracker
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	perfLogInterval  int
	statsCallback    func(telemetry.EffectStats)

	scenario *scenarioRunner

	// State
	rngSeed        int64
	tick           int32
	simTime        float64
	nextID         uint32
	headless       bool
	paused         bool
	showPerf       bool
	stepsPerUpdate int
	headlessDT     float64
	selected       uint32

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game and spawns the configured layout.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		controlMap: ecs.NewMap4[
			components.Position,
			components.Size,
			components.Control,
			components.Attached,
		](world),
		controlFilter: ecs.NewFilter4[
			components.Position,
			components.Size,
			components.Control,
			components.Attached,
		](world),
		hosts:    make(map[uint32]*Host),
		entities: make(map[uint32]ecs.Entity),

		registry: intensity.NewRegistry(initialSettings(cfg.Intensity)),
		presets:  systems.NewPresetRegistry(),

		particleRenderer: renderer.NewParticleRenderer(),

		frameTracker:     telemetry.NewPerfTracker(cfg.Performance.Window, cfg.Derived.Budget),
		collector:        telemetry.NewCollector(statsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		perfLogInterval:  cfg.Telemetry.PerfLogInterval,

		scenario: newScenarioRunner(opts.Scenario),

		rngSeed:        seed,
		nextID:         1,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		headlessDT:     DefaultDT,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}
	g.presets.Merge(cfg.Presets)
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.screenWidth, g.screenHeight)

	g.deps = DepsFromConfig(cfg)
	g.deps.Registry = g.registry
	g.deps.Renderer = g.particleRenderer
	if cfg.Flow.Enabled {
		g.deps.Flow = systems.NewNoiseFlow(seed, systems.FlowConfig{
			Scale:     cfg.Flow.Scale,
			TimeSpeed: cfg.Flow.TimeSpeed,
			Strength:  cfg.Flow.Strength,
		})
	}

	if !g.headless {
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-260, 40)
		g.hostPanel = ui.NewHostPanel(10, 100, 220)
		g.intensityPanel = ui.NewIntensityPanel(int32(g.screenWidth)-270, int32(g.screenHeight)-330, 260)
		g.controlsPanel = ui.NewControlsPanel(240, 100, 220)
		g.overlays = ui.NewOverlayRegistry()
		g.flowRenderer = renderer.NewFlowRenderer(cfg.Flow.Strength)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	for _, c := range cfg.Layout {
		bounds := systems.Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}
		if _, err := g.SpawnControl(c.Preset, bounds); err != nil {
			slog.Error("skipping layout entry", "preset", c.Preset, "error", err)
		}
	}

	slog.Info("effects initialized",
		"seed", seed,
		"controls", len(g.hosts),
		"presets", len(g.presets.All()),
		"settings", g.registry.Current(),
	)
	return g
}

func initialSettings(c config.IntensityConfig) intensity.Settings {
	return intensity.Settings{
		Master:         c.Master,
		Glow:           c.Glow,
		Particle:       c.Particle,
		AnimationSpeed: c.AnimationSpeed,
		Features:       intensity.ParseFeatures(c.Features),
		Mode:           intensity.ParseMode(c.Mode),
	}.Clamped()
}

// SpawnControl adds a host control built from preset at bounds and returns its ID.
func (g *Game) SpawnControl(preset string, bounds systems.Rect) (uint32, error) {
	p, ok := g.presets.Get(preset)
	if !ok {
		return 0, fmt.Errorf("unknown preset %q", preset)
	}

	id := g.nextID
	g.nextID++

	pos := components.Position{X: float32(bounds.X), Y: float32(bounds.Y)}
	size := components.Size{W: float32(bounds.W), H: float32(bounds.H)}
	ctl := components.Control{ID: id, Preset: p.ID}
	att := components.Attached{Visible: true}
	entity := g.controlMap.NewEntity(&pos, &size, &ctl, &att)

	deps := g.deps
	deps.Rand = rand.New(rand.NewSource(g.rng.Int63()))

	g.hosts[id] = NewHost(id, p, bounds, deps)
	g.entities[id] = entity
	g.collector.RecordHostCreated()

	slog.Debug("control spawned", "id", id, "preset", p.ID, "bounds", fmt.Sprintf("%.0fx%.0f@%.0f,%.0f", bounds.W, bounds.H, bounds.X, bounds.Y))
	return id, nil
}

// DestroyControl destroys the host and removes its entity.
// It reports false for unknown IDs.
func (g *Game) DestroyControl(id uint32) bool {
	h, ok := g.hosts[id]
	if !ok {
		return false
	}

	final := h.Sample()
	h.Destroy()
	g.collector.RecordHostDestroyed(final)

	if e, ok := g.entities[id]; ok && g.world.Alive(e) {
		g.world.RemoveEntity(e)
	}
	delete(g.entities, id)
	delete(g.hosts, id)
	if g.selected == id {
		g.selected = 0
	}

	slog.Debug("control destroyed", "id", id, "preset", h.Preset().ID)
	return true
}

// SetControlVisible attaches or detaches a control.
func (g *Game) SetControlVisible(id uint32, visible bool) bool {
	h, ok := g.hosts[id]
	if !ok {
		return false
	}
	e := g.entities[id]
	if !g.world.Alive(e) {
		return false
	}
	_, _, _, att := g.controlMap.Get(e)
	att.Visible = visible
	if visible {
		h.Attach()
	} else {
		h.Detach()
	}
	return true
}

// MoveControl moves and resizes a control.
func (g *Game) MoveControl(id uint32, bounds systems.Rect) bool {
	h, ok := g.hosts[id]
	if !ok {
		return false
	}
	e := g.entities[id]
	if !g.world.Alive(e) {
		return false
	}
	pos, size, _, _ := g.controlMap.Get(e)
	pos.X, pos.Y = float32(bounds.X), float32(bounds.Y)
	size.W, size.H = float32(bounds.W), float32(bounds.H)
	h.SetBounds(bounds)
	return true
}

// Broadcast pushes settings to every registered control and returns how
// many received them.
func (g *Game) Broadcast(s intensity.Settings) int {
	delivered := g.registry.Broadcast(s)
	g.collector.RecordBroadcast()
	slog.Info("intensity broadcast", "settings", g.registry.Current(), "delivered", delivered)
	return delivered
}

// Update handles input and advances the simulation by the real frame time.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}

	dt := float64(rl.GetFrameTime())
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.UpdateStep(dt)
	}
}

// UpdateHeadless advances the simulation without graphics.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.UpdateStep(g.headlessDT)
	}
}

// UpdateStep runs scripted actions, ticks every attached control by dt and
// flushes telemetry.
func (g *Game) UpdateStep(dt float64) {
	g.scenario.run(g, g.tick)

	start := time.Now()
	query := g.controlFilter.Query()
	for query.Next() {
		_, _, ctl, att := query.Get()
		if !att.Visible {
			continue
		}
		h := g.hosts[ctl.ID]
		if h == nil {
			continue
		}
		h.Tick(dt)
	}
	g.frameTracker.Record(time.Since(start))

	g.tick++
	if dt > 0 {
		g.simTime += min(dt, g.cfg.Simulation.MaxDT)
	}

	g.flushTelemetry()

	if g.perfLogInterval > 0 && g.tick%int32(g.perfLogInterval) == 0 {
		g.logPerfStats()
		g.logControlState()
	}
}

// Draw renders every control, its glow and particles, then the UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 20, A: 255})

	rl.BeginMode2D(rl.Camera2D{
		Offset: rl.Vector2{X: g.camera.ViewportW / 2, Y: g.camera.ViewportH / 2},
		Target: rl.Vector2{X: g.camera.X, Y: g.camera.Y},
		Zoom:   g.camera.Zoom,
	})
	for _, h := range g.Hosts() {
		if !h.Valid() {
			continue
		}
		b := h.Bounds()
		if !g.camera.IsVisible(float32(b.X), float32(b.Y), float32(b.W), float32(b.H)) {
			continue
		}
		rect := rl.Rectangle{X: float32(b.X), Y: float32(b.Y), Width: float32(b.W), Height: float32(b.H)}
		rl.DrawRectangleRec(rect, rl.Color{R: 22, G: 26, B: 36, A: 255})
		g.particleRenderer.DrawGlow(b, h.Glow())

		border := rl.Color{R: 60, G: 70, B: 90, A: 255}
		if h.ID() == g.selected {
			border = rl.Yellow
		}
		rl.DrawRectangleLinesEx(rect, 1, border)
		rl.DrawText(h.Preset().Name, int32(b.X)+6, int32(b.Y)+6, 12, rl.Gray)
	}
	g.particleRenderer.Draw()
	g.drawActiveOverlays()
	rl.EndMode2D()

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) drawUI() {
	if g.hud == nil {
		return
	}

	var live, capacity, throttled int
	for _, h := range g.hosts {
		s := h.Sample()
		live += s.Live
		capacity += s.Cap
		if s.Throttled {
			throttled++
		}
	}
	current := g.registry.Current()
	g.hud.Draw(ui.HUDData{
		Title:     "Glimmer",
		Controls:  len(g.hosts),
		Live:      live,
		Capacity:  capacity,
		Throttled: throttled,
		Mode:      current.Mode.String(),
		Tick:      g.tick,
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		FrameAvg:  g.frameTracker.Average(),
		Budget:    g.frameTracker.Budget(),
	})
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"[Space] pause  [Tab] intensity  [P] power saver  [O] overlays & keys")
	g.controlsPanel.Draw(g.overlays, ui.DefaultKeyBindings)

	if h := g.hosts[g.selected]; h != nil {
		g.hostPanel.Draw(hostInfo(h))
	}

	if g.showPerf {
		rows, total := g.controlTimes()
		names := make([]string, len(rows))
		times := make(map[string]time.Duration, len(rows))
		for i, r := range rows {
			names[i] = r.Label
			times[r.Label] = r.Avg
		}
		g.perfPanel.Draw(ui.PerfPanelData{
			SystemTimes: times,
			Total:       total,
			Budget:      g.frameTracker.Budget(),
		}, names)
	}

	if next, changed := g.intensityPanel.Draw(current); changed {
		g.Broadcast(next)
	}
}

func hostInfo(h *Host) ui.HostInfo {
	s := h.Sample()
	return ui.HostInfo{
		Label:      h.Label(),
		Preset:     h.Preset().Name,
		Live:       s.Live,
		Cap:        s.Cap,
		Limit:      h.System().Limit(),
		Spawned:    s.Spawned,
		Recycled:   s.Recycled,
		Shed:       s.Shed,
		Throttled:  s.Throttled,
		Simplified: s.Simplified,
		Scale:      h.System().IntensityScale(),
		Glow:       h.Glow(),
		AvgFrame:   h.Controller().Tracker().Average(),
	}
}

// Unload destroys every control and closes telemetry output.
func (g *Game) Unload() {
	ids := make([]uint32, 0, len(g.hosts))
	for id := range g.hosts {
		ids = append(ids, id)
	}
	for _, id := range ids {
		g.DestroyControl(id)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of simulation steps run.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns simulated seconds.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Hosts returns the live controls ordered by ID.
func (g *Game) Hosts() []*Host {
	out := make([]*Host, 0, len(g.hosts))
	for _, h := range g.hosts {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Host returns the control with the given ID.
func (g *Game) Host(id uint32) (*Host, bool) {
	h, ok := g.hosts[id]
	return h, ok
}

// Registry returns the intensity registry.
func (g *Game) Registry() *intensity.Registry {
	return g.registry
}

// Presets returns the preset registry.
func (g *Game) Presets() *systems.PresetRegistry {
	return g.presets
}

// Renderer returns the particle renderer.
func (g *Game) Renderer() *renderer.ParticleRenderer {
	return g.particleRenderer
}

// ScenarioDone reports whether every scripted action has run.
func (g *Game) ScenarioDone() bool {
	return g.scenario.Done()
}

// SetStatsCallback sets a function called on every telemetry flush.
func (g *Game) SetStatsCallback(cb func(telemetry.EffectStats)) {
	g.statsCallback = cb
}
