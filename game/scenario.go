package game

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pthm-cable/glimmer/intensity"
	"github.com/pthm-cable/glimmer/systems"
)

// ActionKind identifies a scripted scenario step.
type ActionKind uint8

const (
	ActionBroadcast  ActionKind = iota // broadcast Settings
	ActionDestroy                      // destroy control ID
	ActionDetach                       // take control ID off screen
	ActionAttach                       // put control ID back on screen
	ActionSimplified                   // force simplified mode on control ID
	ActionFrameTime                    // headless frame interval becomes DT
	ActionSpawn                        // spawn Preset at Bounds
)

func (k ActionKind) String() string {
	switch k {
	case ActionBroadcast:
		return "broadcast"
	case ActionDestroy:
		return "destroy"
	case ActionDetach:
		return "detach"
	case ActionAttach:
		return "attach"
	case ActionSimplified:
		return "simplified"
	case ActionFrameTime:
		return "frame_time"
	case ActionSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// Action is one scripted step, run before the simulation step of Tick.
type Action struct {
	Tick     int32
	Kind     ActionKind
	Control  uint32
	Settings intensity.Settings
	On       bool
	DT       float64
	Preset   string
	Bounds   systems.Rect
}

// Scenario is a timeline of actions for unattended runs.
type Scenario struct {
	Name    string
	Actions []Action
}

// Built-in scenario names.
const (
	ScenarioNone   = "none"
	ScenarioE2E    = "e2e"
	ScenarioStress = "stress"
)

// ScenarioByName returns a built-in scenario.
func ScenarioByName(name string) (Scenario, error) {
	switch name {
	case "", ScenarioNone:
		return Scenario{Name: ScenarioNone}, nil
	case ScenarioE2E:
		return E2EScenario(), nil
	case ScenarioStress:
		return StressScenario(), nil
	default:
		return Scenario{}, fmt.Errorf("unknown scenario %q", name)
	}
}

// E2EScenario turns particles off and on again, switches to power saver
// and destroys a control.
func E2EScenario() Scenario {
	full := intensity.DefaultSettings()
	return Scenario{
		Name: ScenarioE2E,
		Actions: []Action{
			{Tick: 300, Kind: ActionBroadcast, Settings: full.WithParticle(0)},
			{Tick: 900, Kind: ActionBroadcast, Settings: full},
			{Tick: 1200, Kind: ActionDetach, Control: 2},
			{Tick: 1260, Kind: ActionBroadcast, Settings: full.WithGlow(0.5)},
			{Tick: 1320, Kind: ActionAttach, Control: 2},
			{Tick: 1500, Kind: ActionBroadcast, Settings: intensity.PowerSaverSettings()},
			{Tick: 1800, Kind: ActionBroadcast, Settings: full},
			{Tick: 2100, Kind: ActionDestroy, Control: 1},
		},
	}
}

// StressScenario feeds the controllers slow frames so they shed, then
// lets them recover.
func StressScenario() Scenario {
	return Scenario{
		Name: ScenarioStress,
		Actions: []Action{
			{Tick: 300, Kind: ActionFrameTime, DT: 0.035},
			{Tick: 900, Kind: ActionFrameTime, DT: 1.0 / 60},
			{Tick: 1200, Kind: ActionSimplified, Control: 3, On: true},
			{Tick: 1500, Kind: ActionSimplified, Control: 3, On: false},
		},
	}
}

// scenarioRunner plays a scenario against a game.
type scenarioRunner struct {
	scenario Scenario
	next     int
}

func newScenarioRunner(s Scenario) *scenarioRunner {
	actions := append([]Action(nil), s.Actions...)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Tick < actions[j].Tick
	})
	s.Actions = actions
	return &scenarioRunner{scenario: s}
}

// run applies every action due at tick.
func (r *scenarioRunner) run(g *Game, tick int32) {
	if r == nil {
		return
	}
	for r.next < len(r.scenario.Actions) && r.scenario.Actions[r.next].Tick <= tick {
		a := r.scenario.Actions[r.next]
		r.next++
		g.applyAction(a)
	}
}

// Done reports whether every action has run.
func (r *scenarioRunner) Done() bool {
	return r == nil || r.next >= len(r.scenario.Actions)
}

func (g *Game) applyAction(a Action) {
	slog.Debug("scenario action", "tick", g.tick, "action", a.Kind.String(), "control", a.Control)

	switch a.Kind {
	case ActionBroadcast:
		g.Broadcast(a.Settings)
	case ActionDestroy:
		g.DestroyControl(a.Control)
	case ActionDetach:
		g.SetControlVisible(a.Control, false)
	case ActionAttach:
		g.SetControlVisible(a.Control, true)
	case ActionSimplified:
		if h := g.hosts[a.Control]; h != nil {
			h.SetSimplifiedMode(a.On)
		}
	case ActionFrameTime:
		if a.DT > 0 {
			g.headlessDT = a.DT
		}
	case ActionSpawn:
		if _, err := g.SpawnControl(a.Preset, a.Bounds); err != nil {
			slog.Error("scenario spawn failed", "error", err)
		}
	}
}
