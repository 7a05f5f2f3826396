package systems

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/pthm-cable/glimmer/config"
)

func TestPresetRegistry_Defaults(t *testing.T) {
	r := NewPresetRegistry()
	want := []string{"market_stream", "data_flow", "diagonal_sweep", "selection_burst", "hover_orbit", "background_drift"}
	ids := r.IDs()
	if len(ids) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("preset %d: expected %q, got %q", i, id, ids[i])
		}
	}
	if got := r.Categories(); len(got) != 3 {
		t.Errorf("expected stream, focus and ambient categories, got %v", got)
	}
	if got := r.ByCategory("focus"); len(got) != 2 {
		t.Errorf("expected 2 focus presets, got %d", len(got))
	}
	if r.GetName("hover_orbit") != "Hover Orbit" || r.GetName("nope") != "nope" {
		t.Error("unexpected display names")
	}
}

func TestPresetRegistry_MergeOverrides(t *testing.T) {
	r := NewPresetRegistry()
	r.Merge([]config.PresetConfig{
		{ID: "market_stream", Name: "Ticker", Category: "stream", Cap: 80,
			Emitters: []config.EmitterSpec{{Kind: "vertical", SpawnRate: 30}}},
		{ID: "sparkle", Name: "Sparkle", Category: "custom"},
		{Name: "no id is skipped"},
	})

	p, ok := r.Get("market_stream")
	if !ok || p.Name != "Ticker" || p.Cap != 80 {
		t.Errorf("expected override in place, got %+v", p)
	}
	if r.IDs()[0] != "market_stream" {
		t.Error("expected override to keep registration order")
	}
	if _, ok := r.Get("sparkle"); !ok {
		t.Error("expected new preset registered")
	}
	if len(r.All()) != 7 {
		t.Errorf("expected 7 presets, got %d", len(r.All()))
	}
}

func TestPreset_BuildsEveryDefault(t *testing.T) {
	r := NewPresetRegistry()
	bounds := Rect{0, 0, 380, 280}
	for _, p := range r.All() {
		sc := p.SystemConfig(bounds, 50)
		if sc.Cap <= 0 {
			t.Errorf("%s: expected a positive cap", p.ID)
		}
		s := NewParticleSystem(sc, seeded())
		for i := 0; i < 120; i++ {
			s.Step(0.016)
		}
		if s.Count() == 0 {
			t.Errorf("%s: expected particles after 2 seconds", p.ID)
		}
		if s.Count() > sc.Cap {
			t.Errorf("%s: count %d exceeds cap %d", p.ID, s.Count(), sc.Cap)
		}
	}
}

func TestPresetFromConfig_WarnsOnUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	p := PresetFromConfig(config.PresetConfig{
		ID: "typo",
		Emitters: []config.EmitterSpec{
			{Kind: "vertcal", SpawnRate: 5},
			{Kind: "radial", SpawnRate: 5},
		},
	})

	out := buf.String()
	if strings.Count(out, "unknown emitter kind") != 1 {
		t.Fatalf("expected one warning, got %q", out)
	}
	if !strings.Contains(out, "kind=vertcal") || !strings.Contains(out, "level=WARN") {
		t.Errorf("expected warning naming the bad kind, got %q", out)
	}
	if c := p.Build(Rect{W: 100, H: 100}); c[0].Kind != EmitAmbient {
		t.Errorf("expected unknown kind to fall back to ambient, got %v", c[0].Kind)
	}
}
