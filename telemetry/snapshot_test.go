package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: 42,
		Tick:    1000,
		SimTime: 16.6,
		Settings: SettingsState{
			Master: 1, Glow: 0.5, Particle: 1, AnimationSpeed: 1,
			Features: "particle_effects|basic_glow", Mode: "full",
		},
		Controls: []ControlState{
			{
				HostSample: HostSample{ID: 3, Live: 2, Cap: 50, Spawned: 10, Shed: 4, Throttled: true},
				Preset:     "market_stream",
				Bounds:     [4]float64{40, 60, 380, 280},
				Attached:   true,
				Limit:      45,
				Scale:      1,
				Particles: []ParticleState{
					{X: 100, Y: 200, VelX: 0, VelY: -30, Life: 0.5, Size: 2, Kind: "stream"},
					{X: 120, Y: 220, VelY: -25, Life: 0.9, Size: 1.5, Kind: "stream"},
				},
			},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkShedSpike,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_shed_spike.json") {
		t.Errorf("unexpected snapshot name %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.Tick != 1000 {
		t.Errorf("header mismatch: seed %d tick %d", loaded.RNGSeed, loaded.Tick)
	}
	if loaded.Settings.Glow != 0.5 || loaded.Settings.Features != "particle_effects|basic_glow" {
		t.Errorf("settings mismatch: %+v", loaded.Settings)
	}
	if len(loaded.Controls) != 1 {
		t.Fatalf("expected 1 control, got %d", len(loaded.Controls))
	}
	c := loaded.Controls[0]
	if c.ID != 3 || c.Shed != 4 || !c.Throttled || c.Limit != 45 {
		t.Errorf("control mismatch: %+v", c)
	}
	if len(c.Particles) != 2 || c.Particles[0].VelY != -30 {
		t.Errorf("particle mismatch: %+v", c.Particles)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkShedSpike {
		t.Errorf("bookmark mismatch: %+v", loaded.Bookmark)
	}
}

func TestSnapshotWithoutBookmark(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 7}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "snapshot_7.json" {
		t.Errorf("unexpected name %s", filepath.Base(path))
	}
}

func TestLoadSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadSnapshot(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}

	future := filepath.Join(dir, "future.json")
	os.WriteFile(future, []byte(`{"version": 99}`), 0644)
	if _, err := LoadSnapshot(future); err == nil {
		t.Error("expected error for an unknown version")
	}
}
