package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the state of every control at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Settings SettingsState  `json:"settings"`
	Controls []ControlState `json:"controls"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SettingsState is the global intensity at snapshot time.
type SettingsState struct {
	Master         float64 `json:"master"`
	Glow           float64 `json:"glow"`
	Particle       float64 `json:"particle"`
	AnimationSpeed float64 `json:"animation_speed"`
	Features       string  `json:"features"`
	Mode           string  `json:"mode"`
}

// ControlState holds one control's state.
type ControlState struct {
	HostSample

	Preset   string     `json:"preset"`
	Bounds   [4]float64 `json:"bounds"` // x, y, w, h
	Attached bool       `json:"attached"`
	Limit    int        `json:"limit"`
	Scale    float64    `json:"intensity_scale"`
	Glow     float64    `json:"glow"`

	Particles []ParticleState `json:"particles,omitempty"`
}

// ParticleState holds one particle.
type ParticleState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	Life float64 `json:"life"`
	Size float64 `json:"size"`
	Kind string  `json:"kind"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
