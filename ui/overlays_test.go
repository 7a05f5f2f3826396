package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayRegistry_ToggleAndExclusive(t *testing.T) {
	r := NewOverlayRegistry()

	if !r.Toggle(OverlayMotion) {
		t.Fatal("expected motion overlay on")
	}
	if !r.Toggle(OverlayFlowField) {
		t.Fatal("expected flow overlay on")
	}
	if r.IsEnabled(OverlayMotion) {
		t.Error("enabling flow field should disable motion")
	}
	if r.Toggle(OverlayFlowField) {
		t.Error("second toggle should turn flow off")
	}
	if r.Toggle("unknown") {
		t.Error("unknown overlays cannot be enabled")
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	r := NewOverlayRegistry()

	id, on, ok := r.HandleKeyPress(rl.KeyE)
	if !ok || id != OverlayEmitters || !on {
		t.Errorf("expected E to enable emitters, got %q %v %v", id, on, ok)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}

	r.SetEnabled(OverlayBounds, true)
	got := r.EnabledOverlays()
	if len(got) != 2 || got[0] != OverlayBounds || got[1] != OverlayEmitters {
		t.Errorf("expected registration order, got %v", got)
	}
}

func TestOverlayRegistry_Categories(t *testing.T) {
	r := NewOverlayRegistry()
	cats := r.Categories()
	if len(cats) != 3 || cats[0] != "control" {
		t.Errorf("unexpected categories %v", cats)
	}
	if n := len(r.ByCategory("particles")); n != 2 {
		t.Errorf("expected 2 particle overlays, got %d", n)
	}
}

func TestOverlayRegistry_RegisterReplaces(t *testing.T) {
	r := NewOverlayRegistry()
	n := len(r.All())

	r.Register(OverlayDescriptor{ID: OverlayBounds, Name: "Outline", Category: "control"})
	if len(r.All()) != n {
		t.Errorf("expected %d overlays after replace, got %d", n, len(r.All()))
	}
	d, ok := r.Descriptor(OverlayBounds)
	if !ok || d.Name != "Outline" {
		t.Errorf("expected replaced descriptor, got %+v", d)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyB); ok {
		t.Error("replaced descriptor has no key binding")
	}
}
