package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayToggleExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayNeighbors) {
		t.Fatal("Toggle did not enable neighbours")
	}
	reg.Toggle(OverlaySpatialGrid)
	if reg.IsEnabled(OverlayNeighbors) {
		t.Error("spatial grid should disable neighbours")
	}
	if !reg.IsEnabled(OverlaySpatialGrid) {
		t.Error("spatial grid not enabled")
	}

	if reg.Toggle(numOverlays + 1) {
		t.Error("unknown overlay toggled on")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyM)
	if !ok || id != OverlayModes || !on {
		t.Errorf("KeyM = %v, %v, %v", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key handled")
	}

	got := reg.EnabledOverlays()
	if len(got) != 1 || got[0] != OverlayModes {
		t.Errorf("EnabledOverlays = %v", got)
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()
	cats := reg.Categories()
	want := []string{"behavior", "perception", "debug"}
	if len(cats) != len(want) {
		t.Fatalf("categories = %v, want %v", cats, want)
	}
	total := 0
	for i, c := range cats {
		if c != want[i] {
			t.Errorf("category %d = %s, want %s", i, c, want[i])
		}
		total += len(reg.ByCategory(c))
	}
	if total != len(reg.All()) {
		t.Errorf("categories cover %d overlays, want %d", total, len(reg.All()))
	}

	// keys are unique
	seen := map[int32]OverlayID{}
	for _, d := range reg.All() {
		if prev, dup := seen[d.Key]; dup {
			t.Errorf("key %s shared by %s and %s", d.KeyLabel, prev, d.ID)
		}
		seen[d.Key] = d.ID
	}
}

func TestOverlayTableOrder(t *testing.T) {
	for i, d := range NewOverlayRegistry().All() {
		if d.ID != OverlayID(i) {
			t.Errorf("entry %d has ID %d", i, d.ID)
		}
	}
	if OverlayVelocity.String() != "Velocity" || numOverlays.String() != "unknown" {
		t.Error("String mismatch")
	}
}
