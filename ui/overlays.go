package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID identifies a debug overlay.
type OverlayID uint8

// Overlays, in display order.
const (
	OverlayModes OverlayID = iota
	OverlayEscapes
	OverlayPerception
	OverlayNeighbors
	OverlayAttraction
	OverlayVelocity
	OverlaySpatialGrid
	numOverlays
)

// OverlayDescriptor describes a toggleable overlay.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // toggle key (0 = none)
	KeyLabel    string // shown in the controls panel
	Category    string
	Exclusive   []OverlayID // switched off when this one is switched on
}

var overlayTable = [numOverlays]OverlayDescriptor{
	{OverlayModes, "Behaviour Modes", "Ring each koi by its mode (escaping, independent)", rl.KeyM, "M", "behavior", nil},
	{OverlayEscapes, "Escape Headings", "Show the fixed heading of escaping koi", rl.KeyE, "E", "behavior", nil},
	{OverlayPerception, "Perception", "Show the perception radius of the selected koi", rl.KeyP, "P", "perception", nil},
	{OverlayNeighbors, "Neighbours", "Link the selected koi to the neighbours it considered", rl.KeyN, "N", "perception", nil},
	{OverlayAttraction, "Attraction", "Show the pointer attraction radius", rl.KeyR, "R", "perception", nil},
	{OverlayVelocity, "Velocity", "Draw velocity vectors", rl.KeyV, "V", "debug", nil},
	{OverlaySpatialGrid, "Spatial Grid", "Draw neighbour search grid cells", rl.KeyG, "G", "debug", []OverlayID{OverlayNeighbors}},
}

// String returns the overlay's display name.
func (id OverlayID) String() string {
	if id >= numOverlays {
		return "unknown"
	}
	return overlayTable[id].Name
}

// OverlayRegistry tracks which overlays are switched on.
type OverlayRegistry struct {
	enabled uint32 // bit per OverlayID
}

// NewOverlayRegistry creates a registry with every overlay off.
func NewOverlayRegistry() *OverlayRegistry {
	return &OverlayRegistry{}
}

// Toggle flips an overlay and returns its new state. Switching one on
// switches off its exclusive partners. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if id >= numOverlays {
		return false
	}
	r.enabled ^= 1 << id
	on := r.IsEnabled(id)
	if on {
		for _, excl := range overlayTable[id].Exclusive {
			r.enabled &^= 1 << excl
		}
	}
	return on
}

// IsEnabled reports whether an overlay is on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return id < numOverlays && r.enabled&(1<<id) != 0
}

// All returns every overlay in display order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return overlayTable[:]
}

// ByCategory returns the overlays in category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range overlayTable {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns the distinct categories in display order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for i, desc := range overlayTable {
		if i == 0 || overlayTable[i-1].Category != desc.Category {
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. ok is false when no
// overlay uses the key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (id OverlayID, on, ok bool) {
	for _, desc := range overlayTable {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return 0, false, false
}

// EnabledOverlays returns the overlays that are on, in display order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for id := OverlayID(0); id < numOverlays; id++ {
		if r.IsEnabled(id) {
			result = append(result, id)
		}
	}
	return result
}
