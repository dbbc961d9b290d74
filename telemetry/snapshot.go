package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/koipond/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the state of every koi at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	PondWidth  float64 `json:"pond_width"`
	PondHeight float64 `json:"pond_height"`

	Tick int32 `json:"tick"`

	Koi []KoiState `json:"koi"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// KoiState holds one koi's observable state.
type KoiState struct {
	ID      int    `json:"id"`
	Variety string `json:"variety"`
	Spots   int    `json:"spots"`

	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VelX    float64 `json:"vel_x"`
	VelY    float64 `json:"vel_y"`
	Heading float64 `json:"heading"`

	Mode      string `json:"mode"`
	Neighbors int    `json:"neighbors"`

	SizeMultiplier   float64 `json:"size_multiplier"`
	LengthMultiplier float64 `json:"length_multiplier"`
	TailLength       float64 `json:"tail_length"`
	SpeedMultiplier  float64 `json:"speed_multiplier"`
}

// NewKoiState captures one koi. a may be nil.
func NewKoiState(k *components.Koi, a *components.Appearance) KoiState {
	ks := KoiState{
		ID:               k.ID,
		X:                k.Pos.X,
		Y:                k.Pos.Y,
		VelX:             k.Vel.X,
		VelY:             k.Vel.Y,
		Heading:          k.Heading(),
		Mode:             k.Behavior.Mode().String(),
		Neighbors:        k.Neighbors,
		SizeMultiplier:   k.SizeMultiplier,
		LengthMultiplier: k.LengthMultiplier,
		TailLength:       k.TailLength,
		SpeedMultiplier:  k.SpeedMultiplier,
	}
	if a != nil {
		ks.Variety = a.Pattern.Variety.String()
		ks.Spots = len(a.Pattern.Spots)
	}
	return ks
}

// NewSnapshot builds a snapshot from parallel koi and appearance slices.
func NewSnapshot(tick int32, seed int64, w, h float64, kois []components.Koi, looks []components.Appearance) *Snapshot {
	s := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    seed,
		PondWidth:  w,
		PondHeight: h,
		Tick:       tick,
		Koi:        make([]KoiState, len(kois)),
	}
	for i := range kois {
		var a *components.Appearance
		if i < len(looks) {
			a = &looks[i]
		}
		s.Koi[i] = NewKoiState(&kois[i], a)
	}
	return s
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
	return &snapshot, nil
}
