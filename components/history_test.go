package components

import (
	"math"
	"testing"
)

func TestHeadingHistoryEviction(t *testing.T) {
	h := NewHeadingHistory(4)
	for i := 0; i < 6; i++ {
		h.Push(float64(i))
	}
	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
	for i := 0; i < 4; i++ {
		if got := h.At(i); got != float64(i+2) {
			t.Errorf("At(%d) = %v, want %v", i, got, float64(i+2))
		}
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear = %d", h.Len())
	}
}

func TestHeadingHistoryReversals(t *testing.T) {
	tests := []struct {
		name     string
		headings []float64
		want     int
	}{
		{"steady turn", []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}, 0},
		{"zigzag", []float64{0, 0.2, 0, 0.2, 0, 0.2}, 4},
		{"single wobble", []float64{0, 0.1, 0.2, 0.1, 0.0, -0.1}, 1},
		{"flat", []float64{1, 1, 1, 1}, 0},
		{"too short", []float64{0, 1}, 0},
		// Crossing +-Pi is a continuing turn, not a reversal
		{"wraps at pi", []float64{3.0, 3.1, -3.1, -3.0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeadingHistory(10)
			for _, a := range tt.headings {
				h.Push(a)
			}
			if got := h.Reversals(); got != tt.want {
				t.Errorf("Reversals() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeadingHistoryZeroValue(t *testing.T) {
	var h HeadingHistory
	h.Push(math.Pi)
	if h.Len() != 1 || h.At(0) != math.Pi {
		t.Errorf("zero-value history did not accept a push: len %d", h.Len())
	}
	if h.Cap() != DefaultHistoryCapacity {
		t.Errorf("cap = %d, want %d", h.Cap(), DefaultHistoryCapacity)
	}
	for i := 0; i < DefaultHistoryCapacity+3; i++ {
		h.Push(float64(i))
	}
	if h.Len() != DefaultHistoryCapacity {
		t.Errorf("len = %d after overfill, want %d", h.Len(), DefaultHistoryCapacity)
	}
}

func TestHeadingHistoryDefaultMatchesConfig(t *testing.T) {
	if got := testPhysics(t).OscillationHistory; got != DefaultHistoryCapacity {
		t.Errorf("oscillation_history default = %d, want %d", got, DefaultHistoryCapacity)
	}
}
