package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
)

const eps = 1e-9

func init() {
	config.MustInit("")
}

func koiAt(id int, x, y, vx, vy float64) *components.Koi {
	return &components.Koi{
		ID:               id,
		Pos:              vmath.Vec{X: x, Y: y},
		Vel:              vmath.Vec{X: vx, Y: vy},
		PerceptionRadius: 75,
		SpeedMultiplier:  1,
	}
}

func neighborsOf(self *components.Koi, others ...*components.Koi) []Neighbor {
	out := make([]Neighbor, 0, len(others))
	for _, o := range others {
		out = append(out, Neighbor{Koi: o, Dist: vmath.Dist(self.Pos, o.Pos)})
	}
	return out
}

func TestForcesNoNeighbors(t *testing.T) {
	k := koiAt(0, 10, 10, 1, 0)
	tests := []struct {
		name string
		got  vmath.Vec
	}{
		{"alignment", Alignment(k, nil, 2, 0.1)},
		{"cohesion", Cohesion(k, nil, 2, 0.1)},
		{"separation", Separation(k, nil, 75, 2, 0.1)},
	}
	for _, tt := range tests {
		if tt.got != vmath.Zero {
			t.Errorf("%s with no neighbours = %v, want zero", tt.name, tt.got)
		}
	}
}

func TestAlignment(t *testing.T) {
	k := koiAt(0, 0, 0, 1, 0)
	a := koiAt(1, 10, 0, 0, 1)
	b := koiAt(2, -10, 0, 0, 1)

	got := Alignment(k, neighborsOf(k, a, b), 1, 10)
	// desired (0,1) at max speed 1, minus velocity (1,0)
	if math.Abs(got.X+1) > eps || math.Abs(got.Y-1) > eps {
		t.Errorf("Alignment = %v, want (-1, 1)", got)
	}

	limited := Alignment(k, neighborsOf(k, a, b), 1, 0.1)
	if math.Abs(vmath.Mag(limited)-0.1) > eps {
		t.Errorf("|Alignment| = %v, want clamped to 0.1", vmath.Mag(limited))
	}
}

func TestCohesionPointsAtCentroid(t *testing.T) {
	k := koiAt(0, 0, 0, 0, 0)
	a := koiAt(1, 20, 10, 0, 0)
	b := koiAt(2, 20, -10, 0, 0)

	got := Cohesion(k, neighborsOf(k, a, b), 2, 10)
	if math.Abs(got.X-2) > eps || math.Abs(got.Y) > eps {
		t.Errorf("Cohesion = %v, want (2, 0)", got)
	}
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		name  string
		other *components.Koi
		zero  bool
	}{
		{"close pushes away", koiAt(1, 20, 0, 0, 0), false},
		{"coincident is safe", koiAt(1, 0, 0, 0, 0), true},
		{"beyond 0.7r ignored", koiAt(1, 60, 0, 0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := koiAt(0, 0, 0, 0, 0)
			got := Separation(k, neighborsOf(k, tt.other), 75, 2, 10)
			if !vmath.Finite(got) {
				t.Fatalf("Separation = %v, not finite", got)
			}
			if tt.zero && got != vmath.Zero {
				t.Errorf("Separation = %v, want zero", got)
			}
			if !tt.zero && got.X >= 0 {
				t.Errorf("Separation = %v, want pointing to -x", got)
			}
		})
	}
}

func TestAttraction(t *testing.T) {
	tests := []struct {
		name    string
		target  vmath.Vec
		wantMag float64
	}{
		{"out of range", vmath.Vec{X: 301, Y: 0}, 0},
		{"at edge", vmath.Vec{X: 300, Y: 0}, 0},
		{"close", vmath.Vec{X: 30, Y: 0}, 0.15}, // clamped to 1.5 x maxForce
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := koiAt(0, 0, 0, 0, 0)
			got := Attraction(k, tt.target, 300, 1.5, 2, 0.1)
			if math.Abs(vmath.Mag(got)-tt.wantMag) > 1e-6 {
				t.Errorf("|Attraction| = %v, want %v", vmath.Mag(got), tt.wantMag)
			}
		})
	}
}

func TestAttractionStrengthFalloff(t *testing.T) {
	k := koiAt(0, 0, 0, 0, 0)
	near := Attraction(k, vmath.Vec{X: 100, Y: 0}, 300, 100, 3, 100)
	far := Attraction(k, vmath.Vec{X: 250, Y: 0}, 300, 100, 3, 100)
	// Unclamped: |desired| = maxSpeed x (1 - d/300)
	if math.Abs(near.X-2) > eps || math.Abs(far.X-0.5) > eps {
		t.Errorf("near = %v, far = %v; want 2 and 0.5", near, far)
	}
}

func TestEscapeForce(t *testing.T) {
	f := EscapeForce(math.Pi/2, 0.1, 3)
	if math.Abs(f.X) > eps || math.Abs(f.Y-0.3) > eps {
		t.Errorf("EscapeForce = %v, want (0, 0.3)", f)
	}
}
