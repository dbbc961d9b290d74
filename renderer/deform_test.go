package renderer

import (
	"math"
	"testing"

	"github.com/pthm-cable/koipond/vmath"
)

const eps = 1e-9

func TestDeformEmptyInput(t *testing.T) {
	segs := []Segment{{X: 7, Y: 1}, {X: -9, Y: -1}}
	tests := []struct {
		name string
		got  []vmath.Vec
	}{
		{"wave", WaveDeform(nil, nil, segs)},
		{"flutter", FlutterDeform(nil, nil, 1, 2.5)},
		{"rotate", RotateDeform(nil, nil, &DeformParams{RotationAmplitude: 0.3, RotationFrequency: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != 0 {
				t.Errorf("got %d vertices, want 0", len(tt.got))
			}
		})
	}
}

func TestDeformZeroRangeUnchanged(t *testing.T) {
	src := []vmath.Vec{{X: 3, Y: 4}}
	segs := []Segment{{X: 7, Y: 1}, {X: -9, Y: -1}}

	for name, got := range map[string][]vmath.Vec{
		"wave":    WaveDeform(nil, src, segs),
		"flutter": FlutterDeform(nil, src, 1.3, 2.5),
	} {
		if len(got) != 1 || got[0] != src[0] {
			t.Errorf("%s: got %v, want %v", name, got, src)
		}
	}

	// vertical line also has no x extent
	line := []vmath.Vec{{X: 1, Y: 0}, {X: 1, Y: 5}}
	got := WaveDeform(nil, line, segs)
	for i := range line {
		if got[i] != line[i] {
			t.Errorf("vertical line vertex %d = %v, want %v", i, got[i], line[i])
		}
	}
}

func TestWaveDeformNoSegments(t *testing.T) {
	src := []vmath.Vec{{X: 0, Y: 0}, {X: 10, Y: 2}}
	got := WaveDeform(nil, src, nil)
	if len(got) != 2 || got[0] != src[0] || got[1] != src[1] {
		t.Errorf("got %v, want input unchanged", got)
	}
}

func TestWaveDeformInterpolates(t *testing.T) {
	segs := []Segment{{Y: 2}, {Y: 0}, {Y: -2}}
	src := []vmath.Vec{
		{X: 10, Y: 0}, // rightmost: segment 0
		{X: 5, Y: 1},  // middle: segment 1
		{X: 2.5, Y: 0},
		{X: 0, Y: 0}, // leftmost: last segment
	}
	got := WaveDeform(nil, src, segs)
	want := []float64{2, 1, -1, -2}
	for i, w := range want {
		if math.Abs(got[i].Y-w) > eps {
			t.Errorf("vertex %d y = %v, want %v", i, got[i].Y, w)
		}
		if got[i].X != src[i].X {
			t.Errorf("vertex %d x moved: %v -> %v", i, src[i].X, got[i].X)
		}
	}
}

func TestFlutterDeform(t *testing.T) {
	src := []vmath.Vec{{X: 0, Y: 0}, {X: 4, Y: 1}}
	wt, sc := 0.7, 2.0
	got := FlutterDeform(nil, src, wt, sc)

	base := math.Sin(wt+flutterPhaseOffset) * flutterAmpScale * sc * flutterAmpStart
	tip := math.Sin(wt+flutterPhaseOffset+flutterPhaseGradient) * flutterAmpScale * sc * flutterAmpEnd
	if math.Abs(got[0].Y-base) > eps {
		t.Errorf("base y = %v, want %v", got[0].Y, base)
	}
	if math.Abs(got[1].Y-(1+tip)) > eps {
		t.Errorf("tip y = %v, want %v", got[1].Y, 1+tip)
	}
}

func TestRotateDeformPivotFixed(t *testing.T) {
	p := &DeformParams{
		WaveTime:          math.Pi / 2,
		RotationAmplitude: math.Pi / 2,
		RotationFrequency: 1,
		Pivot:             vmath.Vec{X: 1, Y: 1},
	}
	got := RotateDeform(nil, []vmath.Vec{{X: 1, Y: 1}, {X: 2, Y: 1}}, p)

	// sin(pi/2) * pi/2 = quarter turn
	if math.Abs(got[0].X-1) > eps || math.Abs(got[0].Y-1) > eps {
		t.Errorf("pivot moved to %v", got[0])
	}
	if math.Abs(got[1].X-1) > eps || math.Abs(got[1].Y-2) > eps {
		t.Errorf("rotated point = %v, want (1, 2)", got[1])
	}
}

func TestRotateDeformSway(t *testing.T) {
	p := &DeformParams{WaveTime: 1, SwayAmplitude: 2, SwayPhase: -0.5}
	got := RotateDeform(nil, []vmath.Vec{{X: 3, Y: 0}}, p)
	want := math.Sin(0.5) * 2
	if math.Abs(got[0].X-3) > eps || math.Abs(got[0].Y-want) > eps {
		t.Errorf("got %v, want (3, %v)", got[0], want)
	}
}

func TestDeformDispatch(t *testing.T) {
	src := []vmath.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}}
	p := &DeformParams{WaveTime: 0.4, SizeScale: 1}

	static := Deform(nil, src, DeformStatic, p)
	if static[0] != src[0] || static[1] != src[1] {
		t.Errorf("static = %v, want input", static)
	}

	unknown := Deform(nil, src, Deformation(42), p)
	if len(unknown) != 2 || unknown[1] != src[1] {
		t.Errorf("unknown kind = %v, want input", unknown)
	}

	flut := Deform(nil, src, DeformFlutter, p)
	direct := FlutterDeform(nil, src, 0.4, 1)
	if flut[1] != direct[1] {
		t.Errorf("flutter dispatch = %v, want %v", flut, direct)
	}
}

func TestParseDeformation(t *testing.T) {
	tests := []struct {
		in      string
		want    Deformation
		wantErr bool
	}{
		{"static", DeformStatic, false},
		{"wave", DeformWave, false},
		{"flutter", DeformFlutter, false},
		{"rotate", DeformRotate, false},
		{"wobble", DeformStatic, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDeformation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyMirror(t *testing.T) {
	pts := []vmath.Vec{{X: 1, Y: 2}}
	ApplyMirror(pts, MirrorVertical)
	if pts[0] != (vmath.Vec{X: 1, Y: -2}) {
		t.Errorf("vertical = %v", pts[0])
	}
	ApplyMirror(pts, MirrorHorizontal)
	if pts[0] != (vmath.Vec{X: -1, Y: -2}) {
		t.Errorf("horizontal = %v", pts[0])
	}
	ApplyMirror(pts, MirrorNone)
	if pts[0] != (vmath.Vec{X: -1, Y: -2}) {
		t.Errorf("none = %v", pts[0])
	}
}
