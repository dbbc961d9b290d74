package renderer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/koipond/vmath"
)

// Deformation names how an outline is animated each frame.
type Deformation uint8

const (
	DeformStatic Deformation = iota
	DeformWave
	DeformFlutter
	DeformRotate
)

var deformNames = [...]string{"static", "wave", "flutter", "rotate"}

func (d Deformation) String() string {
	if int(d) < len(deformNames) {
		return deformNames[d]
	}
	return fmt.Sprintf("Deformation(%d)", d)
}

// ParseDeformation maps a config name to a Deformation. Unknown names
// return DeformStatic and an error.
func ParseDeformation(s string) (Deformation, error) {
	for i, name := range deformNames {
		if s == name {
			return Deformation(i), nil
		}
	}
	return DeformStatic, fmt.Errorf("unknown deformation %q", s)
}

// Tail flutter constants.
const (
	flutterPhaseOffset   = -2.5
	flutterPhaseGradient = -2.0
	flutterAmpStart      = 0.5
	flutterAmpEnd        = 1.0
	flutterAmpScale      = 3.0
)

// DeformParams carries the inputs for every deformation kind; each kind
// reads only its own fields.
type DeformParams struct {
	// wave
	Segments []Segment

	// flutter
	WaveTime  float64
	SizeScale float64

	// rotate
	RotationAmplitude float64
	RotationFrequency float64
	Pivot             vmath.Vec
	SwayAmplitude     float64
	SwayPhase         float64
}

// Deform appends src deformed by kind to dst[:0].
func Deform(dst, src []vmath.Vec, kind Deformation, p *DeformParams) []vmath.Vec {
	switch kind {
	case DeformWave:
		return WaveDeform(dst, src, p.Segments)
	case DeformFlutter:
		return FlutterDeform(dst, src, p.WaveTime, p.SizeScale)
	case DeformRotate:
		return RotateDeform(dst, src, p)
	case DeformStatic:
		return append(dst[:0], src...)
	default:
		slog.Warn("unknown deformation", "kind", kind.String())
		return append(dst[:0], src...)
	}
}

func xRange(src []vmath.Vec) (minX, maxX float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, v := range src {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
	}
	return minX, maxX
}

// WaveDeform maps each vertex to the body segments by x (rightmost vertex to
// segment 0, leftmost to the last) and adds the interpolated lateral offset.
// Outlines with no x extent, or no segments, are returned unchanged.
func WaveDeform(dst, src []vmath.Vec, segs []Segment) []vmath.Vec {
	dst = dst[:0]
	if len(src) == 0 {
		return dst
	}
	minX, maxX := xRange(src)
	span := maxX - minX
	n := len(segs)
	if n == 0 || span == 0 {
		return append(dst, src...)
	}
	for _, v := range src {
		t := (maxX - v.X) / span
		f := t * float64(n-1)
		idx := int(math.Floor(f))
		blend := f - float64(idx)
		cur := min(max(idx, 0), n-1)
		next := min(cur+1, n-1)
		y := segs[cur].Y + (segs[next].Y-segs[cur].Y)*blend
		dst = append(dst, vmath.Vec{X: v.X, Y: v.Y + y})
	}
	return dst
}

// FlutterDeform displaces vertices laterally with a travelling wave whose
// amplitude grows from base (min x) to tip (max x).
func FlutterDeform(dst, src []vmath.Vec, waveTime, sizeScale float64) []vmath.Vec {
	dst = dst[:0]
	if len(src) == 0 {
		return dst
	}
	minX, maxX := xRange(src)
	span := maxX - minX
	if span == 0 {
		return append(dst, src...)
	}
	for _, v := range src {
		t := (v.X - minX) / span
		dst = append(dst, vmath.Vec{X: v.X, Y: v.Y + flutter(t, waveTime, sizeScale)})
	}
	return dst
}

// flutter is the lateral tail offset at t (0 base, 1 tip).
func flutter(t, waveTime, sizeScale float64) float64 {
	phase := waveTime + flutterPhaseOffset + t*flutterPhaseGradient
	amp := flutterAmpStart + t*(flutterAmpEnd-flutterAmpStart)
	return math.Sin(phase) * flutterAmpScale * sizeScale * amp
}

// RotateDeform rotates vertices about p.Pivot by an oscillating angle and
// adds an optional vertical sway.
func RotateDeform(dst, src []vmath.Vec, p *DeformParams) []vmath.Vec {
	dst = dst[:0]
	angle := math.Sin(p.WaveTime*p.RotationFrequency) * p.RotationAmplitude
	sway := 0.0
	if p.SwayAmplitude != 0 {
		sway = math.Sin(p.WaveTime+p.SwayPhase) * p.SwayAmplitude
	}
	sin, cos := math.Sincos(angle)
	for _, v := range src {
		dx, dy := v.X-p.Pivot.X, v.Y-p.Pivot.Y
		dst = append(dst, vmath.Vec{
			X: dx*cos - dy*sin + p.Pivot.X,
			Y: dx*sin + dy*cos + p.Pivot.Y + sway,
		})
	}
	return dst
}

// Mirror reflects outline coordinates.
type Mirror uint8

const (
	MirrorNone Mirror = iota
	MirrorHorizontal
	MirrorVertical
)

// ApplyMirror reflects pts in place: horizontal negates x, vertical negates y.
func ApplyMirror(pts []vmath.Vec, m Mirror) {
	switch m {
	case MirrorHorizontal:
		for i := range pts {
			pts[i].X = -pts[i].X
		}
	case MirrorVertical:
		for i := range pts {
			pts[i].Y = -pts[i].Y
		}
	}
}

// place scales, rotates, then translates pts in place.
func place(pts []vmath.Vec, scale, rot, tx, ty float64) {
	sin, cos := math.Sincos(rot)
	for i, v := range pts {
		x, y := v.X*scale, v.Y*scale
		pts[i] = vmath.Vec{X: x*cos - y*sin + tx, Y: x*sin + y*cos + ty}
	}
}
