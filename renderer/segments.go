package renderer

import (
	"math"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
)

// ShapeParams describes the koi silhouette in body units. Segment 0 is the
// head end.
type ShapeParams struct {
	NumSegments int

	TaperStart    float64
	TaperStrength float64
	PeakPosition  float64
	PeakWidth     float64
	FrontWidth    float64
	Asymmetry     float64 // positive: rounder belly

	HeadX, HeadWidth, HeadHeight float64

	EyeX, EyeYTop, EyeYBottom, EyeSize float64

	TailStartX, TailWidthStart, TailWidthEnd float64

	DorsalPos int
	DorsalY   float64

	PectoralPos                          int
	PectoralYTop, PectoralAngleTop       float64
	PectoralYBottom, PectoralAngleBottom float64

	VentralPos                         int
	VentralYTop, VentralAngleTop       float64
	VentralYBottom, VentralAngleBottom float64
}

// DefaultShapeParams returns the standard koi proportions.
func DefaultShapeParams() ShapeParams {
	return ShapeParams{
		NumSegments:   10,
		TaperStart:    0.15,
		TaperStrength: 0.90,
		PeakPosition:  0.70,
		PeakWidth:     8.0,
		FrontWidth:    4.5,
		Asymmetry:     0.90,

		HeadX: -0.2, HeadWidth: 7.5, HeadHeight: 5.0,

		EyeX: 2.0, EyeYTop: -1.6, EyeYBottom: 1.5, EyeSize: 0.5,

		TailStartX: 2, TailWidthStart: 0.20, TailWidthEnd: 1.50,

		DorsalPos: 4,
		DorsalY:   -0.5,

		PectoralPos:  2,
		PectoralYTop: -2.5, PectoralAngleTop: -2.5,
		PectoralYBottom: 2.0, PectoralAngleBottom: 2.1,

		VentralPos:  5,
		VentralYTop: -1.5, VentralAngleTop: -2.5,
		VentralYBottom: 1.5, VentralAngleBottom: 2.5,
	}
}

// Segment is one body slice: longitudinal position, lateral wave offset and
// full width.
type Segment struct {
	X, Y, W float64
}

// Pose is the animation state a koi is drawn in.
type Pose struct {
	Segments   []Segment
	WaveTime   float64
	SizeScale  float64
	TailLength float64
	AmpScale   float64
}

// waveTable caches the per-segment sine values for the last
// (time, count, gradient) key.
type waveTable struct {
	time     float64
	n        int
	gradient float64
	values   []float64
	valid    bool
}

// lookup returns sin(time - t*gradient) for t = i/n, recomputing only when
// the key changed since the previous call.
func (w *waveTable) lookup(time float64, n int, gradient float64) []float64 {
	if w.valid && w.time == time && w.n == n && w.gradient == gradient {
		return w.values
	}
	w.values = w.values[:0]
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		w.values = append(w.values, math.Sin(time-t*gradient))
	}
	w.time, w.n, w.gradient, w.valid = time, n, gradient, true
	return w.values
}

// bodySegments appends the segments for one frame to dst.
func bodySegments(dst []Segment, wave []float64, sp *ShapeParams, anim *config.AnimationConfig, sizeScale, lengthMul, ampScale float64) []Segment {
	n := len(wave)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		x := vmath.LerpF(7, -9, t) * sizeScale * lengthMul
		y := wave[i] * anim.Amplitude * ampScale * (1 - t*anim.Dampening)
		dst = append(dst, Segment{X: x, Y: y, W: bodyWidth(sp, t) * sizeScale})
	}
	return dst
}

// bodyWidth is the unscaled width profile: eased from the front width up to
// the peak, back down, then tapered past TaperStart.
func bodyWidth(sp *ShapeParams, t float64) float64 {
	var w float64
	if t < sp.PeakPosition {
		front := t / sp.PeakPosition
		w = vmath.LerpF(sp.FrontWidth, sp.PeakWidth, math.Sin(front*math.Pi*0.5))
	} else {
		back := (t - sp.PeakPosition) / (1 - sp.PeakPosition)
		w = vmath.LerpF(sp.PeakWidth, sp.FrontWidth, math.Sin(back*math.Pi*0.5))
	}
	if t > sp.TaperStart {
		tail := (t - sp.TaperStart) / (1 - sp.TaperStart)
		w *= 1 - tail*sp.TaperStrength
	}
	return w
}

// tailSegments extends the body wave past the last segment for outline
// tails: n points running back from tailStartX.
func tailSegments(dst []Segment, n int, tailStartX float64, anim *config.AnimationConfig, pose *Pose) []Segment {
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		x := tailStartX - t*pose.TailLength*tailLengthUnits*pose.SizeScale
		waveT := 1 + t*tailWaveContinuation
		y := math.Sin(pose.WaveTime-waveT*anim.PhaseGradient) * anim.Amplitude * pose.AmpScale * (1 - waveT*anim.Dampening)
		dst = append(dst, Segment{X: x, Y: y})
	}
	return dst
}
