// Package renderer draws koi onto a Canvas and presents finished frames
// with raylib.
package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/pthm-cable/koipond/vmath"
)

// BlendMode selects how a fill or stamp combines with the pixels below it.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
)

func (b BlendMode) String() string {
	if b == BlendMultiply {
		return "multiply"
	}
	return "normal"
}

// Canvas is the drawing surface the koi renderer targets. All coordinates
// pass through the current transform; Push and Pop save and restore it.
type Canvas interface {
	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(s float64)

	// FillPolygon fills a closed straight-edged outline.
	FillPolygon(pts []vmath.Vec, c color.NRGBA)
	// FillCurve fills a closed smooth curve passing through every point.
	FillCurve(pts []vmath.Vec, c color.NRGBA)
	// FillEllipse fills an axis-aligned ellipse of full width w and height h.
	FillEllipse(cx, cy, w, h float64, c color.NRGBA)
	StrokeLine(a, b vmath.Vec, width float64, c color.NRGBA)
	// Stamp draws img scaled to w x h and centred on (cx, cy).
	Stamp(img image.Image, cx, cy, w, h float64, blend BlendMode)

	// Clip restricts drawing to the union of the given closed outlines until
	// Unclip is called.
	Clip(outlines ...[]vmath.Vec)
	Unclip()
}

// ellipsePoints appends n points around an ellipse centred on (cx, cy).
func ellipsePoints(dst []vmath.Vec, cx, cy, w, h float64, n int) []vmath.Vec {
	rx, ry := w/2, h/2
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		dst = append(dst, vmath.Vec{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return dst
}

// curveSteps is the number of line segments per curve span.
const curveSteps = 8

// CurvePoints appends the closed Catmull-Rom spline through pts to dst as
// a polyline. Each span p1->p2 is the cubic Bezier with controls
// p1+(p2-p0)/6 and p2-(p3-p1)/6. Fewer than three points are copied as is.
func CurvePoints(dst, pts []vmath.Vec) []vmath.Vec {
	n := len(pts)
	if n < 3 {
		return append(dst, pts...)
	}
	for i := 0; i < n; i++ {
		p0, p1 := pts[(i+n-1)%n], pts[i]
		p2, p3 := pts[(i+1)%n], pts[(i+2)%n]
		c1 := vmath.Vec{X: p1.X + (p2.X-p0.X)/6, Y: p1.Y + (p2.Y-p0.Y)/6}
		c2 := vmath.Vec{X: p2.X - (p3.X-p1.X)/6, Y: p2.Y - (p3.Y-p1.Y)/6}
		for s := 0; s < curveSteps; s++ {
			t := float64(s) / curveSteps
			u := 1 - t
			a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
			dst = append(dst, vmath.Vec{
				X: a*p1.X + b*c1.X + c*c2.X + d*p2.X,
				Y: a*p1.Y + b*c1.Y + c*c2.Y + d*p2.Y,
			})
		}
	}
	return dst
}

// OpKind names a recorded drawing operation.
type OpKind string

const (
	OpPolygon OpKind = "polygon"
	OpCurve   OpKind = "curve"
	OpEllipse OpKind = "ellipse"
	OpLine    OpKind = "line"
	OpStamp   OpKind = "stamp"
	OpClip    OpKind = "clip"
	OpUnclip  OpKind = "unclip"
)

// Op is one call captured by a Recorder.
type Op struct {
	Kind    OpKind
	Color   color.NRGBA
	Points  int
	Blend   BlendMode
	Depth   int  // Push nesting at the time of the call
	Clipped bool // drawn while a clip was active
}

// Recorder is a Canvas that records calls instead of drawing them.
type Recorder struct {
	Ops      []Op
	MaxDepth int

	depth   int
	clipped bool
}

func (r *Recorder) record(op Op) {
	op.Depth = r.depth
	op.Clipped = r.clipped
	r.Ops = append(r.Ops, op)
}

// Depth returns the current Push nesting.
func (r *Recorder) Depth() int { return r.depth }

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.depth, r.MaxDepth = 0, 0
	r.clipped = false
}

// Count returns how many recorded calls have the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Push() {
	r.depth++
	if r.depth > r.MaxDepth {
		r.MaxDepth = r.depth
	}
}

func (r *Recorder) Pop()                     { r.depth-- }
func (r *Recorder) Translate(x, y float64)   {}
func (r *Recorder) Rotate(angle float64)     {}
func (r *Recorder) Scale(s float64)          {}

func (r *Recorder) FillPolygon(pts []vmath.Vec, c color.NRGBA) {
	r.record(Op{Kind: OpPolygon, Color: c, Points: len(pts)})
}

func (r *Recorder) FillCurve(pts []vmath.Vec, c color.NRGBA) {
	r.record(Op{Kind: OpCurve, Color: c, Points: len(pts)})
}

func (r *Recorder) FillEllipse(cx, cy, w, h float64, c color.NRGBA) {
	r.record(Op{Kind: OpEllipse, Color: c})
}

func (r *Recorder) StrokeLine(a, b vmath.Vec, width float64, c color.NRGBA) {
	r.record(Op{Kind: OpLine, Color: c, Points: 2})
}

func (r *Recorder) Stamp(img image.Image, cx, cy, w, h float64, blend BlendMode) {
	r.record(Op{Kind: OpStamp, Blend: blend})
}

func (r *Recorder) Clip(outlines ...[]vmath.Vec) {
	n := 0
	for _, o := range outlines {
		n += len(o)
	}
	r.record(Op{Kind: OpClip, Points: n})
	r.clipped = true
}

func (r *Recorder) Unclip() {
	r.clipped = false
	r.record(Op{Kind: OpUnclip})
}
