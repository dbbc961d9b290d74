package renderer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pthm-cable/koipond/vmath"
)

// curveSteps is the number of line segments each path curve is flattened to
// before arc-length sampling.
const curveSteps = 16

// ParseSVG extracts one outline from an SVG document. The first <polygon>
// wins; otherwise the first <path> is sampled at samples+1 points evenly
// spaced by arc length.
func ParseSVG(r io.Reader, samples int) ([]vmath.Vec, error) {
	var points, d string
	var havePolygon, havePath bool

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "polygon":
			if !havePolygon {
				points, havePolygon = attr(se, "points"), true
			}
		case "path":
			if !havePath {
				d, havePath = attr(se, "d"), true
			}
		}
	}

	switch {
	case havePolygon:
		if points == "" {
			return nil, errors.New("svg polygon missing points attribute")
		}
		return parsePolygonPoints(points)
	case havePath:
		if d == "" {
			return nil, errors.New("svg path missing d attribute")
		}
		return samplePath(d, samples)
	default:
		return nil, errors.New("svg contains no <path> or <polygon> element")
	}
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// parsePolygonPoints reads "x1,y1 x2,y2 ..." or "x1 y1 x2 y2 ...". A
// trailing odd coordinate is dropped.
func parsePolygonPoints(s string) ([]vmath.Vec, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	coords := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("polygon points: %w", err)
		}
		coords = append(coords, v)
	}
	if len(coords) < 2 {
		return nil, errors.New("polygon has no vertices")
	}
	pts := make([]vmath.Vec, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, vmath.Vec{X: coords[i], Y: coords[i+1]})
	}
	return pts, nil
}

// NormalizeVertices centres pts on the origin and scales them uniformly so
// the shape fits targetW x targetH with at least one side touching. An axis
// with no extent does not constrain the scale; a single point maps to the
// origin.
func NormalizeVertices(pts []vmath.Vec, targetW, targetH float64) []vmath.Vec {
	if len(pts) == 0 {
		return nil
	}
	b := bounds(pts)
	scale := math.Inf(1)
	if b.Width > 0 {
		scale = targetW / b.Width
	}
	if b.Height > 0 {
		scale = math.Min(scale, targetH/b.Height)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}
	cx, cy := b.MinX+b.Width/2, b.MinY+b.Height/2
	out := make([]vmath.Vec, len(pts))
	for i, v := range pts {
		out[i] = vmath.Vec{X: (v.X - cx) * scale, Y: (v.Y - cy) * scale}
	}
	return out
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
	Width, Height          float64
}

func bounds(pts []vmath.Vec) Bounds {
	b := Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, v := range pts {
		b.MinX, b.MaxX = math.Min(b.MinX, v.X), math.Max(b.MaxX, v.X)
		b.MinY, b.MaxY = math.Min(b.MinY, v.Y), math.Max(b.MaxY, v.Y)
	}
	b.Width, b.Height = b.MaxX-b.MinX, b.MaxY-b.MinY
	return b
}

// OutlineInfo summarises a parsed outline for debugging.
type OutlineInfo struct {
	VertexCount int
	Bounds      Bounds
	Center      vmath.Vec
}

// DebugInfo reports vertex count, bounds and centre. ok is false for an
// empty outline.
func DebugInfo(pts []vmath.Vec) (OutlineInfo, bool) {
	if len(pts) == 0 {
		return OutlineInfo{}, false
	}
	b := bounds(pts)
	return OutlineInfo{
		VertexCount: len(pts),
		Bounds:      b,
		Center:      vmath.Vec{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2},
	}, true
}

// pathPoint is a flattened path vertex; move marks the start of a subpath,
// which contributes no length.
type pathPoint struct {
	p    vmath.Vec
	move bool
}

// samplePath flattens path data and samples n+1 points evenly along its
// drawn length.
func samplePath(d string, n int) ([]vmath.Vec, error) {
	if n < 1 {
		n = 1
	}
	flat, err := flattenPath(d)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for i := 1; i < len(flat); i++ {
		if !flat[i].move {
			total += vmath.Dist(flat[i-1].p, flat[i].p)
		}
	}
	if total == 0 {
		return nil, errors.New("svg path has zero length")
	}

	out := make([]vmath.Vec, 0, n+1)
	seg, walked := 1, 0.0
	for i := 0; i <= n; i++ {
		target := float64(i) / float64(n) * total
		for seg < len(flat) {
			if flat[seg].move {
				seg++
				continue
			}
			l := vmath.Dist(flat[seg-1].p, flat[seg].p)
			if walked+l >= target || seg == len(flat)-1 {
				t := 0.0
				if l > 0 {
					t = math.Min(1, (target-walked)/l)
				}
				out = append(out, vmath.Lerp(flat[seg-1].p, flat[seg].p, t))
				break
			}
			walked += l
			seg++
		}
	}
	for len(out) < n+1 {
		out = append(out, flat[len(flat)-1].p)
	}
	return out, nil
}

// flattenPath converts SVG path data to line segments. Arcs are approximated
// by a straight line to their end point.
func flattenPath(d string) ([]pathPoint, error) {
	lx := pathLexer{s: d}
	var out []pathPoint
	var cur, start, ctrl vmath.Vec
	var prev byte

	lineTo := func(p vmath.Vec) {
		out = append(out, pathPoint{p: p})
		cur = p
	}
	cubic := func(c1, c2, end vmath.Vec) {
		p0 := cur
		for i := 1; i <= curveSteps; i++ {
			t := float64(i) / curveSteps
			u := 1 - t
			out = append(out, pathPoint{p: vmath.Vec{
				X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
				Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
			}})
		}
		cur = end
	}
	quad := func(c, end vmath.Vec) {
		p0 := cur
		for i := 1; i <= curveSteps; i++ {
			t := float64(i) / curveSteps
			u := 1 - t
			out = append(out, pathPoint{p: vmath.Vec{
				X: u*u*p0.X + 2*u*t*c.X + t*t*end.X,
				Y: u*u*p0.Y + 2*u*t*c.Y + t*t*end.Y,
			}})
		}
		cur = end
	}
	// reflect mirrors the previous control point about cur.
	reflect := func(valid bool) vmath.Vec {
		if !valid {
			return cur
		}
		return vmath.Vec{X: 2*cur.X - ctrl.X, Y: 2*cur.Y - ctrl.Y}
	}

	for {
		op, ok := lx.command()
		if !ok {
			if lx.done() {
				break
			}
			if prev == 0 || prev == 'Z' || prev == 'z' {
				return nil, fmt.Errorf("expected path command at offset %d", lx.i)
			}
			// implicit repeat; a repeated moveto becomes lineto
			op = prev
			switch op {
			case 'M':
				op = 'L'
			case 'm':
				op = 'l'
			}
		}
		rel := op >= 'a'
		at := func(x, y float64) vmath.Vec {
			if rel {
				return vmath.Vec{X: cur.X + x, Y: cur.Y + y}
			}
			return vmath.Vec{X: x, Y: y}
		}

		switch op {
		case 'Z', 'z':
			if cur != start {
				lineTo(start)
			}
			cur = start
			prev = op
			continue
		case 'M', 'm':
			a, err := lx.numbers(2)
			if err != nil {
				return nil, err
			}
			cur = at(a[0], a[1])
			start = cur
			out = append(out, pathPoint{p: cur, move: true})
		case 'L', 'l':
			a, err := lx.numbers(2)
			if err != nil {
				return nil, err
			}
			lineTo(at(a[0], a[1]))
		case 'H', 'h':
			a, err := lx.numbers(1)
			if err != nil {
				return nil, err
			}
			x := a[0]
			if rel {
				x += cur.X
			}
			lineTo(vmath.Vec{X: x, Y: cur.Y})
		case 'V', 'v':
			a, err := lx.numbers(1)
			if err != nil {
				return nil, err
			}
			y := a[0]
			if rel {
				y += cur.Y
			}
			lineTo(vmath.Vec{X: cur.X, Y: y})
		case 'C', 'c':
			a, err := lx.numbers(6)
			if err != nil {
				return nil, err
			}
			c1, c2, end := at(a[0], a[1]), at(a[2], a[3]), at(a[4], a[5])
			cubic(c1, c2, end)
			ctrl = c2
		case 'S', 's':
			a, err := lx.numbers(4)
			if err != nil {
				return nil, err
			}
			c1 := reflect(prev == 'C' || prev == 'c' || prev == 'S' || prev == 's')
			c2, end := at(a[0], a[1]), at(a[2], a[3])
			cubic(c1, c2, end)
			ctrl = c2
		case 'Q', 'q':
			a, err := lx.numbers(4)
			if err != nil {
				return nil, err
			}
			c, end := at(a[0], a[1]), at(a[2], a[3])
			quad(c, end)
			ctrl = c
		case 'T', 't':
			a, err := lx.numbers(2)
			if err != nil {
				return nil, err
			}
			c := reflect(prev == 'Q' || prev == 'q' || prev == 'T' || prev == 't')
			quad(c, at(a[0], a[1]))
			ctrl = c
		case 'A', 'a':
			a, err := lx.numbers(7)
			if err != nil {
				return nil, err
			}
			lineTo(at(a[5], a[6]))
		default:
			return nil, fmt.Errorf("unsupported path command %q", op)
		}
		if len(out) == 0 {
			return nil, errors.New("path data must start with a moveto")
		}
		prev = op
	}
	if len(out) == 0 {
		return nil, errors.New("empty path data")
	}
	return out, nil
}

// pathLexer tokenises SVG path data.
type pathLexer struct {
	s string
	i int
}

func (l *pathLexer) skip() {
	for l.i < len(l.s) {
		switch l.s[l.i] {
		case ' ', '\t', '\n', '\r', ',':
			l.i++
		default:
			return
		}
	}
}

func (l *pathLexer) done() bool {
	l.skip()
	return l.i >= len(l.s)
}

// command consumes a command letter if one is next.
func (l *pathLexer) command() (byte, bool) {
	l.skip()
	if l.i >= len(l.s) {
		return 0, false
	}
	c := l.s[l.i]
	if (c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') && c != 'e' && c != 'E' {
		l.i++
		return c, true
	}
	return 0, false
}

func (l *pathLexer) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for k := range out {
		v, err := l.number()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// number scans one float: sign, digits, fraction, exponent. "1.5.5" reads
// as 1.5 then .5.
func (l *pathLexer) number() (float64, error) {
	l.skip()
	start := l.i
	if l.i < len(l.s) && (l.s[l.i] == '+' || l.s[l.i] == '-') {
		l.i++
	}
	digits := l.digits()
	if l.i < len(l.s) && l.s[l.i] == '.' {
		l.i++
		digits += l.digits()
	}
	if digits == 0 {
		l.i = start
		return 0, fmt.Errorf("expected number at offset %d in path data", start)
	}
	if l.i < len(l.s) && (l.s[l.i] == 'e' || l.s[l.i] == 'E') {
		save := l.i
		l.i++
		if l.i < len(l.s) && (l.s[l.i] == '+' || l.s[l.i] == '-') {
			l.i++
		}
		if l.digits() == 0 {
			l.i = save
		}
	}
	return strconv.ParseFloat(l.s[start:l.i], 64)
}

func (l *pathLexer) digits() int {
	n := 0
	for l.i < len(l.s) && l.s[l.i] >= '0' && l.s[l.i] <= '9' {
		l.i++
		n++
	}
	return n
}
