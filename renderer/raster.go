package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/pthm-cable/koipond/vmath"
)

// maxShapeArea bounds the rasteriser scratch size for a single fill, after
// clipping to the destination; larger regions are skipped.
const maxShapeArea = 4096 * 4096

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// RasterCanvas is a software Canvas drawing into an RGBA image. Fills are
// rasterised per shape into a coverage mask sized to the shape's bounds and
// then composited with the active clip.
type RasterCanvas struct {
	dst   *image.RGBA
	m     f64.Aff3
	stack []f64.Aff3

	ras     *vector.Rasterizer
	maskBuf []uint8
	clip    *image.Alpha // nil when unclipped
	stamp   *image.RGBA
	pts     []vmath.Vec
	curve   []vmath.Vec
	clipA   []vmath.Vec
	clipB   []vmath.Vec
}

// NewRasterCanvas creates a canvas over dst.
func NewRasterCanvas(dst *image.RGBA) *RasterCanvas {
	r := vector.NewRasterizer(1, 1)
	r.DrawOp = draw.Src
	return &RasterCanvas{
		dst: dst,
		m:   identity,
		ras: r,
	}
}

// Image returns the target image.
func (c *RasterCanvas) Image() *image.RGBA { return c.dst }

// Fill paints the whole image with col, ignoring transform and clip.
func (c *RasterCanvas) Fill(col color.Color) {
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawImage copies src over the whole image, ignoring transform and clip.
func (c *RasterCanvas) DrawImage(src image.Image) {
	draw.Draw(c.dst, c.dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

// Reset clears the transform stack and any clip.
func (c *RasterCanvas) Reset() {
	c.m = identity
	c.stack = c.stack[:0]
	c.clip = nil
}

func (c *RasterCanvas) Push() { c.stack = append(c.stack, c.m) }

func (c *RasterCanvas) Pop() {
	if n := len(c.stack); n > 0 {
		c.m = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *RasterCanvas) Translate(x, y float64) {
	c.m = mul(c.m, f64.Aff3{1, 0, x, 0, 1, y})
}

func (c *RasterCanvas) Rotate(angle float64) {
	sin, cos := math.Sincos(angle)
	c.m = mul(c.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

func (c *RasterCanvas) Scale(s float64) {
	c.m = mul(c.m, f64.Aff3{s, 0, 0, 0, s, 0})
}

// mul returns the affine transform applying b first, then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func apply(m f64.Aff3, p vmath.Vec) vmath.Vec {
	return vmath.Vec{X: m[0]*p.X + m[1]*p.Y + m[2], Y: m[3]*p.X + m[4]*p.Y + m[5]}
}

// transform maps pts to device space into c.pts and returns their integer
// bounds clipped to the destination. ok is false for empty input,
// non-finite coordinates or shapes entirely off the image.
func (c *RasterCanvas) transform(pts []vmath.Vec) (image.Rectangle, bool) {
	c.pts = c.pts[:0]
	if len(pts) == 0 {
		return image.Rectangle{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		q := apply(c.m, p)
		if !vmath.Finite(q) {
			return image.Rectangle{}, false
		}
		c.pts = append(c.pts, q)
		minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
		minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	r = r.Intersect(c.dst.Bounds())
	if r.Empty() || r.Dx()*r.Dy() > maxShapeArea {
		return image.Rectangle{}, false
	}
	return r, true
}

// rasterize resets the rasteriser to bounds r and returns a cleared mask.
func (c *RasterCanvas) rasterize(r image.Rectangle, path func(z *vector.Rasterizer, ox, oy float64)) *image.Alpha {
	w, h := r.Dx(), r.Dy()
	c.ras.Reset(w, h)
	c.ras.DrawOp = draw.Src
	path(c.ras, float64(r.Min.X), float64(r.Min.Y))

	if cap(c.maskBuf) < w*h {
		c.maskBuf = make([]uint8, w*h)
	}
	mask := &image.Alpha{Pix: c.maskBuf[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}
	c.ras.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	return mask
}

// polygonMask rasterises the closed polygon in c.pts after clipping it to r.
func (c *RasterCanvas) polygonMask(r image.Rectangle) *image.Alpha {
	c.clipA, c.clipB = clipPolygon(c.clipA[:0], c.clipB[:0], c.pts, r)
	poly := c.clipA
	return c.rasterize(r, func(z *vector.Rasterizer, ox, oy float64) {
		if len(poly) < 3 {
			return
		}
		z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	})
}

// clipPolygon clips src against r one edge at a time (Sutherland-Hodgman),
// ping-ponging between a and b. The result is in the first return value.
func clipPolygon(a, b, src []vmath.Vec, r image.Rectangle) ([]vmath.Vec, []vmath.Vec) {
	x := func(p vmath.Vec) float64 { return p.X }
	y := func(p vmath.Vec) float64 { return p.Y }
	a = append(a, src...)
	for _, e := range [4]struct {
		coord func(vmath.Vec) float64
		bound float64
		below bool
	}{
		{x, float64(r.Min.X), false},
		{x, float64(r.Max.X), true},
		{y, float64(r.Min.Y), false},
		{y, float64(r.Max.Y), true},
	} {
		b = clipEdge(b[:0], a, e.coord, e.bound, e.below)
		a, b = b, a
	}
	return a, b
}

// clipEdge keeps the part of src on one side of coord == bound: at or below
// it when below is set, at or above it otherwise.
func clipEdge(dst, src []vmath.Vec, coord func(vmath.Vec) float64, bound float64, below bool) []vmath.Vec {
	inside := func(p vmath.Vec) bool {
		if below {
			return coord(p) <= bound
		}
		return coord(p) >= bound
	}
	n := len(src)
	for i := range src {
		p, q := src[(i+n-1)%n], src[i]
		pin, qin := inside(p), inside(q)
		if pin != qin {
			t := (bound - coord(p)) / (coord(q) - coord(p))
			dst = append(dst, vmath.Lerp(p, q, t))
		}
		if qin {
			dst = append(dst, q)
		}
	}
	return dst
}

func (c *RasterCanvas) FillPolygon(pts []vmath.Vec, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	r, ok := c.transform(pts)
	if !ok {
		return
	}
	c.composite(r, c.polygonMask(r), col, BlendNormal)
}

// FillCurve fills the closed Catmull-Rom spline through pts, flattened by
// CurvePoints.
func (c *RasterCanvas) FillCurve(pts []vmath.Vec, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	c.curve = CurvePoints(c.curve[:0], pts)
	c.FillPolygon(c.curve, col)
}

func (c *RasterCanvas) FillEllipse(cx, cy, w, h float64, col color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	c.FillPolygon(ellipsePoints(nil, cx, cy, w, h, 32), col)
}

func (c *RasterCanvas) StrokeLine(a, b vmath.Vec, width float64, col color.NRGBA) {
	d := vmath.Normalize(vmath.Vec{X: b.X - a.X, Y: b.Y - a.Y})
	if d == vmath.Zero {
		return
	}
	n := vmath.Vec{X: -d.Y * width / 2, Y: d.X * width / 2}
	c.FillPolygon([]vmath.Vec{
		{X: a.X + n.X, Y: a.Y + n.Y},
		{X: b.X + n.X, Y: b.Y + n.Y},
		{X: b.X - n.X, Y: b.Y - n.Y},
		{X: a.X - n.X, Y: a.Y - n.Y},
	}, col)
}

// Stamp resamples img bilinearly into device space and composites it.
func (c *RasterCanvas) Stamp(img image.Image, cx, cy, w, h float64, blend BlendMode) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	// source pixels -> local units -> device
	local := mul(
		f64.Aff3{1, 0, cx - w/2, 0, 1, cy - h/2},
		mul(f64.Aff3{w / float64(sb.Dx()), 0, 0, 0, h / float64(sb.Dy()), 0},
			f64.Aff3{1, 0, -float64(sb.Min.X), 0, 1, -float64(sb.Min.Y)}),
	)
	s2d := mul(c.m, local)

	corners := []vmath.Vec{{X: cx - w/2, Y: cy - h/2}, {X: cx + w/2, Y: cy - h/2}, {X: cx + w/2, Y: cy + h/2}, {X: cx - w/2, Y: cy + h/2}}
	r, ok := c.transform(corners)
	if !ok {
		return
	}

	bw, bh := r.Dx(), r.Dy()
	if c.stamp == nil || c.stamp.Rect.Dx() < bw || c.stamp.Rect.Dy() < bh {
		c.stamp = image.NewRGBA(image.Rect(0, 0, max(bw, 64), max(bh, 64)))
	}
	buf := c.stamp.SubImage(image.Rect(0, 0, bw, bh)).(*image.RGBA)
	for y := 0; y < bh; y++ {
		row := buf.Pix[y*buf.Stride : y*buf.Stride+bw*4]
		clear(row)
	}

	s2d = mul(f64.Aff3{1, 0, -float64(r.Min.X), 0, 1, -float64(r.Min.Y)}, s2d)
	draw.BiLinear.Transform(buf, s2d, img, sb, draw.Src, nil)

	c.compositeImage(r, buf, blend)
}

// Clip rasterises the outlines, as polygons, into a full-size mask. Smooth
// outlines should be flattened with CurvePoints first. Nested clips replace
// the previous one.
func (c *RasterCanvas) Clip(outlines ...[]vmath.Vec) {
	b := c.dst.Bounds()
	clip := image.NewAlpha(b)
	for _, o := range outlines {
		if len(o) < 3 {
			continue
		}
		r, ok := c.transform(o)
		if !ok {
			continue
		}
		mask := c.polygonMask(r)
		// union: keep the larger coverage
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m := mask.Pix[(y-r.Min.Y)*mask.Stride+(x-r.Min.X)]
				i := clip.PixOffset(x, y)
				if m > clip.Pix[i] {
					clip.Pix[i] = m
				}
			}
		}
	}
	c.clip = clip
}

func (c *RasterCanvas) Unclip() { c.clip = nil }

// coverage folds the clip into a mask coverage value.
func (c *RasterCanvas) coverage(x, y int, m uint32) uint32 {
	if c.clip == nil {
		return m
	}
	return m * uint32(c.clip.Pix[c.clip.PixOffset(x, y)]) / 255
}

// composite blends a flat colour through mask (located at r) into dst.
func (c *RasterCanvas) composite(r image.Rectangle, mask *image.Alpha, col color.NRGBA, blend BlendMode) {
	ir := r.Intersect(c.dst.Bounds())
	sr, sg, sb := float64(col.R)/255, float64(col.G)/255, float64(col.B)/255
	for y := ir.Min.Y; y < ir.Max.Y; y++ {
		for x := ir.Min.X; x < ir.Max.X; x++ {
			m := c.coverage(x, y, uint32(mask.Pix[(y-r.Min.Y)*mask.Stride+(x-r.Min.X)]))
			if m == 0 {
				continue
			}
			a := float64(m) / 255 * float64(col.A) / 255
			blendPixel(c.dst.Pix[c.dst.PixOffset(x, y):], sr, sg, sb, a, blend)
		}
	}
}

// compositeImage blends a premultiplied RGBA buffer located at r into dst.
func (c *RasterCanvas) compositeImage(r image.Rectangle, src *image.RGBA, blend BlendMode) {
	ir := r.Intersect(c.dst.Bounds())
	for y := ir.Min.Y; y < ir.Max.Y; y++ {
		for x := ir.Min.X; x < ir.Max.X; x++ {
			s := src.Pix[(y-r.Min.Y)*src.Stride+(x-r.Min.X)*4:]
			sa := uint32(s[3])
			if sa == 0 {
				continue
			}
			m := c.coverage(x, y, 255)
			if m == 0 {
				continue
			}
			a := float64(sa) / 255 * float64(m) / 255
			// unpremultiply
			k := 255 / float64(sa)
			blendPixel(c.dst.Pix[c.dst.PixOffset(x, y):],
				float64(s[0])*k/255, float64(s[1])*k/255, float64(s[2])*k/255, a, blend)
		}
	}
}

// blendPixel combines a straight-alpha colour (r, g, b in [0,1]) at
// coverage a into the premultiplied pixel d.
func blendPixel(d []uint8, r, g, b, a float64, blend BlendMode) {
	inv := 1 - a
	switch blend {
	case BlendMultiply:
		d[0] = uint8(math.Round(float64(d[0]) * (inv + r*a)))
		d[1] = uint8(math.Round(float64(d[1]) * (inv + g*a)))
		d[2] = uint8(math.Round(float64(d[2]) * (inv + b*a)))
	default:
		d[0] = uint8(math.Round(r*255*a + float64(d[0])*inv))
		d[1] = uint8(math.Round(g*255*a + float64(d[1])*inv))
		d[2] = uint8(math.Round(b*255*a + float64(d[2])*inv))
		d[3] = uint8(math.Round(255*a + float64(d[3])*inv))
	}
}
