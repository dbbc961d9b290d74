package renderer

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/traits"
	"github.com/pthm-cable/koipond/vmath"
)

// DrawParams is everything needed to draw one koi. Zero multipliers are
// treated as 1.
type DrawParams struct {
	X, Y  float64
	Angle float64 // heading, radians

	Color traits.HSB
	Spots []traits.Spot
	Seed  int

	WaveTime           float64
	SizeScale          float64
	LengthMultiplier   float64
	TailLength         float64
	WaveAmplitudeScale float64

	BrightnessBoost float64
	SaturationBoost float64
	ExtraScale      float64
}

// KoiDrawParams builds draw parameters for a simulated koi at elapsed
// seconds.
func KoiDrawParams(k *components.Koi, a *components.Appearance, elapsed float64, anim *config.AnimationConfig, baseScale float64) DrawParams {
	return DrawParams{
		X:                k.Pos.X,
		Y:                k.Pos.Y,
		Angle:            k.Heading(),
		Color:            a.Pattern.Base,
		Spots:            a.Pattern.Spots,
		Seed:             a.Seed,
		WaveTime:         elapsed*anim.WaveSpeed + k.AnimationOffset,
		SizeScale:        baseScale * k.SizeMultiplier,
		LengthMultiplier: k.LengthMultiplier,
		TailLength:       k.TailLength,
	}
}

// layer is one pass of a soft-edged fill: a diagonal offset and an opacity.
type layer struct {
	offset, alpha float64
}

// partStyle is how one part is coloured and layered.
type partStyle struct {
	dSat, dBri float64
	layers     []layer // soft-edge passes
	alpha      float64 // single-pass opacity
}

var (
	bodyStyle = partStyle{dBri: -2, alpha: 1,
		layers: []layer{{-0.3, 0.3}, {0, 0.7}, {0.3, 0.3}}}
	headStyle = partStyle{dBri: 2, alpha: 1,
		layers: []layer{{-0.25, 0.3}, {0, 0.8}, {0.25, 0.3}}}
	tailStyle = partStyle{dSat: 5, dBri: -12, alpha: 1,
		layers: []layer{{-0.4, 0.25}, {0, 0.7}, {0.4, 0.25}}}
	finStyle = partStyle{dSat: 8, dBri: -15, alpha: 0.7,
		layers: []layer{{-0.1, 0.5}, {0.1, 0.25}}}
	dorsalStyle = partStyle{dSat: 8, dBri: -15, alpha: 0.75,
		layers: []layer{{-0.075, 0.6}, {0.075, 0.3}}}
)

var (
	eyeColor = traits.HSB{H: 0, S: 0, B: 10}
	finParts = [...]Part{PartPectoralTop, PartPectoralBottom, PartVentralTop, PartVentralBottom}
)

const (
	segmentAlpha     = 0.4
	segmentLineWidth = 0.3
	spotSeedPrime    = 137
	spotSeedRange    = 10000
)

// KoiRenderer draws koi in a fixed part order onto any Canvas. It keeps
// scratch buffers and the wave cache between calls and is not safe for
// concurrent use.
type KoiRenderer struct {
	shapes   ShapeSource
	textures *BrushTextures
	shape    ShapeParams
	anim     config.AnimationConfig
	rend     config.RenderingConfig
	sumiE    bool

	wave waveTable
	pose Pose
	segs []Segment

	bodyPts, headPts, partPts []vmath.Vec
	bodyClip, headClip        []vmath.Vec
}

// NewKoiRenderer creates a renderer. textures may be nil.
func NewKoiRenderer(shapes ShapeSource, textures *BrushTextures, sp ShapeParams, cfg *config.Config) *KoiRenderer {
	return &KoiRenderer{
		shapes:   shapes,
		textures: textures,
		shape:    sp,
		anim:     cfg.Animation,
		rend:     cfg.Rendering,
		sumiE:    cfg.Rendering.SumiE,
	}
}

// LoadKoiRenderer builds a renderer from the configured shape and texture
// directories. Load failures are logged and the affected parts fall back to
// procedural drawing.
func LoadKoiRenderer(cfg *config.Config) *KoiRenderer {
	sp := DefaultShapeParams()
	var svg *SVGShapes
	if dir := cfg.Rendering.ShapesDir; dir != "" {
		var err error
		svg, err = LoadSVGShapes(dir, cfg.Rendering.PathSamples, sp, cfg.Animation, cfg.Rendering.Deformations)
		if err != nil {
			slog.Warn("some shapes failed to load", "dir", dir, "error", err)
		}
		slog.Info("shapes loaded", "dir", dir, "count", svg.Len())
	}

	var textures *BrushTextures
	if dir := cfg.Rendering.TexturesDir; dir != "" {
		var err error
		textures, err = LoadBrushTextures(dir, cfg.Rendering.StampCacheSize)
		if err != nil {
			slog.Warn("some textures failed to load", "dir", dir, "error", err)
		}
		slog.Info("textures loaded", "dir", dir, "ready", textures.Ready(), "spots", textures.SpotCount())
	}

	return NewKoiRenderer(NewShapeSource(svg, sp, cfg.Animation), textures, sp, cfg)
}

// SetSumiE switches soft-edge layering on or off.
func (r *KoiRenderer) SetSumiE(on bool) { r.sumiE = on }

// SumiE reports whether soft-edge layering is on.
func (r *KoiRenderer) SumiE() bool { return r.sumiE }

// Textures returns the brush textures, possibly nil.
func (r *KoiRenderer) Textures() *BrushTextures { return r.textures }

// Draw paints one koi. Missing parts are skipped; unusable parameters draw
// nothing.
func (r *KoiRenderer) Draw(c Canvas, p *DrawParams) {
	if !vmath.Finite(vmath.Vec{X: p.X, Y: p.Y}) || math.IsNaN(p.Angle) || math.IsInf(p.Angle, 0) {
		return
	}
	scale := p.SizeScale * orOne(p.ExtraScale)
	if !(scale > 0) || math.IsInf(scale, 0) || r.shape.NumSegments < 2 {
		return
	}

	base := traits.HSB{
		H: p.Color.H,
		S: math.Min(100, p.Color.S+p.SaturationBoost),
		B: math.Min(100, p.Color.B+p.BrightnessBoost),
	}

	wave := r.wave.lookup(p.WaveTime, r.shape.NumSegments, r.anim.PhaseGradient)
	r.segs = bodySegments(r.segs[:0], wave, &r.shape, &r.anim, scale, orOne(p.LengthMultiplier), orOne(p.WaveAmplitudeScale))
	r.pose = Pose{
		Segments:   r.segs,
		WaveTime:   p.WaveTime,
		SizeScale:  scale,
		TailLength: orOne(p.TailLength),
		AmpScale:   orOne(p.WaveAmplitudeScale),
	}

	c.Push()
	defer c.Pop()
	c.Translate(p.X, p.Y)
	c.Rotate(p.Angle)

	for _, part := range finParts {
		r.partPts = r.drawPart(c, part, base, &finStyle, r.partPts).Points
	}
	r.partPts = r.drawPart(c, PartTail, base, &tailStyle, r.partPts).Points

	body := r.drawPart(c, PartBody, base, &bodyStyle, r.bodyPts)
	r.bodyPts = body.Points
	bodyOK := len(body.Points) >= 3
	if bodyOK && !r.sumiE {
		r.drawSegmentLines(c, base)
	}
	head := r.drawPart(c, PartHead, base, &headStyle, r.headPts)
	r.headPts = head.Points
	headOK := len(head.Points) >= 3
	r.drawEyes(c)

	if bodyOK || headOK {
		var clips [2][]vmath.Vec
		n := 0
		if bodyOK {
			r.bodyClip = silhouette(r.bodyClip[:0], body)
			clips[n] = r.bodyClip
			n++
		}
		if headOK {
			r.headClip = silhouette(r.headClip[:0], head)
			clips[n] = r.headClip
			n++
		}
		c.Clip(clips[:n]...)
		r.drawBodyTexture(c, base)
		r.drawSpots(c, p, base)
		c.Unclip()
	}

	r.partPts = r.drawPart(c, PartDorsal, base, &dorsalStyle, r.partPts).Points
}

// silhouette appends the outline as drawn: smooth outlines are flattened the
// same way the raster canvas fills them.
func silhouette(dst []vmath.Vec, o Outline) []vmath.Vec {
	if o.Smooth {
		return CurvePoints(dst, o.Points)
	}
	return append(dst, o.Points...)
}

// drawPart fills one part outline. The returned outline always carries the
// (possibly grown) buffer; it has fewer than three points when nothing was
// drawn.
func (r *KoiRenderer) drawPart(c Canvas, part Part, base traits.HSB, st *partStyle, buf []vmath.Vec) Outline {
	o, ok := r.shapes.Outline(buf, part, &r.pose)
	if !ok {
		return Outline{Points: buf[:0]}
	}
	if len(o.Points) < 3 {
		return o
	}
	fill := c.FillPolygon
	if o.Smooth {
		fill = c.FillCurve
	}
	col := shade(base, st.dSat, st.dBri)
	if !r.sumiE {
		fill(o.Points, HSBA(col, st.alpha))
		return o
	}
	for _, l := range st.layers {
		c.Push()
		c.Translate(l.offset, l.offset)
		fill(o.Points, HSBA(col, l.alpha))
		c.Pop()
	}
	return o
}

func (r *KoiRenderer) drawSegmentLines(c Canvas, base traits.HSB) {
	col := HSBA(shade(base, 10, -25), segmentAlpha)
	for i := 1; i < len(r.segs)-1; i++ {
		seg := r.segs[i]
		half := seg.W * bodyWidthFactor
		c.StrokeLine(vmath.Vec{X: seg.X, Y: seg.Y - half}, vmath.Vec{X: seg.X, Y: seg.Y + half}, segmentLineWidth, col)
	}
}

func (r *KoiRenderer) drawEyes(c Canvas) {
	head := r.segs[0]
	sc := r.pose.SizeScale
	x := head.X + r.shape.EyeX*sc
	d := r.shape.EyeSize * sc
	col := HSBA(eyeColor, 1)
	c.FillEllipse(x, head.Y+r.shape.EyeYTop*sc, d, d, col)
	c.FillEllipse(x, head.Y+r.shape.EyeYBottom*sc, d, d, col)
}

func (r *KoiRenderer) drawBodyTexture(c Canvas, base traits.HSB) {
	img := r.textures.TintedBody(base, r.rend.BodyTexAlpha)
	if img == nil {
		return
	}
	first, last := r.segs[0], r.segs[len(r.segs)-1]
	maxW := 0.0
	for _, s := range r.segs {
		maxW = math.Max(maxW, s.W)
	}
	k := r.rend.BodyTexScale
	c.Stamp(img, (first.X+last.X)/2, 0, math.Abs(first.X-last.X)*k, maxW*k, BlendMultiply)
}

func (r *KoiRenderer) drawSpots(c Canvas, p *DrawParams, base traits.HSB) {
	sc := r.pose.SizeScale
	count := r.textures.SpotCount()
	dark := base.B < r.rend.DarkThreshold
	for i, spot := range p.Spots {
		if spot.Segment < 0 || spot.Segment >= len(r.segs) {
			continue
		}
		seg := r.segs[spot.Segment]
		x, y := seg.X, seg.Y+spot.OffsetY*sc
		size := spot.Size * sc * r.rend.SpotScale
		col := traits.HSB{
			H: spot.Color.H,
			S: math.Min(100, spot.Color.S+p.SaturationBoost),
			B: math.Min(100, spot.Color.B+p.BrightnessBoost),
		}

		if count == 0 {
			c.FillEllipse(x, y, size, size*r.rend.SpotHeightRatio, HSBA(col, 1))
			continue
		}

		st := spotStamp(p.Seed, i, count, r.rend.SpotRotationDeg, r.rend.SpotJitter)
		alpha, blend := r.rend.LightSpotAlpha, BlendMultiply
		if dark {
			alpha, blend = r.rend.DarkSpotAlpha, BlendNormal
		}
		img := r.textures.TintedSpot(st.index, col, alpha, blend)
		if img == nil {
			c.FillEllipse(x, y, size, size*r.rend.SpotHeightRatio, HSBA(col, 1))
			continue
		}
		w := size * st.jitter
		c.Push()
		c.Translate(x, y)
		c.Rotate(st.rotation)
		c.Stamp(img, 0, 0, w, w*r.rend.SpotHeightRatio, blend)
		c.Pop()
	}
}

// spotVariant is the deterministic per-spot stamp choice.
type spotVariant struct {
	index    int
	rotation float64
	jitter   float64
}

// spotStamp derives the stamp texture, rotation and size jitter for spot i
// of the koi with the given seed. The result never depends on frame time.
func spotStamp(seed, i, count int, rotationDeg float64, jitter config.Range) spotVariant {
	s := ((seed*1000+i*spotSeedPrime)%spotSeedRange + spotSeedRange) % spotSeedRange
	v := spotVariant{index: s % count, rotation: math.Pi, jitter: jitter.Min}
	if span := int(2 * rotationDeg); span > 0 {
		v.rotation += float64(s%span-span/2) * math.Pi / 180
	}
	v.jitter += float64(s%100) / 100 * (jitter.Max - jitter.Min)
	return v
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
