package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/traits"
	"github.com/pthm-cable/koipond/vmath"
)

func init() {
	config.MustInit("")
}

func newTestRenderer(textures *BrushTextures, sumiE bool) *KoiRenderer {
	cfg := config.Cfg()
	sp := DefaultShapeParams()
	r := NewKoiRenderer(NewShapeSource(nil, sp, cfg.Animation), textures, sp, cfg)
	r.SetSumiE(sumiE)
	return r
}

func testParams() *DrawParams {
	return &DrawParams{
		X: 100, Y: 80, Angle: 0.3,
		Color:            traits.HSB{H: 30, S: 10, B: 95},
		Spots:            []traits.Spot{{Segment: 3, OffsetY: 0.5, Size: 3, Color: traits.HSB{H: 5, S: 90, B: 85}}},
		Seed:             7,
		WaveTime:         1.25,
		SizeScale:        2.5,
		LengthMultiplier: 1,
		TailLength:       1.2,
	}
}

func kinds(ops []Op) []OpKind {
	out := make([]OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestDrawOrderPlain(t *testing.T) {
	r := newTestRenderer(nil, false)
	rec := &Recorder{}
	p := testParams()
	r.Draw(rec, p)

	var want []OpKind
	want = append(want, OpPolygon, OpPolygon, OpPolygon, OpPolygon) // fins
	want = append(want, OpCurve, OpCurve)                            // tail, body
	for i := 1; i < DefaultShapeParams().NumSegments-1; i++ {
		want = append(want, OpLine)
	}
	want = append(want, OpPolygon, OpEllipse, OpEllipse) // head, eyes
	want = append(want, OpClip, OpEllipse, OpUnclip)     // spot
	want = append(want, OpPolygon)                       // dorsal

	got := kinds(rec.Ops)
	if len(got) != len(want) {
		t.Fatalf("ops = %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d = %s, want %s\nops = %v", i, got[i], want[i], got)
		}
	}

	fin := HSBA(shade(p.Color, 8, -15), 0.7)
	if rec.Ops[0].Color != fin {
		t.Errorf("fin colour = %v, want %v", rec.Ops[0].Color, fin)
	}
	body := HSBA(shade(p.Color, 0, -2), 1)
	if rec.Ops[5].Color != body {
		t.Errorf("body colour = %v, want %v", rec.Ops[5].Color, body)
	}
	eye := HSBA(eyeColor, 1)
	head := len(want) - 7
	if rec.Ops[head+1].Color != eye || rec.Ops[head+2].Color != eye {
		t.Error("eyes not drawn in eye colour")
	}
	spot := rec.Ops[len(want)-3]
	if !spot.Clipped {
		t.Error("spot drawn outside the body clip")
	}
	if rec.Ops[len(want)-1].Clipped {
		t.Error("dorsal fin drawn inside the clip")
	}
	if rec.Depth() != 0 {
		t.Errorf("unbalanced Push/Pop: depth %d", rec.Depth())
	}
}

func TestDrawSumiELayers(t *testing.T) {
	r := newTestRenderer(nil, true)
	rec := &Recorder{}
	r.Draw(rec, testParams())

	// fins 4x2 + head 3 + dorsal 2
	if n := rec.Count(OpPolygon); n != 13 {
		t.Errorf("polygons = %d, want 13", n)
	}
	// tail 3 + body 3
	if n := rec.Count(OpCurve); n != 6 {
		t.Errorf("curves = %d, want 6", n)
	}
	if n := rec.Count(OpLine); n != 0 {
		t.Errorf("segment lines = %d, want 0 in soft-edge mode", n)
	}
	if rec.MaxDepth != 2 || rec.Depth() != 0 {
		t.Errorf("depth max %d final %d, want 2 and 0", rec.MaxDepth, rec.Depth())
	}
}

func TestDrawGuards(t *testing.T) {
	tests := []struct {
		name string
		mod  func(p *DrawParams)
	}{
		{"nan position", func(p *DrawParams) { p.X = math.NaN() }},
		{"inf angle", func(p *DrawParams) { p.Angle = math.Inf(1) }},
		{"zero scale", func(p *DrawParams) { p.SizeScale = 0 }},
		{"negative scale", func(p *DrawParams) { p.SizeScale = -1 }},
	}
	r := newTestRenderer(nil, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mod(p)
			rec := &Recorder{}
			r.Draw(rec, p)
			if len(rec.Ops) != 0 {
				t.Errorf("drew %d ops, want none", len(rec.Ops))
			}
		})
	}
}

func TestDrawSkipsOutOfRangeSpots(t *testing.T) {
	r := newTestRenderer(nil, false)
	p := testParams()
	p.Spots = []traits.Spot{{Segment: -1, Size: 2}, {Segment: 10, Size: 2}, {Segment: 0, Size: 2}}
	rec := &Recorder{}
	r.Draw(rec, p)

	clipped := 0
	for _, op := range rec.Ops {
		if op.Clipped && op.Kind == OpEllipse {
			clipped++
		}
	}
	if clipped != 1 {
		t.Errorf("drew %d spots, want 1", clipped)
	}
}

// partlessShapes returns nothing for every part.
type partlessShapes struct{}

func (partlessShapes) Outline(dst []vmath.Vec, part Part, pose *Pose) (Outline, bool) {
	return Outline{}, false
}

func TestDrawMissingPartsSkipsClip(t *testing.T) {
	cfg := config.Cfg()
	r := NewKoiRenderer(partlessShapes{}, nil, DefaultShapeParams(), cfg)
	rec := &Recorder{}
	r.Draw(rec, testParams())

	if rec.Count(OpClip) != 0 || rec.Count(OpUnclip) != 0 {
		t.Error("clipped with no body or head")
	}
	if rec.Count(OpEllipse) != 2 {
		t.Errorf("ellipses = %d, want only the eyes", rec.Count(OpEllipse))
	}
}

func TestDrawTextureStamps(t *testing.T) {
	white := solidImage(4, 4, color.NRGBA{255, 255, 255, 255})
	tex := NewBrushTextures(white, []image.Image{white, white}, 50)

	tests := []struct {
		name      string
		base      traits.HSB
		spotBlend BlendMode
	}{
		{"light body", traits.HSB{H: 0, S: 0, B: 90}, BlendMultiply},
		{"dark body", traits.HSB{H: 0, S: 0, B: 20}, BlendNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(tex, true)
			p := testParams()
			p.Color = tt.base
			rec := &Recorder{}
			r.Draw(rec, p)

			var stamps []Op
			for _, op := range rec.Ops {
				if op.Kind == OpStamp {
					stamps = append(stamps, op)
				}
			}
			if len(stamps) != 2 {
				t.Fatalf("stamps = %d, want body texture and one spot", len(stamps))
			}
			if stamps[0].Blend != BlendMultiply {
				t.Errorf("body texture blend = %v, want multiply", stamps[0].Blend)
			}
			if stamps[1].Blend != tt.spotBlend {
				t.Errorf("spot blend = %v, want %v", stamps[1].Blend, tt.spotBlend)
			}
			for _, s := range stamps {
				if !s.Clipped {
					t.Error("stamp outside the body clip")
				}
			}
		})
	}
}

func TestSpotStampDeterministic(t *testing.T) {
	jitter := config.Range{Min: 0.8, Max: 1.2}
	got := spotStamp(3, 1, 4, 30, jitter)

	// seed (3*1000 + 137) % 10000 = 3137
	if got.index != 1 {
		t.Errorf("index = %d, want 1", got.index)
	}
	wantRot := math.Pi + float64(17-30)*math.Pi/180
	if math.Abs(got.rotation-wantRot) > eps {
		t.Errorf("rotation = %v, want %v", got.rotation, wantRot)
	}
	if math.Abs(got.jitter-(0.8+0.37*0.4)) > eps {
		t.Errorf("jitter = %v, want %v", got.jitter, 0.8+0.37*0.4)
	}
	if again := spotStamp(3, 1, 4, 30, jitter); again != got {
		t.Error("spot stamp not deterministic")
	}

	for seed := -50; seed < 50; seed++ {
		for i := 0; i < 7; i++ {
			s := spotStamp(seed, i, 3, 30, jitter)
			if s.index < 0 || s.index >= 3 {
				t.Fatalf("seed %d spot %d: index %d out of range", seed, i, s.index)
			}
			if s.jitter < 0.8 || s.jitter > 1.2 {
				t.Fatalf("seed %d spot %d: jitter %v out of range", seed, i, s.jitter)
			}
			if math.Abs(s.rotation-math.Pi) > math.Pi/6+eps {
				t.Fatalf("seed %d spot %d: rotation %v out of range", seed, i, s.rotation)
			}
		}
	}
}

func TestWaveTableCache(t *testing.T) {
	var w waveTable
	a := w.lookup(1.5, 10, 3.5)
	if len(a) != 10 {
		t.Fatalf("len = %d, want 10", len(a))
	}
	if math.Abs(a[4]-math.Sin(1.5-0.4*3.5)) > eps {
		t.Errorf("value[4] = %v", a[4])
	}
	b := w.lookup(1.5, 10, 3.5)
	if &a[0] != &b[0] {
		t.Error("same key recomputed into a new table")
	}
	c := w.lookup(1.6, 10, 3.5)
	if math.Abs(c[0]-math.Sin(1.6)) > eps {
		t.Errorf("new time not recomputed: %v", c[0])
	}
	if d := w.lookup(1.6, 6, 3.5); len(d) != 6 {
		t.Errorf("len = %d after count change, want 6", len(d))
	}
	e := w.lookup(1.6, 6, 2)
	if want := math.Sin(1.6 - 2.0/6); math.Abs(e[1]-want) > eps {
		t.Errorf("gradient change not recomputed: value[1] = %v, want %v", e[1], want)
	}
}

func TestClipFollowsSmoothSilhouette(t *testing.T) {
	r := newTestRenderer(nil, false)
	rec := &Recorder{}
	r.Draw(rec, testParams())

	// Fins, tail, body, head, then the clip; the last curve before the head
	// is the body.
	var body, head, clip *Op
	for i := 0; i < len(rec.Ops) && clip == nil; i++ {
		op := &rec.Ops[i]
		switch {
		case op.Kind == OpCurve && head == nil:
			body = op
		case op.Kind == OpPolygon && body != nil && head == nil:
			head = op
		case op.Kind == OpClip:
			clip = op
		}
	}
	if body == nil || head == nil || clip == nil {
		t.Fatalf("missing ops: body %v head %v clip %v", body, head, clip)
	}
	if want := body.Points*curveSteps + head.Points; clip.Points != want {
		t.Errorf("clip points = %d, want %d (flattened body + head)", clip.Points, want)
	}
}

func TestBodySegments(t *testing.T) {
	cfg := config.Cfg()
	sp := DefaultShapeParams()
	var w waveTable
	wave := w.lookup(0, sp.NumSegments, cfg.Animation.PhaseGradient)
	segs := bodySegments(nil, wave, &sp, &cfg.Animation, 2, 1.5, 1)

	if len(segs) != sp.NumSegments {
		t.Fatalf("segments = %d, want %d", len(segs), sp.NumSegments)
	}
	if math.Abs(segs[0].X-7*2*1.5) > eps {
		t.Errorf("head x = %v, want %v", segs[0].X, 7*2*1.5)
	}
	if math.Abs(segs[0].Y) > eps {
		t.Errorf("head wave at time 0 = %v, want 0", segs[0].Y)
	}
	if math.Abs(segs[0].W-sp.FrontWidth*2) > eps {
		t.Errorf("head width = %v, want %v", segs[0].W, sp.FrontWidth*2)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].X >= segs[i-1].X {
			t.Fatalf("segment %d not behind segment %d", i, i-1)
		}
	}
}

func TestNewShapeSource(t *testing.T) {
	cfg := config.Cfg()
	sp := DefaultShapeParams()

	if _, ok := NewShapeSource(nil, sp, cfg.Animation).(*ProceduralShapes); !ok {
		t.Error("no outlines: want procedural source")
	}

	svg := NewSVGShapes(sp, cfg.Animation, map[string]string{"head": "static", "body": "bogus"})
	svg.Set("head", []vmath.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}})
	src := NewShapeSource(svg, sp, cfg.Animation)
	if _, ok := src.(FallbackShapes); !ok {
		t.Fatalf("with outlines: got %T, want FallbackShapes", src)
	}

	var ws waveTable
	segs := bodySegments(nil, ws.lookup(0.5, sp.NumSegments, cfg.Animation.PhaseGradient), &sp, &cfg.Animation, 1, 1, 1)
	pose := &Pose{Segments: segs, WaveTime: 0.5, SizeScale: 1, TailLength: 1, AmpScale: 1}

	head, ok := src.Outline(nil, PartHead, pose)
	if !ok || len(head.Points) != 4 {
		t.Errorf("head from outlines: ok %v, %d points", ok, len(head.Points))
	}
	body, ok := src.Outline(nil, PartBody, pose)
	if !ok || len(body.Points) != 2*sp.NumSegments+1 {
		t.Errorf("body from procedural fallback: ok %v, %d points", ok, len(body.Points))
	}
	if _, ok := src.Outline(nil, PartBody, &Pose{}); ok {
		t.Error("empty pose produced an outline")
	}
}

func TestProceduralFinOutOfRange(t *testing.T) {
	cfg := config.Cfg()
	sp := DefaultShapeParams()
	sp.PectoralPos = 20
	src := NewProceduralShapes(sp, cfg.Animation)
	pose := &Pose{Segments: make([]Segment, sp.NumSegments), SizeScale: 1, TailLength: 1}
	if _, ok := src.Outline(nil, PartPectoralTop, pose); ok {
		t.Error("pectoral fin past the last segment produced an outline")
	}
	if _, ok := src.Outline(nil, PartVentralTop, pose); !ok {
		t.Error("ventral fin missing")
	}
}

func TestKoiDrawParams(t *testing.T) {
	cfg := config.Cfg()
	k := &components.Koi{
		Pos:              vmath.Vec{X: 10, Y: 20},
		Vel:              vmath.Vec{X: 0, Y: 1},
		SizeMultiplier:   1.2,
		LengthMultiplier: 0.9,
		TailLength:       1.4,
		AnimationOffset:  0.5,
	}
	a := &components.Appearance{Pattern: traits.Pattern{Base: traits.HSB{B: 90}}, Seed: 4}
	p := KoiDrawParams(k, a, 2, &cfg.Animation, cfg.Rendering.BaseScale)

	if math.Abs(p.Angle-math.Pi/2) > eps {
		t.Errorf("angle = %v, want pi/2", p.Angle)
	}
	if math.Abs(p.WaveTime-(2*cfg.Animation.WaveSpeed+0.5)) > eps {
		t.Errorf("wave time = %v", p.WaveTime)
	}
	if math.Abs(p.SizeScale-cfg.Rendering.BaseScale*1.2) > eps {
		t.Errorf("size scale = %v", p.SizeScale)
	}
	if p.Seed != 4 || p.TailLength != 1.4 {
		t.Errorf("seed %d tail %v", p.Seed, p.TailLength)
	}
}

func TestDrawOntoRaster(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 160))
	c := NewRasterCanvas(img)
	bg := color.RGBA{255, 255, 255, 255}
	c.Fill(bg)

	r := newTestRenderer(nil, true)
	p := testParams()
	p.Color = traits.HSB{H: 10, S: 90, B: 80}
	r.Draw(c, p)

	if img.RGBAAt(int(p.X), int(p.Y)) == bg {
		t.Error("koi centre left unpainted")
	}
	if img.RGBAAt(2, 2) != bg {
		t.Error("painted far from the koi")
	}
}
