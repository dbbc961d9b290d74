package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
)

// Part is one drawable body part. Mirrored fin pairs share an asset.
type Part uint8

const (
	PartBody Part = iota
	PartHead
	PartTail
	PartPectoralTop
	PartPectoralBottom
	PartVentralTop
	PartVentralBottom
	PartDorsal
	NumParts
)

var partNames = [NumParts]string{
	"body", "head", "tail",
	"pectoral_top", "pectoral_bottom",
	"ventral_top", "ventral_bottom",
	"dorsal",
}

var partAssets = [NumParts]string{
	"body", "head", "tail",
	"pectoral", "pectoral",
	"ventral", "ventral",
	"dorsal",
}

func (p Part) String() string {
	if p < NumParts {
		return partNames[p]
	}
	return fmt.Sprintf("Part(%d)", p)
}

// Asset returns the outline asset name the part is drawn from.
func (p Part) Asset() string { return partAssets[p] }

// Assets lists the outline asset names with their file names and the box
// (in body units) each loaded outline is normalised to.
var Assets = []struct {
	Name          string
	File          string
	Width, Height float64
}{
	{"body", "body.svg", 16, 7.7},
	{"head", "head.svg", 7.5, 5},
	{"tail", "tail.svg", 6, 3},
	{"pectoral", "pectoral-fin.svg", 4.5, 2},
	{"dorsal", "dorsal-fin.svg", 3, 2.5},
	{"ventral", "ventral-fin.svg", 3, 1.5},
}

// Outline is a posed part outline in koi-local coordinates.
type Outline struct {
	Points []vmath.Vec
	Smooth bool // draw as a curve through Points rather than a polygon
}

// ShapeSource supplies posed outlines for body parts. ok is false when the
// source has nothing for the part or the pose is unusable.
type ShapeSource interface {
	Outline(dst []vmath.Vec, part Part, pose *Pose) (Outline, bool)
}

// Procedural fin and body constants, in body units.
const (
	bodyWidthFactor   = 0.48
	asymmetryFactor   = 0.15
	tailLengthUnits   = 6
	tailOutlineSteps  = 6
	pectoralSwayPhase = -0.5

	pectoralCenter = 2.25
	pectoralWidth  = 4.5
	pectoralHeight = 2.0
	ventralCenter  = 1.5
	ventralWidth   = 3.0
	ventralHeight  = 1.5
	dorsalAngle    = -0.2

	tailWaveContinuation = 0.5
	ellipseSteps         = 24
)

// dorsalPolygon is the procedural dorsal fin, unscaled.
var dorsalPolygon = []vmath.Vec{{X: 0, Y: 0}, {X: -1, Y: -2}, {X: 1, Y: -2.5}, {X: 2, Y: -1.5}, {X: 2, Y: 0}}

// ProceduralShapes builds every part from the shape parameters.
type ProceduralShapes struct {
	Shape ShapeParams
	Anim  config.AnimationConfig
}

// NewProceduralShapes creates a procedural source.
func NewProceduralShapes(sp ShapeParams, anim config.AnimationConfig) *ProceduralShapes {
	return &ProceduralShapes{Shape: sp, Anim: anim}
}

func (s *ProceduralShapes) Outline(dst []vmath.Vec, part Part, pose *Pose) (Outline, bool) {
	segs := pose.Segments
	if len(segs) == 0 {
		return Outline{}, false
	}
	sp, sc := &s.Shape, pose.SizeScale
	dst = dst[:0]

	switch part {
	case PartBody:
		head := segs[0]
		dst = append(dst, vmath.Vec{X: head.X + sp.HeadX*sc, Y: head.Y})
		top := bodyWidthFactor * (1 - sp.Asymmetry*asymmetryFactor)
		for _, seg := range segs {
			dst = append(dst, vmath.Vec{X: seg.X, Y: seg.Y - seg.W*top})
		}
		bottom := bodyWidthFactor * (1 + sp.Asymmetry*asymmetryFactor)
		for i := len(segs) - 1; i >= 0; i-- {
			dst = append(dst, vmath.Vec{X: segs[i].X, Y: segs[i].Y + segs[i].W*bottom})
		}
		return Outline{Points: dst, Smooth: true}, true

	case PartHead:
		head := segs[0]
		dst = ellipsePoints(dst, head.X+sp.HeadX*sc, head.Y, sp.HeadWidth*sc, sp.HeadHeight*sc, ellipseSteps)
		return Outline{Points: dst}, true

	case PartTail:
		base := segs[len(segs)-1]
		startX := base.X + sp.TailStartX*sc
		length := pose.TailLength * tailLengthUnits * sc
		for i := 0; i <= tailOutlineSteps; i++ {
			t := float64(i) / tailOutlineSteps
			sway := flutter(t, pose.WaveTime, sc)
			w := vmath.LerpF(sp.TailWidthStart, sp.TailWidthEnd, t) * sc
			dst = append(dst, vmath.Vec{X: startX - t*length, Y: base.Y - w + sway})
		}
		for i := tailOutlineSteps; i >= 0; i-- {
			t := float64(i) / tailOutlineSteps
			sway := flutter(t, pose.WaveTime, sc)
			w := vmath.LerpF(sp.TailWidthStart, sp.TailWidthEnd, t) * sc
			dst = append(dst, vmath.Vec{X: startX - t*length, Y: base.Y + w + sway})
		}
		return Outline{Points: dst, Smooth: true}, true

	case PartPectoralTop, PartPectoralBottom:
		if sp.PectoralPos < 0 || sp.PectoralPos >= len(segs) {
			return Outline{}, false
		}
		seg := segs[sp.PectoralPos]
		sway := math.Sin(pose.WaveTime+pectoralSwayPhase) * s.Anim.Pectoral.Sway
		rot := math.Sin(pose.WaveTime*s.Anim.Pectoral.Frequency) * s.Anim.Pectoral.Rotation
		y, angle := sp.PectoralYTop, sp.PectoralAngleTop+rot
		if part == PartPectoralBottom {
			y, angle, sway = sp.PectoralYBottom, sp.PectoralAngleBottom-rot, -sway
		}
		dst = ellipsePoints(dst, pectoralCenter, 0, pectoralWidth, pectoralHeight, ellipseSteps)
		place(dst, sc, angle, seg.X, seg.Y+y*sc+sway)
		return Outline{Points: dst}, true

	case PartVentralTop, PartVentralBottom:
		if sp.VentralPos < 0 || sp.VentralPos >= len(segs) {
			return Outline{}, false
		}
		seg := segs[sp.VentralPos]
		rot := math.Sin(pose.WaveTime*s.Anim.Ventral.Frequency) * s.Anim.Ventral.Rotation
		y, angle := sp.VentralYTop, sp.VentralAngleTop+rot
		if part == PartVentralBottom {
			y, angle = sp.VentralYBottom, sp.VentralAngleBottom-rot
		}
		dst = ellipsePoints(dst, ventralCenter, 0, ventralWidth, ventralHeight, ellipseSteps)
		place(dst, sc, angle, seg.X, seg.Y+y*sc)
		return Outline{Points: dst}, true

	case PartDorsal:
		if sp.DorsalPos < 0 || sp.DorsalPos >= len(segs) {
			return Outline{}, false
		}
		seg := segs[sp.DorsalPos]
		dst = append(dst, dorsalPolygon...)
		place(dst, sc, dorsalAngle, seg.X, seg.Y+sp.DorsalY*sc)
		return Outline{Points: dst}, true
	}
	return Outline{}, false
}

// SVGShapes poses outlines loaded from vector art. Each asset is animated by
// its configured deformation.
type SVGShapes struct {
	Shape ShapeParams
	Anim  config.AnimationConfig

	outlines map[string][]vmath.Vec
	deform   map[string]Deformation
	scratch  []vmath.Vec
	segs     []Segment
}

// NewSVGShapes creates an outline source. deform maps asset names to
// deformation names; unknown names are logged and treated as static.
func NewSVGShapes(sp ShapeParams, anim config.AnimationConfig, deform map[string]string) *SVGShapes {
	s := &SVGShapes{
		Shape:    sp,
		Anim:     anim,
		outlines: make(map[string][]vmath.Vec),
		deform:   make(map[string]Deformation),
	}
	for asset, name := range deform {
		d, err := ParseDeformation(name)
		if err != nil {
			slog.Warn("unknown deformation", "part", asset, "kind", name)
		}
		s.deform[asset] = d
	}
	return s
}

// Set installs the outline for an asset. An empty outline removes it.
func (s *SVGShapes) Set(asset string, pts []vmath.Vec) {
	if len(pts) == 0 {
		delete(s.outlines, asset)
		return
	}
	s.outlines[asset] = pts
}

// Has reports whether an outline is loaded for asset.
func (s *SVGShapes) Has(asset string) bool { return len(s.outlines[asset]) > 0 }

// Len returns the number of loaded assets.
func (s *SVGShapes) Len() int { return len(s.outlines) }

// LoadSVGShapes reads every known asset file from dir. Missing files are
// skipped; unreadable or malformed ones are reported in the joined error and
// left to the procedural fallback.
func LoadSVGShapes(dir string, samples int, sp ShapeParams, anim config.AnimationConfig, deform map[string]string) (*SVGShapes, error) {
	s := NewSVGShapes(sp, anim, deform)
	var errs []error
	for _, a := range Assets {
		path := filepath.Join(dir, a.File)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("opening %s: %w", path, err))
			continue
		}
		pts, err := ParseSVG(f, samples)
		f.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		s.Set(a.Name, NormalizeVertices(pts, a.Width, a.Height))
	}
	return s, errors.Join(errs...)
}

func (s *SVGShapes) Outline(dst []vmath.Vec, part Part, pose *Pose) (Outline, bool) {
	src := s.outlines[part.Asset()]
	segs := pose.Segments
	if len(src) == 0 || len(segs) == 0 {
		return Outline{}, false
	}
	sp, sc := &s.Shape, pose.SizeScale
	kind := s.deform[part.Asset()]
	params := DeformParams{
		Segments:  segs,
		WaveTime:  pose.WaveTime,
		SizeScale: sc,
	}

	switch part {
	case PartBody:
		dst = Deform(dst, src, kind, &params)
		place(dst, sc, 0, 0, 0)

	case PartHead:
		dst = Deform(dst, src, kind, &params)
		place(dst, sc, 0, segs[0].X+sp.HeadX*sc, segs[0].Y)

	case PartTail:
		base := segs[len(segs)-1]
		startX := base.X + sp.TailStartX*sc
		_, right := xRange(src)
		s.segs = tailSegments(s.segs[:0], s.Anim.TailSegments, startX, &s.Anim, pose)
		params.Segments = s.segs
		dst = Deform(dst, src, kind, &params)
		place(dst, sc*pose.TailLength, 0, startX-right*sc*pose.TailLength, 0)

	case PartPectoralTop, PartPectoralBottom, PartVentralTop, PartVentralBottom:
		pos, y, angle, motion := sp.PectoralPos, sp.PectoralYTop, sp.PectoralAngleTop, s.Anim.Pectoral
		sway := math.Sin(pose.WaveTime+pectoralSwayPhase) * motion.Sway
		switch part {
		case PartPectoralBottom:
			y, angle = sp.PectoralYBottom, sp.PectoralAngleBottom
		case PartVentralTop:
			pos, y, angle, motion, sway = sp.VentralPos, sp.VentralYTop, sp.VentralAngleTop, s.Anim.Ventral, 0
		case PartVentralBottom:
			pos, y, angle, motion, sway = sp.VentralPos, sp.VentralYBottom, sp.VentralAngleBottom, s.Anim.Ventral, 0
		}
		if pos < 0 || pos >= len(segs) {
			return Outline{}, false
		}
		// Bottom fins rotate and sway opposite to the top ones.
		amp := motion.Rotation
		mirror := MirrorNone
		if part == PartPectoralBottom || part == PartVentralBottom {
			amp, sway, mirror = -amp, -sway, MirrorVertical
		}
		minX, _ := xRange(src)
		params.RotationAmplitude = amp
		params.RotationFrequency = motion.Frequency
		params.Pivot = vmath.Vec{X: minX}
		dst = Deform(dst, src, kind, &params)
		ApplyMirror(dst, mirror)
		seg := segs[pos]
		place(dst, sc, angle, seg.X, seg.Y+y*sc+sway)

	case PartDorsal:
		d := sp.DorsalPos
		if d < 0 || d >= len(segs) {
			return Outline{}, false
		}
		s.segs = s.segs[:0]
		for i := max(0, d-1); i <= min(len(segs)-1, d+2); i++ {
			s.segs = append(s.segs, Segment{X: segs[i].X, Y: segs[i].Y * s.Anim.DorsalDampening, W: segs[i].W})
		}
		params.Segments = s.segs
		dst = Deform(dst, src, kind, &params)
		place(dst, sc, 0, segs[d].X, segs[d].Y+sp.DorsalY*sc)

	default:
		return Outline{}, false
	}
	return Outline{Points: dst, Smooth: true}, true
}

// FallbackShapes asks Primary first and Secondary for anything Primary
// lacks.
type FallbackShapes struct {
	Primary, Secondary ShapeSource
}

func (s FallbackShapes) Outline(dst []vmath.Vec, part Part, pose *Pose) (Outline, bool) {
	if o, ok := s.Primary.Outline(dst, part, pose); ok {
		return o, true
	}
	return s.Secondary.Outline(dst, part, pose)
}

// NewShapeSource picks the shape source once: loaded outlines with a
// procedural fallback when any exist, otherwise procedural only.
func NewShapeSource(svg *SVGShapes, sp ShapeParams, anim config.AnimationConfig) ShapeSource {
	proc := NewProceduralShapes(sp, anim)
	if svg == nil || svg.Len() == 0 {
		return proc
	}
	return FallbackShapes{Primary: svg, Secondary: proc}
}
