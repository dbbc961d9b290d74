package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/ui"
	"github.com/pthm-cable/koipond/vmath"
)

// Overlay colours by behaviour mode.
var (
	escapingColor    = rl.Color{R: 255, G: 96, B: 64, A: 220}
	independentColor = rl.Color{R: 96, G: 200, B: 255, A: 220}
	overlayColor     = rl.Color{R: 255, G: 255, B: 255, A: 140}
)

// Overlay line lengths in screen pixels.
const (
	headingLength  = 40.0
	velocityLength = 12.0 // per unit of speed
	modeRingRadius = 14.0
)

// drawActiveOverlays renders all currently enabled overlays in screen space.
func (g *Game) drawActiveOverlays() {
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayModes:
			g.drawModes()
		case ui.OverlayEscapes:
			g.drawEscapeHeadings()
		case ui.OverlayPerception:
			g.drawPerception()
		case ui.OverlayNeighbors:
			g.drawNeighbors()
		case ui.OverlayAttraction:
			g.drawAttraction()
		case ui.OverlayVelocity:
			g.drawVelocities()
		case ui.OverlaySpatialGrid:
			g.drawSpatialGrid()
		}
	}
}

func (g *Game) screen(p vmath.Vec) rl.Vector2 {
	s := g.camera.WorldToScreen(p)
	return rl.Vector2{X: float32(s.X), Y: float32(s.Y)}
}

// drawModes rings escaping and independent koi.
func (g *Game) drawModes() {
	g.flock.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
		var c rl.Color
		switch k.Behavior.Mode() {
		case components.ModeEscaping:
			c = escapingColor
		case components.ModeIndependent:
			c = independentColor
		default:
			return
		}
		p := g.screen(k.Pos)
		rl.DrawCircleLines(int32(p.X), int32(p.Y), modeRingRadius*float32(g.camera.Zoom), c)
	})
}

// drawEscapeHeadings draws the fixed heading of each escaping koi.
func (g *Game) drawEscapeHeadings() {
	now := g.now()
	g.flock.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
		heading, ok := k.Behavior.EscapeHeading(now)
		if !ok {
			return
		}
		p := g.screen(k.Pos)
		d := vmath.FromAngle(heading, headingLength)
		end := rl.Vector2{X: p.X + float32(d.X), Y: p.Y + float32(d.Y)}
		rl.DrawLineEx(p, end, 2, escapingColor)
	})
}

// drawPerception circles the selected koi's perception radius.
func (g *Game) drawPerception() {
	k := g.selectedKoi()
	if k == nil {
		return
	}
	p := g.screen(k.Pos)
	r := float32(k.PerceptionRadius * g.camera.Zoom)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), r, overlayColor)
	rl.DrawText(fmt.Sprintf("%d in range", k.Neighbors), int32(p.X+r)+4, int32(p.Y), 12, overlayColor)
}

// drawNeighbors links the selected koi to the neighbours it steers by.
func (g *Game) drawNeighbors() {
	if g.selectedKoi() == nil {
		return
	}
	k := g.flock.Koi(g.selectedEntity)
	from := g.screen(k.Pos)
	for _, n := range g.flock.Neighbors(g.selectedEntity) {
		rl.DrawLineV(from, g.screen(n.Koi.Pos), overlayColor)
	}
}

// drawAttraction shows the pointer attraction radius while attracting.
func (g *Game) drawAttraction() {
	if g.target == nil {
		return
	}
	p := g.screen(*g.target)
	r := float32(g.params.AttractionRadius * g.camera.Zoom)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), r, rl.Fade(rl.Gold, 0.6))
	rl.DrawCircleV(p, 3, rl.Gold)
}

// drawVelocities draws each koi's velocity vector.
func (g *Game) drawVelocities() {
	scale := velocityLength * g.camera.Zoom
	g.flock.Each(func(_ ecs.Entity, k *components.Koi, _ *components.Appearance) {
		p := g.screen(k.Pos)
		end := rl.Vector2{
			X: p.X + float32(k.Vel.X*scale),
			Y: p.Y + float32(k.Vel.Y*scale),
		}
		rl.DrawLineV(p, end, rl.Lime)
	})
}

// drawSpatialGrid draws the neighbour search grid over the pond.
func (g *Game) drawSpatialGrid() {
	w, h := g.flock.Bounds()
	cell := g.flock.CellSize()
	c := rl.Fade(rl.SkyBlue, 0.25)
	for x := 0.0; x <= w; x += cell {
		rl.DrawLineV(g.screen(vmath.Vec{X: x}), g.screen(vmath.Vec{X: x, Y: h}), c)
	}
	for y := 0.0; y <= h; y += cell {
		rl.DrawLineV(g.screen(vmath.Vec{Y: y}), g.screen(vmath.Vec{X: w, Y: y}), c)
	}
}
