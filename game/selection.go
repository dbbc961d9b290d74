package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/vmath"
)

// selectAt selects the koi nearest pos, or clears the selection when none
// is within reach.
func (g *Game) selectAt(pos vmath.Vec) {
	radius := pickRadius * g.cfg.Rendering.BaseScale
	if e, ok := g.flock.Pick(pos, radius); ok {
		g.selectedEntity = e
		g.hasSelection = true
		return
	}
	g.hasSelection = false
}

// selectedKoi returns the selected koi, dropping a stale selection.
func (g *Game) selectedKoi() *components.Koi {
	if !g.hasSelection {
		return nil
	}
	k := g.flock.Koi(g.selectedEntity)
	if k == nil {
		g.hasSelection = false
	}
	return k
}

// selectedAppearance returns the selected koi's appearance, or nil.
func (g *Game) selectedAppearance() *components.Appearance {
	if !g.hasSelection {
		return nil
	}
	return g.flock.Appearance(g.selectedEntity)
}

// drawSelectionIndicator rings the selected koi.
func (g *Game) drawSelectionIndicator() {
	k := g.selectedKoi()
	if k == nil {
		return
	}
	p := g.camera.WorldToScreen(k.Pos)
	r := float32(pickRadius * g.cfg.Rendering.BaseScale * k.SizeMultiplier * g.camera.Zoom)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), r, rl.Yellow)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), r+2, rl.Fade(rl.Yellow, 0.4))
}
