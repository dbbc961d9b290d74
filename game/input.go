package game

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/vmath"
)

// keyBinding is a one-shot action on key press.
type keyBinding struct {
	key    int32
	action func(g *Game)
}

var keyBindings = []keyBinding{
	{rl.KeyF11, func(*Game) { rl.ToggleFullscreen() }},
	{rl.KeySpace, func(g *Game) { g.paused = !g.paused }},
	{rl.KeyComma, func(g *Game) { g.stepsPerUpdate = max(g.stepsPerUpdate-1, 1) }},
	{rl.KeyPeriod, func(g *Game) { g.stepsPerUpdate = min(g.stepsPerUpdate+1, maxStepsPerUpdate) }},
	{rl.KeyS, (*Game).toggleSumiE},
	{rl.KeyTab, func(g *Game) { g.paramsPanel.Toggle() }},
	{rl.KeyO, func(g *Game) { g.controlsPanel.Toggle() }},
	{rl.KeyF3, func(g *Game) { g.showPerf = !g.showPerf }},
	{rl.KeyF5, func(g *Game) { g.saveSnapshot(nil) }},
	{rl.KeyF12, (*Game).saveScreenshot},
	{rl.KeyEqual, func(g *Game) { g.camera.ZoomBy(1.25) }},
	{rl.KeyKpAdd, func(g *Game) { g.camera.ZoomBy(1.25) }},
	{rl.KeyMinus, func(g *Game) { g.camera.ZoomBy(0.8) }},
	{rl.KeyKpSubtract, func(g *Game) { g.camera.ZoomBy(0.8) }},
	{rl.KeyHome, func(g *Game) { g.camera.Reset() }},
}

// panKeys move the camera while held, in screen pixels per frame.
var panKeys = []struct {
	key    int32
	dx, dy float64
}{
	{rl.KeyRight, 1, 0},
	{rl.KeyLeft, -1, 0},
	{rl.KeyDown, 0, 1},
	{rl.KeyUp, 0, -1},
}

// handleInput processes keyboard and mouse input for one frame.
func (g *Game) handleInput() {
	g.handleResize()

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id.String(), "on", on)
			continue
		}
		for _, b := range keyBindings {
			if b.key == key {
				b.action(g)
			}
		}
	}

	g.handleCameraInput()
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == g.screenW && h == g.screenH {
		return
	}
	g.resize(w, h)
}

// resize applies a new screen size. Axes the config leaves at 0 follow the
// screen, so the pond grows and shrinks with the window.
func (g *Game) resize(w, h int32) {
	g.screenW, g.screenH = w, h

	pondW, pondH := g.flock.Bounds()
	newW, newH := pondW, pondH
	if g.cfg.Pond.Width == 0 {
		newW = float64(w)
	}
	if g.cfg.Pond.Height == 0 {
		newH = float64(h)
	}
	if newW != pondW || newH != pondH {
		g.flock.Resize(newW, newH, g.cfg.Pond.GridCellSize)
		if g.surface != nil {
			g.surface.rebuildBackdrop(newW, newH)
		}
	}

	g.camera.Resize(float64(w), float64(h), newW, newH)
	if g.surface != nil {
		g.surface.resize(int(w), int(h))
	}
	if g.paramsPanel != nil {
		g.paramsPanel.SetPosition(w-panelWidth-10, 10)
	}

	slog.Debug("resized", "screen_w", w, "screen_h", h, "pond_w", newW, "pond_h", newH)
}

// handleCameraInput pans with the arrow keys and zooms toward the cursor
// with the wheel. Pan speed is constant on screen.
func (g *Game) handleCameraInput() {
	step := panSpeed / g.camera.Zoom
	for _, p := range panKeys {
		if rl.IsKeyDown(p.key) {
			g.camera.Pan(p.dx*step, p.dy*step)
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(vmath.Vec{X: float64(m.X), Y: float64(m.Y)}, 1+float64(wheel)*wheelZoomStep)
	}
}

// handlePointer turns the mouse into the attraction target while the left
// button is held, and selects koi on right click. Input over the
// parameters panel belongs to raygui.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	if g.paramsPanel.Contains(m.X, m.Y) {
		g.target = nil
		return
	}
	pos := g.camera.ScreenToWorld(vmath.Vec{X: float64(m.X), Y: float64(m.Y)})

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.target = &pos
	} else {
		g.target = nil
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.selectAt(pos)
	}
}

// saveScreenshot writes the current software frame as a PNG.
func (g *Game) saveScreenshot() {
	dir := g.outputManager.Dir()
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("pond_%d.png", g.tick))
	if err := g.WritePNG(path); err != nil {
		slog.Error("failed to save screenshot", "error", err)
		return
	}
	slog.Info("screenshot saved", "path", path)
}
