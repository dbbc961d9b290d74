package game

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/renderer"
	"github.com/pthm-cable/koipond/telemetry"
	"github.com/pthm-cable/koipond/ui"
	"github.com/pthm-cable/koipond/vmath"
)

// Pond rim colour, visible when the view is wider than the pond.
var rimColor = color.RGBA{R: 12, G: 18, B: 20, A: 255}

// visibleReach is how far a koi's outline extends from its centre, in body
// units before scaling.
const visibleReach = 30.0

// view is the camera state a framed backdrop was built for.
type view struct {
	scale  float64
	offset vmath.Vec
	w, h   int
}

// surface is the software frame pipeline: the water backdrop, the raster
// canvas koi are drawn onto, and the GPU presenter in windowed mode.
type surface struct {
	water    *renderer.Water
	backdrop *image.RGBA // water at pond resolution
	framed   *image.RGBA // backdrop under the current camera
	framedAt view
	frame    *image.RGBA
	canvas   *renderer.RasterCanvas
	koi      *renderer.KoiRenderer

	presenter *renderer.FramePresenter // nil when headless
	params    renderer.DrawParams
}

// ensureSurface builds the frame pipeline on first use.
func (g *Game) ensureSurface() *surface {
	if g.surface != nil {
		return g.surface
	}
	pondW, pondH := g.flock.Bounds()
	s := &surface{
		water: renderer.NewWater(g.seed, g.cfg.Rendering.Water),
		koi:   renderer.LoadKoiRenderer(g.cfg),
	}
	s.backdrop = s.water.Render(int(pondW), int(pondH))
	s.resize(int(g.screenW), int(g.screenH))
	if !g.headless {
		s.presenter = renderer.NewFramePresenter()
	}
	g.surface = s
	return s
}

// resize reallocates the frame for a new screen size.
func (s *surface) resize(w, h int) {
	s.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	s.canvas = renderer.NewRasterCanvas(s.frame)
	s.framed = nil
}

// rebuildBackdrop re-renders the water after the pond changed size.
func (s *surface) rebuildBackdrop(pondW, pondH float64) {
	s.backdrop = s.water.Render(int(pondW), int(pondH))
	s.framed = nil
}

// frameBackdrop returns the backdrop as seen through the camera, cached
// until the camera moves.
func (s *surface) frameBackdrop(scale float64, offset vmath.Vec, pondW, pondH float64) *image.RGBA {
	v := view{scale: scale, offset: offset, w: s.frame.Rect.Dx(), h: s.frame.Rect.Dy()}
	if s.framed != nil && s.framedAt == v {
		return s.framed
	}

	s.framed = image.NewRGBA(s.frame.Rect)
	c := renderer.NewRasterCanvas(s.framed)
	c.Fill(rimColor)
	c.Translate(offset.X, offset.Y)
	c.Scale(scale)
	c.Stamp(s.backdrop, pondW/2, pondH/2, pondW, pondH, renderer.BlendNormal)
	s.framedAt = v
	return s.framed
}

func (s *surface) unload() {
	if s.presenter != nil {
		s.presenter.Unload()
	}
	if t := s.koi.Textures(); t != nil {
		t.Cache().Clear()
	}
}

// renderFrame draws the pond and every visible koi into the software frame.
func (g *Game) renderFrame() *image.RGBA {
	s := g.ensureSurface()
	scale, offset := g.camera.Transform()
	pondW, pondH := g.flock.Bounds()

	g.perfCollector.StartPhase(telemetry.PhaseWater)
	s.canvas.Reset()
	s.canvas.DrawImage(s.frameBackdrop(scale, offset, pondW, pondH))

	g.perfCollector.StartPhase(telemetry.PhaseRender)
	elapsed := g.elapsed()
	baseScale := g.cfg.Rendering.BaseScale

	s.canvas.Push()
	s.canvas.Translate(offset.X, offset.Y)
	s.canvas.Scale(scale)
	g.flock.Each(func(_ ecs.Entity, k *components.Koi, a *components.Appearance) {
		if !g.camera.IsVisible(k.Pos, visibleReach*baseScale*k.SizeMultiplier*k.LengthMultiplier) {
			return
		}
		s.params = renderer.KoiDrawParams(k, a, elapsed, &g.cfg.Animation, baseScale)
		s.koi.Draw(s.canvas, &s.params)
	})
	s.canvas.Pop()

	return s.frame
}

// Draw renders the pond, overlays and UI to the raylib window.
func (g *Game) Draw() {
	frame := g.renderFrame()
	s := g.surface
	s.presenter.Upload(frame)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	s.presenter.Draw(float32(g.screenW), float32(g.screenH))
	g.drawActiveOverlays()
	g.drawSelectionIndicator()
	g.drawUI()

	rl.EndDrawing()

	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	escaping, independent := 0, 0
	if g.lastReport != nil {
		escaping, independent = g.lastReport.Escaping, g.lastReport.Independent
	}

	g.hud.Draw(ui.HUDData{
		Title:       "Koi Pond",
		Population:  g.flock.Len(),
		Escaping:    escaping,
		Independent: independent,
		Tick:        g.tick,
		Speed:       g.stepsPerUpdate,
		FPS:         int32(rl.GetFPS()),
		Paused:      g.paused,
		SumiE:       g.ensureSurface().koi.SumiE(),
		Attracting:  g.target != nil,
		Zoom:        g.camera.Zoom,
	})

	y := int32(100)
	if g.showPerf {
		g.perfPanel.SetPosition(10, y)
		g.perfPanel.Draw(g.perfCollector.Stats())
		y += g.perfPanel.Height() + 10
	}
	if g.hasSelection {
		if k := g.flock.Koi(g.selectedEntity); k != nil {
			g.inspector.SetPosition(10, y)
			g.inspector.Draw(ui.InspectorData{Koi: k, Appearance: g.selectedAppearance(), Now: g.now()})
		}
	}

	g.drawParamsPanel()
	g.controlsPanel.SetPosition(g.screenW-panelWidth-10, g.paramsPanel.Bottom()+10)
	g.controlsPanel.Draw(g.overlays)

	g.hud.DrawControls(g.screenW, g.screenH, controlsLegend)
}

// drawParamsPanel draws the flocking sliders and applies their result.
func (g *Game) drawParamsPanel() {
	s := g.ensureSurface()
	res := g.paramsPanel.Draw(&g.params, s.koi.SumiE())
	if res.SumiE {
		g.toggleSumiE()
	}
	if res.Reset {
		g.params = g.cfg.Flocking
	}
}

// toggleSumiE switches soft-edge layering.
func (g *Game) toggleSumiE() {
	s := g.ensureSurface()
	s.koi.SetSumiE(!s.koi.SumiE())
}

// WritePNG renders the current frame and writes it to path.
func (g *Game) WritePNG(path string) error {
	frame := g.renderFrame()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
