// Pond water preview tool - interactive backdrop tuning with sliders and a
// swimming koi for scale.
//
// Usage: go run ./cmd/waterpreview
package main

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/renderer"
	"github.com/pthm-cable/koipond/traits"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// previewState is everything the sliders edit.
type previewState struct {
	water   config.WaterConfig
	seed    int64
	variety traits.Variety
	sumiE   bool
}

func main() {
	if err := config.Init(""); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Pond Water Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := previewState{water: cfg.Rendering.Water, seed: 12345, variety: traits.Kohaku}
	st := defaults

	koi := renderer.LoadKoiRenderer(cfg)
	presenter := renderer.NewFramePresenter()
	defer presenter.Unload()

	frame := image.NewRGBA(image.Rect(0, 0, previewSize, previewSize))
	canvas := renderer.NewRasterCanvas(frame)

	var water *renderer.Water
	var pattern traits.Pattern
	var waveTime float64
	animating := true
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			water = renderer.NewWater(st.seed, st.water)
			pattern = traits.GeneratePattern(st.variety, rand.New(rand.NewSource(st.seed)))
			koi.SetSumiE(st.sumiE)
			needsRegen = false
		}
		if animating {
			waveTime += float64(rl.GetFrameTime()) * cfg.Animation.WaveSpeed * 60
		}

		renderPreview(canvas, water, koi, &pattern, waveTime, cfg.Rendering.BaseScale*3)
		presenter.Upload(frame)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		presenter.Draw(previewSize, previewSize)
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Variety: %s  Spots: %d", st.variety, len(pattern.Spots)), 15, previewSize+15, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Wave time: %.1f", waveTime), 15, previewSize+35, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Pond Water Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		if v, ok := slider(panelX, &panelY, "Scale (noise frequency)", "%.4f", float32(st.water.Scale), 0.001, 0.02); ok {
			st.water.Scale = float64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Octaves (detail level)", "%.0f", float32(st.water.Octaves), 1, 6); ok && int(v) != st.water.Octaves {
			st.water.Octaves = int(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Contrast", "%.2f", float32(st.water.Contrast), 0.05, 1.0); ok {
			st.water.Contrast = float64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Hue (degrees)", "%.0f", float32(st.water.Hue), 0, 360); ok {
			st.water.Hue = float64(v)
			needsRegen = true
		}

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		if v, ok := slider(panelX, &panelY, "Seed", "%.0f", float32(st.seed), 0, 99999); ok && int64(v) != st.seed {
			st.seed = int64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Variety", "%.0f", float32(st.variety), 0, float32(traits.NumVarieties-1)); ok && traits.Variety(v) != st.variety {
			st.variety = traits.Variety(v)
			needsRegen = true
		}

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(st.sumiE, "Solid", "Sumi-e")) {
			st.sumiE = !st.sumiE
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			st.seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			st = defaults
			waveTime = 0
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		snippet, err := waterYAML(st.water)
		if err != nil {
			snippet = err.Error()
		}
		rl.DrawText(snippet, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider bar and advances y. ok reports a change.
func slider(x float32, y *float32, label, format string, value, lo, hi float32) (float32, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v, v != value
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// renderPreview paints the water and one koi swimming right at the centre.
func renderPreview(c *renderer.RasterCanvas, water *renderer.Water, koi *renderer.KoiRenderer, p *traits.Pattern, waveTime, sizeScale float64) {
	b := c.Image().Rect
	c.Reset()
	c.DrawImage(water.Render(b.Dx(), b.Dy()))
	koi.Draw(c, &renderer.DrawParams{
		X:         float64(b.Dx()) / 2,
		Y:         float64(b.Dy()) / 2,
		Color:     p.Base,
		Spots:     p.Spots,
		Seed:      int(p.Variety),
		WaveTime:  waveTime,
		SizeScale: sizeScale,
	})
}

// waterYAML renders w as the rendering.water section of a config file.
func waterYAML(w config.WaterConfig) (string, error) {
	doc := map[string]map[string]config.WaterConfig{
		"rendering": {"water": w},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal water config: %w", err)
	}
	return string(out), nil
}
