// Variety contact sheet - renders one koi of every variety to a labelled PNG.
//
// Usage: go run ./cmd/varietysheet -out varieties.png
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/renderer"
	"github.com/pthm-cable/koipond/traits"
)

const (
	columns     = 6
	labelHeight = 18
)

var labelColor = colornames.Whitesmoke

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	out := flag.String("out", "varieties.png", "Output PNG path")
	cell := flag.Int("cell", 160, "Cell size in pixels")
	seed := flag.Int64("seed", 1, "Pattern seed")
	scale := flag.Float64("scale", 1.4, "Koi size multiplier")
	shapesDir := flag.String("shapes", "", "Directory of SVG body part outlines (overrides config)")
	texturesDir := flag.String("textures", "", "Directory of brush texture PNGs (overrides config)")
	sumiE := flag.Bool("sumi-e", false, "Soft-edge layered drawing")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *shapesDir != "" {
		cfg.Rendering.ShapesDir = *shapesDir
	}
	if *texturesDir != "" {
		cfg.Rendering.TexturesDir = *texturesDir
	}

	img, err := renderSheet(cfg, *cell, *seed, *scale, *sumiE)
	if err != nil {
		slog.Error("failed to render sheet", "error", err)
		os.Exit(1)
	}
	if err := writePNG(*out, img); err != nil {
		slog.Error("failed to write sheet", "error", err)
		os.Exit(1)
	}
	slog.Info("sheet written", "path", *out, "varieties", int(traits.NumVarieties))
}

// renderSheet lays the varieties out in a grid, each koi facing right over
// the pond water with its name underneath.
func renderSheet(cfg *config.Config, cell int, seed int64, scale float64, sumiE bool) (*image.RGBA, error) {
	n := int(traits.NumVarieties)
	rows := (n + columns - 1) / columns
	w, h := columns*cell, rows*(cell+labelHeight)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	canvas := renderer.NewRasterCanvas(img)
	canvas.DrawImage(renderer.NewWater(seed, cfg.Rendering.Water).Render(w, h))

	koi := renderer.LoadKoiRenderer(cfg)
	koi.SetSumiE(sumiE)

	face, err := labelFace()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		v := traits.Variety(i)
		p := traits.GeneratePattern(v, rng)

		col, row := i%columns, i/columns
		cx := float64(col*cell) + float64(cell)/2
		cy := float64(row*(cell+labelHeight)) + float64(cell)/2

		koi.Draw(canvas, &renderer.DrawParams{
			X:         cx,
			Y:         cy,
			Angle:     0,
			Color:     p.Base,
			Spots:     p.Spots,
			Seed:      i,
			WaveTime:  float64(i) * math.Pi / 4,
			SizeScale: cfg.Rendering.BaseScale * scale,
		})
		canvas.Reset()

		drawLabel(img, face, col*cell+cell/2, row*(cell+labelHeight)+cell+labelHeight/2, v.String())
	}
	return img, nil
}

func labelFace() (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

// drawLabel centres text horizontally on x with its body around y.
func drawLabel(dst *image.RGBA, face font.Face, x, y int, text string) {
	width := font.MeasureString(face, text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + ascent/3),
		},
	}
	d.DrawString(text)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
