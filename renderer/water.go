package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/koipond/config"
)

// Water renders the pond backdrop from layered simplex noise. The image is
// regenerated only when the requested size changes.
type Water struct {
	noise opensimplex.Noise
	cfg   config.WaterConfig
	img   *image.RGBA
}

// NewWater creates a backdrop generator.
func NewWater(seed int64, cfg config.WaterConfig) *Water {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 0.004
	}
	return &Water{
		noise: opensimplex.NewNormalized(seed),
		cfg:   cfg,
	}
}

// Render returns the backdrop at w×h.
func (wt *Water) Render(w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	if wt.img != nil && wt.img.Rect.Dx() == w && wt.img.Rect.Dy() == h {
		return wt.img
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := wt.fbm(float64(x)*wt.cfg.Scale, float64(y)*wt.cfg.Scale)
			img.SetRGBA(x, y, wt.shade(n))
		}
	}
	wt.img = img
	return img
}

// fbm sums octaves of noise, normalised back to [0,1).
func (wt *Water) fbm(x, y float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < wt.cfg.Octaves; i++ {
		sum += wt.noise.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

// shade maps a noise value to a deep teal with contrast-scaled brightness.
func (wt *Water) shade(n float64) color.RGBA {
	v := 0.32 + (n-0.5)*wt.cfg.Contrast
	v = math.Min(1, math.Max(0, v))
	r, g, b := colorful.Hsv(wt.cfg.Hue, 0.45, v).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
