package renderer

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/koipond/traits"
)

// HSBA converts a hue (degrees), saturation and brightness (0-100) plus an
// alpha in [0,1] to a straight-alpha colour. Saturation and brightness are
// clamped to [0,100]; hue wraps.
func HSBA(c traits.HSB, alpha float64) color.NRGBA {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, clamp100(c.S)/100, clamp100(c.B)/100).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(alpha)}
}

// shade offsets saturation and brightness.
func shade(c traits.HSB, dSat, dBri float64) traits.HSB {
	return traits.HSB{H: c.H, S: c.S + dSat, B: c.B + dBri}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func alpha8(a float64) uint8 {
	if a <= 0 || math.IsNaN(a) {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(a*255 + 0.5)
}
