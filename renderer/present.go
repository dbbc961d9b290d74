package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FramePresenter uploads software-rendered frames to a GPU texture and draws
// them to the window.
type FramePresenter struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewFramePresenter creates a presenter. Nothing is allocated on the GPU
// until Init.
func NewFramePresenter() *FramePresenter {
	return &FramePresenter{}
}

// Init creates the frame texture (must be called after the raylib window is created).
func (p *FramePresenter) Init(w, h int) {
	if p.initialized {
		return
	}
	p.texW, p.texH = w, h

	img := rl.GenImageColor(w, h, rl.Black)
	p.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(p.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	p.pixels = make([]color.RGBA, w*h)
	p.initialized = true
}

// Upload copies frame into the texture, recreating it when the size changed.
func (p *FramePresenter) Upload(frame *image.RGBA) {
	b := frame.Rect
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	if p.initialized && (w != p.texW || h != p.texH) {
		p.Unload()
	}
	if !p.initialized {
		p.Init(w, h)
	}

	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		out := p.pixels[y*w : (y+1)*w]
		for x := range out {
			out[x] = color.RGBA{R: row[x*4], G: row[x*4+1], B: row[x*4+2], A: 255}
		}
	}
	rl.UpdateTexture(p.tex, p.pixels)
}

// Draw renders the last uploaded frame stretched over screenW×screenH.
func (p *FramePresenter) Draw(screenW, screenH float32) {
	if !p.initialized {
		return
	}
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(p.texW), Height: float32(p.texH)}
	dstRect := rl.Rectangle{X: 0, Y: 0, Width: screenW, Height: screenH}
	rl.DrawTexturePro(p.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (p *FramePresenter) Unload() {
	if !p.initialized {
		return
	}
	rl.UnloadTexture(p.tex)
	p.initialized = false
}
