// Package camera provides a 2D pan and zoom viewport over the pond.
package camera

import "github.com/pthm-cable/koipond/vmath"

// Camera controls the viewport into the pond. The pond has hard edges, so
// the view is kept inside it rather than wrapping.
type Camera struct {
	// Position is the camera center in pond coordinates
	X, Y float64

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Pond dimensions
	PondW, PondH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the pond with the smallest zoom that
// keeps the view inside it.
func New(viewportW, viewportH, pondW, pondH float64) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		PondW:     pondW,
		PondH:     pondH,
		MaxZoom:   4.0,
	}
	c.MinZoom = c.fitZoom()
	c.Reset()
	return c
}

// fitZoom is the zoom at which the visible area exactly covers the pond
// along its tighter axis.
func (c *Camera) fitZoom() float64 {
	if c.PondW <= 0 || c.PondH <= 0 {
		return 1
	}
	return max(c.ViewportW/c.PondW, c.ViewportH/c.PondH)
}

// Transform returns the scale and offset mapping pond to screen:
// screen = pond*scale + offset.
func (c *Camera) Transform() (scale float64, offset vmath.Vec) {
	return c.Zoom, vmath.Vec{
		X: c.ViewportW/2 - c.X*c.Zoom,
		Y: c.ViewportH/2 - c.Y*c.Zoom,
	}
}

// WorldToScreen converts pond coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p vmath.Vec) vmath.Vec {
	return vmath.Vec{
		X: c.ViewportW/2 + (p.X-c.X)*c.Zoom,
		Y: c.ViewportH/2 + (p.Y-c.Y)*c.Zoom,
	}
}

// ScreenToWorld converts screen coordinates to pond coordinates.
func (c *Camera) ScreenToWorld(s vmath.Vec) vmath.Vec {
	return vmath.Vec{
		X: c.X + (s.X-c.ViewportW/2)/c.Zoom,
		Y: c.Y + (s.Y-c.ViewportH/2)/c.Zoom,
	}
}

// IsVisible returns true if a circle at p with the given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p vmath.Vec, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return p.X+radius >= minX && p.X-radius <= maxX &&
		p.Y+radius >= minY && p.Y-radius <= maxY
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH, pondW, pondH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.PondW = pondW
	c.PondH = pondH
	c.MinZoom = c.fitZoom()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = vmath.Clamp(zoom, c.MinZoom, max(c.MinZoom, c.MaxZoom))
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the pond point under the screen
// position s fixed.
func (c *Camera) ZoomAt(s vmath.Vec, factor float64) {
	anchor := c.ScreenToWorld(s)
	c.Zoom = vmath.Clamp(c.Zoom*factor, c.MinZoom, max(c.MinZoom, c.MaxZoom))
	c.X = anchor.X - (s.X-c.ViewportW/2)/c.Zoom
	c.Y = anchor.Y - (s.Y-c.ViewportH/2)/c.Zoom
	c.clampCenter()
}

// Reset returns the camera to the pond center at minimum zoom.
func (c *Camera) Reset() {
	c.X = c.PondW / 2
	c.Y = c.PondH / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the pond-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the visible area inside the pond. An axis on which the
// view is wider than the pond is centred.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.PondW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.PondH)
}

func clampAxis(center, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return vmath.Clamp(center, half, size-half)
}
