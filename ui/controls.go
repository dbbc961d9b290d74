package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/config"
)

// ControlsPanel lists the overlays by category with their toggle keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// height is the title plus one line per category header and per overlay.
func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	cats := overlays.Categories()
	lines := int32(len(cats) + len(overlays.All()))
	return t.Padding*2 + t.LineHeight + 4 + lines*t.LineHeight + int32(len(cats))*4
}

// Draw renders the panel and returns the Y position below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}
	r := c.renderer
	t := r.Theme
	h := c.height(overlays)
	r.DrawPanel(c.x, c.y, c.width, h)

	x := c.x + t.Padding
	y := c.y + t.Padding
	rl.DrawText("Overlays", x, y, 16, rl.White)
	y += t.LineHeight + 4

	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(x, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), c.width-t.Padding*2)
			y += t.LineHeight
		}
		y += 4
	}
	return c.y + h
}

// drawToggle draws a status square, the overlay name, and its key on the
// right.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	t := c.renderer.Theme
	status, name := t.BarBg, t.LabelColor
	if enabled {
		status, name = t.BarFillPositive, rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, status)
	rl.DrawText(desc.Name, x+14, y, t.FontSize, name)

	if desc.KeyLabel != "" {
		key := fmt.Sprintf("[%s]", desc.KeyLabel)
		rl.DrawText(key, x+width-rl.MeasureText(key, t.FontSize), y, t.FontSize, rl.Gray)
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "behavior":
		return "Behaviour"
	case "perception":
		return "Perception"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// Slider describes one tunable flocking parameter.
type Slider struct {
	Label    string
	Format   string
	Min, Max float64
	Field    func(p *config.FlockingConfig) *float64
}

// FlockingSliders lists the parameters exposed in the parameters panel.
func FlockingSliders() []Slider {
	return []Slider{
		{"Max speed", "%.2f", 0.5, 6, func(p *config.FlockingConfig) *float64 { return &p.MaxSpeed }},
		{"Max force", "%.3f", 0.01, 0.5, func(p *config.FlockingConfig) *float64 { return &p.MaxForce }},
		{"Alignment", "%.2f", 0, 3, func(p *config.FlockingConfig) *float64 { return &p.AlignmentWeight }},
		{"Cohesion", "%.2f", 0, 3, func(p *config.FlockingConfig) *float64 { return &p.CohesionWeight }},
		{"Separation", "%.2f", 0, 3, func(p *config.FlockingConfig) *float64 { return &p.SeparationWeight }},
		{"Attraction", "%.2f", 0, 3, func(p *config.FlockingConfig) *float64 { return &p.AttractionWeight }},
	}
}

// ParamsResult reports what the user changed in one frame.
type ParamsResult struct {
	Changed bool // a slider moved
	Reset   bool // reset to the loaded configuration
	SumiE   bool // sumi-e toggled
}

// ParamsPanel renders raygui sliders over the live flocking parameters.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	sliders  []Slider
}

// NewParamsPanel creates a new parameters panel.
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		sliders:  FlockingSliders(),
	}
}

// SetPosition updates the panel position.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool {
	return p.visible
}

// Contains reports whether a screen point is over the panel, so pointer
// input there is not treated as pond input.
func (p *ParamsPanel) Contains(sx, sy float32) bool {
	if !p.visible {
		return false
	}
	return sx >= float32(p.x) && sx <= float32(p.x+p.width) &&
		sy >= float32(p.y) && sy <= float32(p.y+p.height())
}

// Bottom returns the Y position below the panel, or the panel's Y when
// hidden.
func (p *ParamsPanel) Bottom() int32 {
	if !p.visible {
		return p.y
	}
	return p.y + p.height()
}

func (p *ParamsPanel) height() int32 {
	t := p.renderer.Theme
	perSlider := t.LineHeight + t.BarHeight + 10
	return t.Padding*2 + t.LineHeight + 4 + int32(len(p.sliders))*perSlider + 2*28
}

// Draw renders the sliders and applies changes to params in place.
func (p *ParamsPanel) Draw(params *config.FlockingConfig, sumiE bool) ParamsResult {
	var res ParamsResult
	if !p.visible {
		return res
	}

	r := p.renderer
	padding := r.Theme.Padding
	contentWidth := p.width - padding*2

	r.DrawPanel(p.x, p.y, p.width, p.height())

	x := p.x + padding
	y := p.y + padding
	rl.DrawText("Flocking", x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, s := range p.sliders {
		field := s.Field(params)
		var v float32
		v, y = r.DrawSlider(x, y, s.Label, s.Format, float32(*field), float32(s.Min), float32(s.Max), contentWidth)
		if v != float32(*field) {
			*field = ClampSlider(s, float64(v))
			res.Changed = true
		}
	}

	label := "Sumi-e: off"
	if sumiE {
		label = "Sumi-e: on"
	}
	var pressed bool
	if pressed, y = r.DrawButton(x, y, contentWidth, label); pressed {
		res.SumiE = true
	}
	if pressed, _ = r.DrawButton(x, y, contentWidth, "Reset parameters"); pressed {
		res.Reset = true
	}
	return res
}

// ClampSlider limits v to the slider's range.
func ClampSlider(s Slider, v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}
