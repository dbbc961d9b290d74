package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws themed panel pieces. Draw methods return the Y position
// of the next line.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section title.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws "label: value" with the value in the value column.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// barTrack draws the label and empty track of a bar and returns the
// track's x and width. The value text goes right of the track.
func (r *Renderer) barTrack(x, y int32, label string, width int32) (int32, int32) {
	t := r.Theme
	bx, bw := x+t.LabelWidth, width-t.LabelWidth-50
	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(bx, y+2, bw, t.BarHeight, t.BarBg)
	return bx, bw
}

// DrawBar draws a bar filled from the left by value's place in rng.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, rng FieldRange, format string, width int32) int32 {
	if format == "" {
		format = "%.2f"
	}
	t := r.Theme
	bx, bw := r.barTrack(x, y, label, width)
	rl.DrawRectangle(bx, y+2, int32(float32(bw)*rng.unit(value)), t.BarHeight, t.BarFill)
	rl.DrawText(fmt.Sprintf(format, value), bx+bw+5, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight + 2
}

// DrawCenteredBar draws a bar filled from the middle of rng towards value,
// coloured by side.
func (r *Renderer) DrawCenteredBar(x, y int32, label string, value float32, rng FieldRange, width int32) int32 {
	t := r.Theme
	bx, bw := r.barTrack(x, y, label, width)
	mid := bx + bw/2
	rl.DrawLine(mid, y+2, mid, y+2+t.BarHeight, rl.Color{R: 80, G: 80, B: 80, A: 255})

	pos := bx + int32(float32(bw)*rng.unit(value))
	if pos >= mid {
		rl.DrawRectangle(mid, y+2, pos-mid, t.BarHeight, t.BarFillPositive)
	} else {
		rl.DrawRectangle(pos, y+2, mid-pos, t.BarHeight, t.BarFillNegative)
	}
	rl.DrawText(fmt.Sprintf("%+.2f", value), bx+bw+5, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight + 2
}

// DrawSlider draws a labelled raygui slider with its value to the right and
// returns the (possibly changed) value and the new Y position.
func (r *Renderer) DrawSlider(x, y int32, label, format string, value, minVal, maxVal float32, width int32) (float32, int32) {
	t := r.Theme
	rl.DrawText(label, x, y, t.FontSize, t.LabelColor)
	y += t.LineHeight

	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width - 60), Height: float32(t.BarHeight + 4)}
	value = gui.SliderBar(bounds, "", "", value, minVal, maxVal)
	rl.DrawText(fmt.Sprintf(format, value), x+width-55, y+2, t.FontSize, t.ValueColor)

	return value, y + t.BarHeight + 10
}

// DrawButton draws a raygui button and reports whether it was pressed.
func (r *Renderer) DrawButton(x, y, width int32, text string) (bool, int32) {
	pressed := gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: 22}, text)
	return pressed, y + 28
}

// DrawField draws one field of data per its descriptor.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	var value float32
	if fd.Getter != nil {
		value = fd.Getter(data)
	}
	switch fd.Widget {
	case WidgetBar:
		return r.DrawBar(x, y, fd.Label, value, fd.Range, fd.Format, width)
	case WidgetCenteredBar:
		return r.DrawCenteredBar(x, y, fd.Label, value, fd.Range, width)
	default:
		return r.DrawLabelValue(x, y, fd.Label, fmt.Sprintf(fd.Format, value))
	}
}

// DrawSection draws a section's title and its visible fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4
}
