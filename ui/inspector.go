package ui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/renderer"
	"github.com/pthm-cable/koipond/traits"
)

// InspectorData holds all the data needed to render the inspector panel.
type InspectorData struct {
	Koi        *components.Koi
	Appearance *components.Appearance
	Now        time.Time
}

// Inspector renders the selected koi's panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: KoiSections(),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// KoiSections converts the koi field metadata into UI sections, one per
// group. Data passed to the getters must be a *components.Koi.
func KoiSections() []SectionDescriptor {
	descs := components.KoiFieldDescriptors()
	var sections []SectionDescriptor
	for _, group := range components.KoiGroups() {
		sd := SectionDescriptor{ID: group, Title: sectionTitle(group)}
		for _, d := range descs {
			if d.Group != group {
				continue
			}
			sd.Fields = append(sd.Fields, koiField(d))
		}
		sections = append(sections, sd)
	}
	return sections
}

func koiField(d components.FieldDescriptor) FieldDescriptor {
	id := d.ID
	fd := FieldDescriptor{
		ID:     id,
		Label:  d.Label,
		Format: d.Format,
		Range:  FieldRange{Min: d.Min, Max: d.Max},
		Widget: WidgetText,
		Getter: func(data any) float32 {
			k, ok := data.(*components.Koi)
			if !ok || k == nil {
				return 0
			}
			return components.GetKoiValue(k, id)
		},
	}
	switch {
	case d.IsCentered:
		fd.Widget = WidgetCenteredBar
	case d.IsBar:
		fd.Widget = WidgetBar
	}
	if !d.ShowWhenZero {
		getter := fd.Getter
		fd.Visible = func(data any) bool { return getter(data) != 0 }
	}
	return fd
}

func sectionTitle(group string) string {
	if group == "" {
		return ""
	}
	return strings.ToUpper(group[:1]) + group[1:]
}

// Draw renders the inspector panel for the given data and returns the Y
// position below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	if data.Koi == nil {
		return ins.y
	}
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	r.DrawPanel(ins.x, ins.y, ins.width, ins.height())

	y := ins.y + padding
	y = ins.drawHeader(ins.x+padding, y, data)
	y = ins.drawMode(ins.x+padding, y, data)
	y += 4

	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, data.Koi, contentWidth)
	}

	if data.Appearance != nil {
		y = ins.drawSpots(ins.x+padding, y, data.Appearance.Pattern)
	}
	return y
}

// height estimates the panel height from the section layout.
func (ins *Inspector) height() int32 {
	t := ins.renderer.Theme
	rows := int32(6) // header, mode, timers, spots header and swatches
	for _, sd := range ins.sections {
		rows += int32(len(sd.Fields)) + 1
	}
	return rows*(t.LineHeight+2) + t.Padding*2 + 20
}

func (ins *Inspector) drawHeader(x, y int32, data InspectorData) int32 {
	r := ins.renderer
	name := fmt.Sprintf("Koi #%d", data.Koi.ID)
	if data.Appearance != nil {
		p := data.Appearance.Pattern
		rl.DrawRectangle(x, y+2, 14, 14, toRL(p.Base))
		rl.DrawRectangleLines(x, y+2, 14, 14, r.Theme.PanelBorder)
		name = fmt.Sprintf("%s #%d", p.Variety, data.Koi.ID)
		x += 20
	}
	rl.DrawText(name, x, y, 18, rl.White)
	return y + r.Theme.LineHeight + 6
}

func (ins *Inspector) drawMode(x, y int32, data InspectorData) int32 {
	r := ins.renderer
	b := &data.Koi.Behavior

	text := b.Mode().String()
	color := r.Theme.ValueColor
	switch s := b.State.(type) {
	case components.Escaping:
		text = fmt.Sprintf("escaping (%s) %.1fs", s.Cause, s.Until.Sub(data.Now).Seconds())
		color = rl.Color{R: 230, G: 110, B: 90, A: 255}
	case components.Independent:
		text = fmt.Sprintf("independent %.1fs", s.Until.Sub(data.Now).Seconds())
		color = rl.Color{R: 120, G: 190, B: 230, A: 255}
	}
	rl.DrawText("Mode:", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(text, x+r.Theme.LabelWidth, y, r.Theme.FontSize, color)
	y += r.Theme.LineHeight

	if cd := b.CooldownUntil.Sub(data.Now); cd > 0 {
		y = r.DrawLabelValue(x, y, "Cooldown", fmt.Sprintf("%.1fs", cd.Seconds()))
	}
	if next := b.NextCheck.Sub(data.Now); next > 0 && b.Mode() == components.ModeNormal {
		y = r.DrawLabelValue(x, y, "Solo roll", fmt.Sprintf("%.1fs", next.Seconds()))
	}
	return y
}

func (ins *Inspector) drawSpots(x, y int32, p traits.Pattern) int32 {
	r := ins.renderer
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Spots (%d)", len(p.Spots)))
	const size, gap = 12, 4
	maxPerRow := (ins.width - r.Theme.Padding*2) / (size + gap)
	for i, s := range p.Spots {
		col := int32(i) % maxPerRow
		row := int32(i) / maxPerRow
		rl.DrawRectangle(x+col*(size+gap), y+row*(size+gap), size, size, toRL(s.Color))
	}
	rows := (int32(len(p.Spots)) + maxPerRow - 1) / maxPerRow
	return y + rows*(size+gap) + 4
}

func toRL(c traits.HSB) rl.Color {
	n := renderer.HSBA(c, 1)
	return rl.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}
