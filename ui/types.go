// Package ui provides the pond HUD, the flocking parameter panel, and a
// descriptor-driven koi inspector. Inspector rows are defined through
// metadata kept next to the koi component rather than hard-coded here.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// WidgetType specifies how a field is drawn.
type WidgetType int

const (
	WidgetText        WidgetType = iota // label and formatted value
	WidgetBar                           // fill proportional to the value's place in Range
	WidgetCenteredBar                   // fill from the middle of Range towards the value
)

// FieldRange is the value range of a bar.
type FieldRange struct {
	Min float32
	Max float32
}

// unit maps v into [0, 1] within the range. An empty range maps to 0.
func (r FieldRange) unit(v float32) float32 {
	if r.Max <= r.Min {
		return 0
	}
	return min(max((v-r.Min)/(r.Max-r.Min), 0), 1)
}

// FieldDescriptor defines how to display one value.
type FieldDescriptor struct {
	ID      string
	Label   string
	Widget  WidgetType
	Format  string // printf format for the value
	Range   FieldRange
	Visible func(any) bool    // nil = always visible
	Getter  func(any) float32 // value extractor
}

// SectionDescriptor is a titled group of fields.
type SectionDescriptor struct {
	ID     string
	Title  string
	Fields []FieldDescriptor
}

// Theme holds UI colours and metrics.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// pondHue is the default water hue the panels are tinted to.
const pondHue = 175

// DefaultTheme returns the theme tinted to the default pond water.
func DefaultTheme() Theme {
	return ThemeFor(pondHue)
}

// ThemeFor returns a theme whose panels are dark shades of hue (degrees)
// and whose headers use the complementary koi orange.
func ThemeFor(hue float64) Theme {
	return Theme{
		PanelBg:         hsv(hue, 0.40, 0.12, 230),
		PanelBorder:     hsv(hue, 0.35, 0.36, 255),
		SectionHeader:   hsv(hue+210, 0.67, 0.94, 255),
		LabelColor:      rl.LightGray,
		ValueColor:      rl.LightGray,
		BarBg:           rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:         hsv(hue, 0.47, 0.67, 255),
		BarFillNegative: hsv(0, 0.5, 0.78, 255),
		BarFillPositive: hsv(120, 0.5, 0.78, 255),
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      72,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}

func hsv(h, s, v float64, a uint8) rl.Color {
	h = h - 360*float64(int(h/360))
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return rl.Color{R: r, G: g, B: b, A: a}
}
