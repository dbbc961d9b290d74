package ui

import (
	"testing"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/config"
)

func TestFlockingSlidersBindFields(t *testing.T) {
	var p config.FlockingConfig
	seen := map[*float64]string{}
	for _, s := range FlockingSliders() {
		if s.Min >= s.Max {
			t.Errorf("%s: empty range [%v, %v]", s.Label, s.Min, s.Max)
		}
		f := s.Field(&p)
		if prev, dup := seen[f]; dup {
			t.Errorf("%s and %s bind the same field", prev, s.Label)
		}
		seen[f] = s.Label
		*f = s.Max
	}
	if p.MaxSpeed == 0 || p.MaxForce == 0 || p.SeparationWeight == 0 || p.AttractionWeight == 0 {
		t.Errorf("sliders did not write through: %+v", p)
	}
}

func TestClampSlider(t *testing.T) {
	s := Slider{Min: 0.5, Max: 2}
	tests := []struct {
		in, want float64
	}{
		{0, 0.5},
		{1.25, 1.25},
		{9, 2},
	}
	for _, tt := range tests {
		if got := ClampSlider(s, tt.in); got != tt.want {
			t.Errorf("ClampSlider(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKoiSections(t *testing.T) {
	sections := KoiSections()
	if len(sections) != len(components.KoiGroups()) {
		t.Fatalf("%d sections, want %d", len(sections), len(components.KoiGroups()))
	}

	total := 0
	for _, sd := range sections {
		total += len(sd.Fields)
	}
	if total != len(components.KoiFieldDescriptors()) {
		t.Errorf("sections hold %d fields, want %d", total, len(components.KoiFieldDescriptors()))
	}

	k := &components.Koi{SizeMultiplier: 1.2, Neighbors: 0}
	for _, sd := range sections {
		for _, fd := range sd.Fields {
			switch fd.ID {
			case "size":
				if fd.Widget != WidgetBar || fd.Getter(k) != 1.2 {
					t.Errorf("size field = widget %v value %v", fd.Widget, fd.Getter(k))
				}
			case "heading":
				if fd.Widget != WidgetCenteredBar {
					t.Errorf("heading widget = %v", fd.Widget)
				}
			case "force":
				if fd.Visible == nil || fd.Visible(k) {
					t.Error("zero force should be hidden")
				}
			}
			if fd.Getter("not a koi") != 0 {
				t.Errorf("%s getter accepted foreign data", fd.ID)
			}
		}
	}
}

func TestParamsPanelBottom(t *testing.T) {
	p := NewParamsPanel(10, 20, 200)
	if p.Bottom() <= 20 {
		t.Errorf("visible Bottom = %d, want below 20", p.Bottom())
	}
	if !p.Contains(15, 25) {
		t.Error("point inside panel not contained")
	}

	p.Toggle()
	if p.Bottom() != 20 {
		t.Errorf("hidden Bottom = %d, want 20", p.Bottom())
	}
	if p.Contains(15, 25) {
		t.Error("hidden panel contains a point")
	}
}

func TestHUDStatus(t *testing.T) {
	tests := []struct {
		name string
		data HUDData
		want string
	}{
		{"running", HUDData{}, "Running"},
		{"paused", HUDData{Paused: true}, "PAUSED"},
		{"all", HUDData{Paused: true, SumiE: true, Attracting: true}, "PAUSED | sumi-e | following pointer"},
		{"attracting", HUDData{Attracting: true}, "Running | following pointer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
