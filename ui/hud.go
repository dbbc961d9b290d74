package ui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/koipond/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Population  int
	Escaping    int
	Independent int
	Tick        int32
	Speed       int
	FPS         int32
	Paused      bool
	SumiE       bool
	Attracting  bool
	Zoom        float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Koi: %d | Escaping: %d | Alone: %d", data.Population, data.Escaping, data.Independent),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Zoom: %.1fx", data.Tick, data.Speed, data.FPS, data.Zoom),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(data.Status(), 10, 75, 16, h.renderer.Theme.SectionHeader)
}

// Status summarises run state: paused or running, then active modes.
func (d HUDData) Status() string {
	parts := []string{"Running"}
	if d.Paused {
		parts[0] = "PAUSED"
	}
	if d.SumiE {
		parts = append(parts, "sumi-e")
	}
	if d.Attracting {
		parts = append(parts, "following pointer")
	}
	return strings.Join(parts, " | ")
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the frame phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("Frame: %s p90 %s", stats.FrameDuration.Round(time.Microsecond), stats.FrameP90.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for ph := telemetry.Phase(0); ph < telemetry.NumPhases; ph++ {
		avg := stats.PhaseAvg[ph]
		pct := stats.PhasePct[ph]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", ph, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// Height returns the panel height in pixels.
func (p *PerfPanel) Height() int32 {
	return 20 + 16 + 16 + int32(telemetry.NumPhases)*14
}
