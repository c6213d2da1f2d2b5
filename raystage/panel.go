package raystage

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/gekko3d/flare"
)

const (
	panelX      = 10
	panelY      = 10
	panelWidth  = 240
	panelRow    = 24
	panelMargin = 8
)

// PanelModule adds an on-screen panel to the raylib stage with a checkbox
// per emitter and a button toggling all of them. F1 hides it.
type PanelModule struct {
	Stage *Stage
}

type panelState struct {
	hidden bool
}

func (m PanelModule) Install(app *flare.App, cmd *flare.Commands) {
	state := &panelState{}
	emitters, ok := flare.Resource[flare.Emitters](app)
	if !ok {
		panic("PanelModule requires ParticlesModule")
	}
	input, ok := flare.Resource[flare.Input](app)
	if !ok {
		panic("PanelModule requires InputModule")
	}
	m.Stage.AddOverlay(func() {
		if input.JustPressed[flare.KeyF1] {
			state.hidden = !state.hidden
		}
		if state.hidden {
			return
		}
		drawPanel(emitters)
	})
}

type activeToggler interface {
	Active() bool
	SetActive(active bool)
}

func drawPanel(emitters *flare.Emitters) {
	entries := emitters.Entries()
	height := float32(panelMargin*2 + panelRow*(len(entries)+3))
	gui.GroupBox(rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth, Height: height}, "Emitters")

	y := float32(panelY + panelMargin*2)
	for _, entry := range entries {
		label := fmt.Sprintf("%s (%d)", entry.Name, len(entry.Emitter.Particles()))
		bounds := rl.Rectangle{X: panelX + panelMargin, Y: y, Width: 16, Height: 16}
		if t, ok := entry.Emitter.(activeToggler); ok {
			checked := gui.CheckBox(bounds, label, t.Active())
			if checked != t.Active() {
				t.SetActive(checked)
			}
		} else {
			bounds.Width = panelWidth - 2*panelMargin
			gui.Label(bounds, label)
		}
		y += panelRow
	}

	y += panelMargin
	text := "Stop all"
	if !emitters.AnyActive() {
		text = "Start all"
	}
	if gui.Button(rl.Rectangle{X: panelX + panelMargin, Y: y, Width: panelWidth - 2*panelMargin, Height: 20}, text) {
		emitters.SetActive(!emitters.AnyActive())
	}
	y += panelRow

	rl.DrawFPS(panelX+panelMargin, int32(y))
	rl.DrawText(fmt.Sprintf("live %d", emitters.Live()), panelX+panelMargin+100, int32(y), 20, rl.LightGray)
}
