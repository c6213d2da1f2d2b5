package raystage

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/gekko3d/flare"
)

// Input polls raylib's keyboard and mouse state into flare.Input.
type Input struct {
	captured bool
}

func (in *Input) Poll(input *flare.Input) {
	for key, rlKey := range keyToRaylib {
		input.SetKey(key, rl.IsKeyDown(rlKey))
	}
	input.SetKey(flare.MouseButtonLeft, rl.IsMouseButtonDown(rl.MouseButtonLeft))
	input.SetKey(flare.MouseButtonRight, rl.IsMouseButtonDown(rl.MouseButtonRight))

	mouse := rl.GetMousePosition()
	input.SetMouse(float64(mouse.X), float64(mouse.Y))
	input.WindowWidth, input.WindowHeight = rl.GetScreenWidth(), rl.GetScreenHeight()

	if input.MouseCaptured != in.captured {
		in.captured = input.MouseCaptured
		if in.captured {
			rl.DisableCursor()
		} else {
			rl.EnableCursor()
		}
	}
}

var keyToRaylib = map[int]int32{
	flare.KeyA:       rl.KeyA,
	flare.KeyD:       rl.KeyD,
	flare.KeyP:       rl.KeyP,
	flare.KeyS:       rl.KeyS,
	flare.KeyW:       rl.KeyW,
	flare.KeySpace:   rl.KeySpace,
	flare.KeyEnter:   rl.KeyEnter,
	flare.KeyEscape:  rl.KeyEscape,
	flare.KeyTab:     rl.KeyTab,
	flare.KeyRight:   rl.KeyRight,
	flare.KeyLeft:    rl.KeyLeft,
	flare.KeyDown:    rl.KeyDown,
	flare.KeyUp:      rl.KeyUp,
	flare.KeyF1:      rl.KeyF1,
	flare.KeyF2:      rl.KeyF2,
	flare.KeyShift:   rl.KeyLeftShift,
	flare.KeyControl: rl.KeyLeftControl,
}
