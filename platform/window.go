// Package platform opens the GLFW window used by the WebGPU backend and
// feeds its keyboard and mouse state into flare.Input.
package platform

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/flare"
)

type Window struct {
	glfw *glfw.Window

	resized       bool
	width, height int
}

// OpenWindow initializes GLFW and creates a resizable window without a
// client API. Must be called from the main goroutine.
func OpenWindow(width, height int, title string) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}

	w := &Window{glfw: win}
	w.width, w.height = win.GetFramebufferSize()
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		w.resized = true
	})
	return w, nil
}

func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.glfw)
}

func (w *Window) FramebufferSize() (int, int) {
	return w.width, w.height
}

// TakeResize reports a framebuffer size change since the last call.
func (w *Window) TakeResize() (width, height int, ok bool) {
	if !w.resized {
		return 0, 0, false
	}
	w.resized = false
	return w.width, w.height, true
}

func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

func (w *Window) Close() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// Poll implements flare.InputSource.
func (w *Window) Poll(input *flare.Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.SetKey(key, w.glfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.SetKey(btn, w.glfw.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.SetMouse(w.glfw.GetCursorPos())
	input.WindowWidth, input.WindowHeight = w.glfw.GetSize()

	if input.MouseCaptured {
		w.glfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		w.glfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

var buttonToGlfw = map[int]glfw.MouseButton{
	flare.MouseButtonLeft:  glfw.MouseButtonLeft,
	flare.MouseButtonRight: glfw.MouseButtonRight,
}

var keyToGlfw = map[int]glfw.Key{
	flare.KeyA:       glfw.KeyA,
	flare.KeyB:       glfw.KeyB,
	flare.KeyC:       glfw.KeyC,
	flare.KeyD:       glfw.KeyD,
	flare.KeyE:       glfw.KeyE,
	flare.KeyF:       glfw.KeyF,
	flare.KeyG:       glfw.KeyG,
	flare.KeyH:       glfw.KeyH,
	flare.KeyI:       glfw.KeyI,
	flare.KeyJ:       glfw.KeyJ,
	flare.KeyK:       glfw.KeyK,
	flare.KeyL:       glfw.KeyL,
	flare.KeyM:       glfw.KeyM,
	flare.KeyN:       glfw.KeyN,
	flare.KeyO:       glfw.KeyO,
	flare.KeyP:       glfw.KeyP,
	flare.KeyQ:       glfw.KeyQ,
	flare.KeyR:       glfw.KeyR,
	flare.KeyS:       glfw.KeyS,
	flare.KeyT:       glfw.KeyT,
	flare.KeyU:       glfw.KeyU,
	flare.KeyV:       glfw.KeyV,
	flare.KeyW:       glfw.KeyW,
	flare.KeyX:       glfw.KeyX,
	flare.KeyY:       glfw.KeyY,
	flare.KeyZ:       glfw.KeyZ,
	flare.Key0:       glfw.Key0,
	flare.Key1:       glfw.Key1,
	flare.Key2:       glfw.Key2,
	flare.Key3:       glfw.Key3,
	flare.Key4:       glfw.Key4,
	flare.Key5:       glfw.Key5,
	flare.Key6:       glfw.Key6,
	flare.Key7:       glfw.Key7,
	flare.Key8:       glfw.Key8,
	flare.Key9:       glfw.Key9,
	flare.KeySpace:   glfw.KeySpace,
	flare.KeyEnter:   glfw.KeyEnter,
	flare.KeyEscape:  glfw.KeyEscape,
	flare.KeyTab:     glfw.KeyTab,
	flare.KeyRight:   glfw.KeyRight,
	flare.KeyLeft:    glfw.KeyLeft,
	flare.KeyDown:    glfw.KeyDown,
	flare.KeyUp:      glfw.KeyUp,
	flare.KeyF1:      glfw.KeyF1,
	flare.KeyF2:      glfw.KeyF2,
	flare.KeyShift:   glfw.KeyLeftShift,
	flare.KeyControl: glfw.KeyLeftControl,
}
