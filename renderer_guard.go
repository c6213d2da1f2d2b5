package flare

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/particle"
)

// FrameStage is a particle.Stage that also owns the frame: it clears and
// presents around the draws of one tick.
type FrameStage interface {
	particle.Stage
	BeginFrame(view, projection mgl32.Mat4) error
	EndFrame() error
}

// RenderTarget marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RenderTarget struct {
	Name  string
	Stage FrameStage

	inFrame bool
	failed  int
}

// InFrame reports whether BeginFrame succeeded for the current tick.
func (rt *RenderTarget) InFrame() bool {
	return rt.inFrame
}

// FailedFrames counts frames skipped because BeginFrame or EndFrame failed.
func (rt *RenderTarget) FailedFrames() int {
	return rt.failed
}

// RenderTargetModule installs Stage as the app's only render target and
// brackets each tick's Render stage with BeginFrame and EndFrame.
type RenderTargetModule struct {
	Name  string
	Stage FrameStage
}

func (m RenderTargetModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, m.Name, m.Stage)
	app.Logger().Infof("Render target: %s", m.Name)
	app.UseSystem(
		System(beginFrameSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(endFrameSystem).
			InStage(PostRender),
	)
}

func beginFrameSystem(rt *RenderTarget, cam *Camera, cmd *Commands) {
	if err := rt.Stage.BeginFrame(cam.View(), cam.Projection()); err != nil {
		rt.inFrame = false
		rt.failed++
		cmd.Logger().Warnf("%s: begin frame: %v", rt.Name, err)
		return
	}
	rt.inFrame = true
}

func endFrameSystem(rt *RenderTarget, cmd *Commands) {
	if !rt.inFrame {
		return
	}
	rt.inFrame = false
	if err := rt.Stage.EndFrame(); err != nil {
		rt.failed++
		cmd.Logger().Warnf("%s: end frame: %v", rt.Name, err)
	}
}

// ensureSingleRenderer enforces a single renderer invariant.
// If a different renderer is already installed, it panics with a clear message.
func ensureSingleRenderer(app *App, name string, stage FrameStage) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	t := reflect.TypeOf((*RenderTarget)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if rt, ok2 := res.(*RenderTarget); ok2 {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", rt.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", rt.Name, name))
		}
		panic("RenderTarget resource present with unexpected type")
	}
	app.addResources(&RenderTarget{Name: name, Stage: stage})
}
