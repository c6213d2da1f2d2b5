package flare

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/particle"
)

// recordingStage is a FrameStage that remembers what it was asked to draw.
type recordingStage struct {
	depthWrite bool
	blend      particle.BlendMode

	begins, ends int
	batches      []particle.Batch
	beginErr     error
}

func newRecordingStage() *recordingStage {
	return &recordingStage{depthWrite: true, blend: particle.BlendNone}
}

func (s *recordingStage) DepthWrite() bool                 { return s.depthWrite }
func (s *recordingStage) SetDepthWrite(enabled bool)       { s.depthWrite = enabled }
func (s *recordingStage) Blend() particle.BlendMode        { return s.blend }
func (s *recordingStage) SetBlend(mode particle.BlendMode) { s.blend = mode }

func (s *recordingStage) Draw(batch particle.Batch) error {
	batch.Instances = append([]particle.Instance(nil), batch.Instances...)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingStage) BeginFrame(view, projection mgl32.Mat4) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	s.begins++
	return nil
}

func (s *recordingStage) EndFrame() error {
	s.ends++
	return nil
}

var errLostSurface = errors.New("surface lost")

// newTestApp builds an app with a fixed 100ms step and the particle modules.
func newTestApp(stage *recordingStage) *App {
	app := NewApp()
	app.UseModules(
		TimeModule{FixedStep: 100 * time.Millisecond},
		InputModule{},
		AssetServerModule{},
		FlyingCameraModule{Camera: Camera{Position: mgl32.Vec3{0, 0, 5}, Fov: 45, Aspect: 1}},
		ParticlesModule{},
	)
	if stage != nil {
		app.UseModules(RenderTargetModule{Name: "test", Stage: stage})
	}
	return app
}
