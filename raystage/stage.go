// Package raystage renders particles with raylib's immediate mode (rlgl).
// Quads are expanded on the CPU into view space and drawn with the
// camera projection.
package raystage

import (
	"errors"
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/particle"
)

var (
	ErrUnsupportedMesh = errors.New("mesh has no texture")
	errNoFrame         = errors.New("draw outside of a frame")
)

// TexturedMesh is what Stage needs from a mesh handle.
type TexturedMesh interface {
	particle.Mesh
	TextureKey() string
	Image() *image.RGBA
}

type releaseNotifier interface {
	OnRelease(fn func())
}

// Stage is a flare.FrameStage drawing into the raylib window.
type Stage struct {
	ClearColor rl.Color

	depthWrite bool
	blend      particle.BlendMode

	textures map[string]rl.Texture2D
	overlays []func()
	inFrame  bool
}

// OpenWindow creates the raylib window. Must be called from the main
// goroutine before any other Stage method.
func OpenWindow(width, height int, title string) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(width), int32(height), title)
	rl.SetTargetFPS(60)
}

func CloseWindow() {
	rl.CloseWindow()
}

func WindowShouldClose() bool {
	return rl.WindowShouldClose()
}

func NewStage() *Stage {
	return &Stage{
		ClearColor: rl.NewColor(5, 5, 10, 255),
		depthWrite: true,
		blend:      particle.BlendNone,
		textures:   make(map[string]rl.Texture2D),
	}
}

func (s *Stage) DepthWrite() bool {
	return s.depthWrite
}

func (s *Stage) SetDepthWrite(enabled bool) {
	s.depthWrite = enabled
}

func (s *Stage) Blend() particle.BlendMode {
	return s.blend
}

func (s *Stage) SetBlend(mode particle.BlendMode) {
	s.blend = mode
}

// AddOverlay registers fn to draw in screen space after the particles of
// every frame.
func (s *Stage) AddOverlay(fn func()) {
	s.overlays = append(s.overlays, fn)
}

// BeginFrame clears the window and loads projection for 3D drawing. Vertices
// arrive in view space, so the model-view matrix stays identity.
func (s *Stage) BeginFrame(view, projection mgl32.Mat4) error {
	if s.inFrame {
		return errors.New("frame already begun")
	}
	rl.BeginDrawing()
	rl.ClearBackground(s.ClearColor)

	rl.DrawRenderBatchActive()
	rl.MatrixMode(rl.Projection)
	rl.PushMatrix()
	rl.LoadIdentity()
	rl.MultMatrix(toRaylibMatrix(projection))
	rl.MatrixMode(rl.Modelview)
	rl.LoadIdentity()
	rl.EnableDepthTest()

	s.inFrame = true
	return nil
}

func (s *Stage) Draw(batch particle.Batch) error {
	if !s.inFrame {
		return errNoFrame
	}
	if len(batch.Instances) == 0 {
		return nil
	}
	mesh, ok := batch.Mesh.(TexturedMesh)
	if !ok {
		return fmt.Errorf("%T: %w", batch.Mesh, ErrUnsupportedMesh)
	}
	tex, err := s.texture(mesh)
	if err != nil {
		return err
	}

	if !s.depthWrite {
		rl.DisableDepthMask()
	}
	blending := s.blend != particle.BlendNone
	if blending {
		rl.BeginBlendMode(raylibBlend(s.blend))
	}

	rl.SetTexture(tex.ID)
	rl.Begin(rl.Quads)
	rl.Color4ub(255, 255, 255, 255)
	for _, in := range batch.Instances {
		for _, v := range expandQuad(in, batch.Cols, batch.Rows) {
			rl.TexCoord2f(v.UV.X(), v.UV.Y())
			rl.Vertex3f(v.Pos.X(), v.Pos.Y(), v.Pos.Z())
		}
	}
	rl.End()
	rl.SetTexture(0)

	// Flush while the blend and depth state still apply.
	rl.DrawRenderBatchActive()
	if blending {
		rl.EndBlendMode()
	}
	if !s.depthWrite {
		rl.EnableDepthMask()
	}
	return nil
}

// EndFrame restores the 2D projection, draws overlays and presents.
func (s *Stage) EndFrame() error {
	if !s.inFrame {
		return errNoFrame
	}
	s.inFrame = false

	rl.DrawRenderBatchActive()
	rl.MatrixMode(rl.Projection)
	rl.PopMatrix()
	rl.MatrixMode(rl.Modelview)
	rl.LoadIdentity()
	rl.DisableDepthTest()

	for _, fn := range s.overlays {
		fn()
	}
	rl.EndDrawing()
	return nil
}

func (s *Stage) texture(mesh TexturedMesh) (rl.Texture2D, error) {
	key := mesh.TextureKey()
	if tex, ok := s.textures[key]; ok {
		return tex, nil
	}
	img := mesh.Image()
	if img == nil {
		return rl.Texture2D{}, fmt.Errorf("texture %s: %w", key, ErrUnsupportedMesh)
	}

	rlImg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	rl.SetTextureFilter(tex, rl.FilterBilinear)

	s.textures[key] = tex
	if n, ok := mesh.(releaseNotifier); ok {
		n.OnRelease(func() { s.dropTexture(key) })
	}
	return tex, nil
}

func (s *Stage) dropTexture(key string) {
	tex, ok := s.textures[key]
	if !ok {
		return
	}
	delete(s.textures, key)
	rl.UnloadTexture(tex)
}

func (s *Stage) Release() {
	for key := range s.textures {
		s.dropTexture(key)
	}
}

// toRaylibMatrix copies a column-major mgl32 matrix into raylib's layout,
// where M0..M3 is the first column.
func toRaylibMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func raylibBlend(mode particle.BlendMode) rl.BlendMode {
	switch mode {
	case particle.BlendAdditive:
		return rl.BlendAdditive
	default:
		return rl.BlendAlpha
	}
}
