package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	// BlendAdditive is src*srcAlpha + dst.
	BlendAdditive
)

func (m BlendMode) String() string {
	switch m {
	case BlendNone:
		return "none"
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// Instance is the per-particle draw data.
type Instance struct {
	ModelView mgl32.Mat4
	Offset    mgl32.Vec2
}

// Batch is every live particle of one emitter, sharing a mesh.
type Batch struct {
	Mesh       Mesh
	Projection mgl32.Mat4
	Cols, Rows int
	Instances  []Instance
}

// Stage is the rendering backend that turns batches into draw calls.
// Draw must not keep batch.Instances after it returns; the slice is reused.
type Stage interface {
	DepthWrite() bool
	SetDepthWrite(enabled bool)
	Blend() BlendMode
	SetBlend(mode BlendMode)
	Draw(batch Batch) error
}

// Renderer computes billboard and atlas data for emitters and submits them to
// a Stage. It reuses its instance buffer between frames.
type Renderer struct {
	instances []Instance
}

func NewRenderer() *Renderer {
	return &Renderer{instances: make([]Instance, 0, 256)}
}

// Instances fills dst with one Instance per live particle of e.
func Instances(dst []Instance, e Emitter, view mgl32.Mat4) []Instance {
	for _, p := range e.Particles() {
		dst = append(dst, Instance{
			ModelView: BillboardModelView(p.Placement, view),
			Offset:    atlasOffsetOf(p),
		})
	}
	return dst
}

func atlasOffsetOf(p *Particle) mgl32.Vec2 {
	if p.Mesh == nil || p.Anim.Frames == 0 {
		return mgl32.Vec2{0, 0}
	}
	cols, rows := p.Mesh.Atlas()
	return AtlasOffset(p.Anim.Frame, cols, rows)
}

// Render draws every non-empty emitter with depth writes off and additive
// blending, then puts the stage's previous depth and blend state back.
// Particles are not sorted by distance.
func (r *Renderer) Render(stage Stage, view, projection mgl32.Mat4, emitters ...Emitter) error {
	prevDepth := stage.DepthWrite()
	prevBlend := stage.Blend()
	stage.SetDepthWrite(false)
	stage.SetBlend(BlendAdditive)
	defer func() {
		stage.SetDepthWrite(prevDepth)
		stage.SetBlend(prevBlend)
	}()

	for i, e := range emitters {
		if len(e.Particles()) == 0 {
			continue
		}
		tpl := e.Template()
		var cols, rows int
		if tpl.Mesh != nil {
			cols, rows = tpl.Mesh.Atlas()
		}

		r.instances = Instances(r.instances[:0], e, view)
		batch := Batch{
			Mesh:       tpl.Mesh,
			Projection: projection,
			Cols:       cols,
			Rows:       rows,
			Instances:  r.instances,
		}
		if err := stage.Draw(batch); err != nil {
			return fmt.Errorf("drawing emitter %d: %w", i, err)
		}
	}
	return nil
}
