package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Placement is the world position, orientation and uniform scale of a
// renderable item. Particles hold one rather than being one.
type Placement struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    float32
}

func NewPlacement(position mgl32.Vec3, scale float32) Placement {
	return Placement{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    scale,
	}
}

// Model returns T * R * S.
func (p Placement) Model() mgl32.Mat4 {
	translate := mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	rotate := p.Rotation.Mat4()
	scale := mgl32.Scale3D(p.Scale, p.Scale, p.Scale)

	return translate.Mul4(rotate).Mul4(scale)
}
