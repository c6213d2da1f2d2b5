package raystage

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/particle"
)

// vertex is a view-space corner of a particle quad.
type vertex struct {
	Pos mgl32.Vec3
	UV  mgl32.Vec2
}

// quadCorners lists the unit quad counter-clockwise from the bottom left,
// with V growing downwards in texture space.
var quadCorners = [4]struct {
	pos mgl32.Vec4
	uv  mgl32.Vec2
}{
	{mgl32.Vec4{-0.5, -0.5, 0, 1}, mgl32.Vec2{0, 1}},
	{mgl32.Vec4{0.5, -0.5, 0, 1}, mgl32.Vec2{1, 1}},
	{mgl32.Vec4{0.5, 0.5, 0, 1}, mgl32.Vec2{1, 0}},
	{mgl32.Vec4{-0.5, 0.5, 0, 1}, mgl32.Vec2{0, 0}},
}

// expandQuad transforms the unit quad by the instance's model-view matrix and
// maps its texture coordinates into the instance's atlas cell.
func expandQuad(in particle.Instance, cols, rows int) [4]vertex {
	var out [4]vertex
	for i, c := range quadCorners {
		out[i] = vertex{
			Pos: in.ModelView.Mul4x1(c.pos).Vec3(),
			UV:  particle.AtlasTexCoord(c.uv, in.Offset, cols, rows),
		}
	}
	return out
}
