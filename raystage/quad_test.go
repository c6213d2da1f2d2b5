package raystage

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/flare/particle"
)

func TestExpandQuadIdentity(t *testing.T) {
	verts := expandQuad(particle.Instance{ModelView: mgl32.Ident4()}, 1, 1)

	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, 0}, verts[0].Pos)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0}, verts[2].Pos)
	assert.Equal(t, mgl32.Vec2{0, 1}, verts[0].UV)
	assert.Equal(t, mgl32.Vec2{1, 0}, verts[2].UV)
}

func TestExpandQuadAtlasCell(t *testing.T) {
	in := particle.Instance{
		ModelView: mgl32.Translate3D(0, 0, -5).Mul4(mgl32.Scale3D(2, 2, 2)),
		Offset:    particle.AtlasOffset(5, 4, 2),
	}
	verts := expandQuad(in, 4, 2)

	assert.InDeltaSlice(t, []float32{-1, -1, -5}, verts[0].Pos[:], 1e-5)
	assert.InDeltaSlice(t, []float32{1, 1, -5}, verts[2].Pos[:], 1e-5)

	// Frame 5 of a 4x2 atlas is column 1, row 1.
	for _, v := range verts {
		assert.GreaterOrEqual(t, v.UV.X(), float32(0.25))
		assert.LessOrEqual(t, v.UV.X(), float32(0.5))
		assert.GreaterOrEqual(t, v.UV.Y(), float32(0.5))
		assert.LessOrEqual(t, v.UV.Y(), float32(1))
	}
}

func TestRaylibBlend(t *testing.T) {
	assert.Equal(t, rl.BlendAdditive, raylibBlend(particle.BlendAdditive))
	assert.Equal(t, rl.BlendAlpha, raylibBlend(particle.BlendAlpha))
}

func TestToRaylibMatrixKeepsColumnMajorOrder(t *testing.T) {
	m := mgl32.Translate3D(3, -2, 7).Mul4(mgl32.Scale3D(2, 4, 8))
	got := toRaylibMatrix(m)

	assert.Equal(t, float32(2), got.M0)
	assert.Equal(t, float32(4), got.M5)
	assert.Equal(t, float32(8), got.M10)
	assert.Equal(t, float32(1), got.M15)
	// Translation sits in the last column.
	assert.Equal(t, float32(3), got.M12)
	assert.Equal(t, float32(-2), got.M13)
	assert.Equal(t, float32(7), got.M14)
	assert.Equal(t, float32(0), got.M3)

	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)
	p := toRaylibMatrix(proj)
	assert.Equal(t, proj.At(3, 2), p.M11)
	assert.Equal(t, proj.At(2, 3), p.M14)
}
