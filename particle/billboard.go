package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BillboardModelView returns the model-view matrix of a quad that always faces
// the camera. The placement's rotation is ignored; translation and uniform
// scale are kept.
//
// The upper-left 3x3 of the model matrix is replaced by the transpose of the
// view's rotation block, so view * model cancels the camera rotation. The
// overwrite drops any scale baked into that block, so scale is applied to the
// product afterwards.
func BillboardModelView(placement Placement, view mgl32.Mat4) mgl32.Mat4 {
	pos := placement.Position
	model := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			model.Set(row, col, view.At(col, row))
		}
	}

	s := placement.Scale
	return view.Mul4(model).Mul4(mgl32.Scale3D(s, s, s))
}
