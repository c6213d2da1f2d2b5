package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AtlasOffset maps a frame index onto the normalized top-left corner of its
// cell in a cols x rows atlas. Frames wrap modulo cols*rows. A zero or
// negative dimension yields (0,0), as does a 1x1 atlas.
func AtlasOffset(frame, cols, rows int) mgl32.Vec2 {
	if cols <= 0 || rows <= 0 {
		return mgl32.Vec2{0, 0}
	}
	n := cols * rows
	frame %= n
	if frame < 0 {
		frame += n
	}

	col := frame % cols
	row := frame / cols
	return mgl32.Vec2{
		float32(col) / float32(cols),
		float32(row) / float32(rows),
	}
}

// AtlasTexCoord scales a quad texture coordinate into one atlas cell.
// particles.wgsl performs the same computation per vertex.
func AtlasTexCoord(uv, offset mgl32.Vec2, cols, rows int) mgl32.Vec2 {
	if cols <= 0 || rows <= 0 {
		return uv
	}
	return mgl32.Vec2{
		uv.X()/float32(cols) + offset.X(),
		uv.Y()/float32(rows) + offset.Y(),
	}
}
