package flare

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraViewLooksDownNegativeZ(t *testing.T) {
	cam := Camera{Position: mgl32.Vec3{0, 0, 5}}
	fwd := cam.Forward()
	assert.InDeltaSlice(t, []float32{0, 0, -1}, fwd[:], 1e-6)

	// The origin is straight ahead, 5 units away.
	p := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDeltaSlice(t, []float32{0, 0, -5, 1}, p[:], 1e-5)
}

func TestCameraProjectionDefaults(t *testing.T) {
	cam := Camera{}
	want := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 1000)
	got := cam.Projection()
	assert.InDeltaSlice(t, want[:], got[:], 1e-6)
}

func TestFlyingCameraMoves(t *testing.T) {
	app := newTestApp(nil)
	input, _ := Resource[Input](app)
	cam, _ := Resource[Camera](app)
	cam.Speed = 10

	input.SetKey(KeyW, true)
	app.Step()

	// 100ms at 10 units/s along -Z.
	assert.InDeltaSlice(t, []float32{0, 0, 4}, cam.Position[:], 1e-5)

	input.SetKey(KeyW, false)
	input.WindowWidth, input.WindowHeight = 200, 100
	input.SetKey(KeyTab, true)
	app.Step()
	assert.True(t, input.MouseCaptured)
	assert.Equal(t, float32(2), cam.Aspect)
}

func TestFlyingCameraClampsPitch(t *testing.T) {
	app := newTestApp(nil)
	input, _ := Resource[Input](app)
	cam, _ := Resource[Camera](app)

	input.MouseCaptured = true
	input.MouseDeltaY = -10000
	app.Step()

	assert.Equal(t, float32(89), cam.Pitch)
}
