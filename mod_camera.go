package flare

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a yaw/pitch camera. Angles are in degrees, Fov is vertical.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Fov      float32
	Near     float32
	Far      float32
	Aspect   float32

	Speed       float32
	Sensitivity float32
}

func (c *Camera) Forward() mgl32.Vec3 {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(-math.Cos(yawRad) * math.Cos(pitchRad)),
	}.Normalize()
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1.0
	}
	fov := c.Fov
	if fov <= 0 {
		fov = 45.0
	}
	near, far := c.Near, c.Far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = 1000.0
	}
	return mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
}

// FlyingCameraModule installs Camera and moves it from Input: WASD to move,
// space and control for up and down, Tab toggles mouse look.
type FlyingCameraModule struct {
	Camera Camera
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	camera := m.Camera
	cmd.AddResources(&camera)
	app.UseSystem(
		System(flyingCameraSystem).
			InStage(Update),
	)
}

func flyingCameraSystem(input *Input, cam *Camera, t *Time) {
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}
	if input.WindowWidth > 0 && input.WindowHeight > 0 {
		cam.Aspect = float32(input.WindowWidth) / float32(input.WindowHeight)
	}

	dt := float32(t.Dt.Seconds())
	if dt <= 0 {
		return
	}

	if cam.Sensitivity == 0 {
		cam.Sensitivity = 0.1
	}
	if input.MouseCaptured {
		cam.Yaw += float32(input.MouseDeltaX) * cam.Sensitivity
		cam.Pitch -= float32(input.MouseDeltaY) * cam.Sensitivity
	}
	cam.Pitch = mgl32.Clamp(cam.Pitch, -89.0, 89.0)

	move := mgl32.Vec3{0, 0, 0}
	if input.Pressed[KeyW] {
		move[2] += 1
	}
	if input.Pressed[KeyS] {
		move[2] -= 1
	}
	if input.Pressed[KeyA] {
		move[0] -= 1
	}
	if input.Pressed[KeyD] {
		move[0] += 1
	}
	if input.Pressed[KeySpace] {
		move[1] += 1
	}
	if input.Pressed[KeyControl] {
		move[1] -= 1
	}

	forward := cam.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := mgl32.Vec3{0, 1, 0}

	moveDir := right.Mul(move[0]).Add(up.Mul(move[1])).Add(forward.Mul(move[2]))
	if moveDir.Len() > 0 {
		if cam.Speed == 0 {
			cam.Speed = 5.0
		}
		cam.Position = cam.Position.Add(moveDir.Normalize().Mul(cam.Speed * dt))
	}
}
