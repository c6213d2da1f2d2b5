package flare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type scriptedSource struct {
	down []int
}

func (s *scriptedSource) Poll(input *Input) {
	for _, key := range []int{KeyA, KeyB} {
		pressed := false
		for _, d := range s.down {
			pressed = pressed || d == key
		}
		input.SetKey(key, pressed)
	}
}

func TestInputEdges(t *testing.T) {
	var input Input

	input.SetKey(KeyA, true)
	assert.True(t, input.Pressed[KeyA])
	assert.True(t, input.JustPressed[KeyA])

	input.SetKey(KeyA, true)
	assert.True(t, input.Pressed[KeyA])
	assert.False(t, input.JustPressed[KeyA])

	input.SetKey(KeyA, false)
	assert.False(t, input.Pressed[KeyA])
	assert.True(t, input.JustReleased[KeyA])

	input.SetKey(KeyA, false)
	assert.False(t, input.JustReleased[KeyA])
}

func TestInputMouseDeltaOnlyWhenCaptured(t *testing.T) {
	var input Input
	input.SetMouse(10, 10)
	input.SetMouse(15, 20)
	assert.Zero(t, input.MouseDeltaX)

	input.MouseCaptured = true
	input.SetMouse(18, 16)
	assert.Equal(t, 3.0, input.MouseDeltaX)
	assert.Equal(t, -4.0, input.MouseDeltaY)
}

func TestInputModulePollsSource(t *testing.T) {
	source := &scriptedSource{down: []int{KeyB}}
	app := NewApp()
	app.UseModules(InputModule{Source: source})

	app.Step()
	input, _ := Resource[Input](app)
	assert.True(t, input.JustPressed[KeyB])
	assert.False(t, input.Pressed[KeyA])

	source.down = nil
	app.Step()
	assert.True(t, input.JustReleased[KeyB])
}
