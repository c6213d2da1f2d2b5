package particle

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStage struct {
	mock.Mock
}

func (m *mockStage) DepthWrite() bool          { return m.Called().Bool(0) }
func (m *mockStage) SetDepthWrite(enabled bool) { m.Called(enabled) }
func (m *mockStage) Blend() BlendMode          { return m.Called().Get(0).(BlendMode) }
func (m *mockStage) SetBlend(mode BlendMode)    { m.Called(mode) }
func (m *mockStage) Draw(batch Batch) error     { return m.Called(batch).Error(0) }

func methodOrder(m *mockStage) []string {
	var names []string
	for _, c := range m.Calls {
		names = append(names, c.Method)
	}
	return names
}

func populatedEmitter(t *testing.T, mesh Mesh, n int) *FlowEmitter {
	t.Helper()
	e := NewFlowEmitter(makeTemplate(mesh, 1e9), FlowConfig{MaxParticles: n}, rand.New(rand.NewSource(9)))
	for i := 0; i < n; i++ {
		e.Update(float64(i), 0)
	}
	require.Len(t, e.Particles(), n)
	return e
}

func TestRenderer_SetsParticleStateAndRestores(t *testing.T) {
	mesh := &fakeMesh{cols: 4, rows: 2}
	e := populatedEmitter(t, mesh, 3)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)

	stage := &mockStage{}
	stage.On("DepthWrite").Return(true)
	stage.On("Blend").Return(BlendAlpha)
	stage.On("SetDepthWrite", false).Once()
	stage.On("SetBlend", BlendAdditive).Once()
	stage.On("Draw", mock.MatchedBy(func(b Batch) bool {
		return b.Mesh == mesh && b.Cols == 4 && b.Rows == 2 && len(b.Instances) == 3 && b.Projection == proj
	})).Return(nil).Once()
	stage.On("SetDepthWrite", true).Once()
	stage.On("SetBlend", BlendAlpha).Once()

	err := NewRenderer().Render(stage, view, proj, e)
	require.NoError(t, err)
	stage.AssertExpectations(t)

	assert.Equal(t, []string{
		"DepthWrite", "Blend", "SetDepthWrite", "SetBlend", "Draw", "SetDepthWrite", "SetBlend",
	}, methodOrder(stage))
}

func TestRenderer_RestoresStateOnDrawError(t *testing.T) {
	e := populatedEmitter(t, &fakeMesh{cols: 1, rows: 1}, 1)
	drawErr := errors.New("device lost")

	stage := &mockStage{}
	stage.On("DepthWrite").Return(true)
	stage.On("Blend").Return(BlendNone)
	stage.On("SetDepthWrite", mock.Anything)
	stage.On("SetBlend", mock.Anything)
	stage.On("Draw", mock.Anything).Return(drawErr)

	err := NewRenderer().Render(stage, mgl32.Ident4(), mgl32.Ident4(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, drawErr)

	stage.AssertCalled(t, "SetDepthWrite", true)
	stage.AssertCalled(t, "SetBlend", BlendNone)
	last := stage.Calls[len(stage.Calls)-1]
	assert.Equal(t, "SetBlend", last.Method)
}

func TestRenderer_SkipsEmptyEmitters(t *testing.T) {
	empty := NewFlowEmitter(makeTemplate(nil, 1), FlowConfig{MaxParticles: 1}, rand.New(rand.NewSource(1)))
	full := populatedEmitter(t, &fakeMesh{cols: 2, rows: 2}, 2)

	stage := &mockStage{}
	stage.On("DepthWrite").Return(false)
	stage.On("Blend").Return(BlendAdditive)
	stage.On("SetDepthWrite", mock.Anything)
	stage.On("SetBlend", mock.Anything)
	stage.On("Draw", mock.Anything).Return(nil)

	require.NoError(t, NewRenderer().Render(stage, mgl32.Ident4(), mgl32.Ident4(), empty, full))
	stage.AssertNumberOfCalls(t, "Draw", 1)
}

func TestInstances_CarryBillboardAndAtlasOffset(t *testing.T) {
	mesh := &fakeMesh{cols: 2, rows: 2}
	e := populatedEmitter(t, mesh, 2)
	e.Particles()[0].Anim.Frame = 3
	e.Particles()[1].Anim.Frame = 1

	view := mgl32.LookAtV(mgl32.Vec3{3, 1, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	got := Instances(nil, e, view)
	require.Len(t, got, 2)

	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, got[0].Offset)
	assert.Equal(t, mgl32.Vec2{0.5, 0}, got[1].Offset)
	assert.Equal(t, BillboardModelView(e.Particles()[0].Placement, view), got[0].ModelView)
}

func TestBlendMode_String(t *testing.T) {
	assert.Equal(t, "additive", BlendAdditive.String())
	assert.Equal(t, "BlendMode(9)", BlendMode(9).String())
}
