package flare

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_addResourcesRejectsValues(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() {
		app.addResources(MockResource1{name: "value"})
	})
}

func TestResource(t *testing.T) {
	app := NewApp()
	app.Commands().AddResources(NewMockResource1("r1"))

	r, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Equal(t, "r1", r.name)

	_, ok = Resource[MockResource2](app)
	assert.False(t, ok)
}

func TestApp_StepRunsStagesInOrder(t *testing.T) {
	app := NewApp()
	var order []string
	for _, stage := range []Stage{Finale, Render, Prelude, Update} {
		name := stage.Name
		app.UseSystem(System(func() { order = append(order, name) }).InStage(stage))
	}

	app.Step()

	assert.Equal(t, []string{"Prelude", "Update", "Render", "Finale"}, order)
	assert.Equal(t, uint64(1), app.Ticks())
}

func TestApp_SystemsReceiveResources(t *testing.T) {
	app := NewApp()
	app.Commands().AddResources(NewMockResource1("a"), NewMockResource2("b"))

	var got string
	app.UseSystem(System(func(r2 *MockResource2, cmd *Commands, r1 *MockResource1) {
		require.NotNil(t, cmd)
		got = r1.name + r2.name
	}))
	app.Step()

	assert.Equal(t, "ab", got)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(*MockResource1) {}))

	assert.Panics(t, app.Step)
}

func TestApp_RunStopsOnQuitAndCloses(t *testing.T) {
	app := NewApp()
	var closed []string
	app.OnClose(func() { closed = append(closed, "first") })
	app.OnClose(func() { closed = append(closed, "second") })

	app.UseSystem(System(func(cmd *Commands) {
		if cmd.app.Ticks() == 2 {
			cmd.Quit()
		}
	}))

	app.Run()

	assert.Equal(t, uint64(3), app.Ticks())
	assert.True(t, app.Quitting())
	assert.Equal(t, []string{"second", "first"}, closed)

	app.Close()
	assert.Len(t, closed, 2, "closers run once")
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	custom := Stage{Name: "Simulate"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { order = append(order, "sim") }).InStage(custom))
	app.UseSystem(System(func() { order = append(order, "update") }))
	app.Step()

	assert.Equal(t, []string{"update", "sim", "post"}, order)

	assert.Panics(t, func() { app.UseStage(custom, BeforeStage(Render)) })
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "missing"})) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "missing"})) })
}
