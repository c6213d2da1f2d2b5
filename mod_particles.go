package flare

import (
	"github.com/gekko3d/flare/particle"
)

// EmitterEntry is a named emitter owned by the Emitters resource.
type EmitterEntry struct {
	Name    string
	Emitter particle.Emitter
}

type activeToggler interface {
	Active() bool
	SetActive(active bool)
}

type statsReporter interface {
	Stats() particle.Stats
}

// Emitters holds every emitter of the scene in insertion order.
type Emitters struct {
	entries []EmitterEntry
	cache   []particle.Emitter
}

func (es *Emitters) Add(name string, e particle.Emitter) {
	es.entries = append(es.entries, EmitterEntry{Name: name, Emitter: e})
	es.cache = nil
}

func (es *Emitters) Len() int {
	return len(es.entries)
}

func (es *Emitters) Entries() []EmitterEntry {
	return es.entries
}

func (es *Emitters) Get(name string) (particle.Emitter, bool) {
	for _, entry := range es.entries {
		if entry.Name == name {
			return entry.Emitter, true
		}
	}
	return nil, false
}

func (es *Emitters) all() []particle.Emitter {
	if es.cache == nil {
		es.cache = make([]particle.Emitter, len(es.entries))
		for i, entry := range es.entries {
			es.cache[i] = entry.Emitter
		}
	}
	return es.cache
}

func (es *Emitters) Update(nowMs, elapsedMs float64) {
	for _, entry := range es.entries {
		entry.Emitter.Update(nowMs, elapsedMs)
	}
}

// Tick updates every emitter at the clock's current time.
func (es *Emitters) Tick(clock particle.Clock, elapsedMs float64) {
	es.Update(clock.NowMs(), elapsedMs)
}

// SetActive switches every emitter that supports it and returns how many
// did.
func (es *Emitters) SetActive(active bool) int {
	n := 0
	for _, entry := range es.entries {
		if t, ok := entry.Emitter.(activeToggler); ok {
			t.SetActive(active)
			n++
		}
	}
	return n
}

// AnyActive reports whether at least one emitter is spawning.
func (es *Emitters) AnyActive() bool {
	for _, entry := range es.entries {
		if t, ok := entry.Emitter.(activeToggler); ok && t.Active() {
			return true
		}
	}
	return false
}

// Live counts particles across all emitters.
func (es *Emitters) Live() int {
	n := 0
	for _, entry := range es.entries {
		n += len(entry.Emitter.Particles())
	}
	return n
}

func (es *Emitters) ReleaseAll() {
	for _, entry := range es.entries {
		entry.Emitter.Release()
	}
}

// ParticlesModule updates emitters each tick, handles the P and Escape
// hotkeys and draws all emitters into the render target. Emitters are
// released when the app closes.
type ParticlesModule struct{}

func (ParticlesModule) Install(app *App, cmd *Commands) {
	emitters := &Emitters{}
	cmd.AddResources(emitters, particle.NewRenderer())
	cmd.OnClose(func() {
		emitters.ReleaseAll()
		app.Logger().Debugf("Released %d emitters", emitters.Len())
	})

	app.UseSystem(
		System(particleHotkeySystem).
			InStage(PreUpdate),
	)
	app.UseSystem(
		System(particleUpdateSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(particleRenderSystem).
			InStage(Render),
	)
}

func particleHotkeySystem(input *Input, emitters *Emitters, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Logger().Infof("Escape pressed, quitting")
		cmd.Quit()
	}
	if input.JustPressed[KeyP] {
		active := !emitters.AnyActive()
		n := emitters.SetActive(active)
		cmd.Logger().Infof("Emitters active=%v (%d switched)", active, n)
	}
}

func particleUpdateSystem(t *Time, emitters *Emitters) {
	emitters.Tick(t, t.DtMs())
}

// particleRenderSystem draws nothing until a render target is installed.
func particleRenderSystem(cam *Camera, emitters *Emitters, renderer *particle.Renderer, cmd *Commands) {
	rt, ok := Resource[RenderTarget](cmd.app)
	if !ok || !rt.InFrame() {
		return
	}
	if err := renderer.Render(rt.Stage, cam.View(), cam.Projection(), emitters.all()...); err != nil {
		cmd.Logger().Errorf("%s: %v", rt.Name, err)
	}
}
