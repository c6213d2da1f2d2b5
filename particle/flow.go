package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FlowConfig controls a FlowEmitter's capacity, rate and spawn jitter.
type FlowConfig struct {
	MaxParticles   int
	CreationPeriod float64 // ms between spawns, <= 0 spawns every tick

	PositionJitter float32
	SpeedJitter    float32
	ScaleJitter    float32
}

// FlowEmitter produces a continuous, gravity-free stream of particles, at most
// one per update and never more than MaxParticles alive.
type FlowEmitter struct {
	template  Particle
	particles []*Particle
	cfg       FlowConfig
	rng       Random

	active       bool
	primed       bool
	lastCreation float64

	stats    Stats
	released bool
}

// NewFlowEmitter returns an active emitter. The template is copied, so later
// changes to the caller's value do not leak into spawned particles.
func NewFlowEmitter(template Particle, cfg FlowConfig, rng Random) *FlowEmitter {
	if cfg.MaxParticles < 0 {
		cfg.MaxParticles = 0
	}
	return &FlowEmitter{
		template:  template,
		particles: make([]*Particle, 0, cfg.MaxParticles),
		cfg:       cfg,
		rng:       rng,
		active:    true,
	}
}

func (e *FlowEmitter) Template() Particle {
	return e.template
}

func (e *FlowEmitter) Particles() []*Particle {
	return e.particles
}

func (e *FlowEmitter) Config() FlowConfig {
	return e.cfg
}

func (e *FlowEmitter) Stats() Stats {
	return e.stats
}

func (e *FlowEmitter) Active() bool {
	return e.active
}

// SetActive toggles spawning. Existing particles keep aging while inactive.
// Reactivating re-primes the creation timer so no burst follows a pause.
func (e *FlowEmitter) SetActive(active bool) {
	if active && !e.active {
		e.primed = false
	}
	e.active = active
}

func (e *FlowEmitter) Update(nowMs, elapsedMs float64) {
	if e.released {
		return
	}
	if e.active && !e.primed {
		e.lastCreation = nowMs
		e.primed = true
	}

	dt := float32(elapsedMs / 1000)
	alive := e.particles[:0]
	for _, p := range e.particles {
		if p.Advance(elapsedMs) < 0 {
			e.stats.Expired++
			continue
		}
		p.Placement.Position = p.Placement.Position.Add(p.Speed.Mul(dt))
		alive = append(alive, p)
	}
	// drop references held past the new length
	for i := len(alive); i < len(e.particles); i++ {
		e.particles[i] = nil
	}
	e.particles = alive

	if e.active && nowMs-e.lastCreation >= e.cfg.CreationPeriod && len(e.particles) < e.cfg.MaxParticles {
		e.createParticle()
		e.lastCreation = nowMs
	}
}

func (e *FlowEmitter) createParticle() {
	p := e.template.Clone()

	sign := float32(1)
	if e.rng.Float64() < 0.5 {
		sign = -1
	}
	pos := sign * float32(e.rng.Float64()) * e.cfg.PositionJitter
	speed := sign * float32(e.rng.Float64()) * e.cfg.SpeedJitter
	scale := sign * float32(e.rng.Float64()) * e.cfg.ScaleJitter

	p.Placement.Position = p.Placement.Position.Add(mgl32.Vec3{pos, pos, pos})
	p.Speed = p.Speed.Add(mgl32.Vec3{speed, speed, speed})
	p.Placement.Scale += scale

	e.particles = append(e.particles, p)
	e.stats.Spawned++
}

// Release frees the shared mesh and empties the live set.
func (e *FlowEmitter) Release() {
	if e.released {
		return
	}
	e.released = true
	e.particles = nil
	if e.template.Mesh != nil {
		e.template.Mesh.Release()
	}
}
