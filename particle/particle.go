package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Animation tracks which atlas cell a particle shows.
type Animation struct {
	Frame   int
	Elapsed float64 // ms since the last frame advance
	Period  float64 // ms between frame advances
	Frames  int     // cols*rows of the atlas, 0 when there is no usable atlas
}

// Particle is a single billboard instance. TTL is in milliseconds and the
// particle is dead once it drops below zero.
type Particle struct {
	Placement Placement
	Mesh      Mesh
	Speed     mgl32.Vec3 // units per second
	TTL       float64
	Anim      Animation
}

func NewParticle(mesh Mesh, placement Placement, speed mgl32.Vec3, ttlMs, animPeriodMs float64) Particle {
	return Particle{
		Placement: placement,
		Mesh:      mesh,
		Speed:     speed,
		TTL:       ttlMs,
		Anim: Animation{
			Period: animPeriodMs,
			Frames: frameCount(mesh),
		},
	}
}

func frameCount(mesh Mesh) int {
	if mesh == nil {
		return 0
	}
	cols, rows := mesh.Atlas()
	if cols <= 0 || rows <= 0 {
		return 0
	}
	return cols * rows
}

// Advance ages the particle by elapsedMs and steps its animation. It returns
// the remaining TTL so callers can test for expiry directly.
func (p *Particle) Advance(elapsedMs float64) float64 {
	p.TTL -= elapsedMs
	p.Anim.step(elapsedMs)
	return p.TTL
}

func (a *Animation) step(elapsedMs float64) {
	// 1x1 atlases and meshes without an atlas never animate
	if a.Frames <= 1 {
		return
	}
	if a.Period > 0 {
		a.Elapsed += elapsedMs
		if a.Elapsed < a.Period {
			return
		}
	}
	a.Elapsed = 0
	a.Frame = (a.Frame + 1) % a.Frames
}

// Dead reports whether the particle's lifetime has run out.
func (p *Particle) Dead() bool {
	return p.TTL < 0
}

// Clone copies placement, speed, ttl and animation state. The mesh is shared.
func (p Particle) Clone() *Particle {
	c := p
	return &c
}

func CloneFrom(template *Particle) *Particle {
	return template.Clone()
}
