package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

type fakeMesh struct {
	cols, rows int
	releases   int
}

func (m *fakeMesh) Atlas() (int, int) { return m.cols, m.rows }
func (m *fakeMesh) Release()          { m.releases++ }

// seqRandom replays a fixed sequence of values.
type seqRandom struct {
	vals []float64
	i    int
}

func (r *seqRandom) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func makeTemplate(mesh Mesh, ttl float64) Particle {
	return NewParticle(mesh, NewPlacement(mgl32.Vec3{0, 0, 0}, 1), mgl32.Vec3{0, 1, 0}, ttl, 100)
}
