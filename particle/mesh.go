package particle

// Mesh is the shared geometry and material behind every particle cloned from
// the same template. Implementations must tolerate repeated Release calls.
type Mesh interface {
	// Atlas reports the column and row count of the bound texture.
	Atlas() (cols, rows int)
	Release()
}

// Clock provides monotonic milliseconds since an arbitrary epoch.
type Clock interface {
	NowMs() float64
}

// Random yields uniformly distributed values in [0,1). *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}
