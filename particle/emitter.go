package particle

// Emitter is any strategy that owns a template particle and a live set.
type Emitter interface {
	// Template returns a copy of the spawn prototype.
	Template() Particle
	// Particles returns the live set. Order and identity are not stable
	// across ticks.
	Particles() []*Particle
	// Update ages the live set and spawns according to the emitter's policy.
	// nowMs is the current tick time, elapsedMs the time since the previous tick.
	Update(nowMs, elapsedMs float64)
	// Release frees emitter-held resources. Safe to call more than once.
	Release()
}

// Stats are cumulative counters since the emitter was created.
type Stats struct {
	Spawned int
	Expired int
}
