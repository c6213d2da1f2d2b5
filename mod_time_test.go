package flare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeFixedStep(t *testing.T) {
	start := time.Unix(100, 0)
	clock := newTime(16*time.Millisecond, func() time.Time { return start })

	assert.Equal(t, 0.0, clock.NowMs())
	clock.advance()
	assert.InDelta(t, clock.DtMs(), clock.NowMs(), 1e-9, "first tick reports its own step")
	clock.advance()

	assert.Equal(t, uint64(2), clock.Tick)
	assert.InDelta(t, 32.0, clock.NowMs(), 1e-9)
	assert.InDelta(t, 16.0, clock.DtMs(), 1e-9)
	assert.Equal(t, start.Add(32*time.Millisecond), clock.Time)
}

func TestTimeWallClock(t *testing.T) {
	now := time.Unix(0, 0)
	clock := newTime(0, func() time.Time { return now })

	now = now.Add(10 * time.Millisecond)
	clock.advance()
	now = now.Add(25 * time.Millisecond)
	clock.advance()

	assert.InDelta(t, 25.0, clock.DtMs(), 1e-9)
	assert.InDelta(t, 35.0, clock.NowMs(), 1e-9)
}

func TestTimeModuleAdvancesInPrelude(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{FixedStep: 50 * time.Millisecond})

	var seen []float64
	app.UseSystem(System(func(t *Time) { seen = append(seen, t.NowMs()) }).InStage(Prelude))
	app.Step()
	app.Step()

	assert.Equal(t, []float64{50, 100}, seen)
}
