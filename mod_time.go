package flare

import (
	"time"
)

// Time is the tick clock. Elapsed accumulates Dt from the moment the
// resource is created, so after the first tick NowMs equals that tick's Dt.
type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Tick    uint64

	fixedStep time.Duration
	now       func() time.Time
}

// NowMs satisfies particle.Clock.
func (t *Time) NowMs() float64 {
	return durationMs(t.Elapsed)
}

func (t *Time) DtMs() float64 {
	return durationMs(t.Dt)
}

func (t *Time) advance() {
	if t.fixedStep > 0 {
		t.Dt = t.fixedStep
		t.Time = t.Time.Add(t.fixedStep)
	} else {
		now := t.now()
		t.Dt = now.Sub(t.Time)
		t.Time = now
	}
	t.Elapsed += t.Dt
	t.Tick++
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// TimeModule installs the Time resource. A positive FixedStep makes every
// tick advance by exactly that amount regardless of wall time.
type TimeModule struct {
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(newTime(mod.FixedStep, time.Now))
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func newTime(fixedStep time.Duration, now func() time.Time) *Time {
	return &Time{
		Time:      now(),
		fixedStep: fixedStep,
		now:       now,
	}
}

func timeSystem(timeResource *Time) {
	timeResource.advance()
}
