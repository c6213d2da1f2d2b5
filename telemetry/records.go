package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TickRecord is one emitter's state at the end of a tick.
type TickRecord struct {
	Tick    uint64  `csv:"tick"`
	TimeMs  float64 `csv:"time_ms"`
	Emitter string  `csv:"emitter"`
	Live    int     `csv:"live"`
	Spawned int     `csv:"spawned"`
	Expired int     `csv:"expired"`
}

// WindowSummary aggregates the live counts of one emitter over a window of ticks.
type WindowSummary struct {
	WindowStartTick uint64  `csv:"window_start"`
	WindowEndTick   uint64  `csv:"window_end"`
	Emitter         string  `csv:"emitter"`
	Samples         int     `csv:"samples"`
	LiveMean        float64 `csv:"live_mean"`
	LiveStdDev      float64 `csv:"live_stddev"`
	LiveMin         float64 `csv:"live_min"`
	LiveMax         float64 `csv:"live_max"`
	Spawned         int     `csv:"spawned"`
	Expired         int     `csv:"expired"`
}

// Window collects tick records per emitter until Flush.
type Window struct {
	start   uint64
	started bool
	order   []string
	samples map[string][]float64
	last    map[string]TickRecord
	// cumulative counters at the end of the previous window
	base map[string]TickRecord
}

func NewWindow() *Window {
	return &Window{
		samples: make(map[string][]float64),
		last:    make(map[string]TickRecord),
		base:    make(map[string]TickRecord),
	}
}

func (w *Window) Add(r TickRecord) {
	if !w.started {
		w.start = r.Tick
		w.started = true
	}
	if _, ok := w.samples[r.Emitter]; !ok {
		w.order = append(w.order, r.Emitter)
	}
	w.samples[r.Emitter] = append(w.samples[r.Emitter], float64(r.Live))
	w.last[r.Emitter] = r
}

func (w *Window) Empty() bool {
	return !w.started
}

// Flush summarizes every emitter seen since the last flush, in first-seen
// order, and resets the window.
func (w *Window) Flush() []WindowSummary {
	if !w.started {
		return nil
	}
	out := make([]WindowSummary, 0, len(w.order))
	for _, name := range w.order {
		base, last := w.base[name], w.last[name]
		s := Summarize(w.samples[name])
		s.WindowStartTick = w.start
		s.WindowEndTick = last.Tick
		s.Emitter = name
		s.Spawned = last.Spawned - base.Spawned
		s.Expired = last.Expired - base.Expired
		out = append(out, s)
		w.base[name] = last
	}

	w.started = false
	w.order = nil
	clear(w.samples)
	clear(w.last)
	return out
}

// Summarize computes mean, population standard deviation, min and max of
// live counts. An empty slice yields zeros.
func Summarize(live []float64) WindowSummary {
	s := WindowSummary{Samples: len(live)}
	if len(live) == 0 {
		return s
	}
	s.LiveMean, s.LiveStdDev = stat.PopMeanStdDev(live, nil)
	s.LiveMin = floats.Min(live)
	s.LiveMax = floats.Max(live)
	return s
}
