package flare

import (
	"path/filepath"

	"github.com/gekko3d/flare/config"
	"github.com/gekko3d/flare/telemetry"
)

// TelemetryModule records a tick row per emitter and a summary row per
// emitter every WindowTicks ticks. An empty Dir disables output but the
// Telemetry resource still collects summaries.
type TelemetryModule struct {
	Dir         string
	WindowTicks int
	// Config, when set, is written next to the CSV files.
	Config *config.Config
}

// Telemetry is the resource behind TelemetryModule.
type Telemetry struct {
	out         *telemetry.Output
	window      *telemetry.Window
	windowTicks int
	records     []telemetry.TickRecord
	last        []telemetry.WindowSummary
	errors      int
}

// LastSummaries returns the summaries of the most recently closed window.
func (t *Telemetry) LastSummaries() []telemetry.WindowSummary {
	return t.last
}

func (t *Telemetry) Errors() int {
	return t.errors
}

func (m TelemetryModule) Install(app *App, cmd *Commands) {
	out, err := telemetry.NewOutput(m.Dir)
	if err != nil {
		app.Logger().Errorf("Telemetry disabled: %v", err)
		out = nil
	}
	if out != nil {
		app.Logger().Infof("Writing telemetry to %s", out.Dir())
		if m.Config != nil {
			if err := m.Config.WriteYAML(filepath.Join(out.Dir(), "config.yaml")); err != nil {
				app.Logger().Warnf("Telemetry: %v", err)
			}
		}
	}

	windowTicks := m.WindowTicks
	if windowTicks <= 0 {
		windowTicks = 120
	}
	tel := &Telemetry{
		out:         out,
		window:      telemetry.NewWindow(),
		windowTicks: windowTicks,
	}
	cmd.AddResources(tel)
	cmd.OnClose(func() {
		tel.flushWindow(app.Logger())
		if err := tel.out.Close(); err != nil {
			app.Logger().Warnf("Telemetry close: %v", err)
		}
	})

	app.UseSystem(
		System(telemetrySystem).
			InStage(PostUpdate),
	)
}

func telemetrySystem(tel *Telemetry, t *Time, emitters *Emitters, cmd *Commands) {
	tel.records = tel.records[:0]
	for _, entry := range emitters.Entries() {
		r := telemetry.TickRecord{
			Tick:    t.Tick,
			TimeMs:  t.NowMs(),
			Emitter: entry.Name,
			Live:    len(entry.Emitter.Particles()),
		}
		if s, ok := entry.Emitter.(statsReporter); ok {
			stats := s.Stats()
			r.Spawned = stats.Spawned
			r.Expired = stats.Expired
		}
		tel.records = append(tel.records, r)
		tel.window.Add(r)
	}

	if err := tel.out.WriteTicks(tel.records); err != nil {
		tel.errors++
		cmd.Logger().Warnf("Telemetry: %v", err)
	}

	if t.Tick%uint64(tel.windowTicks) == 0 {
		tel.flushWindow(cmd.Logger())
	}
}

func (tel *Telemetry) flushWindow(logger Logger) {
	if tel.window.Empty() {
		return
	}
	tel.last = tel.window.Flush()
	for _, s := range tel.last {
		logger.Debugf("%s ticks %d-%d: live mean=%.1f sd=%.1f min=%.0f max=%.0f spawned=%d expired=%d",
			s.Emitter, s.WindowStartTick, s.WindowEndTick, s.LiveMean, s.LiveStdDev, s.LiveMin, s.LiveMax, s.Spawned, s.Expired)
	}
	if err := tel.out.WriteSummaries(tel.last); err != nil {
		tel.errors++
		logger.Warnf("Telemetry: %v", err)
	}
}
