package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutputDisabled(t *testing.T) {
	out, err := NewOutput("")
	require.NoError(t, err)
	assert.Nil(t, out)

	// A nil output swallows writes.
	assert.NoError(t, out.WriteTicks([]TickRecord{{Tick: 1}}))
	assert.NoError(t, out.WriteSummaries([]WindowSummary{{}}))
	assert.NoError(t, out.Close())
	assert.Equal(t, "", out.Dir())
}

func TestOutputWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	out, err := NewOutput(dir)
	require.NoError(t, err)

	require.NoError(t, out.WriteTicks([]TickRecord{{Tick: 1, TimeMs: 16, Emitter: "fire", Live: 1, Spawned: 1}}))
	require.NoError(t, out.WriteTicks([]TickRecord{{Tick: 2, TimeMs: 32, Emitter: "fire", Live: 2, Spawned: 2}}))
	require.NoError(t, out.WriteSummaries([]WindowSummary{{WindowStartTick: 1, WindowEndTick: 2, Emitter: "fire", Samples: 2}}))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(filepath.Join(dir, "ticks.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tick,time_ms,emitter,live,spawned,expired", lines[0])
	assert.Equal(t, "2,32,fire,2,2,0", lines[2])

	data, err = os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "window_start,window_end,emitter,samples,live_mean"))
}
