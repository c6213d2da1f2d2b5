package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, "wgpu", cfg.Window.Backend)
	assert.Equal(t, time.Duration(0), cfg.Derived.FixedStep)
	assert.InDelta(t, 1280.0/720.0, cfg.Derived.Aspect, 1e-6)
	require.Len(t, cfg.Effects, 2)
	assert.Equal(t, "fire", cfg.Effects[0].Name)
	assert.True(t, cfg.Effects[0].IsActive())
}

func TestParseOverridesAndReplacesEffects(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  backend: raylib
simulation:
  fixed_step_ms: 16
effects:
  - name: sparks
    ttl_ms: 500
    max_particles: 10
    active: false
`))
	require.NoError(t, err)

	assert.Equal(t, "raylib", cfg.Window.Backend)
	assert.Equal(t, 720, cfg.Window.Height, "fields absent from the file keep their defaults")
	assert.Equal(t, 16*time.Millisecond, cfg.Derived.FixedStep)

	require.Len(t, cfg.Effects, 1)
	e := cfg.Effects[0]
	assert.Equal(t, "sparks", e.Name)
	assert.Equal(t, 1, e.Atlas.Cols)
	assert.Equal(t, 1, e.Atlas.Rows)
	assert.Equal(t, float32(1), e.Scale)
	assert.False(t, e.IsActive())
}

func TestParseKeepsDefaultEffectsWhenAbsent(t *testing.T) {
	cfg, err := Parse([]byte("telemetry:\n  dir: out\n"))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Telemetry.Dir)
	assert.Len(t, cfg.Effects, 2)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero width", "window:\n  width: 0\n"},
		{"negative step", "simulation:\n  fixed_step_ms: -1\n"},
		{"duplicate names", "effects:\n  - {name: a, ttl_ms: 1}\n  - {name: a, ttl_ms: 1}\n"},
		{"negative atlas", "effects:\n  - {name: a, ttl_ms: 1, atlas: {cols: -1, rows: 1}}\n"},
		{"missing ttl", "effects:\n  - {name: a}\n"},
		{"negative texture size", "effects:\n  - {name: a, ttl_ms: 1, texture_size: -8}\n"},
		{"negative jitter", "effects:\n  - {name: a, ttl_ms: 1, jitter: {speed: -0.1}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Effects, again.Effects)
	assert.Equal(t, cfg.Camera, again.Camera)
}
