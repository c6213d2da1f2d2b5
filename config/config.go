// Package config loads the demo configuration: window, camera, simulation,
// telemetry and the list of particle effects.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Camera     CameraConfig     `yaml:"camera"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Effects    []EffectConfig   `yaml:"effects"`

	Derived DerivedConfig `yaml:"-"`
}

type WindowConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Title   string `yaml:"title"`
	Backend string `yaml:"backend"`
}

type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Fov         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
}

type SimulationConfig struct {
	FixedStepMs float64 `yaml:"fixed_step_ms"`
	Seed        int64   `yaml:"seed"`
}

type TelemetryConfig struct {
	Dir         string `yaml:"dir"`
	WindowTicks int    `yaml:"window_ticks"`
}

type AtlasConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

type JitterConfig struct {
	Position float32 `yaml:"position"`
	Speed    float32 `yaml:"speed"`
	Scale    float32 `yaml:"scale"`
}

// EffectConfig describes one flow emitter.
type EffectConfig struct {
	Name             string       `yaml:"name"`
	Texture          string       `yaml:"texture"`
	TextureSize      int          `yaml:"texture_size"`
	Atlas            AtlasConfig  `yaml:"atlas"`
	Position         [3]float32   `yaml:"position"`
	Scale            float32      `yaml:"scale"`
	Speed            [3]float32   `yaml:"speed"`
	TTLMs            float64      `yaml:"ttl_ms"`
	AnimPeriodMs     float64      `yaml:"anim_period_ms"`
	MaxParticles     int          `yaml:"max_particles"`
	CreationPeriodMs float64      `yaml:"creation_period_ms"`
	Jitter           JitterConfig `yaml:"jitter"`
	Active           *bool        `yaml:"active"`
}

// IsActive reports whether the effect starts active. Missing means true.
func (e EffectConfig) IsActive() bool {
	return e.Active == nil || *e.Active
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	FixedStep time.Duration
	Aspect    float32
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. A file that lists
// effects replaces the default effects entirely.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(data []byte) error {
	var probe struct {
		Effects *[]EffectConfig `yaml:"effects"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Effects != nil {
		c.Effects = nil
	}
	return yaml.Unmarshal(data, c)
}

// computeDerived fills per-effect defaults and validates the result.
func (c *Config) computeDerived() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	c.Derived.Aspect = float32(c.Window.Width) / float32(c.Window.Height)

	if c.Simulation.FixedStepMs < 0 {
		return fmt.Errorf("%w: simulation.fixed_step_ms %v is negative", ErrInvalid, c.Simulation.FixedStepMs)
	}
	c.Derived.FixedStep = time.Duration(c.Simulation.FixedStepMs * float64(time.Millisecond))

	if c.Telemetry.WindowTicks <= 0 {
		c.Telemetry.WindowTicks = 120
	}

	seen := make(map[string]bool, len(c.Effects))
	for i := range c.Effects {
		e := &c.Effects[i]
		if e.Name == "" {
			e.Name = fmt.Sprintf("effect%d", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate effect name %q", ErrInvalid, e.Name)
		}
		seen[e.Name] = true

		if e.Atlas.Cols == 0 {
			e.Atlas.Cols = 1
		}
		if e.Atlas.Rows == 0 {
			e.Atlas.Rows = 1
		}
		if e.Atlas.Cols < 0 || e.Atlas.Rows < 0 {
			return fmt.Errorf("%w: effect %q atlas %dx%d", ErrInvalid, e.Name, e.Atlas.Cols, e.Atlas.Rows)
		}
		if e.TextureSize < 0 {
			return fmt.Errorf("%w: effect %q texture_size %d", ErrInvalid, e.Name, e.TextureSize)
		}
		if e.Scale == 0 {
			e.Scale = 1
		}
		if e.MaxParticles < 0 {
			return fmt.Errorf("%w: effect %q max_particles %d", ErrInvalid, e.Name, e.MaxParticles)
		}
		if e.TTLMs <= 0 {
			return fmt.Errorf("%w: effect %q ttl_ms must be positive", ErrInvalid, e.Name)
		}
		if e.Jitter.Position < 0 || e.Jitter.Speed < 0 || e.Jitter.Scale < 0 {
			return fmt.Errorf("%w: effect %q jitter ranges must not be negative", ErrInvalid, e.Name)
		}
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
