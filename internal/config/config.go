package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/diskview/internal/fargo"
)

const (
	DefaultFPS      = 10.0
	DefaultSkip     = 1
	DefaultJump     = 100
	DefaultWidth    = 72
	DefaultHeight   = 36
	DefaultMaxMode  = 8
	DefaultLogLevel = "info"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config holds viewer settings. Run parameters always come from the run's
// own .par file.
type Config struct {
	Dialect  string         `yaml:"dialect"`
	Quantity fargo.Quantity `yaml:"quantity"`
	Playback PlaybackConfig `yaml:"playback"`
	View     ViewConfig     `yaml:"view"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PlaybackConfig struct {
	FPS  float64 `yaml:"fps"`
	Skip int     `yaml:"skip"`

	// Jump is the step size of the fast forward and rewind keys.
	Jump int  `yaml:"jump"`
	Loop bool `yaml:"loop"`
}

type ViewConfig struct {
	Theme         string `yaml:"theme"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	LogScale      bool   `yaml:"log_scale"`
	ShowPlanets   bool   `yaml:"show_planets"`
	ShowParticles bool   `yaml:"show_particles"`
	ShowOrbits    bool   `yaml:"show_orbits"`
	ShowRoche     bool   `yaml:"show_roche"`
}

type AnalysisConfig struct {
	MaxMode int `yaml:"max_mode"`
}

type LoggingConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
	File   string    `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Dialect:  fargo.TWAM.Name,
		Quantity: fargo.Density,
		Playback: PlaybackConfig{
			FPS:  DefaultFPS,
			Skip: DefaultSkip,
			Jump: DefaultJump,
		},
		View: ViewConfig{
			Theme:       "default",
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			ShowPlanets: true,
			ShowOrbits:  true,
		},
		Analysis: AnalysisConfig{
			MaxMode: DefaultMaxMode,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: LogFormatText,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads the settings file at path over a copy of base. Keys the
// file leaves out keep base's values; base itself is not modified.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	*cfg = *base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := fargo.ParseDialect(c.Dialect); err != nil {
		return err
	}
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("playback fps must be positive, got %g", c.Playback.FPS)
	}
	if c.Playback.Skip < 1 {
		return fmt.Errorf("playback skip must be at least 1, got %d", c.Playback.Skip)
	}
	if c.Playback.Jump < 1 {
		return fmt.Errorf("playback jump must be at least 1, got %d", c.Playback.Jump)
	}
	if c.View.Width < 8 || c.View.Height < 4 {
		return fmt.Errorf("view size %dx%d is too small", c.View.Width, c.View.Height)
	}
	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON, "":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// GetDialect returns the configured dialect, falling back to TWAM.
func (c *Config) GetDialect() fargo.Dialect {
	d, err := fargo.ParseDialect(c.Dialect)
	if err != nil {
		return fargo.TWAM
	}
	return d
}

// FrameSkip is the number of timesteps advanced per frame of playback.
func (c *Config) FrameSkip() int {
	if c.Playback.Skip < 1 {
		return 1
	}
	return c.Playback.Skip
}
