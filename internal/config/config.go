package config

import (
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/imagestats"
	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/logging"
	"github.com/san-kum/chaoscrypt/internal/seed"
)

const (
	DefaultRounds     = 3
	DefaultStorageDir = "runs"
)

type Config struct {
	Material MaterialConfig          `yaml:"material"`
	Screen   ScreenConfig            `yaml:"screen"`
	Lyapunov analysis.LyapunovConfig `yaml:"lyapunov"`
	Cipher   CipherConfig            `yaml:"cipher"`
	Analysis imagestats.Options      `yaml:"analysis"`
	Log      logging.Config          `yaml:"log"`
	Storage  StorageConfig           `yaml:"storage"`
	Metrics  MetricsConfig           `yaml:"metrics"`
}

// MaterialConfig drives the trajectories that keys and S-boxes are read from.
type MaterialConfig struct {
	Dt             float64 `yaml:"dt"`
	Steps          int     `yaml:"steps"`
	TransientSteps int     `yaml:"transient_steps"`
	SampleEvery    int     `yaml:"sample_every"`
	Coordinates    []int   `yaml:"coordinates"`
}

// ScreenConfig bounds the divergence screening of seed-drawn candidates.
type ScreenConfig struct {
	Steps       int     `yaml:"steps"`
	Dt          float64 `yaml:"dt"`
	Bound       float64 `yaml:"bound"`
	MaxAttempts int     `yaml:"max_attempts"`
}

type CipherConfig struct {
	Rounds int `yaml:"rounds"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig names the Prometheus textfile written after each command.
// An empty File disables the dump.
type MetricsConfig struct {
	File string `yaml:"file"`
}

func DefaultConfig() *Config {
	sim := dynamo.DefaultConfig()
	screen := seed.DefaultOptions()
	return &Config{
		Material: MaterialConfig{
			Dt:             sim.Dt,
			Steps:          sim.Steps,
			TransientSteps: sim.TransientSteps,
			SampleEvery:    sim.SampleEvery,
			Coordinates:    keygen.DefaultOptions().Coordinates,
		},
		Screen: ScreenConfig{
			Steps:       screen.Steps,
			Dt:          screen.Dt,
			Bound:       screen.Bound,
			MaxAttempts: screen.MaxAttempts,
		},
		Lyapunov: analysis.DefaultLyapunovConfig(),
		Cipher:   CipherConfig{Rounds: DefaultRounds},
		Analysis: imagestats.DefaultOptions(),
		Log:      logging.DefaultConfig(),
		Storage:  StorageConfig{Dir: DefaultStorageDir},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as yaml to w.
func Write(w io.Writer, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section. Errors wrap dynamo.ErrInvalidInput.
func (c *Config) Validate() error {
	if err := c.MaterialSim().Validate(); err != nil {
		return fmt.Errorf("material: %w", err)
	}
	for _, coord := range c.Material.Coordinates {
		if coord < 0 || coord >= dynamo.Dim {
			return fmt.Errorf("material: %w: coordinate %d out of range [0,%d)", dynamo.ErrInvalidInput, coord, dynamo.Dim)
		}
	}
	if err := c.SeedOptions().Validate(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := c.Lyapunov.Validate(); err != nil {
		return fmt.Errorf("lyapunov: %w", err)
	}
	if c.Cipher.Rounds < 1 || c.Cipher.Rounds > cipher.MaxRounds {
		return fmt.Errorf("cipher: %w: rounds must be in [1,%d], got %d", dynamo.ErrInvalidInput, cipher.MaxRounds, c.Cipher.Rounds)
	}
	if c.Analysis.PrecisionDigits < 1 {
		return fmt.Errorf("analysis: %w: precision digits must be positive", dynamo.ErrInvalidInput)
	}
	for _, lvl := range c.Analysis.NoiseLevels {
		if lvl.Salt < 0 || lvl.Pepper < 0 || lvl.Salt+lvl.Pepper > 1 {
			return fmt.Errorf("analysis: %w: noise level %+v out of range", dynamo.ErrInvalidInput, lvl)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w: %w", dynamo.ErrInvalidInput, err)
	}
	if !slices.Contains([]string{"", "text", "json"}, c.Log.Format) {
		return fmt.Errorf("log: %w: unknown format %q", dynamo.ErrInvalidInput, c.Log.Format)
	}
	return nil
}

func (c *Config) MaterialSim() dynamo.Config {
	return dynamo.Config{
		Dt:             c.Material.Dt,
		Steps:          c.Material.Steps,
		TransientSteps: c.Material.TransientSteps,
		SampleEvery:    c.Material.SampleEvery,
	}
}

func (c *Config) SeedOptions() seed.Options {
	return seed.Options{
		Steps:       c.Screen.Steps,
		Dt:          c.Screen.Dt,
		Bound:       c.Screen.Bound,
		MaxAttempts: c.Screen.MaxAttempts,
	}
}

func (c *Config) KeygenOptions() keygen.Options {
	return keygen.Options{Coordinates: slices.Clone(c.Material.Coordinates)}
}

func (c *Config) AnalysisOptions() imagestats.Options {
	opts := c.Analysis
	opts.NoiseLevels = slices.Clone(c.Analysis.NoiseLevels)
	return opts
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Material.Coordinates = slices.Clone(c.Material.Coordinates)
	out.Analysis.NoiseLevels = slices.Clone(c.Analysis.NoiseLevels)
	return &out
}
