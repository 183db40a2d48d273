package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	sim := cfg.MaterialSim()
	assert.Equal(t, 0.01, sim.Dt)
	assert.Equal(t, 409600, sim.Steps)
	assert.Equal(t, 200, sim.SampleEvery)
	assert.Equal(t, 2049, sim.Samples())

	assert.Equal(t, 3, cfg.Cipher.Rounds)
	assert.Equal(t, []int{0}, cfg.KeygenOptions().Coordinates)
	assert.Equal(t, 16, cfg.SeedOptions().MaxAttempts)
	assert.Equal(t, 10, cfg.Lyapunov.ReorthoInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero material dt", func(c *Config) { c.Material.Dt = 0 }},
		{"bad coordinate", func(c *Config) { c.Material.Coordinates = []int{0, 4} }},
		{"negative screen steps", func(c *Config) { c.Screen.Steps = -1 }},
		{"zero attempts", func(c *Config) { c.Screen.MaxAttempts = 0 }},
		{"zero reortho", func(c *Config) { c.Lyapunov.ReorthoInterval = 0 }},
		{"zero rounds", func(c *Config) { c.Cipher.Rounds = 0 }},
		{"too many rounds", func(c *Config) { c.Cipher.Rounds = 1000 }},
		{"zero precision", func(c *Config) { c.Analysis.PrecisionDigits = 0 }},
		{"noise above one", func(c *Config) { c.Analysis.NoiseLevels[0].Salt = 0.9; c.Analysis.NoiseLevels[0].Pepper = 0.2 }},
		{"log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dynamo.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chaoscrypt.yaml")

	cfg := DefaultConfig()
	cfg.Cipher.Rounds = 5
	cfg.Material.Coordinates = []int{0, 2}
	cfg.Log.Format = "json"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cipher:\n  rounds: 7\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cipher.Rounds)
	assert.Equal(t, 409600, cfg.Material.Steps)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cipher: [unterminated"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("cipher:\n  rounds: 0\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)
}

func TestClone_IsDeep(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Material.Coordinates[0] = 3
	cp.Analysis.NoiseLevels[0].Salt = 0.5
	assert.Equal(t, 0, cfg.Material.Coordinates[0])
	assert.NotEqual(t, 0.5, cfg.Analysis.NoiseLevels[0].Salt)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fast")
	require.NotNil(t, cfg)
	assert.True(t, cfg.Analysis.SkipNoise)
	assert.Less(t, cfg.Material.Steps, DefaultConfig().Material.Steps)

	cfg.Cipher.Rounds = 9
	assert.Equal(t, DefaultRounds, GetPreset("fast").Cipher.Rounds, "GetPreset must return a copy")

	assert.Equal(t, DefaultConfig(), GetPreset("standard"))
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"fast", "reference", "standard"}, ListPresets())
	for _, name := range ListPresets() {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, GetPreset("fast")))
	assert.Contains(t, buf.String(), "steps: 51200")
	assert.Contains(t, buf.String(), "skip_noise: true")
}
