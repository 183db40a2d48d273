package config

import (
	"sort"

	"github.com/san-kum/chaoscrypt/internal/imagestats"
)

// Presets trade derivation and analysis cost against statistical depth.
// Derived material differs between presets with different material or
// screen sections, so ciphertext must be decrypted under the preset that
// produced it.
var Presets = map[string]*Config{
	"fast": func() *Config {
		c := DefaultConfig()
		c.Material.Steps = 51200
		c.Screen.Steps = 5000
		c.Lyapunov.Steps = 20000
		c.Analysis.SkipNoise = true
		return c
	}(),
	"standard": DefaultConfig(),
	"reference": func() *Config {
		c := DefaultConfig()
		c.Lyapunov.Steps = 500000
		c.Lyapunov.TransientSteps = 10000
		c.Analysis.NoiseLevels = []imagestats.NoiseLevel{
			{Salt: 0.005, Pepper: 0.005},
			{Salt: 0.01, Pepper: 0.01},
			{Salt: 0.025, Pepper: 0.025},
			{Salt: 0.05, Pepper: 0.05},
			{Salt: 0.1, Pepper: 0.1},
		}
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
