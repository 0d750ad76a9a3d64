package config

import "github.com/idtlab/autoignition/internal/reactor"

// Presets are ready-to-run sweep configurations for the built-in mechanism.
var Presets = map[string]func() *Config{
	"baseline": DefaultConfig,

	// Dense temperature grid for figure-quality Arrhenius plots.
	"arrhenius": func() *Config {
		cfg := DefaultConfig()
		temps := make([]float64, 0, 26)
		for T := 900.0; T <= 1400; T += 20 {
			temps = append(temps, T)
		}
		cfg.Grid.Temperatures = temps
		cfg.Uncertainty.Sigmas = map[string]float64{"a1": 0.1 * cfg.Mechanism.A1}
		return cfg
	},

	// Pressure dependence at three fixed temperatures.
	"pressure-ladder": func() *Config {
		cfg := DefaultConfig()
		cfg.Grid.Temperatures = []float64{1000, 1100, 1200}
		cfg.Grid.Pressures = []float64{0.5e5, 1e5, 2e5, 5e5, 10e5}
		return cfg
	},

	// Radical-peak detection instead of the temperature inflection.
	"radical-peak": func() *Config {
		cfg := DefaultConfig()
		cfg.Criterion = CriterionConfig{Method: "peak", Channel: "radical"}
		return cfg
	},

	// Slow chemistry near the window boundary; exercises the no-ignition and
	// boundary-clamped paths.
	"lean-cold": func() *Config {
		cfg := DefaultConfig()
		cfg.Grid.Temperatures = []float64{750, 800, 850, 900, 950}
		cfg.Grid.FuelFractions = []float64{0.05}
		cfg.Mechanism = reactor.DefaultParams()
		return cfg
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
