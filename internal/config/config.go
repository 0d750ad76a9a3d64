package config

import (
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/reactor"
	"github.com/idtlab/autoignition/internal/sweep"
	"github.com/idtlab/autoignition/internal/uncertainty"
)

const (
	DefaultDt       = 1e-6
	DefaultDuration = 5e-3
	DefaultWorkers  = 4
	DefaultFuel     = 0.1
	DefaultPressure = 101325.0
)

// Config describes one sweep: the mechanism, the condition grid, the
// detection criterion, the uncertainty model, and runner settings.
type Config struct {
	Mechanism   reactor.Params    `yaml:"mechanism"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Grid        GridConfig        `yaml:"grid"`
	Criterion   CriterionConfig   `yaml:"criterion"`
	Uncertainty UncertaintyConfig `yaml:"uncertainty"`
	Sweep       SweepConfig       `yaml:"sweep"`
	OutputDir   string            `yaml:"output_dir"`
}

type SimulationConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
}

// GridConfig expands to the cartesian condition grid: temperature outermost,
// then pressure, then fuel fraction.
type GridConfig struct {
	Temperatures  []float64 `yaml:"temperatures"`
	Pressures     []float64 `yaml:"pressures"`
	FuelFractions []float64 `yaml:"fuel_fractions"`
}

type CriterionConfig struct {
	Method  string  `yaml:"method"`
	Channel string  `yaml:"channel"`
	Value   float64 `yaml:"value"`
}

// UncertaintyConfig carries either independent sigmas or a full covariance
// (params + row-major matrix). The covariance wins when both are present.
type UncertaintyConfig struct {
	Sigmas     map[string]float64 `yaml:"sigmas"`
	CovParams  []string           `yaml:"cov_params"`
	Covariance [][]float64        `yaml:"covariance"`
}

type SweepConfig struct {
	Workers int    `yaml:"workers"`
	Timeout string `yaml:"timeout"` // time.ParseDuration syntax, empty = unbounded
}

// DefaultConfig is a runnable sweep over 900–1250 K at atmospheric pressure
// with the built-in mechanism.
func DefaultConfig() *Config {
	return &Config{
		Mechanism: reactor.DefaultParams(),
		Simulation: SimulationConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
		},
		Grid: GridConfig{
			Temperatures:  []float64{900, 950, 1000, 1050, 1100, 1150, 1200, 1250},
			Pressures:     []float64{DefaultPressure},
			FuelFractions: []float64{DefaultFuel},
		},
		Criterion: CriterionConfig{Method: "max-slope", Channel: "T"},
		Sweep:     SweepConfig{Workers: DefaultWorkers, Timeout: "30s"},
		OutputDir: "output",
	}
}

// Load reads a YAML config, applying defaults for unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Conditions expands the grid in cartesian order.
func (c *Config) Conditions() []sweep.ConditionPoint {
	temps := c.Grid.Temperatures
	press := c.Grid.Pressures
	fuels := c.Grid.FuelFractions
	if len(press) == 0 {
		press = []float64{DefaultPressure}
	}
	if len(fuels) == 0 {
		fuels = []float64{DefaultFuel}
	}

	conds := make([]sweep.ConditionPoint, 0, len(temps)*len(press)*len(fuels))
	for _, T := range temps {
		for _, P := range press {
			for _, x := range fuels {
				conds = append(conds, sweep.ConditionPoint{
					Temperature: T,
					Pressure:    P,
					Composition: map[string]float64{"fuel": x},
				})
			}
		}
	}
	return conds
}

// BuildCriterion converts the criterion section to a detect.Criterion.
func (c *Config) BuildCriterion() (detect.Criterion, error) {
	method, err := detect.ParseMethod(c.Criterion.Method)
	if err != nil {
		return detect.Criterion{}, err
	}
	channel := c.Criterion.Channel
	if channel == "" {
		channel = "T"
	}
	return detect.Criterion{Method: method, Channel: channel, Value: c.Criterion.Value}, nil
}

// BuildModel converts the uncertainty section to an uncertainty.Model.
func (c *Config) BuildModel() (uncertainty.Model, error) {
	u := c.Uncertainty
	if len(u.CovParams) > 0 {
		n := len(u.CovParams)
		if len(u.Covariance) != n {
			return uncertainty.Model{}, fmt.Errorf("config: covariance has %d rows for %d params", len(u.Covariance), n)
		}
		cov := mat.NewSymDense(n, nil)
		for i, row := range u.Covariance {
			if len(row) != n {
				return uncertainty.Model{}, fmt.Errorf("config: covariance row %d has %d columns, want %d", i, len(row), n)
			}
			for j := i; j < n; j++ {
				cov.SetSym(i, j, row[j])
			}
		}
		return uncertainty.NewModelWithCovariance(u.CovParams, cov)
	}
	return uncertainty.NewModel(u.Sigmas), nil
}

// BuildIntegrator constructs the built-in reactor model from the mechanism
// and simulation sections.
func (c *Config) BuildIntegrator() *reactor.Model {
	m := reactor.NewModel()
	m.Params = c.Mechanism
	if c.Simulation.Dt > 0 {
		m.Dt = c.Simulation.Dt
	}
	if c.Simulation.Duration > 0 {
		m.Duration = c.Simulation.Duration
	}
	return m
}

// BuildRunner constructs a sweep runner from the sweep section.
func (c *Config) BuildRunner() (*sweep.Runner, error) {
	r := sweep.NewRunner()
	if c.Sweep.Workers > 0 {
		r.Workers = c.Sweep.Workers
	}
	if c.Sweep.Timeout != "" {
		d, err := time.ParseDuration(c.Sweep.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config: bad sweep timeout: %w", err)
		}
		r.Timeout = d
	}
	return r, nil
}
