// Package reactor provides the built-in zero-dimensional reactor model used
// as the reference integrator for sweeps.
//
// The chemistry is a two-step global mechanism,
//
//	fuel → radical    k1 = a1·exp(−ta1/T)
//	radical → products k2 = a2·exp(−ta2/T)
//
// with the heat release tied to radical consumption, so the temperature
// history shows the classic induction period followed by thermal runaway, and
// the radical channel peaks at ignition. Constant volume; the pressure
// channel follows the ideal-gas law. Stepping is a fixed-grid exponential
// scheme that stays stable through the stiff post-ignition rates.
// Sensitivity traces of the temperature with respect to the rate parameters
// are produced by finite-difference replay on the same time grid.
package reactor

import (
	"context"
	"errors"
	"fmt"

	"github.com/idtlab/autoignition/internal/series"
	"github.com/idtlab/autoignition/internal/sweep"
)

// ErrInvalidCondition indicates a condition the model cannot simulate
// (non-positive temperature or pressure, fuel fraction outside (0, 1]).
var ErrInvalidCondition = errors.New("reactor: invalid condition")

// Params are the global-mechanism rate constants.
type Params struct {
	A1  float64 `yaml:"a1"`  // fuel step pre-exponential [1/s]
	Ta1 float64 `yaml:"ta1"` // fuel step activation temperature [K]
	A2  float64 `yaml:"a2"`  // radical step pre-exponential [1/s]
	Ta2 float64 `yaml:"ta2"` // radical step activation temperature [K]
	Q   float64 `yaml:"q"`   // temperature rise per unit radical consumed [K]
}

// DefaultParams ignite around a millisecond near 1000 K with a 10% fuel
// mixture.
func DefaultParams() Params {
	return Params{A1: 5e9, Ta1: 15000, A2: 5e9, Ta2: 9000, Q: 15000}
}

// value returns the named parameter, or false for unknown names.
func (p Params) value(name string) (float64, bool) {
	switch name {
	case "a1":
		return p.A1, true
	case "ta1":
		return p.Ta1, true
	case "a2":
		return p.A2, true
	case "ta2":
		return p.Ta2, true
	case "q":
		return p.Q, true
	default:
		return 0, false
	}
}

// with returns a copy with the named parameter replaced.
func (p Params) with(name string, v float64) Params {
	switch name {
	case "a1":
		p.A1 = v
	case "ta1":
		p.Ta1 = v
	case "a2":
		p.A2 = v
	case "ta2":
		p.Ta2 = v
	case "q":
		p.Q = v
	}
	return p
}

// Names lists the perturbable parameter names.
func (p Params) Names() []string {
	return []string{"a1", "ta1", "a2", "ta2", "q"}
}

// Model integrates the two-step mechanism on a fixed time grid. It implements
// sweep.Integrator and is safe for concurrent Simulate calls.
type Model struct {
	Params   Params
	Dt       float64 // fixed step [s]
	Duration float64 // simulated window [s]
	FDRel    float64 // relative perturbation for sensitivity replay
}

// NewModel returns a model with default kinetics, a 1 µs step, and a 5 ms
// window.
func NewModel() *Model {
	return &Model{
		Params:   DefaultParams(),
		Dt:       1e-6,
		Duration: 5e-3,
		FDRel:    1e-4,
	}
}

var _ sweep.Integrator = (*Model)(nil)

// Simulate integrates the condition and returns its signal series with
// channels "T", "P", "fuel", "radical" and temperature sensitivities for the
// tracked parameters. Condition Params matching a rate-parameter name
// override the model's value for that run; other entries are sweep metadata
// and ignored.
func (m *Model) Simulate(ctx context.Context, cond sweep.ConditionPoint, trackParams []string) (*series.Series, error) {
	yf0 := fuelFraction(cond)
	if cond.Temperature <= 0 || cond.Pressure <= 0 || yf0 <= 0 || yf0 > 1 {
		return nil, fmt.Errorf("%w: T=%g P=%g fuel=%g", ErrInvalidCondition, cond.Temperature, cond.Pressure, yf0)
	}

	p := m.Params
	for name, v := range cond.Params {
		if _, known := p.value(name); known {
			p = p.with(name, v)
		}
	}

	times, yf, yr, temps, err := m.integrate(ctx, p, cond.Temperature, yf0)
	if err != nil {
		return nil, err
	}

	press := make([]float64, len(times))
	for i, T := range temps {
		press[i] = cond.Pressure * T / cond.Temperature
	}
	channels := map[string][]float64{
		"T":       temps,
		"P":       press,
		"fuel":    yf,
		"radical": yr,
	}

	var sens map[string][]float64
	for _, name := range trackParams {
		base, known := p.value(name)
		if !known {
			continue
		}
		h := m.FDRel * base
		if h == 0 {
			h = m.FDRel
		}
		_, _, _, perturbed, err := m.integrate(ctx, p.with(name, base+h), cond.Temperature, yf0)
		if err != nil {
			return nil, err
		}
		trace := make([]float64, len(temps))
		for i := range temps {
			trace[i] = (perturbed[i] - temps[i]) / h
		}
		if sens == nil {
			sens = make(map[string][]float64, len(trackParams))
		}
		sens[name] = trace
	}

	return series.New(times, channels, sens)
}

func fuelFraction(cond sweep.ConditionPoint) float64 {
	if cond.Composition == nil {
		return 0.1
	}
	return cond.Composition["fuel"]
}
