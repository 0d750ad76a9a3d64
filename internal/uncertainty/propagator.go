// Package uncertainty propagates input-parameter uncertainty through a
// detected ignition delay.
//
// The propagation is first order: for each tracked parameter p, the local
// sensitivity of the ignition time is obtained from the channel sensitivity at
// the ignition index via the implicit-function relation
//
//	dτ/dp = −(∂x/∂p) / (∂x/∂t)
//
// and combined with the input variances (or full covariance) into a symmetric
// standard uncertainty on the ignition time.
package uncertainty

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/series"
)

// Estimate is an ignition delay with attached uncertainty, symmetric around
// the nominal value. Params records which parameters contributed.
type Estimate struct {
	Nominal float64
	Sigma   float64
	Params  []string
}

// Propagator performs first-order uncertainty propagation.
type Propagator struct {
	// SlopeTol is the magnitude below which the channel slope at ignition is
	// treated as singular.
	SlopeTol float64
}

const defaultSlopeTol = 1e-12

// NewPropagator returns a Propagator with the default slope tolerance.
func NewPropagator() *Propagator {
	return &Propagator{SlopeTol: defaultSlopeTol}
}

// Propagate combines the detection result with the model's uncertainties.
//
// Parameters named by the model but untracked in the series are skipped;
// ErrMissingSensitivities is returned only when no named parameter is tracked
// at all, and takes precedence over any slope problem so that an untracked
// series falls through to the uncertainty-absent outcome. ErrSingularSensitivity
// is returned when the channel slope at the ignition index is numerically zero.
func (p *Propagator) Propagate(s *series.Series, res detect.Result, m Model) (Estimate, error) {
	tracked := false
	for _, param := range m.Params() {
		if s.HasSensitivity(param) {
			tracked = true
			break
		}
	}
	if !tracked {
		return Estimate{}, ErrMissingSensitivities
	}

	tol := p.SlopeTol
	if tol <= 0 {
		tol = defaultSlopeTol
	}
	if math.Abs(res.Slope) <= tol {
		return Estimate{}, ErrSingularSensitivity
	}

	if m.HasCovariance() {
		return p.propagateCovariance(s, res, m)
	}
	return p.propagateDiagonal(s, res, m)
}

func (p *Propagator) propagateDiagonal(s *series.Series, res detect.Result, m Model) (Estimate, error) {
	variance := 0.0
	var contributing []string

	for _, param := range m.Params() {
		sens, ok := s.Sensitivity(param)
		if !ok {
			continue
		}
		g := -sens[res.Index] / res.Slope
		sp := g * m.Sigmas[param]
		variance += sp * sp
		contributing = append(contributing, param)
	}

	if len(contributing) == 0 {
		return Estimate{}, ErrMissingSensitivities
	}
	return Estimate{Nominal: res.Time, Sigma: math.Sqrt(variance), Params: contributing}, nil
}

func (p *Propagator) propagateCovariance(s *series.Series, res detect.Result, m Model) (Estimate, error) {
	params, cov := m.Covariance()

	// Restrict the quadratic form to the tracked parameters.
	var tracked []int
	var contributing []string
	for i, param := range params {
		if s.HasSensitivity(param) {
			tracked = append(tracked, i)
			contributing = append(contributing, param)
		}
	}
	if len(tracked) == 0 {
		return Estimate{}, ErrMissingSensitivities
	}

	k := len(tracked)
	g := mat.NewVecDense(k, nil)
	for j, i := range tracked {
		sens, _ := s.Sensitivity(params[i])
		g.SetVec(j, -sens[res.Index]/res.Slope)
	}

	sub := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			sub.SetSym(a, b, cov.At(tracked[a], tracked[b]))
		}
	}

	variance := mat.Inner(g, sub, g)
	if variance < 0 {
		// Round-off on a positive-semidefinite form.
		variance = 0
	}
	return Estimate{Nominal: res.Time, Sigma: math.Sqrt(variance), Params: contributing}, nil
}
