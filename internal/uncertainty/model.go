package uncertainty

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Model describes the input-parameter uncertainty to propagate. When a full
// covariance is supplied it is used alone; the diagonal Sigmas map is the
// fallback for the common uncorrelated case.
type Model struct {
	// Sigmas maps parameter name to standard uncertainty, parameters assumed
	// independent. Ignored when a covariance is present.
	Sigmas map[string]float64

	covParams []string
	cov       *mat.SymDense
}

// NewModel builds an independent-parameter model from standard uncertainties.
func NewModel(sigmas map[string]float64) Model {
	return Model{Sigmas: sigmas}
}

// NewModelWithCovariance builds a model from a full covariance matrix over the
// named parameters. The matrix dimension must equal len(params).
func NewModelWithCovariance(params []string, cov *mat.SymDense) (Model, error) {
	if cov == nil || cov.SymmetricDim() != len(params) {
		dim := 0
		if cov != nil {
			dim = cov.SymmetricDim()
		}
		return Model{}, fmt.Errorf("%w: %d params, %dx%d matrix", ErrCovarianceShape, len(params), dim, dim)
	}
	c := mat.NewSymDense(len(params), nil)
	c.CopySym(cov)
	return Model{
		covParams: append([]string(nil), params...),
		cov:       c,
	}, nil
}

// HasCovariance reports whether a full covariance was supplied.
func (m Model) HasCovariance() bool { return m.cov != nil }

// Params returns the model's parameter names in a stable order: the covariance
// ordering when present, sorted Sigmas keys otherwise.
func (m Model) Params() []string {
	if m.cov != nil {
		return append([]string(nil), m.covParams...)
	}
	params := make([]string, 0, len(m.Sigmas))
	for p := range m.Sigmas {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

// Covariance returns the parameter order and a copy of the covariance matrix,
// or nil when the model is diagonal.
func (m Model) Covariance() ([]string, *mat.SymDense) {
	if m.cov == nil {
		return nil, nil
	}
	c := mat.NewSymDense(m.cov.SymmetricDim(), nil)
	c.CopySym(m.cov)
	return append([]string(nil), m.covParams...), c
}
