package uncertainty

import "errors"

var (
	// ErrMissingSensitivities indicates the series tracks none of the
	// parameters named by the model; callers should fall back to an
	// uncertainty-absent result.
	ErrMissingSensitivities = errors.New("uncertainty: series tracks no parameter named in model")

	// ErrSingularSensitivity indicates the channel slope at ignition is too
	// close to zero to divide by (flat region or boundary-clamped result).
	ErrSingularSensitivity = errors.New("uncertainty: channel slope at ignition is numerically zero")

	// ErrCovarianceShape indicates a covariance matrix whose dimension does
	// not match its parameter list.
	ErrCovarianceShape = errors.New("uncertainty: covariance dimension does not match parameter list")
)
