package detect

import (
	"fmt"
	"math"

	"github.com/idtlab/autoignition/internal/series"
)

// Flag qualifies the reliability of a detection result.
type Flag string

const (
	// FlagInterpolated marks a normally refined, sub-sample-precision result.
	FlagInterpolated Flag = "interpolated"

	// FlagBoundaryClamped marks an event at the first or last sample; the
	// true event likely lies outside the simulated window.
	FlagBoundaryClamped Flag = "boundary-clamped"

	// FlagAmbiguousPeaks marks several maxima within tolerance of the global
	// maximum; the earliest was chosen.
	FlagAmbiguousPeaks Flag = "ambiguous-multiple-peaks"
)

// Result is the outcome of one detection on one series.
type Result struct {
	// Time is the detected ignition time, in the series' time units.
	Time float64

	// Index is the sample index the detection anchored on.
	Index int

	// Window is the [first, last] index range used for refinement.
	Window [2]int

	// Slope is the local time derivative of the detection channel at the
	// ignition point. The propagator divides by it.
	Slope float64

	// Residual is the sub-sample shift applied by interpolation, a measure of
	// how far the refined time moved from the anchor sample.
	Residual float64

	// Channel is the channel the criterion was applied to.
	Channel string

	// Flag qualifies the result.
	Flag Flag
}

// Detector extracts ignition times from signal series. The zero value is
// usable; NewDetector applies the default tie tolerance.
type Detector struct {
	// MinRise is the minimum peak-to-trough channel rise for the series to
	// count as ignited at all (max-slope and peak criteria). Zero means any
	// strictly positive rise qualifies.
	MinRise float64

	// TieTol is the relative tolerance within which competing maxima are
	// considered tied.
	TieTol float64
}

const defaultTieTol = 1e-9

// NewDetector returns a Detector with default tolerances.
func NewDetector() *Detector {
	return &Detector{TieTol: defaultTieTol}
}

// Detect applies the criterion to the series. Fewer than 3 points is
// ErrInsufficientPoints for every method; even the threshold crossing
// reports the channel slope, which needs a usable derivative estimate.
//
// ErrNoIgnition and ErrNoCrossing are diagnostic outcomes, distinguishable
// with errors.Is; ErrChannelMissing and ErrInsufficientPoints indicate an
// unusable request.
func (d *Detector) Detect(s *series.Series, c Criterion) (Result, error) {
	x, ok := s.Channel(c.Channel)
	if !ok {
		return Result{}, &Error{Channel: c.Channel, Wrapped: ErrChannelMissing}
	}
	t := s.Times()
	if len(t) < 3 {
		return Result{}, &Error{Channel: c.Channel, Wrapped: ErrInsufficientPoints}
	}

	switch c.Method {
	case MethodMaxSlope:
		if err := d.checkRise(x, c.Channel); err != nil {
			return Result{}, err
		}
		return d.detectExtremum(t, x, gradient(x, t), c.Channel, true), nil

	case MethodPeak:
		if err := d.checkRise(x, c.Channel); err != nil {
			return Result{}, err
		}
		return d.detectExtremum(t, x, x, c.Channel, false), nil

	case MethodThresholdCrossing:
		return d.detectCrossing(t, x, c.Channel, c.Value)

	default:
		return Result{}, fmt.Errorf("detect: unhandled method %v", c.Method)
	}
}

// checkRise requires a forward rise: the largest increase from an earlier
// trough to a later sample. A monotonically decreasing trace has a full
// range but no rise, and must not count as ignited.
func (d *Detector) checkRise(x []float64, channel string) error {
	lo := x[0]
	rise := 0.0
	for _, v := range x {
		if v < lo {
			lo = v
		}
		if v-lo > rise {
			rise = v - lo
		}
	}
	if rise <= d.MinRise {
		return &Error{Channel: channel, Wrapped: ErrNoIgnition}
	}
	return nil
}

// detectExtremum locates the global maximum of y over t, refines it by
// quadratic interpolation, and reports the channel slope at the event. For
// max-slope, y is the channel derivative and the slope is the refined maximum
// itself; for peak, y is the channel and the slope is its (near-zero)
// derivative at the peak.
func (d *Detector) detectExtremum(t, x, y []float64, channel string, yIsSlope bool) Result {
	n := len(y)

	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	tol := d.TieTol * math.Max(math.Abs(max), d.TieTol)

	candidates := localMaxima(y)
	idx := -1
	tied := 0
	for _, i := range candidates {
		if y[i] >= max-tol {
			tied++
			if idx == -1 {
				idx = i
			}
		}
	}
	if idx == -1 {
		idx = 0 // all-equal series; checkRise rejects the truly flat case
	}

	res := Result{Index: idx, Channel: channel, Flag: FlagInterpolated}
	if tied > 1 {
		res.Flag = FlagAmbiguousPeaks
	}

	if idx == 0 || idx == n-1 {
		res.Time = t[idx]
		res.Window = [2]int{idx, idx}
		res.Flag = FlagBoundaryClamped
		if yIsSlope {
			res.Slope = y[idx]
		} else {
			res.Slope = gradient(x, t)[idx]
		}
		return res
	}

	tv, yv := parabolicVertex(t, y, idx)
	res.Time = tv
	res.Residual = tv - t[idx]
	res.Window = [2]int{idx - 1, idx + 1}
	if yIsSlope {
		res.Slope = yv
	} else {
		res.Slope = gradient(x, t)[idx]
	}
	return res
}

func (d *Detector) detectCrossing(t, x []float64, channel string, value float64) (Result, error) {
	n := len(t)

	if x[0] >= value {
		// Already above threshold at the first sample.
		return Result{
			Time:    t[0],
			Index:   0,
			Window:  [2]int{0, 0},
			Slope:   gradient(x, t)[0],
			Channel: channel,
			Flag:    FlagBoundaryClamped,
		}, nil
	}

	for i := 0; i < n-1; i++ {
		if x[i] < value && x[i+1] >= value {
			dt := t[i+1] - t[i]
			dx := x[i+1] - x[i]
			tc := t[i] + (value-x[i])/dx*dt

			res := Result{
				Time:     tc,
				Index:    i,
				Window:   [2]int{i, i + 1},
				Slope:    dx / dt,
				Residual: tc - t[i],
				Channel:  channel,
				Flag:     FlagInterpolated,
			}
			if tc >= t[n-1] {
				res.Flag = FlagBoundaryClamped
			}
			return res, nil
		}
	}

	return Result{}, &Error{Channel: channel, Wrapped: ErrNoCrossing}
}
