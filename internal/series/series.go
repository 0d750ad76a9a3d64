package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Construction errors indicate a collaborator bug (malformed integrator
// output), not a data condition; callers propagate them instead of recording
// them as sweep failures.
var (
	// ErrTooShort indicates fewer than two time points.
	ErrTooShort = errors.New("series: need at least 2 time points")

	// ErrNonMonotonic indicates a time base that is not strictly increasing.
	ErrNonMonotonic = errors.New("series: time base must be strictly increasing")

	// ErrLengthMismatch indicates a channel or sensitivity trace whose length
	// differs from the time base.
	ErrLengthMismatch = errors.New("series: trace length does not match time base")

	// ErrNoChannels indicates a series constructed without any channel.
	ErrNoChannels = errors.New("series: at least one channel required")
)

// Series is an immutable container for one simulation's time-aligned
// observable channels (temperature, pressure, species mole fractions) plus
// optional per-parameter sensitivity traces. All traces share the time base.
type Series struct {
	times         []float64
	channels      map[string][]float64
	sensitivities map[string][]float64
}

// New validates and copies its inputs. Sensitivities may be nil.
func New(times []float64, channels map[string][]float64, sensitivities map[string][]float64) (*Series, error) {
	if len(times) < 2 {
		return nil, ErrTooShort
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: t[%d]=%g, t[%d]=%g", ErrNonMonotonic, i-1, times[i-1], i, times[i])
		}
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for name, vals := range channels {
		if len(vals) != len(times) {
			return nil, fmt.Errorf("%w: channel %q has %d points, time base has %d", ErrLengthMismatch, name, len(vals), len(times))
		}
	}
	for param, vals := range sensitivities {
		if len(vals) != len(times) {
			return nil, fmt.Errorf("%w: sensitivity %q has %d points, time base has %d", ErrLengthMismatch, param, len(vals), len(times))
		}
	}

	s := &Series{
		times:    append([]float64(nil), times...),
		channels: make(map[string][]float64, len(channels)),
	}
	for name, vals := range channels {
		s.channels[name] = append([]float64(nil), vals...)
	}
	if len(sensitivities) > 0 {
		s.sensitivities = make(map[string][]float64, len(sensitivities))
		for param, vals := range sensitivities {
			s.sensitivities[param] = append([]float64(nil), vals...)
		}
	}
	return s, nil
}

// Len reports the number of time points.
func (s *Series) Len() int { return len(s.times) }

// Times returns a copy of the time base.
func (s *Series) Times() []float64 {
	return append([]float64(nil), s.times...)
}

// Time returns the time at index i.
func (s *Series) Time(i int) float64 { return s.times[i] }

// Channel returns a copy of the named channel's values.
func (s *Series) Channel(name string) ([]float64, bool) {
	vals, ok := s.channels[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals...), true
}

// HasChannel reports whether the named channel exists.
func (s *Series) HasChannel(name string) bool {
	_, ok := s.channels[name]
	return ok
}

// Channels returns the channel names in sorted order.
func (s *Series) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sensitivity returns a copy of the sensitivity trace for the parameter.
func (s *Series) Sensitivity(param string) ([]float64, bool) {
	vals, ok := s.sensitivities[param]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals...), true
}

// HasSensitivity reports whether the parameter was tracked.
func (s *Series) HasSensitivity(param string) bool {
	_, ok := s.sensitivities[param]
	return ok
}

// SensitivityParams returns the tracked parameter names in sorted order.
func (s *Series) SensitivityParams() []string {
	params := make([]string, 0, len(s.sensitivities))
	for param := range s.sensitivities {
		params = append(params, param)
	}
	sort.Strings(params)
	return params
}

// TopChannels returns up to n channel names ranked by their maximum value in
// descending order. n <= 0 means all. Excluded names are skipped.
func (s *Series) TopChannels(n int, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	type ranked struct {
		name string
		max  float64
	}
	rankings := make([]ranked, 0, len(s.channels))
	for name, vals := range s.channels {
		if skip[name] {
			continue
		}
		max := math.Inf(-1)
		for _, v := range vals {
			if v > max {
				max = v
			}
		}
		rankings = append(rankings, ranked{name, max})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].max != rankings[j].max {
			return rankings[i].max > rankings[j].max
		}
		return rankings[i].name < rankings[j].name
	})

	if n > 0 && n < len(rankings) {
		rankings = rankings[:n]
	}
	names := make([]string, len(rankings))
	for i, r := range rankings {
		names[i] = r.name
	}
	return names
}
