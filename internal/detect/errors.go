package detect

import "errors"

// Detection failures. ErrNoIgnition is a diagnostic outcome (the mixture never
// ignited), not a bug; the other errors indicate an unusable request.
var (
	// ErrChannelMissing indicates the criterion names a channel the series lacks.
	ErrChannelMissing = errors.New("detect: channel not present in series")

	// ErrInsufficientPoints indicates too few samples for derivative estimation.
	ErrInsufficientPoints = errors.New("detect: need at least 3 points for derivative estimation")

	// ErrNoCrossing indicates the channel never crosses the threshold from below.
	ErrNoCrossing = errors.New("detect: channel never crosses threshold")

	// ErrNoIgnition indicates the channel shows no rise consistent with ignition.
	ErrNoIgnition = errors.New("detect: no ignition event in series")
)

// Error wraps a detection failure with the channel it concerns.
type Error struct {
	Channel string
	Wrapped error
}

func (e *Error) Error() string {
	return e.Wrapped.Error() + " (channel " + e.Channel + ")"
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Kind maps a detection error to its short diagnostic tag, or "" for
// non-detection errors.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrChannelMissing):
		return "channel-missing"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient-points"
	case errors.Is(err, ErrNoCrossing):
		return "no-crossing"
	case errors.Is(err, ErrNoIgnition):
		return "no-ignition"
	default:
		return ""
	}
}
