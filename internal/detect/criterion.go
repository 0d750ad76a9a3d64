package detect

import "fmt"

// Method selects the ignition detection algorithm.
type Method int

const (
	// MethodMaxSlope detects ignition at the steepest rise of the channel
	// (the inflection of a temperature sigmoid).
	MethodMaxSlope Method = iota

	// MethodThresholdCrossing detects the first upward crossing of a fixed value.
	MethodThresholdCrossing

	// MethodPeak detects the global maximum of the channel itself
	// (radical species such as OH).
	MethodPeak
)

func (m Method) String() string {
	switch m {
	case MethodMaxSlope:
		return "max-slope"
	case MethodThresholdCrossing:
		return "threshold-crossing"
	case MethodPeak:
		return "peak"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a config/CLI name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "max-slope", "inflection":
		return MethodMaxSlope, nil
	case "threshold-crossing", "threshold":
		return MethodThresholdCrossing, nil
	case "peak", "max":
		return MethodPeak, nil
	default:
		return 0, fmt.Errorf("detect: unknown method %q (valid: max-slope, threshold-crossing, peak)", s)
	}
}

// Criterion is the closed set of detection requests. Value is only meaningful
// for MethodThresholdCrossing.
type Criterion struct {
	Method  Method
	Channel string
	Value   float64
}

// MaxSlope builds a max-slope criterion on the channel.
func MaxSlope(channel string) Criterion {
	return Criterion{Method: MethodMaxSlope, Channel: channel}
}

// ThresholdCrossing builds a threshold-crossing criterion on the channel.
func ThresholdCrossing(channel string, value float64) Criterion {
	return Criterion{Method: MethodThresholdCrossing, Channel: channel, Value: value}
}

// Peak builds a peak criterion on the channel.
func Peak(channel string) Criterion {
	return Criterion{Method: MethodPeak, Channel: channel}
}

func (c Criterion) String() string {
	if c.Method == MethodThresholdCrossing {
		return fmt.Sprintf("%s(%s, %g)", c.Method, c.Channel, c.Value)
	}
	return fmt.Sprintf("%s(%s)", c.Method, c.Channel)
}
