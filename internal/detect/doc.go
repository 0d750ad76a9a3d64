// Package detect extracts ignition delay times from simulated reactor
// histories.
//
// A [Criterion] selects the channel and algorithm:
//
//   - [MaxSlope]: steepest rise of the channel (temperature inflection)
//   - [ThresholdCrossing]: first upward crossing of a fixed value
//   - [Peak]: global maximum of the channel (radical species histories)
//
// Discrete events are refined to sub-sample precision, quadratically for the
// extremum criteria and linearly for threshold crossings. Events pinned to the
// first or last sample are flagged [FlagBoundaryClamped] rather than rejected:
//
//	det := detect.NewDetector()
//	res, err := det.Detect(s, detect.MaxSlope("T"))
//	if errors.Is(err, detect.ErrNoIgnition) {
//	    // mixture never ignited; a diagnostic outcome, not a bug
//	}
package detect
