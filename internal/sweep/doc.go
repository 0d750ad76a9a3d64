// Package sweep orchestrates ignition-delay parameter sweeps.
//
// A [Runner] iterates a condition grid, delegates each integration to the
// external [Integrator] capability, detects the ignition event, attaches
// propagated uncertainty, and collects everything into an insertion-ordered
// [ResultSet]:
//
//	r := sweep.NewRunner()
//	r.Workers = 4
//	r.Timeout = 30 * time.Second
//	rs, err := r.Run(ctx, conds, detect.MaxSlope("T"), model, integ)
//
// Per-condition failures (solver non-convergence, timeout, no ignition,
// propagation problems) become tagged entries; only caller cancellation stops
// a sweep. With workers, out-of-order completions are buffered so that result
// placement always mirrors submission order.
package sweep
