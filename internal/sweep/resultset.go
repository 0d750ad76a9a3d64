package sweep

import (
	"errors"
	"math"
	"sync"

	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/uncertainty"
)

// ErrFrozen indicates an append to a finalized result set.
var ErrFrozen = errors.New("sweep: result set is frozen")

// FailureKind tags a per-condition failure with its originating stage.
type FailureKind string

const (
	FailIntegration FailureKind = "integration"
	FailTimeout     FailureKind = "timeout"
	FailNoIgnition  FailureKind = "no-ignition"
	FailDetection   FailureKind = "detection"
	FailPropagation FailureKind = "propagation"
)

// Outcome is one per-condition entry of a sweep. Exactly one of two shapes:
// success (Failure empty, Result set, Estimate possibly absent) or failure
// (Failure and Err set; Result kept when detection succeeded before the
// failing stage, for diagnostics).
type Outcome struct {
	Condition ConditionPoint
	Result    *detect.Result
	Estimate  *uncertainty.Estimate
	Failure   FailureKind
	Err       error
}

// OK reports whether the condition produced a usable ignition delay.
func (o Outcome) OK() bool { return o.Failure == "" }

// ResultSet is the append-only, insertion-ordered collection of sweep
// outcomes. A single writer (the runner) appends; Freeze makes it immutable
// and safe for concurrent readers.
type ResultSet struct {
	mu      sync.Mutex
	entries []Outcome
	index   map[string]int
	frozen  bool
}

// NewResultSet returns an empty, unfrozen result set.
func NewResultSet() *ResultSet {
	return &ResultSet{index: make(map[string]int)}
}

// Add appends an outcome. The first entry wins for duplicate conditions in
// Query; insertion order is preserved regardless.
func (r *ResultSet) Add(o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	key := o.Condition.Key()
	if _, dup := r.index[key]; !dup {
		r.index[key] = len(r.entries)
	}
	r.entries = append(r.entries, o)
	return nil
}

// Freeze finalizes the set. Idempotent.
func (r *ResultSet) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the set has been finalized.
func (r *ResultSet) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Len reports the number of entries.
func (r *ResultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// At returns the i-th outcome in insertion order.
func (r *ResultSet) At(i int) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[i]
}

// Outcomes returns a copy of all entries in insertion order.
func (r *ResultSet) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.entries...)
}

// Query looks up the outcome for an exact condition match.
func (r *ResultSet) Query(cond ConditionPoint) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[cond.Key()]
	if !ok {
		return Outcome{}, false
	}
	return r.entries[i], true
}

// Table is the parallel-array export of a result set. Delay and Sigma hold
// NaN for failed or uncertainty-absent entries; OK is the authoritative
// validity mask — a NaN delay only means "missing" where OK is false.
type Table struct {
	Temperature        []float64
	Pressure           []float64
	InverseTemperature []float64 // 1000 K / T, the standard IDT figure axis
	Delay              []float64
	Sigma              []float64
	OK                 []bool
	Failure            []string
	Flag               []string
}

// Export flattens the set into parallel arrays for plotting and persistence.
func (r *ResultSet) Export() Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	t := Table{
		Temperature:        make([]float64, n),
		Pressure:           make([]float64, n),
		InverseTemperature: make([]float64, n),
		Delay:              make([]float64, n),
		Sigma:              make([]float64, n),
		OK:                 make([]bool, n),
		Failure:            make([]string, n),
		Flag:               make([]string, n),
	}

	for i, o := range r.entries {
		t.Temperature[i] = o.Condition.Temperature
		t.Pressure[i] = o.Condition.Pressure
		t.InverseTemperature[i] = 1000 / o.Condition.Temperature
		t.Delay[i] = math.NaN()
		t.Sigma[i] = math.NaN()
		if o.OK() {
			t.OK[i] = true
			t.Delay[i] = o.Result.Time
			t.Flag[i] = string(o.Result.Flag)
			if o.Estimate != nil {
				t.Sigma[i] = o.Estimate.Sigma
			}
		} else {
			t.Failure[i] = string(o.Failure)
			if o.Result != nil {
				t.Flag[i] = string(o.Result.Flag)
			}
		}
	}
	return t
}
