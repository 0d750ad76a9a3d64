package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/series"
	"github.com/idtlab/autoignition/internal/uncertainty"
)

// Integrator is the external reactor-model capability. Implementations must
// honor ctx and be safe for concurrent calls when the runner uses workers.
type Integrator interface {
	Simulate(ctx context.Context, cond ConditionPoint, trackParams []string) (*series.Series, error)
}

// IntegratorFunc adapts a function to the Integrator interface.
type IntegratorFunc func(ctx context.Context, cond ConditionPoint, trackParams []string) (*series.Series, error)

func (f IntegratorFunc) Simulate(ctx context.Context, cond ConditionPoint, trackParams []string) (*series.Series, error) {
	return f(ctx, cond, trackParams)
}

// Runner orchestrates a sweep: one integrator call per condition (cache hits
// excepted), detection, uncertainty propagation, ordered collection. The
// runner alone appends to the result set.
type Runner struct {
	// Workers is the number of concurrent integrations; <=1 runs sequentially.
	Workers int

	// Timeout bounds each integrator call; zero means no per-condition bound.
	Timeout time.Duration

	// Detector and Propagator default to the package defaults when nil.
	Detector   *detect.Detector
	Propagator *uncertainty.Propagator

	// Cache, when set, is consulted before the integrator and filled after.
	Cache *Cache

	// OnOutcome, when set, is called after each outcome is appended, in
	// insertion order, with the entry's index.
	OnOutcome func(i int, o Outcome)
}

// NewRunner returns a sequential runner with default detector and propagator.
func NewRunner() *Runner {
	return &Runner{
		Workers:    1,
		Detector:   detect.NewDetector(),
		Propagator: uncertainty.NewPropagator(),
	}
}

// Run sweeps the conditions in order. Per-condition failures are recorded as
// entries and never abort the sweep; only caller cancellation stops it, in
// which case the frozen set holds every condition completed in submission
// order and Run returns ctx.Err(). The returned set is always frozen.
func (r *Runner) Run(ctx context.Context, conds []ConditionPoint, criterion detect.Criterion, model uncertainty.Model, integ Integrator) (*ResultSet, error) {
	rs := NewResultSet()
	defer rs.Freeze()

	track := model.Params()

	if r.Workers <= 1 {
		for i, cond := range conds {
			select {
			case <-ctx.Done():
				return rs, ctx.Err()
			default:
			}
			o := r.evaluate(ctx, cond, criterion, model, track, integ)
			if canceled(o) {
				return rs, ctx.Err()
			}
			rs.Add(o)
			if r.OnOutcome != nil {
				r.OnOutcome(i, o)
			}
		}
		return rs, nil
	}

	return r.runParallel(ctx, rs, conds, criterion, model, track, integ)
}

func (r *Runner) runParallel(ctx context.Context, rs *ResultSet, conds []ConditionPoint, criterion detect.Criterion, model uncertainty.Model, track []string, integ Integrator) (*ResultSet, error) {
	type indexed struct {
		i int
		o Outcome
	}

	jobs := make(chan int)
	done := make(chan indexed)
	dispatched := make(chan int, 1)

	// Dispatcher: stops issuing conditions once the caller cancels.
	go func() {
		n := 0
		for i := range conds {
			select {
			case <-ctx.Done():
			case jobs <- i:
				n++
				continue
			}
			break
		}
		close(jobs)
		dispatched <- n
	}()

	var wg sync.WaitGroup
	for w := 0; w < r.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				done <- indexed{i, r.evaluate(ctx, conds[i], criterion, model, track, integ)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	// Collector: buffer out-of-order completions, append in submission order.
	pending := make(map[int]Outcome)
	next := 0
	for d := range done {
		pending[d.i] = d.o
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if canceled(o) {
				// Drain remaining completions, keep only the ordered prefix.
				for range done {
				}
				<-dispatched
				return rs, ctx.Err()
			}
			rs.Add(o)
			if r.OnOutcome != nil {
				r.OnOutcome(next, o)
			}
			next++
		}
	}

	if n := <-dispatched; n < len(conds) {
		return rs, ctx.Err()
	}
	return rs, nil
}

// canceled reports whether the outcome reflects caller cancellation rather
// than a per-condition failure; such outcomes are not recorded.
func canceled(o Outcome) bool {
	return o.Err != nil && errors.Is(o.Err, context.Canceled)
}

func (r *Runner) evaluate(ctx context.Context, cond ConditionPoint, criterion detect.Criterion, model uncertainty.Model, track []string, integ Integrator) Outcome {
	o := Outcome{Condition: cond}

	det := r.Detector
	if det == nil {
		det = detect.NewDetector()
	}
	prop := r.Propagator
	if prop == nil {
		prop = uncertainty.NewPropagator()
	}

	var s *series.Series
	var cached bool
	if r.Cache != nil {
		s, cached = r.Cache.Get(cond)
	}
	if !cached {
		cctx := ctx
		var cancel context.CancelFunc = func() {}
		if r.Timeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		}
		var err error
		s, err = integ.Simulate(cctx, cond, track)
		cancel()
		if err != nil {
			o.Err = err
			switch {
			case errors.Is(err, context.Canceled):
				// Recognized by the collector, never recorded.
			case errors.Is(err, context.DeadlineExceeded):
				o.Failure = FailTimeout
			default:
				o.Failure = FailIntegration
			}
			return o
		}
		if r.Cache != nil {
			r.Cache.Put(cond, s)
		}
	}

	res, err := det.Detect(s, criterion)
	if err != nil {
		o.Err = err
		if errors.Is(err, detect.ErrNoIgnition) {
			o.Failure = FailNoIgnition
		} else {
			o.Failure = FailDetection
		}
		return o
	}
	o.Result = &res

	if len(track) == 0 {
		return o
	}
	est, err := prop.Propagate(s, res, model)
	if err != nil {
		if errors.Is(err, uncertainty.ErrMissingSensitivities) {
			// Nothing was tracked for this series: fall back to an
			// unpropagated result instead of failing the condition.
			return o
		}
		o.Err = err
		o.Failure = FailPropagation
		return o
	}
	o.Estimate = &est
	return o
}
