package detect

import (
	"errors"
	"math"
	"testing"

	"github.com/idtlab/autoignition/internal/series"
)

func mustSeries(t *testing.T, times []float64, channels map[string][]float64) *series.Series {
	t.Helper()
	s, err := series.New(times, channels, nil)
	if err != nil {
		t.Fatalf("series.New failed: %v", err)
	}
	return s
}

func TestMaxSlopeSigmoid(t *testing.T) {
	// Clean sigmoid temperature rise: the analytic inflection is at tc.
	const (
		tc = 1e-3
		k  = 1e4
		dt = 2e-5
	)
	n := 101
	times := make([]float64, n)
	temps := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i) * dt
		temps[i] = 1000 + 1500/(1+math.Exp(-k*(times[i]-tc)))
	}
	s := mustSeries(t, times, map[string][]float64{"T": temps})

	res, err := NewDetector().Detect(s, MaxSlope("T"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if math.Abs(res.Time-tc) > dt {
		t.Errorf("ignition time = %g, want within %g of %g", res.Time, dt, tc)
	}
	if res.Flag != FlagInterpolated {
		t.Errorf("flag = %q, want %q", res.Flag, FlagInterpolated)
	}
	if res.Slope <= 0 {
		t.Errorf("slope at ignition = %g, want positive", res.Slope)
	}
}

func TestThresholdCrossingInterpolation(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"T": {1000, 1000, 1000, 2500, 2500}},
	)

	res, err := NewDetector().Detect(s, ThresholdCrossing("T", 1800))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	want := 2 + 800.0/1500.0
	if math.Abs(res.Time-want) > 1e-12 {
		t.Errorf("crossing time = %v, want %v", res.Time, want)
	}
	if res.Time <= 2 || res.Time >= 3 {
		t.Errorf("crossing time %v not in (2, 3)", res.Time)
	}
	if res.Window != [2]int{2, 3} {
		t.Errorf("window = %v, want [2 3]", res.Window)
	}
	if res.Flag != FlagInterpolated {
		t.Errorf("flag = %q, want %q", res.Flag, FlagInterpolated)
	}
}

func TestThresholdCrossingDeterminism(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"T": {1000, 1100, 1600, 2100, 2500}},
	)

	det := NewDetector()
	first, err := det.Detect(s, ThresholdCrossing("T", 2000))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := det.Detect(s, ThresholdCrossing("T", 2000))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if first != second {
		t.Errorf("re-detection differs: %+v vs %+v", first, second)
	}
}

func TestNoCrossing(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2},
		map[string][]float64{"T": {1000, 1100, 1200}},
	)
	_, err := NewDetector().Detect(s, ThresholdCrossing("T", 5000))
	if !errors.Is(err, ErrNoCrossing) {
		t.Errorf("error = %v, want ErrNoCrossing", err)
	}
}

func TestNoIgnitionFlatChannel(t *testing.T) {
	tests := []struct {
		name  string
		temps []float64
	}{
		{"flat", []float64{1000, 1000, 1000, 1000, 1000}},
		// Pure cooling: full range but no trough-to-peak rise.
		{"monotonically decreasing", []float64{2500, 2000, 1600, 1300, 1100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSeries(t,
				[]float64{0, 1, 2, 3, 4},
				map[string][]float64{"T": tt.temps},
			)
			for _, c := range []Criterion{MaxSlope("T"), Peak("T")} {
				_, err := NewDetector().Detect(s, c)
				if !errors.Is(err, ErrNoIgnition) {
					t.Errorf("%v: error = %v, want ErrNoIgnition", c, err)
				}
			}
		})
	}
}

func TestRiseMustFollowTrough(t *testing.T) {
	// Dip then recovery: the forward rise (300) clears MinRise even though
	// the trace never exceeds its starting value.
	s := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"T": {1500, 1200, 1250, 1400, 1500}},
	)
	det := &Detector{MinRise: 200, TieTol: defaultTieTol}
	if _, err := det.Detect(s, MaxSlope("T")); err != nil {
		t.Errorf("recovering trace rejected: %v", err)
	}

	// Same samples reversed: the only 300 K change runs downhill.
	rev := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"T": {1500, 1400, 1250, 1200, 1500}},
	)
	if _, err := det.Detect(rev, MaxSlope("T")); err != nil {
		t.Errorf("late-rise trace rejected: %v", err)
	}
}

func TestMinRise(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2, 3},
		map[string][]float64{"T": {1000, 1000.5, 1001, 1000.2}},
	)

	det := &Detector{MinRise: 50, TieTol: defaultTieTol}
	_, err := det.Detect(s, MaxSlope("T"))
	if !errors.Is(err, ErrNoIgnition) {
		t.Errorf("error = %v, want ErrNoIgnition below MinRise", err)
	}
}

func TestChannelMissing(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2},
		map[string][]float64{"T": {1000, 1500, 2000}},
	)
	_, err := NewDetector().Detect(s, MaxSlope("oh"))
	if !errors.Is(err, ErrChannelMissing) {
		t.Errorf("error = %v, want ErrChannelMissing", err)
	}

	var derr *Error
	if !errors.As(err, &derr) || derr.Channel != "oh" {
		t.Errorf("error does not carry channel: %v", err)
	}
}

func TestInsufficientPoints(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1},
		map[string][]float64{"T": {1000, 2000}},
	)
	for _, c := range []Criterion{MaxSlope("T"), ThresholdCrossing("T", 1500), Peak("T")} {
		_, err := NewDetector().Detect(s, c)
		if !errors.Is(err, ErrInsufficientPoints) {
			t.Errorf("%v: error = %v, want ErrInsufficientPoints", c, err)
		}
	}
}

func TestPeakDetection(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"oh": {0, 1, 4, 1, 0}},
	)
	res, err := NewDetector().Detect(s, Peak("oh"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if math.Abs(res.Time-2) > 1e-12 {
		t.Errorf("peak time = %v, want 2 (symmetric hump)", res.Time)
	}
	if res.Index != 2 {
		t.Errorf("peak index = %d, want 2", res.Index)
	}
}

func TestAmbiguousPeaks(t *testing.T) {
	s := mustSeries(t,
		[]float64{0, 1, 2, 3, 4},
		map[string][]float64{"oh": {0, 4, 0, 4, 0}},
	)
	res, err := NewDetector().Detect(s, Peak("oh"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Flag != FlagAmbiguousPeaks {
		t.Errorf("flag = %q, want %q", res.Flag, FlagAmbiguousPeaks)
	}
	if res.Index != 1 {
		t.Errorf("index = %d, want earliest tied peak 1", res.Index)
	}
}

func TestBoundaryClamp(t *testing.T) {
	t.Run("peak at last sample", func(t *testing.T) {
		s := mustSeries(t,
			[]float64{0, 1, 2, 3},
			map[string][]float64{"T": {1000, 1400, 1900, 2500}},
		)
		res, err := NewDetector().Detect(s, Peak("T"))
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if res.Flag != FlagBoundaryClamped {
			t.Errorf("flag = %q, want %q", res.Flag, FlagBoundaryClamped)
		}
		if res.Time != 3 {
			t.Errorf("time = %v, want clamp to 3", res.Time)
		}
	})

	t.Run("threshold already exceeded", func(t *testing.T) {
		s := mustSeries(t,
			[]float64{0, 1, 2},
			map[string][]float64{"T": {2000, 2100, 2200}},
		)
		res, err := NewDetector().Detect(s, ThresholdCrossing("T", 1800))
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if res.Flag != FlagBoundaryClamped || res.Time != 0 {
			t.Errorf("got flag %q time %v, want boundary clamp at 0", res.Flag, res.Time)
		}
	})
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"max-slope", MethodMaxSlope, false},
		{"inflection", MethodMaxSlope, false},
		{"threshold-crossing", MethodThresholdCrossing, false},
		{"peak", MethodPeak, false},
		{"max", MethodPeak, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v", tt.in, err)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGradientUniform(t *testing.T) {
	// Linear signal: gradient must be exactly the slope everywhere.
	times := []float64{0, 1, 2, 3, 4}
	x := []float64{1, 3, 5, 7, 9}
	for i, g := range gradient(x, times) {
		if math.Abs(g-2) > 1e-12 {
			t.Errorf("gradient[%d] = %v, want 2", i, g)
		}
	}
}

func TestGradientNonUniform(t *testing.T) {
	// Quadratic x = t^2 on a non-uniform grid: interior central differences
	// are exact for parabolas.
	times := []float64{0, 0.5, 1.5, 2, 4}
	x := make([]float64, len(times))
	for i, tv := range times {
		x[i] = tv * tv
	}
	g := gradient(x, times)
	for i := 1; i < len(times)-1; i++ {
		want := 2 * times[i]
		if math.Abs(g[i]-want) > 1e-12 {
			t.Errorf("gradient[%d] = %v, want %v", i, g[i], want)
		}
	}
}
