package figure

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idtlab/autoignition/internal/sweep"
)

func testTable() sweep.Table {
	return sweep.Table{
		Temperature:        []float64{1000, 1100, 1200, 850, 1000},
		Pressure:           []float64{1e5, 1e5, 1e5, 1e5, 2e5},
		InverseTemperature: []float64{1.0, 1000.0 / 1100, 1000.0 / 1200, 1000.0 / 850, 1.0},
		Delay:              []float64{2e-3, 8e-4, 3e-4, math.NaN(), 1.5e-3},
		Sigma:              []float64{1e-4, math.NaN(), 2e-5, math.NaN(), 1e-4},
		OK:                 []bool{true, true, true, false, true},
		Failure:            []string{"", "", "", "no-ignition", ""},
		Flag:               []string{"", "", "", "", ""},
	}
}

func TestCollect(t *testing.T) {
	groups := collect(testTable())
	if len(groups) != 2 {
		t.Fatalf("got %d pressure groups, want 2", len(groups))
	}
	if groups[0].pressure != 1e5 || groups[1].pressure != 2e5 {
		t.Errorf("group order: %v, %v", groups[0].pressure, groups[1].pressure)
	}
	if len(groups[0].pts.XYs) != 3 {
		t.Errorf("1e5 group has %d points, want 3 (failed row dropped)", len(groups[0].pts.XYs))
	}
	// Points must come out sorted by inverse temperature.
	xs := groups[0].pts.XYs
	for i := 1; i < len(xs); i++ {
		if xs[i].X < xs[i-1].X {
			t.Errorf("points out of order: %v after %v", xs[i].X, xs[i-1].X)
		}
	}
	// A missing sigma becomes a zero-length bar, not NaN.
	for _, e := range groups[0].pts.YErrors {
		if math.IsNaN(e.High) || math.IsNaN(e.Low) {
			t.Error("NaN leaked into error bars")
		}
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrhenius.png")
	if err := SavePNG(testTable(), "two-step mechanism", path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("figure not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("figure file is empty")
	}
}

func TestSavePNGAllFailed(t *testing.T) {
	tab := testTable()
	for i := range tab.OK {
		tab.OK[i] = false
	}
	if err := SavePNG(tab, "empty", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected an error for an all-failed sweep")
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, testTable(), "test sweep"); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "1e+05 Pa") {
		t.Error("pressure series missing from chart")
	}
	if !strings.Contains(html, "test sweep") {
		t.Error("title missing from chart")
	}
}
