package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/sweep"
	"github.com/idtlab/autoignition/internal/uncertainty"
)

func testResultSet(t *testing.T) *sweep.ResultSet {
	t.Helper()
	rs := sweep.NewResultSet()
	rs.Add(sweep.Outcome{
		Condition: sweep.ConditionPoint{Temperature: 1000, Pressure: 1e5},
		Result:    &detect.Result{Time: 1.5e-3, Channel: "T"},
		Estimate:  &uncertainty.Estimate{Nominal: 1.5e-3, Sigma: 2e-5},
	})
	rs.Add(sweep.Outcome{
		Condition: sweep.ConditionPoint{Temperature: 800, Pressure: 1e5},
		Failure:   sweep.FailNoIgnition,
	})
	rs.Add(sweep.Outcome{
		Condition: sweep.ConditionPoint{Temperature: 1200, Pressure: 1e5},
		Result:    &detect.Result{Time: 4e-4, Channel: "T"},
	})
	rs.Freeze()
	return rs
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	rs := testResultSet(t)
	runID, err := s.Save("heptane", "max-slope T", rs)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.Conditions != 3 || meta.Failures != 1 {
		t.Errorf("meta = %d conditions %d failures, want 3/1", meta.Conditions, meta.Failures)
	}
	if meta.Criterion != "max-slope T" {
		t.Errorf("criterion = %q", meta.Criterion)
	}

	tab, err := s.LoadTable(runID)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if len(tab.OK) != 3 {
		t.Fatalf("got %d rows, want 3", len(tab.OK))
	}
	if tab.Delay[0] != 1.5e-3 || tab.Sigma[0] != 2e-5 {
		t.Errorf("row 0 = delay %v sigma %v", tab.Delay[0], tab.Sigma[0])
	}
	if tab.OK[1] || !math.IsNaN(tab.Delay[1]) {
		t.Errorf("failed row should load as NaN, got %v ok=%v", tab.Delay[1], tab.OK[1])
	}
	if tab.Failure[1] != string(sweep.FailNoIgnition) {
		t.Errorf("failure kind = %q", tab.Failure[1])
	}
	// Success without an estimate: delay present, sigma missing.
	if !tab.OK[2] || !math.IsNaN(tab.Sigma[2]) {
		t.Errorf("row 2 = ok %v sigma %v", tab.OK[2], tab.Sigma[2])
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("empty store lists %d runs", len(runs))
	}

	rs := testResultSet(t)
	if _, err := s.Save("first", "peak radical", rs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save("second", "peak radical", rs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	runs, err = s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestLoadSeriesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	data := "time,T,radical,sens:a1\n" +
		"0,1000,0,0\n" +
		"0.001,1050,0.02,1e-7\n" +
		"0.002,1900,0.01,3e-7\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSeriesCSV(path)
	if err != nil {
		t.Fatalf("LoadSeriesCSV failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	T, ok := s.Channel("T")
	if !ok {
		t.Fatal("T channel missing")
	}
	if T[2] != 1900 {
		t.Errorf("T[2] = %v", T[2])
	}
	if !s.HasChannel("radical") {
		t.Error("radical channel missing")
	}
	if s.HasChannel("sens:a1") {
		t.Error("sensitivity column leaked into channels")
	}
	g, ok := s.Sensitivity("a1")
	if !ok {
		t.Fatal("a1 sensitivity missing")
	}
	if g[1] != 1e-7 {
		t.Errorf("sens a1[1] = %v", g[1])
	}
}

func TestLoadSeriesCSVRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		data string
	}{
		{"wrong first column", "t,T\n0,1000\n1,1100\n"},
		{"too few rows", "time,T\n0,1000\n"},
		{"non-numeric", "time,T\n0,1000\n1,hot\n"},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".csv")
		if err := os.WriteFile(path, []byte(tc.data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSeriesCSV(path); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "sweeps.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	tab := testResultSet(t).Export()
	meta := SweepMetadata{
		ID:         "heptane_1",
		Label:      "heptane",
		Criterion:  "max-slope T",
		Timestamp:  time.Now().UTC(),
		Conditions: len(tab.OK),
		Failures:   1,
	}
	if err := db.SaveSweep(meta, tab); err != nil {
		t.Fatalf("SaveSweep failed: %v", err)
	}

	sweeps, err := db.ListSweeps()
	if err != nil {
		t.Fatalf("ListSweeps failed: %v", err)
	}
	if len(sweeps) != 1 || sweeps[0].Label != "heptane" {
		t.Fatalf("sweeps = %+v", sweeps)
	}

	got, err := db.LoadSweep("heptane_1")
	if err != nil {
		t.Fatalf("LoadSweep failed: %v", err)
	}
	if len(got.OK) != len(tab.OK) {
		t.Fatalf("got %d rows, want %d", len(got.OK), len(tab.OK))
	}
	for i := range tab.OK {
		if got.OK[i] != tab.OK[i] || got.Failure[i] != tab.Failure[i] {
			t.Errorf("row %d: ok %v failure %q", i, got.OK[i], got.Failure[i])
		}
		if math.IsNaN(tab.Delay[i]) != math.IsNaN(got.Delay[i]) {
			t.Errorf("row %d: delay missing-ness changed", i)
		} else if !math.IsNaN(tab.Delay[i]) && got.Delay[i] != tab.Delay[i] {
			t.Errorf("row %d: delay %v, want %v", i, got.Delay[i], tab.Delay[i])
		}
	}

	if _, err := db.LoadSweep("nope"); err == nil {
		t.Error("unknown sweep id accepted")
	}
}
