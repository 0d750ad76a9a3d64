package sweep

import (
	"testing"

	"github.com/idtlab/autoignition/internal/series"
)

func cacheSeries(t *testing.T) *series.Series {
	t.Helper()
	s, err := series.New([]float64{0, 1}, map[string][]float64{"T": {1000, 2000}}, nil)
	if err != nil {
		t.Fatalf("series.New failed: %v", err)
	}
	return s
}

func TestCacheLifecycle(t *testing.T) {
	c := NewCache()
	cond := ConditionPoint{Temperature: 1000, Pressure: 101325}

	if _, ok := c.Get(cond); ok {
		t.Error("empty cache reported a hit")
	}

	s := cacheSeries(t)
	c.Put(cond, s)
	if got, ok := c.Get(cond); !ok || got != s {
		t.Error("cache miss after Put")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Invalidate(cond)
	if _, ok := c.Get(cond); ok {
		t.Error("hit after Invalidate")
	}

	c.Put(cond, s)
	c.Put(ConditionPoint{Temperature: 1100}, s)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestConditionKeyStable(t *testing.T) {
	a := ConditionPoint{
		Temperature: 1000,
		Pressure:    101325,
		Composition: map[string]float64{"h2": 0.3, "o2": 0.15, "n2": 0.55},
	}
	b := ConditionPoint{
		Temperature: 1000,
		Pressure:    101325,
		Composition: map[string]float64{"n2": 0.55, "o2": 0.15, "h2": 0.3},
	}
	if a.Key() != b.Key() {
		t.Errorf("keys differ for identical conditions:\n%s\n%s", a.Key(), b.Key())
	}

	c := a
	c.Temperature = 1000.1
	if a.Key() == c.Key() {
		t.Error("keys collide for different temperatures")
	}
}
