package sweep

import (
	"fmt"
	"sort"
	"strings"
)

// ConditionPoint is one coordinate of a sweep grid: the thermodynamic state
// and any extra varied parameters that produced a simulation. Treated as an
// immutable key once handed to the runner.
type ConditionPoint struct {
	// Temperature in K.
	Temperature float64

	// Pressure in Pa.
	Pressure float64

	// Composition maps species name to mole fraction.
	Composition map[string]float64

	// Params carries any additional varied parameters (rate multipliers,
	// equivalence ratio, ...).
	Params map[string]float64
}

// Key returns a stable exact-match identifier for the condition.
func (c ConditionPoint) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "T=%.10g|P=%.10g", c.Temperature, c.Pressure)
	appendSorted(&b, "X", c.Composition)
	appendSorted(&b, "p", c.Params)
	return b.String()
}

func appendSorted(b *strings.Builder, prefix string, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "|%s:%s=%.10g", prefix, k, m[k])
	}
}

func (c ConditionPoint) String() string {
	return fmt.Sprintf("%.0fK/%.3gPa", c.Temperature, c.Pressure)
}
