package detect

import "math"

// gradient estimates dx/dt on a possibly non-uniform time grid using
// second-order central differences in the interior and one-sided differences
// at the boundaries. len(x) == len(t) >= 2 is assumed.
func gradient(x, t []float64) []float64 {
	n := len(x)
	d := make([]float64, n)

	d[0] = (x[1] - x[0]) / (t[1] - t[0])
	d[n-1] = (x[n-1] - x[n-2]) / (t[n-1] - t[n-2])

	for i := 1; i < n-1; i++ {
		hs := t[i] - t[i-1]
		hd := t[i+1] - t[i]
		d[i] = (hs*hs*x[i+1] + (hd*hd-hs*hs)*x[i] - hd*hd*x[i-1]) / (hs * hd * (hd + hs))
	}
	return d
}

// localMaxima returns indices of strict or plateau-leading local maxima,
// including the boundaries when they dominate their single neighbor.
func localMaxima(y []float64) []int {
	n := len(y)
	var idx []int
	for i := 0; i < n; i++ {
		left := i == 0 || y[i] > y[i-1]
		right := i == n-1 || y[i] >= y[i+1]
		if left && right {
			idx = append(idx, i)
		}
	}
	return idx
}

// parabolicVertex refines a discrete extremum at index i of y(t) by fitting a
// parabola through (t[i-1], y[i-1]), (t[i], y[i]), (t[i+1], y[i+1]). It
// returns the vertex time and value, clamped to the bracketing interval. When
// the three points are collinear within floating tolerance the sample point
// itself is returned.
func parabolicVertex(t, y []float64, i int) (tv, yv float64) {
	t0, t1, t2 := t[i-1], t[i], t[i+1]
	y0, y1, y2 := y[i-1], y[i], y[i+1]

	denom := y0*(t1-t2) + y1*(t2-t0) + y2*(t0-t1)
	scale := math.Max(math.Abs(y0), math.Max(math.Abs(y1), math.Abs(y2)))
	if math.Abs(denom) <= 1e-14*scale*math.Abs(t2-t0) {
		return t1, y1
	}

	num := y0*(t1*t1-t2*t2) + y1*(t2*t2-t0*t0) + y2*(t0*t0-t1*t1)
	tv = num / (2 * denom)
	if tv < t0 {
		tv = t0
	} else if tv > t2 {
		tv = t2
	}

	// Lagrange evaluation of the fitted parabola at the vertex.
	l0 := (tv - t1) * (tv - t2) / ((t0 - t1) * (t0 - t2))
	l1 := (tv - t0) * (tv - t2) / ((t1 - t0) * (t1 - t2))
	l2 := (tv - t0) * (tv - t1) / ((t2 - t0) * (t2 - t1))
	yv = y0*l0 + y1*l1 + y2*l2
	return tv, yv
}
