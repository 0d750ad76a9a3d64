// Package figure renders ignition delay results as Arrhenius-style figures:
// delay on a log axis against inverse temperature (1000 K / T), one series
// per pressure, with one-sigma error bars where the sweep carried an
// uncertainty estimate. Failed conditions are left out of the figure.
package figure

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/idtlab/autoignition/internal/sweep"
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
}

type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// group is one pressure's worth of plottable points.
type group struct {
	pressure float64
	pts      errPoints
}

// collect splits the table into per-pressure point groups, dropping failed
// rows and non-positive delays (a log axis cannot carry them).
func collect(tab sweep.Table) []group {
	byPressure := make(map[float64]*group)
	for i := range tab.OK {
		if !tab.OK[i] || !(tab.Delay[i] > 0) {
			continue
		}
		g, ok := byPressure[tab.Pressure[i]]
		if !ok {
			g = &group{pressure: tab.Pressure[i]}
			byPressure[tab.Pressure[i]] = g
		}
		g.pts.XYs = append(g.pts.XYs, plotter.XY{X: tab.InverseTemperature[i], Y: tab.Delay[i]})
		sigma := tab.Sigma[i]
		if math.IsNaN(sigma) {
			sigma = 0
		}
		// The lower bar must stay above zero on the log axis.
		low := math.Min(sigma, 0.99*tab.Delay[i])
		g.pts.YErrors = append(g.pts.YErrors, struct{ Low, High float64 }{low, sigma})
	}

	groups := make([]group, 0, len(byPressure))
	for _, g := range byPressure {
		sort.Slice(g.pts.XYs, func(a, b int) bool { return g.pts.XYs[a].X < g.pts.XYs[b].X })
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].pressure < groups[b].pressure })
	return groups
}

// SavePNG writes the Arrhenius figure for a sweep to path.
func SavePNG(tab sweep.Table, title, path string) error {
	groups := collect(tab)
	if len(groups) == 0 {
		return fmt.Errorf("figure: no successful conditions to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "1000 K / T"
	p.Y.Label.Text = "ignition delay (s)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	for i, g := range groups {
		c := palette[i%len(palette)]

		scatter, err := plotter.NewScatter(g.pts.XYs)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(2.5)

		bars, err := plotter.NewYErrorBars(g.pts)
		if err != nil {
			return err
		}
		bars.LineStyle.Color = c

		p.Add(scatter, bars)
		p.Legend.Add(fmt.Sprintf("%.3g Pa", g.pressure), scatter)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
