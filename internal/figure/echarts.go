package figure

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/idtlab/autoignition/internal/sweep"
)

// RenderHTML writes an interactive Arrhenius chart to w, one scatter series
// per pressure. The tooltip carries the one-sigma band where present.
func RenderHTML(w io.Writer, tab sweep.Table, title string) error {
	groups := collect(tab)
	if len(groups) == 0 {
		return fmt.Errorf("figure: no successful conditions to plot")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "ignition delay vs 1000 K / T"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "1000 K / T", Type: "value", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "delay (s)", Type: "log"}),
	)

	for _, g := range groups {
		data := make([]opts.ScatterData, 0, len(g.pts.XYs))
		for i, pt := range g.pts.XYs {
			data = append(data, opts.ScatterData{
				Value: []interface{}{pt.X, pt.Y, g.pts.YErrors[i].High},
			})
		}
		name := fmt.Sprintf("%.3g Pa", g.pressure)
		scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	return scatter.Render(w)
}

// SaveHTML writes the interactive chart to a file.
func SaveHTML(tab sweep.Table, title, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := RenderHTML(f, tab, title); err != nil {
		return err
	}
	return f.Close()
}
