package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment"
)

// WriteChart writes an HTML page with a bar chart of the mean reward
// of each successfully evaluated layout to w. Modes other than greedy
// also chart the standard deviation.
func WriteChart(w io.Writer, title string, mode policy.Mode,
	results []experiment.LayoutResult) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%v evaluation", mode),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var (
		layouts []string
		means   []opts.BarData
		stds    []opts.BarData
	)
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}
		layouts = append(layouts, r.Layout)
		means = append(means, opts.BarData{Value: r.Result.Mean})
		stds = append(stds, opts.BarData{Value: r.Result.StdDev})
	}
	if len(layouts) == 0 {
		return fmt.Errorf("writeChart: no layouts were evaluated")
	}

	bar.SetXAxis(layouts).AddSeries("mean", means)
	if mode != policy.Greedy {
		bar.AddSeries("std", stds)
	}

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("writeChart: could not render chart: %v", err)
	}
	return nil
}
