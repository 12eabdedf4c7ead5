package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

// HTML writes a standalone page with the input and sorted arrays as bar
// charts and the inversion count per step as a line chart.
func HTML(w io.Writer, run *storage.Run, o Options) error {
	o = o.withDefaults()
	width := fmt.Sprintf("%dpx", o.Width)
	height := fmt.Sprintf("%dpx", o.Height)

	stats := trace.Summarize(run.Steps)
	page := components.NewPage()
	page.AddCharts(
		stepBar("Input", run.Steps.First(), width, height),
		stepBar(fmt.Sprintf("Final (%d swaps, %d comparisons)", stats.Swaps, stats.Comparisons),
			run.Steps.Last(), width, height),
		inversionLine(run.Steps, width, height),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func stepBar(title string, s trace.Step, width, height string) *charts.Bar {
	labels := make([]string, len(s.Array))
	values := make([]opts.BarData, len(s.Array))
	for i, v := range s.Array {
		labels[i] = strconv.Itoa(i)
		values[i] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: BarColor(s, i)}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "algoviz", Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("value", values)
	return bar
}

func inversionLine(t trace.Trace, width, height string) *charts.Line {
	series := trace.InversionSeries(t)
	labels := make([]string, len(series))
	values := make([]opts.LineData, len(series))
	for i, v := range series {
		labels[i] = strconv.Itoa(i)
		values[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: "Inversions per step"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("inversions", values,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorBar}),
	)
	return line
}
