package util

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// SplitTrace separates the trace points whose fitness pair belongs to the
// archive from the rest. Frontier points keep duplicates across generations
// and come back sorted by ascending time.
func SplitTrace(trace [][]framework.Fitness, archive []algorithms.Result) (explored, frontier []framework.Fitness) {
	onFront := make(map[framework.Fitness]struct{}, len(archive))
	for _, r := range archive {
		onFront[r.Fitness] = struct{}{}
	}
	for _, p := range algorithms.FlattenTrace(trace) {
		if _, ok := onFront[p]; ok {
			frontier = append(frontier, p)
		} else {
			explored = append(explored, p)
		}
	}
	algorithms.SortFront(frontier)
	return explored, frontier
}

// RenderTrace writes an HTML chart of every evaluated point with the archive
// frontier overlaid as a connected line.
func RenderTrace(w io.Writer, trace [][]framework.Fitness, archive []algorithms.Result, title string) error {
	if len(trace) == 0 {
		return fmt.Errorf("trace is empty for %s", title)
	}

	explored, frontier := SplitTrace(trace, archive)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Completion time",
			Type: "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Cost",
			Type: "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	exploredData := make([]opts.ScatterData, len(explored))
	for i, p := range explored {
		exploredData[i] = opts.ScatterData{
			Value:      []float64{p.Time, p.Cost},
			Symbol:     "circle",
			SymbolSize: 4,
		}
	}
	scatter.AddSeries("Explored", exploredData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	frontData := make([]opts.LineData, len(frontier))
	for i, p := range frontier {
		frontData[i] = opts.LineData{
			Value:      []float64{p.Time, p.Cost},
			Symbol:     "triangle",
			SymbolSize: 8,
		}
	}
	line := charts.NewLine()
	line.AddSeries("Pareto front", frontData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(true),
			}),
		)

	scatter.Overlap(line)
	return scatter.Render(w)
}

// PlotTrace renders the trace chart into an HTML file. The default file name
// is derived from the task count.
func PlotTrace(trace [][]framework.Fitness, archive []algorithms.Result, dim int, outputPath ...string) error {
	filename := fmt.Sprintf("mobat_%d_tasks.html", dim)
	if len(outputPath) > 0 && outputPath[0] != "" {
		filename = outputPath[0]
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return RenderTrace(f, trace, archive, fmt.Sprintf("Completion time vs Cost for %d Tasks", dim))
}
