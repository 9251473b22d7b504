// Package report renders the visual artifacts of a run: a PNG box plot of
// time differences per tolerance and an HTML chart of the whole sweep.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/gtmerge/internal/enrich"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// TimeDifferenceBoxPlot renders the distribution of time differences, in
// seconds, for one tolerance as a PNG.
func TimeDifferenceBoxPlot(w io.Writer, toleranceMs int64, diffs []float64) error {
	if len(diffs) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Time_Difference at %d ms tolerance (n=%d)", toleranceMs, len(diffs))
	p.Y.Label.Text = "OBA start - GT origin (s)"

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(diffs))
	if err != nil {
		return fmt.Errorf("building box plot: %w", err)
	}
	p.Add(box)
	p.NominalX(strconv.FormatInt(toleranceMs, 10) + " ms")

	wt, err := p.WriterTo(4*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("rendering box plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing box plot: %w", err)
	}
	return nil
}

// SweepPoint is the outcome of one tolerance of a sweep.
type SweepPoint struct {
	ToleranceMs int64
	Matched     int
	Unmatched   int
	Stats       enrich.Stats
}

// SweepChart renders matched counts and time-difference statistics against
// tolerance as a standalone HTML page.
func SweepChart(w io.Writer, title string, points []SweepPoint) error {
	if len(points) == 0 {
		return ErrNoData
	}

	xs := make([]string, len(points))
	matched := make([]opts.LineData, len(points))
	meanAbs := make([]opts.LineData, len(points))
	median := make([]opts.LineData, len(points))
	for i, pt := range points {
		xs[i] = strconv.FormatInt(pt.ToleranceMs, 10)
		matched[i] = opts.LineData{Value: pt.Matched}
		meanAbs[i] = opts.LineData{Value: round3(pt.Stats.MeanAbs)}
		median[i] = opts.LineData{Value: round3(pt.Stats.Median)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d tolerances", len(points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tolerance (ms)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rows / seconds"}),
	)
	line.SetXAxis(xs).
		AddSeries("matched rows", matched).
		AddSeries("mean |Time_Difference| (s)", meanAbs).
		AddSeries("median Time_Difference (s)", median)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering sweep chart: %w", err)
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
