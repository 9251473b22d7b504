package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/banshee-data/gtmerge/internal/config"
	"github.com/banshee-data/gtmerge/internal/enrich"
	"github.com/banshee-data/gtmerge/internal/export"
	"github.com/banshee-data/gtmerge/internal/match"
	"github.com/banshee-data/gtmerge/internal/monitoring"
	"github.com/banshee-data/gtmerge/internal/report"
	"github.com/banshee-data/gtmerge/internal/timeutil"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// Matching modes as recorded in the manifest.
const (
	ModeNearest  = "nearest"
	ModeInterval = "interval"
)

// ModeName names the matching mode selected by the one-to-one switch.
func ModeName(oneToOne bool) string {
	if oneToOne {
		return ModeNearest
	}
	return ModeInterval
}

// Runner matches the normalized inputs once per tolerance of a plan and
// writes the artifacts of every pass.
type Runner struct {
	Config config.MergeConfig
	Writer *export.Writer
	Clock  timeutil.Clock
}

// NewRunner returns a Runner writing through w.
func NewRunner(cfg config.MergeConfig, w *export.Writer, clock timeutil.Clock) *Runner {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Runner{Config: cfg, Writer: w, Clock: clock}
}

// Run executes plan over the clean inputs. The context is checked before
// each tolerance; on cancellation the points completed so far are returned
// with the context error. The sweep summary and chart cover completed points.
func (r *Runner) Run(ctx context.Context, plan Plan, gt []trip.GTTrip, oba []trip.OBAActivity) ([]report.SweepPoint, error) {
	log := monitoring.L().With(zap.String("mode", ModeName(r.Config.MergeOneToOne)))
	if !r.Config.MergeOneToOne && len(plan.Tolerances) > 1 {
		log.Warn("interval matching ignores tolerance; every pass yields the same matches",
			zap.Int("tolerances", len(plan.Tolerances)))
	}

	var (
		points []report.SweepPoint
		runErr error
	)
	for i, tol := range plan.Tolerances {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("sweep stopped before tolerance %d/%d: %w", i+1, len(plan.Tolerances), err)
			break
		}
		start := r.Clock.Now()
		pt, err := r.runOne(tol, gt, oba)
		if err != nil {
			runErr = err
			break
		}
		points = append(points, pt)
		log.Info("tolerance done",
			zap.Int64("tolerance_ms", tol),
			zap.Int("matched", pt.Matched),
			zap.Int("unmatched", pt.Unmatched),
			zap.Float64("median_s", pt.Stats.Median),
			zap.Duration("elapsed", r.Clock.Since(start)))
	}

	if len(points) > 0 {
		if err := r.writeSweep(points); err != nil && runErr == nil {
			runErr = err
		}
	}
	return points, runErr
}

// runOne matches, enriches and writes the artifacts of one tolerance.
func (r *Runner) runOne(tol int64, gt []trip.GTTrip, oba []trip.OBAActivity) (report.SweepPoint, error) {
	pt := report.SweepPoint{ToleranceMs: tol}

	var rows []trip.MatchRow
	if r.Config.MergeOneToOne {
		res := match.MergeNearest(gt, oba, time.Duration(tol)*time.Millisecond)
		rows = res.Rows
		enrich.Apply(rows)
		if err := r.Writer.WriteMerged(tol, rows); err != nil {
			return pt, err
		}
		if err := r.Writer.WriteNearestSummary(tol, res.Summary); err != nil {
			return pt, err
		}
		pt.Matched = res.Summary.Matched()
		pt.Unmatched = len(rows) - pt.Matched
	} else {
		res := match.MergeInterval(gt, oba, match.IntervalOptions{RepeatGTRows: r.Config.RepeatGTRows})
		rows = res.Rows
		enrich.Apply(rows)
		if err := r.Writer.WriteMerged(tol, rows); err != nil {
			return pt, err
		}
		if err := r.Writer.WriteIntervalSummary(tol, res.Counts, res.Summary.Devices); err != nil {
			return pt, err
		}
		if err := r.Writer.WriteUnmatched(tol, res.Unmatched); err != nil {
			return pt, err
		}
		pt.Matched = res.Summary.Matched()
		pt.Unmatched = len(res.Unmatched)
	}

	diffs := enrich.TimeDifferences(rows)
	pt.Stats = enrich.Summarize(diffs)

	if r.Config.Plot && len(diffs) > 0 {
		name := export.ArtifactName(export.BoxPlotBase, tol, ".png")
		if err := r.Writer.WriteFile(export.MergedDir, name, func(w io.Writer) error {
			return report.TimeDifferenceBoxPlot(w, tol, diffs)
		}); err != nil {
			return pt, err
		}
	}
	return pt, nil
}

func (r *Runner) writeSweep(points []report.SweepPoint) error {
	if err := r.Writer.WriteFile(export.MergedDir, export.SweepSummary, func(w io.Writer) error {
		return WriteSummary(w, points)
	}); err != nil {
		return err
	}
	if !r.Config.Plot {
		return nil
	}
	err := r.Writer.WriteFile(export.MergedDir, export.SweepReport, func(w io.Writer) error {
		return report.SweepChart(w, "GT / OBA match sweep", points)
	})
	if errors.Is(err, report.ErrNoData) {
		return nil
	}
	return err
}

// WriteManifest writes m to logs/run.json.
func WriteManifest(w *export.Writer, m *Manifest) error {
	return w.WriteFile(export.LogsDir, export.RunManifest, func(out io.Writer) error {
		_, err := m.WriteTo(out)
		return err
	})
}
