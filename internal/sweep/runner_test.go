package sweep

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gtmerge/internal/config"
	"github.com/banshee-data/gtmerge/internal/export"
	"github.com/banshee-data/gtmerge/internal/fsutil"
	"github.com/banshee-data/gtmerge/internal/testutil"
	"github.com/banshee-data/gtmerge/internal/timeutil"
	"github.com/banshee-data/gtmerge/internal/trip"
)

var t0 = time.Date(2019, 10, 29, 12, 30, 0, 0, time.UTC)

func fixtures() ([]trip.GTTrip, []trip.OBAActivity) {
	gt := []trip.GTTrip{
		testutil.GT("Stark", 1, 1, "WALKING", t0, t0.Add(20*time.Minute)),
		testutil.GT("Stark", 1, 2, "IN_VEHICLE", t0.Add(time.Hour), t0.Add(90*time.Minute)),
	}
	oba := []trip.OBAActivity{
		testutil.OBA("device-aaaa", "WALKING", t0.Add(20*time.Second)),
		testutil.OBA("device-aaaa", "IN_VEHICLE", t0.Add(time.Hour+2*time.Minute)),
		testutil.OBA("device-aaaa", "WALKING", t0.Add(3*time.Hour)),
	}
	return gt, oba
}

func newRunner(t *testing.T, cfg config.MergeConfig) (*Runner, *fsutil.MemoryFileSystem) {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	w := export.NewWriter(mfs, "out")
	require.NoError(t, w.PrepareOutputDirs())
	clock := timeutil.NewSteppingClock(t0, time.Second)
	return NewRunner(cfg, w, clock), mfs
}

func readCSV(t *testing.T, mfs *fsutil.MemoryFileSystem, path string) [][]string {
	t.Helper()
	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestRun_NearestSweep(t *testing.T) {
	cfg := config.Defaults()
	cfg.Plot = false
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()

	points, err := r.Run(context.Background(), Plan{Tolerances: []int64{30000, 180000}}, gt, oba)
	require.NoError(t, err)
	require.Len(t, points, 2)

	// 30 s catches only the walk; 3 min also catches the drive.
	assert.Equal(t, 1, points[0].Matched)
	assert.Equal(t, 1, points[0].Unmatched)
	assert.Equal(t, 2, points[1].Matched)
	assert.Equal(t, 0, points[1].Unmatched)
	assert.InDelta(t, 20, points[0].Stats.Median, 1e-9)

	for _, name := range []string{
		"out/merged_data/mergedData_30000ms.csv",
		"out/merged_data/matchSummary_30000ms.csv",
		"out/merged_data/mergedData_180000ms.csv",
		"out/merged_data/matchSummary_180000ms.csv",
		"out/merged_data/sweepSummary.csv",
	} {
		assert.True(t, fsutil.IsRegularFile(mfs, name), name)
	}
	assert.False(t, fsutil.IsRegularFile(mfs, "out/merged_data/sweepReport.html"))
	assert.False(t, fsutil.IsRegularFile(mfs, "out/merged_data/timeDifference_30000ms.png"))

	summary := readCSV(t, mfs, "out/merged_data/sweepSummary.csv")
	require.Len(t, summary, 3)
	assert.Equal(t, SummaryHeaders, summary[0])
	assert.Equal(t, []string{"30000", "2", "1", "1"}, summary[1][:4])
	assert.Equal(t, []string{"180000", "2", "2", "0"}, summary[2][:4])
}

func TestRun_IntervalWritesUnmatched(t *testing.T) {
	cfg := config.Defaults()
	cfg.MergeOneToOne = false
	cfg.Plot = false
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()

	points, err := r.Run(context.Background(), Plan{Tolerances: []int64{1000}}, gt, oba)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].Matched)
	assert.Equal(t, 1, points[0].Unmatched)

	unmatched := readCSV(t, mfs, "out/merged_data/unmatchedObaData_1000ms.csv")
	assert.Len(t, unmatched, 2)
}

func TestRun_Plots(t *testing.T) {
	cfg := config.Defaults()
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()

	_, err := r.Run(context.Background(), Plan{Tolerances: []int64{180000}}, gt, oba)
	require.NoError(t, err)

	png, err := mfs.ReadFile("out/merged_data/timeDifference_180000ms.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.True(t, fsutil.IsRegularFile(mfs, "out/merged_data/sweepReport.html"))
}

func TestRun_NoMatchesSkipsBoxPlot(t *testing.T) {
	cfg := config.Defaults()
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()

	points, err := r.Run(context.Background(), Plan{Tolerances: []int64{0}}, gt, oba)
	require.NoError(t, err)
	assert.Equal(t, 0, points[0].Matched)
	assert.False(t, fsutil.IsRegularFile(mfs, "out/merged_data/timeDifference_0ms.png"))
}

func TestRun_Cancelled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Plot = false
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	points, err := r.Run(ctx, Plan{Tolerances: []int64{1000, 2000}}, gt, oba)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, points)
	assert.False(t, fsutil.IsRegularFile(mfs, "out/merged_data/sweepSummary.csv"))
}

func TestRun_OutputFailure(t *testing.T) {
	cfg := config.Defaults()
	cfg.Plot = false
	// Output directories are never created.
	r := NewRunner(cfg, export.NewWriter(fsutil.NewMemoryFileSystem(), "out"), nil)
	gt, oba := fixtures()

	_, err := r.Run(context.Background(), Plan{Tolerances: []int64{1000}}, gt, oba)
	assert.True(t, errors.Is(err, export.ErrOutput))
}

func TestManifest(t *testing.T) {
	cfg := config.Defaults()
	cfg.Plot = false
	r, mfs := newRunner(t, cfg)
	gt, oba := fixtures()
	clock := timeutil.NewMockClock(t0)

	m := NewManifest(clock, cfg)
	m.Inputs = InputCounts{GTRows: 2, GTClean: 2, OBARows: 3, OBAClean: 3}
	points, err := r.Run(context.Background(), Plan{Tolerances: []int64{180000}}, gt, oba)
	require.NoError(t, err)
	for _, p := range points {
		m.Record(p)
	}
	clock.Advance(5 * time.Second)
	m.Finish(clock, nil)
	require.NoError(t, WriteManifest(r.Writer, m))

	data, err := mfs.ReadFile("out/logs/run.json")
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Len(t, got.RunID, 36)
	assert.Equal(t, ModeNearest, got.Mode)
	assert.True(t, got.StartedAt.Equal(t0))
	assert.True(t, got.FinishedAt.Equal(t0.Add(5*time.Second)))
	assert.Equal(t, 2, got.Inputs.GTClean)
	require.Len(t, got.Results, 1)
	assert.Equal(t, int64(180000), got.Results[0].ToleranceMs)
	assert.Equal(t, 2, got.Results[0].Matched)
	assert.Empty(t, got.Error)
}

func TestManifest_RecordsError(t *testing.T) {
	clock := timeutil.NewMockClock(t0)
	m := NewManifest(clock, config.Defaults())
	m.Finish(clock, errors.New("boom"))
	assert.Equal(t, "boom", m.Error)
	assert.NotEqual(t, NewManifest(clock, config.Defaults()).RunID, m.RunID)
}

func TestModeName(t *testing.T) {
	assert.Equal(t, ModeNearest, ModeName(true))
	assert.Equal(t, ModeInterval, ModeName(false))
}
