package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/gtmerge/internal/report"
)

// SummaryHeaders are the columns of the sweep summary CSV.
var SummaryHeaders = []string{
	"tolerance_ms", "rows", "matched", "unmatched",
	"time_diff_count", "time_diff_mean_s", "time_diff_stddev_s", "time_diff_median_s",
	"time_diff_mean_abs_s", "time_diff_min_s", "time_diff_max_s",
}

// CSVWriter wraps csv.Writer with methods for sweep output.
type CSVWriter struct {
	Summary *csv.Writer
}

// NewCSVWriter creates a new CSVWriter over summary.
func NewCSVWriter(summary io.Writer) *CSVWriter {
	return &CSVWriter{Summary: csv.NewWriter(summary)}
}

// WriteHeader writes the summary header.
func (c *CSVWriter) WriteHeader() error {
	return c.Summary.Write(SummaryHeaders)
}

// WriteRow writes the summary row of one tolerance.
func (c *CSVWriter) WriteRow(p report.SweepPoint) error {
	s := p.Stats
	row := []string{
		strconv.FormatInt(p.ToleranceMs, 10),
		strconv.Itoa(p.Matched + p.Unmatched),
		strconv.Itoa(p.Matched),
		strconv.Itoa(p.Unmatched),
		strconv.Itoa(s.Count),
		fmt.Sprintf("%.6f", s.Mean),
		fmt.Sprintf("%.6f", s.StdDev),
		fmt.Sprintf("%.6f", s.Median),
		fmt.Sprintf("%.6f", s.MeanAbs),
		fmt.Sprintf("%.6f", s.Min),
		fmt.Sprintf("%.6f", s.Max),
	}
	return c.Summary.Write(row)
}

// Flush flushes the summary writer and reports any buffered write error.
func (c *CSVWriter) Flush() error {
	c.Summary.Flush()
	return c.Summary.Error()
}

// WriteSummary writes the header and one row per point.
func WriteSummary(w io.Writer, points []report.SweepPoint) error {
	c := NewCSVWriter(w)
	if err := c.WriteHeader(); err != nil {
		return err
	}
	for _, p := range points {
		if err := c.WriteRow(p); err != nil {
			return err
		}
	}
	return c.Flush()
}
