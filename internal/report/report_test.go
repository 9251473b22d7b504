package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/banshee-data/gtmerge/internal/enrich"
)

func TestTimeDifferenceBoxPlot(t *testing.T) {
	var buf bytes.Buffer
	if err := TimeDifferenceBoxPlot(&buf, 3000, []float64{-1.5, 0.5, 1.8, 2.2, 0}); err != nil {
		t.Fatalf("TimeDifferenceBoxPlot: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG (first bytes %q)", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestTimeDifferenceBoxPlot_NoData(t *testing.T) {
	var buf bytes.Buffer
	if err := TimeDifferenceBoxPlot(&buf, 0, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written without data")
	}
}

func TestSweepChart(t *testing.T) {
	points := []SweepPoint{
		{ToleranceMs: 30000, Matched: 4, Stats: enrich.Summarize([]float64{1, -2, 3, 0.5})},
		{ToleranceMs: 60000, Matched: 6, Stats: enrich.Summarize([]float64{1, -2, 3, 0.5, 45, -50})},
	}

	var buf bytes.Buffer
	if err := SweepChart(&buf, "gtmerge sweep", points); err != nil {
		t.Fatalf("SweepChart: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "gtmerge sweep", "matched rows", "60000"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}

	if err := SweepChart(&buf, "empty", nil); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestRound3(t *testing.T) {
	tests := map[float64]float64{1.23456: 1.235, -1.23456: -1.235, 0: 0, 2.0004: 2}
	for in, want := range tests {
		if got := round3(in); got != want {
			t.Errorf("round3(%v) = %v, want %v", in, got, want)
		}
	}
}
