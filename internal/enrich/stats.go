package enrich

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a set of time differences, in seconds.
type Stats struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
	Median  float64 `json:"median"`
	MeanAbs float64 `json:"mean_abs"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summarize computes Stats over xs. StdDev is the sample standard deviation
// and is zero for fewer than two values. An empty input yields zero Stats.
func Summarize(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	s := Stats{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		s.StdDev = 0
	}

	abs := make([]float64, len(sorted))
	for i, v := range sorted {
		abs[i] = math.Abs(v)
	}
	s.MeanAbs = stat.Mean(abs, nil)
	return s
}
