// Package enrich derives the comparison columns of merged rows and lays rows
// out in the canonical export column order.
package enrich

import (
	"github.com/banshee-data/gtmerge/internal/spatial"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// Apply fills the time and distance differences of every row in place. A
// difference stays nil when either side lacks the value it needs.
func Apply(rows []trip.MatchRow) {
	for i := range rows {
		applyRow(&rows[i])
	}
}

func applyRow(r *trip.MatchRow) {
	r.TimeDifference = nil
	r.DistanceDifference = nil
	r.TimeDifferenceDest = nil
	r.DistanceDifferenceDest = nil
	if r.OBA == nil || r.GT == nil {
		return
	}

	if !r.OBA.Start.IsZero() && !r.GT.OrigUTCBackup.IsZero() {
		r.TimeDifference = ptr(r.OBA.Start.Sub(r.GT.OrigUTCBackup).Seconds())
	}
	if d, ok := spatial.Distance(r.GT.Orig, r.OBA.Orig); ok {
		r.DistanceDifference = ptr(d)
	}
	if !r.OBA.End.IsZero() && r.GT.HasDest() {
		r.TimeDifferenceDest = ptr(r.OBA.End.Sub(r.GT.DestUTC).Seconds())
	}
	if d, ok := spatial.Distance(r.GT.Dest, r.OBA.Dest); ok {
		r.DistanceDifferenceDest = ptr(d)
	}
}

// TimeDifferences collects the non-blank time differences of rows.
func TimeDifferences(rows []trip.MatchRow) []float64 {
	var out []float64
	for _, r := range rows {
		if r.TimeDifference != nil {
			out = append(out, *r.TimeDifference)
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }
