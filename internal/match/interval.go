package match

import (
	"sort"
	"time"

	"github.com/banshee-data/gtmerge/internal/monitoring"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// IntervalOptions controls MergeInterval.
type IntervalOptions struct {
	// RepeatGTRows copies the full trip onto every matched row instead of only
	// the first.
	RepeatGTRows bool
}

// TripMatchCount is the number of activities attached to one trip on one
// device pass.
type TripMatchCount struct {
	Collector string
	Device    string
	// Index is the trip's position among its collector's trips. Trips with
	// equal ids stay distinct by Index.
	Index     int
	Line      int
	TourID    int
	TripID    int
	OrigUTC   time.Time
	Matches   int
}

// UnmatchedActivity is an activity that fell in none of a collector's trip
// windows.
type UnmatchedActivity struct {
	Collector string
	Device    string
	Activity  *trip.OBAActivity
}

// IntervalResult is the outcome of MergeInterval.
type IntervalResult struct {
	Rows      []trip.MatchRow
	Counts    []TripMatchCount
	Unmatched []UnmatchedActivity
	Summary   Summary
}

// MergeInterval attaches to every trip, once per device, all activities that
// start within [OrigUTC, DestUTC]. Trips without a destination match nothing.
// Each trip yields at least one row; activities attached to none of a
// collector's trips are reported as unmatched for that collector and device.
func MergeInterval(gt []trip.GTTrip, oba []trip.OBAActivity, opts IntervalOptions) IntervalResult {
	p := Partition(gt, oba)
	res := IntervalResult{Summary: newSummary(p)}

	p.Each(func(collector, device string, trips []trip.GTTrip, acts []trip.OBAActivity) {
		used := make([]bool, len(acts))
		matched := 0
		for i := range trips {
			g := &trips[i]
			lo, hi := window(acts, g)
			for j := lo; j < hi; j++ {
				gtSide := g
				if j > lo && !opts.RepeatGTRows {
					gtSide = g.Reduced()
				}
				res.Rows = append(res.Rows, trip.MatchRow{
					GT:        gtSide,
					OBA:       &acts[j],
					Collector: collector,
					Device:    device,
				})
				used[j] = true
			}
			if hi == lo {
				res.Rows = append(res.Rows, trip.MatchRow{GT: g, Collector: collector, Device: device, TagDevice: true})
			}
			res.Counts = append(res.Counts, TripMatchCount{
				Collector: collector,
				Device:    device,
				Index:     i,
				Line:      g.Line,
				TourID:    g.TourID,
				TripID:    g.TripID,
				OrigUTC:   g.OrigUTC,
				Matches:   hi - lo,
			})
			matched += hi - lo
		}
		res.Summary.Matches[collector][device] = matched

		leftover := 0
		for j := range acts {
			if used[j] {
				continue
			}
			res.Unmatched = append(res.Unmatched, UnmatchedActivity{
				Collector: collector,
				Device:    device,
				Activity:  &acts[j],
			})
			leftover++
		}
		monitoring.Logf("Oba user %s Matches: %d activities over %d trips, %d unmatched",
			ShortDeviceID(device), matched, len(trips), leftover)
	})
	return res
}

// window returns the half-open index range of acts whose start lies in the
// trip's closed time window.
func window(acts []trip.OBAActivity, g *trip.GTTrip) (int, int) {
	if !g.HasDest() {
		return 0, 0
	}
	lo := sort.Search(len(acts), func(k int) bool {
		return !acts[k].Start.Before(g.OrigUTC)
	})
	hi := sort.Search(len(acts), func(k int) bool {
		return acts[k].Start.After(g.DestUTC)
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
