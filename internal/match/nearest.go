package match

import (
	"sort"
	"time"

	"github.com/banshee-data/gtmerge/internal/monitoring"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// Summary counts matches per collector and device.
type Summary struct {
	Collectors []string
	Devices    []string
	// Totals is the number of ground truth trips per collector.
	Totals map[string]int
	// Matches[collector][device] is the number of trips matched on that pass.
	Matches map[string]map[string]int
}

func newSummary(p *Partitions) Summary {
	s := Summary{
		Collectors: p.Collectors,
		Devices:    p.Devices,
		Totals:     make(map[string]int, len(p.Collectors)),
		Matches:    make(map[string]map[string]int, len(p.Collectors)),
	}
	for _, c := range p.Collectors {
		s.Totals[c] = len(p.Trips(c))
		s.Matches[c] = make(map[string]int, len(p.Devices))
	}
	return s
}

// Count returns the matches recorded for a collector and device.
func (s Summary) Count(collector, device string) int {
	return s.Matches[collector][device]
}

// Matched returns the total number of matched rows.
func (s Summary) Matched() int {
	var n int
	for _, byDevice := range s.Matches {
		for _, c := range byDevice {
			n += c
		}
	}
	return n
}

// NearestResult is the outcome of MergeNearest.
type NearestResult struct {
	Rows    []trip.MatchRow
	Summary Summary
}

// MergeNearest attaches to every trip, once per device, the activity with the
// same label whose start is closest to the trip origin and no further than
// tolerance away. A zero tolerance requires exact equality and a negative one
// matches nothing. Equal distances prefer the earlier activity.
func MergeNearest(gt []trip.GTTrip, oba []trip.OBAActivity, tolerance time.Duration) NearestResult {
	p := Partition(gt, oba)
	res := NearestResult{Summary: newSummary(p)}

	p.Each(func(collector, device string, trips []trip.GTTrip, acts []trip.OBAActivity) {
		byLabel := indexByLabel(acts)
		matched := 0
		for i := range trips {
			g := &trips[i]
			row := trip.MatchRow{GT: g, Collector: collector, Device: device}
			if j, ok := nearest(acts, byLabel[g.Mode], g.OrigUTC, tolerance); ok {
				row.OBA = &acts[j]
				matched++
			}
			res.Rows = append(res.Rows, row)
		}
		res.Summary.Matches[collector][device] = matched
		monitoring.Logf("Oba user %s Matches: %d out of %d", ShortDeviceID(device), matched, len(trips))
	})
	return res
}

// indexByLabel groups activity indices by label, preserving start order.
func indexByLabel(acts []trip.OBAActivity) map[string][]int {
	idx := make(map[string][]int)
	for i, a := range acts {
		idx[a.Activity] = append(idx[a.Activity], i)
	}
	return idx
}

// nearest picks among candidates (indices into acts, ascending by start) the
// activity closest to at. The backward candidate is the last one starting at
// or before at and the forward candidate the first one starting at or after
// it; the backward one wins ties.
func nearest(acts []trip.OBAActivity, candidates []int, at time.Time, tolerance time.Duration) (int, bool) {
	if len(candidates) == 0 || tolerance < 0 {
		return 0, false
	}
	after := sort.Search(len(candidates), func(k int) bool {
		return acts[candidates[k]].Start.After(at)
	})
	atOrAfter := sort.Search(len(candidates), func(k int) bool {
		return !acts[candidates[k]].Start.Before(at)
	})

	best, bestDiff := -1, time.Duration(0)
	if after > 0 {
		best = candidates[after-1]
		bestDiff = at.Sub(acts[best].Start)
	}
	if atOrAfter < len(candidates) {
		j := candidates[atOrAfter]
		if diff := acts[j].Start.Sub(at); best < 0 || diff < bestDiff {
			best, bestDiff = j, diff
		}
	}
	if best < 0 || bestDiff > tolerance {
		return 0, false
	}
	return best, true
}
