package export

import (
	"strconv"

	"github.com/banshee-data/gtmerge/internal/enrich"
	"github.com/banshee-data/gtmerge/internal/match"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// Summary column names.
const (
	ColTotalTrips = "Total_GT_Trips"
)

// WriteDroppedGT writes the ground truth audit trail.
func (w *Writer) WriteDroppedGT(header []string, rows []trip.DroppedRow) error {
	return w.writeDropped(DroppedGTFile, header, rows)
}

// WriteDroppedOBA writes the OBA audit trail.
func (w *Writer) WriteDroppedOBA(header []string, rows []trip.DroppedRow) error {
	return w.writeDropped(DroppedOBAFile, header, rows)
}

func (w *Writer) writeDropped(name string, header []string, rows []trip.DroppedRow) error {
	out := append(append([]string{}, header...), trip.ColDropReason)
	return w.writeCSV(LogsDir, name, out, func(emit func([]string) error) error {
		for _, d := range rows {
			rec := append(trip.RowFromFields(header, d.Fields), string(d.Reason))
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMerged writes the enriched merged rows of one tolerance.
func (w *Writer) WriteMerged(toleranceMs int64, rows []trip.MatchRow) error {
	name := ArtifactName(MergedBase, toleranceMs, ".csv")
	return w.writeCSV(MergedDir, name, trip.MergedOutputColumns(), func(emit func([]string) error) error {
		for _, r := range rows {
			if err := emit(enrich.MergedRecord(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteNearestSummary writes one row per collector with the trip total and a
// match count column per device.
func (w *Writer) WriteNearestSummary(toleranceMs int64, s match.Summary) error {
	labels := match.DeviceLabels(s.Devices)
	header := []string{trip.ColGTCollector, ColTotalTrips}
	for _, d := range s.Devices {
		header = append(header, labels[d])
	}

	name := ArtifactName(SummaryBase, toleranceMs, ".csv")
	return w.writeCSV(MergedDir, name, header, func(emit func([]string) error) error {
		for _, c := range s.Collectors {
			rec := []string{c, strconv.Itoa(s.Totals[c])}
			for _, d := range s.Devices {
				rec = append(rec, strconv.Itoa(s.Count(c, d)))
			}
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteIntervalSummary writes one row per ground truth trip with the number
// of activities each device contributed. Trips keep the order of counts,
// which MergeInterval emits grouped by collector and ascending by origin.
// Trips are told apart by collector and partition index, never by their ids.
func (w *Writer) WriteIntervalSummary(toleranceMs int64, counts []match.TripMatchCount, devices []string) error {
	type tripKey struct {
		collector string
		index     int
	}
	var order []match.TripMatchCount
	byTrip := make(map[tripKey]map[string]int)
	for _, c := range counts {
		k := tripKey{c.Collector, c.Index}
		if _, ok := byTrip[k]; !ok {
			order = append(order, c)
			byTrip[k] = make(map[string]int, len(devices))
		}
		byTrip[k][c.Device] += c.Matches
	}

	labels := match.DeviceLabels(devices)
	header := []string{trip.ColGTCollector, trip.ColGTTourID, trip.ColGTTripID, trip.ColGTOrigUTC}
	for _, d := range devices {
		header = append(header, labels[d])
	}

	name := ArtifactName(SummaryBase, toleranceMs, ".csv")
	return w.writeCSV(MergedDir, name, header, func(emit func([]string) error) error {
		for _, c := range order {
			rec := []string{
				c.Collector, strconv.Itoa(c.TourID), strconv.Itoa(c.TripID),
				c.OrigUTC.UTC().Format(enrich.TimestampLayout),
			}
			k := tripKey{c.Collector, c.Index}
			for _, d := range devices {
				rec = append(rec, strconv.Itoa(byTrip[k][d]))
			}
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteUnmatched writes the activities no trip window claimed, grouped by
// collector and device.
func (w *Writer) WriteUnmatched(toleranceMs int64, rows []match.UnmatchedActivity) error {
	name := ArtifactName(UnmatchedBase, toleranceMs, ".csv")
	return w.writeCSV(MergedDir, name, trip.UnmatchedOutputColumns, func(emit func([]string) error) error {
		for _, u := range rows {
			if err := emit(enrich.UnmatchedRecord(u)); err != nil {
				return err
			}
		}
		return nil
	})
}
