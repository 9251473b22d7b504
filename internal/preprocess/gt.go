// Package preprocess normalizes the raw ground truth and OBA tables into
// matchable records on a common UTC time axis. Rows that cannot take part in
// matching are never discarded silently: they are returned as dropped rows
// with a reason so they can be written to the audit logs.
package preprocess

import (
	"errors"
	"strings"
	"time"

	"github.com/banshee-data/gtmerge/internal/trip"
	"github.com/banshee-data/gtmerge/internal/units"
)

// DefaultStillMarker is the activity label of a stationary segment.
const DefaultStillMarker = "STILL"

// GTOptions controls ground truth normalization.
type GTOptions struct {
	// RemoveStill drops trips whose mode equals StillMarker.
	RemoveStill bool
	// RequireAllColumns also requires a destination time on every kept row.
	RequireAllColumns bool
	// StillMarker defaults to DefaultStillMarker.
	StillMarker string
}

// GTResult is the outcome of NormalizeGT.
type GTResult struct {
	// Header is the input header without placeholder columns.
	Header  []string
	Clean   []trip.GTTrip
	Dropped []trip.DroppedRow
}

// Table rebuilds a raw table from the clean rows, in header order.
func (r GTResult) Table() trip.Table {
	t := trip.Table{Header: r.Header, Rows: make([][]string, len(r.Clean))}
	for i, g := range r.Clean {
		t.Rows[i] = trip.RowFromFields(r.Header, g.Fields)
	}
	return t
}

// NormalizeGT cleans the ground truth table and derives UTC origin and
// destination timestamps for every trip that can be placed in time.
func NormalizeGT(t trip.Table, opts GTOptions) GTResult {
	marker := opts.StillMarker
	if marker == "" {
		marker = DefaultStillMarker
	}

	header := namedColumns(t.Header)
	res := GTResult{Header: header}

	for i, raw := range t.Records() {
		fields := make(map[string]string, len(header))
		for _, col := range header {
			fields[col] = raw[col]
		}
		// A '?' marks an unrounded seconds digit in hand-entered times.
		fields[trip.ColGTTimeOrig] = strings.ReplaceAll(fields[trip.ColGTTimeOrig], "?", "0")
		fields[trip.ColGTTimeDest] = strings.ReplaceAll(fields[trip.ColGTTimeDest], "?", "0")

		g, reason := buildGTTrip(i+1, fields, opts.RequireAllColumns)
		if reason == "" && opts.RemoveStill && g.Mode == marker {
			reason = trip.DropStillMode
		}
		if reason != "" {
			res.Dropped = append(res.Dropped, trip.DroppedRow{Line: i + 1, Fields: fields, Reason: reason})
			continue
		}
		res.Clean = append(res.Clean, g)
	}
	return res
}

func buildGTTrip(line int, fields map[string]string, requireAll bool) (trip.GTTrip, trip.DropReason) {
	g := trip.GTTrip{
		Line:      line,
		Collector: strings.TrimSpace(fields[trip.ColGTCollector]),
		TourID:    parseID(fields[trip.ColGTTourID]),
		TripID:    parseID(fields[trip.ColGTTripID]),
		Mode:      strings.TrimSpace(fields[trip.ColGTMode]),
		TimeZone:  strings.TrimSpace(fields[trip.ColGTTimeZone]),
		Comments:  fields[trip.ColGTComments],
		Fields:    fields,
	}

	date, ok := ParseDate(fields[trip.ColGTDate])
	if !ok {
		return g, trip.DropMissingDate
	}
	g.Date = date

	if g.TimeOrig, ok = ParseTimeOfDay(fields[trip.ColGTTimeOrig]); !ok {
		return g, trip.DropMissingTimeOrig
	}
	g.TimeDest, _ = ParseTimeOfDay(fields[trip.ColGTTimeDest])
	if requireAll && g.TimeDest == nil {
		return g, trip.DropMissingTimeDest
	}

	origNaive := g.TimeOrig.On(date, time.UTC)
	local, err := units.Localize(origNaive, g.TimeZone)
	if err != nil {
		return g, localizeDropReason(err)
	}
	g.OrigLocal = local
	g.OrigUTC = local.UTC()
	g.OrigUTCBackup = g.OrigUTC

	if g.TimeDest != nil {
		destLocal, err := units.Localize(g.TimeDest.On(date, time.UTC), g.TimeZone)
		if err != nil {
			return g, localizeDropReason(err)
		}
		g.DestLocal = destLocal
		g.DestUTC = destLocal.UTC()
	}

	g.Orig = spatialPoint(fields, trip.ColGTLatOrig, trip.ColGTLonOrig)
	g.Dest = spatialPoint(fields, trip.ColGTLatDest, trip.ColGTLonDest)
	return g, ""
}

// localizeDropReason classifies a units.Localize failure.
func localizeDropReason(err error) trip.DropReason {
	switch {
	case errors.Is(err, units.ErrNonexistentTime):
		return trip.DropNonexistentTime
	case errors.Is(err, units.ErrAmbiguousTime):
		return trip.DropAmbiguousTime
	default:
		return trip.DropInvalidTimezone
	}
}

// namedColumns drops placeholder columns produced by spreadsheet exports.
func namedColumns(header []string) []string {
	out := make([]string, 0, len(header))
	for _, col := range header {
		if strings.TrimSpace(col) == "" || strings.Contains(col, "Unnamed") {
			continue
		}
		out = append(out, col)
	}
	return out
}
