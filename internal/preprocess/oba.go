package preprocess

import (
	"strings"

	"github.com/banshee-data/gtmerge/internal/spatial"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// OBAOptions controls OBA normalization.
type OBAOptions struct {
	// MinActivityDuration is the shortest kept activity, in minutes.
	MinActivityDuration float64
	// MinTripLength is the shortest kept origin-destination distance, in meters.
	MinTripLength float64
	// RemoveStill drops activities labelled StillMarker.
	RemoveStill bool
	// StillMarker defaults to DefaultStillMarker.
	StillMarker string
	// Devices, when non-nil, restricts the input to these user ids before any
	// other check. Rows of other devices are neither clean nor dropped.
	Devices map[string]struct{}
}

// OBAResult is the outcome of NormalizeOBA.
type OBAResult struct {
	Header  []string
	Clean   []trip.OBAActivity
	Dropped []trip.DroppedRow
	// Excluded counts rows removed by the device whitelist.
	Excluded int
}

// Table rebuilds a raw table from the clean rows, in header order.
func (r OBAResult) Table() trip.Table {
	t := trip.Table{Header: r.Header, Rows: make([][]string, len(r.Clean))}
	for i, a := range r.Clean {
		t.Rows[i] = trip.RowFromFields(r.Header, a.Fields)
	}
	return t
}

// NormalizeOBA parses the OBA export, applies the whitelist, and splits the
// remaining rows into clean activities and dropped rows. Each row is checked
// once and dropped with the first failing reason.
func NormalizeOBA(t trip.Table, opts OBAOptions) OBAResult {
	marker := opts.StillMarker
	if marker == "" {
		marker = DefaultStillMarker
	}

	res := OBAResult{Header: t.Header}
	for i, fields := range t.Records() {
		line := i + 1
		userID := strings.TrimSpace(fields[trip.ColOBAUserID])
		if opts.Devices != nil {
			if _, ok := opts.Devices[userID]; !ok {
				res.Excluded++
				continue
			}
		}

		a, reason := buildActivity(line, userID, fields)
		if reason == "" {
			switch {
			case a.DurationMinutes < opts.MinActivityDuration:
				reason = trip.DropShortDuration
			case a.DistanceMeters < opts.MinTripLength:
				reason = trip.DropShortDistance
			case opts.RemoveStill && a.Activity == marker:
				reason = trip.DropStillMode
			}
		}
		if reason != "" {
			res.Dropped = append(res.Dropped, trip.DroppedRow{Line: line, Fields: fields, Reason: reason})
			continue
		}
		res.Clean = append(res.Clean, a)
	}
	return res
}

func buildActivity(line int, userID string, fields map[string]string) (trip.OBAActivity, trip.DropReason) {
	a := trip.OBAActivity{
		Line:     line,
		UserID:   userID,
		Activity: strings.TrimSpace(fields[trip.ColOBAActivity]),
		Fields:   fields,
	}
	if userID == "" {
		return a, trip.DropMissingValue
	}

	var ok bool
	if a.Start, ok = ParseTimestamp(fields[trip.ColOBAStart]); !ok {
		return a, trip.DropMissingValue
	}
	if a.OrigBestTime, ok = ParseTimestamp(fields[trip.ColOBAOrigBestTime]); !ok {
		return a, trip.DropMissingValue
	}
	if a.DestBestTime, ok = ParseTimestamp(fields[trip.ColOBADestBestTime]); !ok {
		return a, trip.DropMissingValue
	}
	if a.DurationMinutes, ok = ParseFloat(fields[trip.ColOBADuration]); !ok {
		return a, trip.DropMissingValue
	}
	if a.DistanceMeters, ok = ParseFloat(fields[trip.ColOBADistance]); !ok {
		return a, trip.DropMissingValue
	}

	a.End, _ = ParseTimestamp(fields[trip.ColOBAEnd])
	a.Orig = spatialPoint(fields, trip.ColOBAOrigLat, trip.ColOBAOrigLon)
	a.Dest = spatialPoint(fields, trip.ColOBADestLat, trip.ColOBADestLon)
	return a, ""
}

func spatialPoint(fields map[string]string, latCol, lonCol string) *spatial.Point {
	return spatial.ParsePoint(fields[latCol], fields[lonCol])
}
