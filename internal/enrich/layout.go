package enrich

import (
	"strconv"
	"time"

	"github.com/banshee-data/gtmerge/internal/match"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// TimestampLayout formats derived instants in merged output.
const TimestampLayout = "2006-01-02 15:04:05.999999-07:00"

// DateLayout formats the ground truth date column.
const DateLayout = "2006-01-02"

// MergedRecord lays a merged row out in trip.MergedOutputColumns order.
// Unmatched rows leave the OBA half blank; rows with TagDevice set carry the
// device of their pass in the User ID column.
func MergedRecord(r trip.MatchRow) []string {
	fields := make(map[string]string, 64)
	if r.GT != nil {
		gtFields(r.GT, fields)
	}
	if r.OBA != nil {
		for k, v := range r.OBA.Fields {
			fields[k] = v
		}
	} else if r.TagDevice {
		fields[trip.ColOBAUserID] = r.Device
	}
	fields[trip.ColManualAssignment] = ""
	fields[trip.ColTimeDifference] = formatFloat(r.TimeDifference)
	fields[trip.ColDistanceDifference] = formatFloat(r.DistanceDifference)
	fields[trip.ColTimeDifferenceDest] = formatFloat(r.TimeDifferenceDest)
	fields[trip.ColDistanceDiffDest] = formatFloat(r.DistanceDifferenceDest)
	if r.GT != nil {
		fields[trip.ColGTOrigUTC] = formatTime(r.GT.OrigUTC)
	}
	return trip.RowFromFields(trip.MergedOutputColumns(), fields)
}

// UnmatchedRecord lays an unmatched activity out in
// trip.UnmatchedOutputColumns order.
func UnmatchedRecord(u match.UnmatchedActivity) []string {
	fields := make(map[string]string, len(u.Activity.Fields)+2)
	for k, v := range u.Activity.Fields {
		fields[k] = v
	}
	fields[trip.ColGTCollector] = u.Collector
	fields[trip.ColUnmatchedDeviceShort] = match.ShortDeviceID(u.Device)
	return trip.RowFromFields(trip.UnmatchedOutputColumns, fields)
}

// gtFields copies the trip's source cells and overwrites the parsed and
// derived columns with their canonical renderings.
func gtFields(g *trip.GTTrip, fields map[string]string) {
	for k, v := range g.Fields {
		fields[k] = v
	}
	if !g.Date.IsZero() {
		fields[trip.ColGTDate] = g.Date.Format(DateLayout)
	}
	if g.TimeOrig != nil {
		fields[trip.ColGTTimeOrig] = g.TimeOrig.String()
	}
	if g.TimeDest != nil {
		fields[trip.ColGTTimeDest] = g.TimeDest.String()
	}
	fields[trip.ColGTDateTimeCombined] = formatTime(g.OrigLocal)
	fields[trip.ColGTDateTimeDestCombine] = formatTime(g.DestLocal)
	fields[trip.ColGTOrigUTCBackup] = formatTime(g.OrigUTCBackup)
	fields[trip.ColGTDestUTC] = formatTime(g.DestUTC)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
