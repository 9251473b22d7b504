// Package trip defines the ground truth and OBA record types shared by the
// normalizers, the matcher and the exporters, along with the static column
// schema of both inputs.
package trip

import (
	"fmt"
	"time"

	"github.com/banshee-data/gtmerge/internal/spatial"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// String formats the time of day as HH:MM:SS with fractional seconds when set.
func (t TimeOfDay) String() string {
	if t.Nanosecond != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Nanosecond/1000)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On combines the time of day with the calendar date of d in loc.
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, t.Second, t.Nanosecond, loc)
}

// GTTrip is one ground truth trip segment.
type GTTrip struct {
	// Line is the 1-based data row number in the source spreadsheet.
	Line int

	Collector string
	TourID    int
	TripID    int
	Mode      string
	TimeZone  string
	Comments  string

	Date     time.Time
	TimeOrig *TimeOfDay
	TimeDest *TimeOfDay

	Orig *spatial.Point
	Dest *spatial.Point

	// Localized wall-clock timestamps before UTC conversion.
	OrigLocal time.Time
	DestLocal time.Time

	OrigUTC       time.Time
	DestUTC       time.Time
	OrigUTCBackup time.Time

	// Fields holds every source cell verbatim, keyed by column name.
	Fields map[string]string
}

// HasDest reports whether a destination timestamp was derived.
func (g *GTTrip) HasDest() bool {
	return !g.DestUTC.IsZero()
}

// Reduced returns the trimmed copy used on repeated rows of a one-to-many
// match: only the origin timestamp, origin coordinates and tour/trip ids
// survive.
func (g *GTTrip) Reduced() *GTTrip {
	r := &GTTrip{
		Line:          g.Line,
		TourID:        g.TourID,
		TripID:        g.TripID,
		Orig:          g.Orig,
		OrigUTC:       g.OrigUTC,
		OrigUTCBackup: g.OrigUTCBackup,
		Fields:        make(map[string]string, 4),
	}
	for _, col := range []string{ColGTLatOrig, ColGTLonOrig, ColGTTourID, ColGTTripID} {
		if v, ok := g.Fields[col]; ok {
			r.Fields[col] = v
		}
	}
	return r
}

// OBAActivity is one sensed activity from the OBA travel behavior export.
type OBAActivity struct {
	// Line is the 1-based data row number in the source CSV.
	Line int

	UserID   string
	Activity string

	Start time.Time
	// End is zero when the export has no usable activity end time.
	End time.Time

	OrigBestTime time.Time
	DestBestTime time.Time

	DurationMinutes float64
	DistanceMeters  float64

	Orig *spatial.Point
	Dest *spatial.Point

	// Fields holds every source cell verbatim, keyed by column name.
	Fields map[string]string
}

// DropReason explains why a source row was excluded from matching.
type DropReason string

const (
	DropMissingDate     DropReason = "missing_date"
	DropMissingTimeOrig DropReason = "missing_time_orig"
	DropMissingTimeDest DropReason = "missing_time_dest"
	DropInvalidTimezone DropReason = "invalid_timezone"
	DropNonexistentTime DropReason = "nonexistent_local_time"
	DropAmbiguousTime   DropReason = "ambiguous_local_time"
	DropStillMode       DropReason = "still_mode"
	DropMissingValue    DropReason = "missing_value"
	DropShortDuration   DropReason = "short_duration"
	DropShortDistance   DropReason = "short_distance"
)

// DroppedRow is a source row routed to the audit trail.
type DroppedRow struct {
	Line   int
	Fields map[string]string
	Reason DropReason
}

// MatchRow pairs one ground truth trip with at most one OBA activity.
type MatchRow struct {
	// GT is never nil. Repeated rows of a one-to-many match carry a Reduced copy.
	GT *GTTrip
	// OBA is nil when the trip found no activity in this partition pass.
	OBA *OBAActivity

	Collector string
	Device    string
	// TagDevice writes Device into the User ID column of an unmatched row so
	// the interval pass it came from stays identifiable.
	TagDevice bool

	// Derived by enrichment; nil means blank.
	TimeDifference         *float64
	DistanceDifference     *float64
	TimeDifferenceDest     *float64
	DistanceDifferenceDest *float64
}

// Matched reports whether the row carries an OBA activity.
func (m *MatchRow) Matched() bool {
	return m.OBA != nil
}
