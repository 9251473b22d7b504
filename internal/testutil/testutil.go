// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the ground truth and OBA fixtures used by the
// normalizer, matcher and exporter tests.
package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/banshee-data/gtmerge/internal/spatial"
	"github.com/banshee-data/gtmerge/internal/trip"
)

// TimestampLayout is the layout OBA exports use for UTC instants.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// GTRow is one raw ground truth spreadsheet row.
type GTRow struct {
	Collector string
	Date      string
	TimeOrig  string
	TimeDest  string
	TimeZone  string
	Mode      string
	TourID    string
	TripID    string
	LatOrig   string
	LonOrig   string
	LatDest   string
	LonDest   string
	Comments  string
}

// GTHeader is the column order GTTable writes.
var GTHeader = append(append([]string{}, trip.GTRequiredColumns...), trip.ColGTComments)

// NewGTRow returns a complete row for a trip in America/New_York.
func NewGTRow(collector string, tour, tripID int, date, orig, dest, mode string) GTRow {
	return GTRow{
		Collector: collector,
		Date:      date,
		TimeOrig:  orig,
		TimeDest:  dest,
		TimeZone:  "America/New_York",
		Mode:      mode,
		TourID:    strconv.Itoa(tour),
		TripID:    strconv.Itoa(tripID),
		LatOrig:   "28.0587",
		LonOrig:   "-82.4139",
		LatDest:   "28.0640",
		LonDest:   "-82.4230",
	}
}

func (r GTRow) fields() map[string]string {
	return map[string]string{
		trip.ColGTCollector: r.Collector,
		trip.ColGTDate:      r.Date,
		trip.ColGTTimeOrig:  r.TimeOrig,
		trip.ColGTTimeDest:  r.TimeDest,
		trip.ColGTTimeZone:  r.TimeZone,
		trip.ColGTMode:      r.Mode,
		trip.ColGTTourID:    r.TourID,
		trip.ColGTTripID:    r.TripID,
		trip.ColGTLatOrig:   r.LatOrig,
		trip.ColGTLonOrig:   r.LonOrig,
		trip.ColGTLatDest:   r.LatDest,
		trip.ColGTLonDest:   r.LonDest,
		trip.ColGTComments:  r.Comments,
	}
}

// GTTable builds a raw ground truth table.
func GTTable(rows ...GTRow) trip.Table {
	t := trip.Table{Header: GTHeader}
	for _, r := range rows {
		t.Rows = append(t.Rows, trip.RowFromFields(GTHeader, r.fields()))
	}
	return t
}

// OBARow is one raw OBA export row.
type OBARow struct {
	UserID   string
	Activity string
	Start    string
	End      string
	OrigBest string
	DestBest string
	Duration string
	Distance string
	OrigLat  string
	OrigLon  string
	DestLat  string
	DestLon  string
}

// OBAHeader is the column order OBATable writes.
var OBAHeader = []string{
	trip.ColOBAUserID, trip.ColOBAActivity, trip.ColOBAStart, trip.ColOBAEnd,
	trip.ColOBAOrigBestTime, trip.ColOBADestBestTime, trip.ColOBADuration, trip.ColOBADistance,
	trip.ColOBAOrigLat, trip.ColOBAOrigLon, trip.ColOBADestLat, trip.ColOBADestLon,
	"Google Activity Confidence",
}

// NewOBARow returns a complete ten minute, one kilometre activity.
func NewOBARow(user, activity string, start time.Time) OBARow {
	end := start.Add(10 * time.Minute)
	return OBARow{
		UserID:   user,
		Activity: activity,
		Start:    start.UTC().Format(TimestampLayout),
		End:      end.UTC().Format(TimestampLayout),
		OrigBest: start.UTC().Format(TimestampLayout),
		DestBest: end.UTC().Format(TimestampLayout),
		Duration: "10",
		Distance: "1000",
		OrigLat:  "28.0590",
		OrigLon:  "-82.4140",
		DestLat:  "28.0640",
		DestLon:  "-82.4230",
	}
}

func (r OBARow) fields() map[string]string {
	return map[string]string{
		trip.ColOBAUserID:            r.UserID,
		trip.ColOBAActivity:          r.Activity,
		trip.ColOBAStart:             r.Start,
		trip.ColOBAEnd:               r.End,
		trip.ColOBAOrigBestTime:      r.OrigBest,
		trip.ColOBADestBestTime:      r.DestBest,
		trip.ColOBADuration:          r.Duration,
		trip.ColOBADistance:          r.Distance,
		trip.ColOBAOrigLat:           r.OrigLat,
		trip.ColOBAOrigLon:           r.OrigLon,
		trip.ColOBADestLat:           r.DestLat,
		trip.ColOBADestLon:           r.DestLon,
		"Google Activity Confidence": "90",
	}
}

// OBATable builds a raw OBA export table.
func OBATable(rows ...OBARow) trip.Table {
	t := trip.Table{Header: OBAHeader}
	for _, r := range rows {
		t.Rows = append(t.Rows, trip.RowFromFields(OBAHeader, r.fields()))
	}
	return t
}

// GT builds a normalized ground truth trip directly, bypassing parsing.
func GT(collector string, tour, tripID int, mode string, orig, dest time.Time) trip.GTTrip {
	return trip.GTTrip{
		Collector:     collector,
		TourID:        tour,
		TripID:        tripID,
		Mode:          mode,
		TimeZone:      "UTC",
		Date:          time.Date(orig.Year(), orig.Month(), orig.Day(), 0, 0, 0, 0, time.UTC),
		OrigUTC:       orig.UTC(),
		OrigUTCBackup: orig.UTC(),
		OrigLocal:     orig.UTC(),
		DestUTC:       dest.UTC(),
		DestLocal:     dest.UTC(),
		Orig:          &spatial.Point{Lat: 28.0587, Lon: -82.4139},
		Dest:          &spatial.Point{Lat: 28.0640, Lon: -82.4230},
		Fields: map[string]string{
			trip.ColGTCollector: collector,
			trip.ColGTTourID:    strconv.Itoa(tour),
			trip.ColGTTripID:    strconv.Itoa(tripID),
			trip.ColGTMode:      mode,
			trip.ColGTLatOrig:   "28.0587",
			trip.ColGTLonOrig:   "-82.4139",
		},
	}
}

// OBA builds a normalized activity directly, bypassing parsing.
func OBA(user, activity string, start time.Time) trip.OBAActivity {
	return trip.OBAActivity{
		UserID:          user,
		Activity:        activity,
		Start:           start.UTC(),
		End:             start.UTC().Add(10 * time.Minute),
		OrigBestTime:    start.UTC(),
		DestBestTime:    start.UTC().Add(10 * time.Minute),
		DurationMinutes: 10,
		DistanceMeters:  1000,
		Orig:            &spatial.Point{Lat: 28.0590, Lon: -82.4140},
		Dest:            &spatial.Point{Lat: 28.0640, Lon: -82.4230},
		Fields: map[string]string{
			trip.ColOBAUserID:   user,
			trip.ColOBAActivity: activity,
		},
	}
}
