package preprocess

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/banshee-data/gtmerge/internal/trip"
)

// excelEpoch is day zero of spreadsheet serial dates (1900 date system).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var timeOfDayLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04:05PM",
	"3:04 PM",
	"3:04PM",
}

// ParseTimestamp parses an instant the way the OBA export writes them. Values
// without an offset are taken as UTC. Blank or unparseable input reports false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ParseDate parses a calendar date, accepting spreadsheet serial numbers.
// The result is midnight UTC of that date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 2958465 {
			return time.Time{}, false
		}
		d := excelEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return d, true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// ParseTimeOfDay parses a wall-clock time. It accepts HH:MM[:SS[.fff]], 12-hour
// clock forms, full date-times (the date part is discarded) and spreadsheet day
// fractions in [0, 1).
func ParseTimeOfDay(s string) (*trip.TimeOfDay, bool) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return nil, false
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		if frac < 0 || frac >= 1 {
			return nil, false
		}
		d := time.Duration(math.Round(frac * float64(24*time.Hour/time.Millisecond)))
		return fromClock(time.Time{}.Add(d * time.Millisecond)), true
	}
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromClock(t), true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return fromClock(t), true
	}
	return nil, false
}

func fromClock(t time.Time) *trip.TimeOfDay {
	return &trip.TimeOfDay{
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// ParseFloat parses a numeric cell. Blank, NaN and unparseable input report false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseID parses integer identifiers that spreadsheets may render as "3.0".
func parseID(s string) int {
	v, ok := ParseFloat(s)
	if !ok {
		return 0
	}
	return int(v)
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", "none":
		return true
	}
	return false
}
