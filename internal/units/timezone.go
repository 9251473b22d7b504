// Package units provides timezone validation and wall-clock localisation for
// ground truth timestamps.
package units

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNonexistentTime reports a wall-clock time skipped by a DST change.
	ErrNonexistentTime = errors.New("local time does not exist")
	// ErrAmbiguousTime reports a wall-clock time that occurs twice.
	ErrAmbiguousTime = errors.New("local time is ambiguous")
)

var (
	locMu    sync.Mutex
	locCache = map[string]*time.Location{}
)

// LoadLocation resolves an IANA timezone name, caching successful lookups.
// An empty name is rejected rather than silently treated as UTC.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("empty timezone")
	}

	locMu.Lock()
	defer locMu.Unlock()
	if loc, ok := locCache[tz]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	locCache[tz] = loc
	return loc, nil
}

// Localize interprets the wall-clock fields of naive in the named timezone.
// The location of naive itself is ignored. Wall times that fall in a DST gap
// or overlap are rejected with ErrNonexistentTime or ErrAmbiguousTime.
func Localize(naive time.Time, tz string) (time.Time, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
	if !sameWallClock(t, naive) {
		return time.Time{}, fmt.Errorf("%w: %s in %s", ErrNonexistentTime, naive.Format("2006-01-02 15:04:05"), tz)
	}
	if ambiguous(t) {
		return time.Time{}, fmt.Errorf("%w: %s in %s", ErrAmbiguousTime, naive.Format("2006-01-02 15:04:05"), tz)
	}
	return t, nil
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

// ambiguous reports whether another instant within a few hours of t shows the
// same wall clock in t's location.
func ambiguous(t time.Time) bool {
	_, off := t.Zone()
	for _, probe := range []time.Duration{-3 * time.Hour, 3 * time.Hour} {
		_, other := t.Add(probe).Zone()
		if other == off {
			continue
		}
		u := t.Add(time.Duration(off-other) * time.Second)
		if !u.Equal(t) && sameWallClock(u, t) {
			return true
		}
	}
	return false
}
