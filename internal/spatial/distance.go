// Package spatial provides great-circle helpers for trip coordinates.
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for all distances.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// String formats the point as "lat,lon".
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// HaversineDistance calculates the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance returns the great-circle distance between a and b in meters.
// The second return value is false when either point is missing.
func Distance(a, b *Point) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon), true
}

// ParsePoint builds a Point from raw latitude and longitude cells.
// Blank, unparseable, NaN or out-of-range values yield nil.
func ParsePoint(lat, lon string) *Point {
	la, ok := parseCoord(lat, 90)
	if !ok {
		return nil
	}
	lo, ok := parseCoord(lon, 180)
	if !ok {
		return nil
	}
	return &Point{Lat: la, Lon: lo}
}

func parseCoord(s string, limit float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}
