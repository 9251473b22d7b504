package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
		delta      float64
	}{
		{"same point", 28.0587, -82.4139, 28.0587, -82.4139, 0, 1e-6},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 1},
		{"tampa to st petersburg", 27.9506, -82.4572, 27.7676, -82.6403, 27400, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistance_MissingPoint(t *testing.T) {
	p := &Point{Lat: 28.06, Lon: -82.41}

	_, ok := Distance(nil, p)
	assert.False(t, ok)
	_, ok = Distance(p, nil)
	assert.False(t, ok)

	d, ok := Distance(p, p)
	require.True(t, ok)
	assert.Zero(t, d)
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon string
		want     *Point
	}{
		{"valid", "28.0587", "-82.4139", &Point{Lat: 28.0587, Lon: -82.4139}},
		{"padded", " 28.5 ", " -82.5", &Point{Lat: 28.5, Lon: -82.5}},
		{"blank lat", "", "-82.4", nil},
		{"blank lon", "28.1", "", nil},
		{"not a number", "north", "-82.4", nil},
		{"nan", "NaN", "-82.4", nil},
		{"latitude out of range", "91", "0", nil},
		{"longitude out of range", "0", "181", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePoint(tt.lat, tt.lon))
		})
	}
}
