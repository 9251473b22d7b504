package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gtmerge/internal/testutil"
	"github.com/banshee-data/gtmerge/internal/trip"
)

func TestMergeNearest_Stark(t *testing.T) {
	gt := []trip.GTTrip{testutil.GT("Stark", 1, 1, "WALKING", t0, t0.Add(15*time.Minute))}
	oba := []trip.OBAActivity{
		testutil.OBA("obaUser_006", "WALKING", t0.Add(500*time.Millisecond)),
		testutil.OBA("obaUser_008", "WALKING", t0.Add(1800*time.Millisecond)),
	}

	res := MergeNearest(gt, oba, 3000*time.Millisecond)
	require.Len(t, res.Rows, 2)
	for i, device := range []string{"obaUser_006", "obaUser_008"} {
		row := res.Rows[i]
		assert.Equal(t, device, row.Device)
		assert.Equal(t, "Stark", row.Collector)
		require.True(t, row.Matched(), device)
		assert.Equal(t, device, row.OBA.UserID)
	}
	assert.Equal(t, 1, res.Summary.Totals["Stark"])
	assert.Equal(t, 1, res.Summary.Count("Stark", "obaUser_006"))
	assert.Equal(t, 1, res.Summary.Count("Stark", "obaUser_008"))
	assert.Equal(t, 2, res.Summary.Matched())

	// Tightening past the second device's offset drops only that match.
	res = MergeNearest(gt, oba, time.Second)
	assert.True(t, res.Rows[0].Matched())
	assert.False(t, res.Rows[1].Matched())
}

func TestMergeNearest_Selection(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		starts    []time.Duration
		labels    []string
		tolerance time.Duration
		want      int // index into starts, -1 for no match
	}{
		{"closest after", "WALKING", []time.Duration{-10 * time.Second, 4 * time.Second}, nil, time.Minute, 1},
		{"closest before", "WALKING", []time.Duration{-3 * time.Second, 4 * time.Second}, nil, time.Minute, 0},
		{"tie prefers earlier", "WALKING", []time.Duration{-5 * time.Second, 5 * time.Second}, nil, time.Minute, 0},
		{"outside tolerance", "WALKING", []time.Duration{-5 * time.Second, 5 * time.Second}, nil, 4 * time.Second, -1},
		{"tolerance is inclusive", "WALKING", []time.Duration{5 * time.Second}, nil, 5 * time.Second, 0},
		{"zero tolerance exact", "WALKING", []time.Duration{0}, nil, 0, 0},
		{"zero tolerance inexact", "WALKING", []time.Duration{time.Millisecond}, nil, 0, -1},
		{"negative tolerance", "WALKING", []time.Duration{0}, nil, -time.Second, -1},
		{
			name:      "mode is a join key",
			mode:      "IN_VEHICLE",
			starts:    []time.Duration{time.Second, 30 * time.Second},
			labels:    []string{"WALKING", "IN_VEHICLE"},
			tolerance: time.Minute,
			want:      1,
		},
		{
			name:      "no activity with the mode",
			mode:      "ON_BICYCLE",
			starts:    []time.Duration{time.Second},
			tolerance: time.Minute,
			want:      -1,
		},
		{
			name:      "equal starts backward takes the later row",
			mode:      "WALKING",
			starts:    []time.Duration{-2 * time.Second, -2 * time.Second, 9 * time.Second},
			tolerance: time.Minute,
			want:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt := []trip.GTTrip{testutil.GT("Stark", 1, 1, tt.mode, t0, t0.Add(time.Hour))}
			var oba []trip.OBAActivity
			for i, d := range tt.starts {
				label := "WALKING"
				if tt.labels != nil {
					label = tt.labels[i]
				}
				a := testutil.OBA("obaUser_006", label, t0.Add(d))
				a.Line = i
				oba = append(oba, a)
			}

			res := MergeNearest(gt, oba, tt.tolerance)
			require.Len(t, res.Rows, 1)
			row := res.Rows[0]
			if tt.want < 0 {
				assert.False(t, row.Matched())
				assert.Equal(t, 0, res.Summary.Count("Stark", "obaUser_006"))
				return
			}
			require.True(t, row.Matched())
			assert.Equal(t, tt.want, row.OBA.Line)
		})
	}
}

func TestMergeNearest_OneRowPerTripPerDevice(t *testing.T) {
	gt := []trip.GTTrip{
		testutil.GT("Stark", 1, 1, "WALKING", t0, t0.Add(10*time.Minute)),
		testutil.GT("Stark", 1, 2, "WALKING", t0.Add(time.Second), t0.Add(10*time.Minute)),
		testutil.GT("Lannister", 1, 1, "WALKING", t0, t0.Add(10*time.Minute)),
	}
	oba := []trip.OBAActivity{
		testutil.OBA("obaUser_006", "WALKING", t0),
		testutil.OBA("obaUser_008", "WALKING", t0.Add(time.Hour)),
		testutil.OBA("obaUser_009", "WALKING", t0.Add(2*time.Second)),
	}

	res := MergeNearest(gt, oba, time.Minute)
	assert.Len(t, res.Rows, len(gt)*3)

	seen := map[string]int{}
	for _, r := range res.Rows {
		key := r.Collector + "/" + r.Device + "/" + string(rune('0'+r.GT.TripID))
		seen[key]++
		if r.Matched() {
			assert.Equal(t, r.Device, r.OBA.UserID)
			assert.Equal(t, r.GT.Mode, r.OBA.Activity)
		}
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, key)
	}
	// The same activity may match several trips.
	assert.Equal(t, 2, res.Summary.Count("Stark", "obaUser_006"))
	assert.Equal(t, 0, res.Summary.Count("Stark", "obaUser_008"))
	assert.Equal(t, 2, res.Summary.Totals["Stark"])
}

func TestMergeNearest_ToleranceMonotonic(t *testing.T) {
	var gt []trip.GTTrip
	var oba []trip.OBAActivity
	for i := 0; i < 20; i++ {
		origin := t0.Add(time.Duration(i) * 17 * time.Minute)
		gt = append(gt, testutil.GT("Stark", 1, i, "WALKING", origin, origin.Add(10*time.Minute)))
		offset := time.Duration(i*i) * 7 * time.Second
		if i%2 == 1 {
			offset = -offset
		}
		oba = append(oba, testutil.OBA("obaUser_006", "WALKING", origin.Add(offset)))
	}

	prev := -1
	for _, tol := range []time.Duration{0, 30 * time.Second, time.Minute, 5 * time.Minute, 30 * time.Minute, time.Hour} {
		n := MergeNearest(gt, oba, tol).Summary.Matched()
		assert.GreaterOrEqual(t, n, prev, "tolerance %v", tol)
		prev = n
	}
	assert.Equal(t, len(gt), prev)
}
