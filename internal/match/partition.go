// Package match reconciles ground truth trips with OBA activities. Ground
// truth is grouped by collector and activities by device; every collector is
// paired with every device and each pair is matched independently, either by
// nearest start time or by containment in the trip's time window.
package match

import (
	"sort"

	"github.com/banshee-data/gtmerge/internal/trip"
)

// Partitions holds both inputs grouped and sorted for matching.
type Partitions struct {
	// Collectors and Devices are in first-seen input order.
	Collectors []string
	Devices    []string

	trips      map[string][]trip.GTTrip
	activities map[string][]trip.OBAActivity
}

// Partition groups gt by collector and oba by device. Each group is a copy
// sorted ascending by origin UTC and activity start respectively; ties keep
// input order.
func Partition(gt []trip.GTTrip, oba []trip.OBAActivity) *Partitions {
	p := &Partitions{
		trips:      make(map[string][]trip.GTTrip),
		activities: make(map[string][]trip.OBAActivity),
	}
	for _, g := range gt {
		if _, ok := p.trips[g.Collector]; !ok {
			p.Collectors = append(p.Collectors, g.Collector)
		}
		p.trips[g.Collector] = append(p.trips[g.Collector], g)
	}
	for _, a := range oba {
		if _, ok := p.activities[a.UserID]; !ok {
			p.Devices = append(p.Devices, a.UserID)
		}
		p.activities[a.UserID] = append(p.activities[a.UserID], a)
	}

	for _, trips := range p.trips {
		sort.SliceStable(trips, func(i, j int) bool {
			return trips[i].OrigUTC.Before(trips[j].OrigUTC)
		})
	}
	for _, acts := range p.activities {
		sort.SliceStable(acts, func(i, j int) bool {
			return acts[i].Start.Before(acts[j].Start)
		})
	}
	return p
}

// Trips returns the collector's trips in ascending origin order.
func (p *Partitions) Trips(collector string) []trip.GTTrip {
	return p.trips[collector]
}

// Activities returns the device's activities in ascending start order.
func (p *Partitions) Activities(device string) []trip.OBAActivity {
	return p.activities[device]
}

// Each calls fn for every (collector, device) pair, collectors outermost.
func (p *Partitions) Each(fn func(collector, device string, trips []trip.GTTrip, acts []trip.OBAActivity)) {
	for _, c := range p.Collectors {
		for _, d := range p.Devices {
			fn(c, d, p.trips[c], p.activities[d])
		}
	}
}

// ShortDeviceID is the display form of a device id: its last four characters.
func ShortDeviceID(device string) string {
	r := []rune(device)
	if len(r) <= 4 {
		return device
	}
	return string(r[len(r)-4:])
}

// DeviceLabels maps each device to its short id. Devices whose short ids
// collide keep their full id so summary columns stay distinct.
func DeviceLabels(devices []string) map[string]string {
	seen := make(map[string]int, len(devices))
	for _, d := range devices {
		seen[ShortDeviceID(d)]++
	}
	labels := make(map[string]string, len(devices))
	for _, d := range devices {
		short := ShortDeviceID(d)
		if seen[short] > 1 {
			labels[d] = d
			continue
		}
		labels[d] = short
	}
	return labels
}
