package pipeline

import (
	"regexp"
	"time"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
	"github.com/RailOpsData/headway-optimisation-gtfs/utils"
)

var (
	routeNumberRe   = regexp.MustCompile(`\(([-\d]+)\)`)
	trailingDigitRe = regexp.MustCompile(`(\d)$`)
)

// FilterHourWindow keeps observations whose local wall-clock hour lies in
// [hourMin, hourMax], both inclusive.
func FilterHourWindow(obs []Observation, hourMin, hourMax int, loc *time.Location) []Observation {
	if loc == nil {
		loc = time.UTC
	}
	out := obs[:0]
	for _, o := range obs {
		h := time.Unix(o.SnapshotTS, 0).In(loc).Hour()
		if h >= hourMin && h <= hourMax {
			out = append(out, o)
		}
	}
	return out
}

// FilterVehicles keeps observations from the allow-listed vehicles. An empty
// list keeps everything.
func FilterVehicles(obs []Observation, allow []string) []Observation {
	if len(allow) == 0 {
		return obs
	}
	want := make(map[string]struct{}, len(allow))
	for _, v := range allow {
		want[v] = struct{}{}
	}
	out := obs[:0]
	for _, o := range obs {
		if _, ok := want[o.VehicleID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Dedup removes repeated (snapshot_ts, vehicle_id) observations, keeping the
// first. The archiver snapshots every few seconds while the upstream feed
// refreshes slower, so identical pings are the normal case, not an anomaly.
func Dedup(obs []Observation) []Observation {
	type key struct {
		ts      int64
		vehicle string
	}
	seen := make(map[key]struct{}, len(obs))
	out := obs[:0]
	for _, o := range obs {
		k := key{o.SnapshotTS, o.VehicleID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}

// FilterTripUpdateRoutes keeps trip updates whose route name is in the allow
// list. An empty list keeps everything.
func FilterTripUpdateRoutes(tus []gtfsrt.TripUpdate, allow []string) []gtfsrt.TripUpdate {
	if len(allow) == 0 {
		return tus
	}
	want := make(map[string]struct{}, len(allow))
	for _, r := range allow {
		want[r] = struct{}{}
	}
	out := tus[:0]
	for _, tu := range tus {
		if _, ok := want[tu.RouteID]; ok {
			out = append(out, tu)
		}
	}
	return out
}

// DedupTripUpdates removes repeated (snapshot_ts, vehicle_id) records,
// keeping the first.
func DedupTripUpdates(tus []gtfsrt.TripUpdate) []gtfsrt.TripUpdate {
	type key struct {
		ts      int64
		vehicle string
	}
	seen := make(map[key]struct{}, len(tus))
	out := tus[:0]
	for _, tu := range tus {
		k := key{tu.SnapshotTS, tu.VehicleID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tu)
	}
	return out
}

// JoinRoutes left-joins trip-update route names onto observations by exact
// (snapshot_ts, vehicle_id). Pings without a matching trip update keep an
// empty RouteName for imputation to fill.
func JoinRoutes(obs []Observation, tus []gtfsrt.TripUpdate) {
	type key struct {
		ts      int64
		vehicle string
	}
	routes := make(map[key]string, len(tus))
	for _, tu := range tus {
		k := key{tu.SnapshotTS, tu.VehicleID}
		if _, ok := routes[k]; !ok {
			routes[k] = tu.RouteID
		}
	}
	for i := range obs {
		obs[i].RouteName = routes[key{obs[i].SnapshotTS, obs[i].VehicleID}]
	}
}

// ImputeRoutes fills missing route names per vehicle by propagating the
// nearest known value forward and backward in time, and filling only where
// both directions agree. A gap between two different routes stays empty: the
// vehicle changed service somewhere inside it and either guess could be
// wrong. Requires vehicle-time order.
func ImputeRoutes(obs []Observation) {
	for start := 0; start < len(obs); {
		end := start
		for end < len(obs) && obs[end].VehicleID == obs[start].VehicleID {
			end++
		}
		imputeVehicleRoutes(obs[start:end])
		start = end
	}
}

func imputeVehicleRoutes(obs []Observation) {
	forward := make([]string, len(obs))
	last := ""
	for i, o := range obs {
		if o.RouteName != "" {
			last = o.RouteName
		}
		forward[i] = last
	}
	next := ""
	for i := len(obs) - 1; i >= 0; i-- {
		if obs[i].RouteName != "" {
			next = obs[i].RouteName
		}
		if obs[i].RouteName == "" && forward[i] != "" && forward[i] == next {
			obs[i].RouteName = forward[i]
		}
	}
}

// DropMissingRoute removes observations that still have no route after
// imputation.
func DropMissingRoute(obs []Observation) []Observation {
	out := obs[:0]
	for _, o := range obs {
		if o.RouteName != "" {
			out = append(out, o)
		}
	}
	return out
}

// ExtractRouteNumbers pulls the numeric route id out of the route display
// name, e.g. 市内軌道線(3001-2-1) -> 3001-2-1. Names without a parenthesized
// id leave RouteID empty and fall out at the static join.
func ExtractRouteNumbers(obs []Observation) {
	for i := range obs {
		if m := routeNumberRe.FindStringSubmatch(obs[i].RouteName); len(m) > 1 {
			obs[i].RouteID = m[1]
		}
	}
}

// JoinStaticSequence keeps only observations whose reported stop sequence
// exists for their route in the static mapping. This is the inner join that
// discards pings from route variants the schedule does not cover.
func JoinStaticSequence(obs []Observation, lookup *RouteStopLookup) []Observation {
	out := obs[:0]
	for _, o := range obs {
		if o.RouteID == "" || o.CurrentStopSequence == SequenceUnknown {
			continue
		}
		if _, ok := lookup.StopNameAt(o.RouteID, o.CurrentStopSequence); ok {
			out = append(out, o)
		}
	}
	return out
}

// AssignNearestStops matches every distinct coordinate to the closest
// candidate station by ground distance and annotates each observation with
// the station name and distance. Distinct coordinates are memoized because
// a stationary tram repeats the same fix for many snapshots.
func AssignNearestStops(obs []Observation, stops []gtfs.Stop) {
	if len(stops) == 0 {
		return
	}
	type coord struct{ lat, lon float64 }
	type match struct {
		name string
		dist float64
	}
	cache := map[coord]match{}
	for i := range obs {
		c := coord{obs[i].Lat, obs[i].Lon}
		m, ok := cache[c]
		if !ok {
			m = match{dist: -1}
			for _, s := range stops {
				d := utils.GroundDistanceMeters(c.lat, c.lon, s.Lat, s.Lon)
				if m.dist < 0 || d < m.dist {
					m = match{name: s.Name, dist: d}
				}
			}
			cache[c] = m
		}
		obs[i].NearestStop = m.name
		obs[i].DistanceM = m.dist
	}
}

// AssignLocationSequence derives the location-based stop sequence: the
// static sequence of the nearest station on the observation's route, or
// SequenceUnknown when that station is not on the route.
func AssignLocationSequence(obs []Observation, lookup *RouteStopLookup) {
	for i := range obs {
		if seq, ok := lookup.SequenceFor(obs[i].RouteID, obs[i].NearestStop); ok {
			obs[i].LocSequence = seq
		} else {
			obs[i].LocSequence = SequenceUnknown
		}
	}
}

// SegmentTrips splits each vehicle's ping stream into trips. A new trip
// starts when the location sequence rolls back, jumps by more than
// jumpThreshold stops, or is unknown on either side of the step; the first
// ping of a vehicle always opens trip 1. Requires vehicle-time order.
func SegmentTrips(obs []Observation, jumpThreshold int) {
	prevVehicle := ""
	prevSeq := SequenceUnknown
	trip := 0
	for i := range obs {
		o := &obs[i]
		boundary := true
		if o.VehicleID == prevVehicle && o.LocSequence != SequenceUnknown && prevSeq != SequenceUnknown {
			delta := o.LocSequence - prevSeq
			boundary = delta < 0 || delta > jumpThreshold || -delta > jumpThreshold
		}
		if o.VehicleID != prevVehicle {
			trip = 0
		}
		if boundary {
			trip++
		}
		o.TripCount = trip
		prevVehicle = o.VehicleID
		prevSeq = o.LocSequence
	}
}

// SelectNearestApproach keeps, for every (vehicle, trip, location sequence),
// the single observation closest to the matched station: the moment the
// vehicle actually passed it. Output is restored to vehicle-time order.
func SelectNearestApproach(obs []Observation) []Observation {
	type key struct {
		vehicle string
		trip    int
		seq     int
	}
	best := make(map[key]int, len(obs))
	for i, o := range obs {
		k := key{o.VehicleID, o.TripCount, o.LocSequence}
		if j, ok := best[k]; !ok || o.DistanceM < obs[j].DistanceM {
			best[k] = i
		}
	}
	keep := make(map[int]struct{}, len(best))
	for _, i := range best {
		keep[i] = struct{}{}
	}
	out := make([]Observation, 0, len(best))
	for i, o := range obs {
		if _, ok := keep[i]; ok {
			out = append(out, o)
		}
	}
	SortByVehicleTime(out)
	return out
}

// AssignDirections derives the direction id from the trailing digit of the
// route id (the agency encodes direction as the last route-id component).
func AssignDirections(obs []Observation) {
	for i := range obs {
		if m := trailingDigitRe.FindStringSubmatch(obs[i].RouteID); len(m) > 1 {
			obs[i].DirectionID = int(m[1][0] - '0')
		} else {
			obs[i].DirectionID = -1
		}
	}
}
