package pipeline

import (
	"sort"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
)

// SequenceUnknown marks an observation with no usable stop sequence.
const SequenceUnknown = gtfsrt.SequenceUnknown

// Observation is one vehicle ping as it moves through the pipeline. Fields
// past the feed columns are filled in by successive stages: RouteName by the
// trip-update join, RouteID by extraction, NearestStop/DistanceM by spatial
// matching, LocSequence by the static lookup, TripCount by segmentation and
// DirectionID last.
type Observation struct {
	SnapshotTS          int64
	VehicleID           string
	Lat                 float64
	Lon                 float64
	CurrentStopSequence int

	RouteName   string
	RouteID     string
	NearestStop string
	DistanceM   float64
	LocSequence int
	TripCount   int
	DirectionID int
}

// FromVehiclePositions lifts raw pings into pipeline observations. Bearing
// and speed are dropped here; nothing downstream reads them.
func FromVehiclePositions(vps []gtfsrt.VehiclePosition) []Observation {
	obs := make([]Observation, 0, len(vps))
	for _, vp := range vps {
		obs = append(obs, Observation{
			SnapshotTS:          vp.SnapshotTS,
			VehicleID:           vp.VehicleID,
			Lat:                 vp.Lat,
			Lon:                 vp.Lon,
			CurrentStopSequence: vp.CurrentStopSequence,
			LocSequence:         SequenceUnknown,
			DirectionID:         -1,
		})
	}
	return obs
}

// SortByVehicleTime orders observations by (vehicle_id, snapshot_ts). Every
// per-vehicle stage relies on this order.
func SortByVehicleTime(obs []Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].VehicleID != obs[j].VehicleID {
			return obs[i].VehicleID < obs[j].VehicleID
		}
		return obs[i].SnapshotTS < obs[j].SnapshotTS
	})
}

// RouteStopLookup resolves (route, sequence) to stop names and back.
type RouteStopLookup struct {
	nameBySeq map[string]map[int]string
	seqByName map[string]map[string]int
}

// NewRouteStopLookup builds a lookup from the static route-stop mapping.
func NewRouteStopLookup(routeStops []gtfs.RouteStop) *RouteStopLookup {
	l := &RouteStopLookup{
		nameBySeq: map[string]map[int]string{},
		seqByName: map[string]map[string]int{},
	}
	for _, rs := range routeStops {
		if l.nameBySeq[rs.RouteID] == nil {
			l.nameBySeq[rs.RouteID] = map[int]string{}
			l.seqByName[rs.RouteID] = map[string]int{}
		}
		l.nameBySeq[rs.RouteID][rs.StopSequence] = rs.StopName
		if _, ok := l.seqByName[rs.RouteID][rs.StopName]; !ok {
			l.seqByName[rs.RouteID][rs.StopName] = rs.StopSequence
		}
	}
	return l
}

// StopNameAt resolves a sequence position on a route.
func (l *RouteStopLookup) StopNameAt(routeID string, seq int) (string, bool) {
	name, ok := l.nameBySeq[routeID][seq]
	return name, ok
}

// SequenceFor resolves a stop name on a route.
func (l *RouteStopLookup) SequenceFor(routeID, stopName string) (int, bool) {
	seq, ok := l.seqByName[routeID][stopName]
	return seq, ok
}
