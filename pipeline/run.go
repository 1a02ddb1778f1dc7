package pipeline

import (
	"time"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
)

// Params collects the tunables of one pipeline run.
type Params struct {
	HourMin, HourMax int
	Location         *time.Location
	Routes           []string // trip-update route name allow-list
	Vehicles         []string // vehicle allow-list
	Stations         []string // stations of interest, in corridor order
	JumpThreshold    int
	Direction        int
}

// BuildStationTimetable runs the full realtime-to-static pipeline: filter
// and dedup both feeds, join and impute routes, match pings to stations,
// segment trips and pivot into a station timetable.
func BuildStationTimetable(vps []gtfsrt.VehiclePosition, tus []gtfsrt.TripUpdate, idx *gtfs.StaticIndex, p Params) *Timetable {
	obs := FromVehiclePositions(vps)
	SortByVehicleTime(obs)
	obs = FilterHourWindow(obs, p.HourMin, p.HourMax, p.Location)
	obs = FilterVehicles(obs, p.Vehicles)
	obs = Dedup(obs)

	tus = FilterTripUpdateRoutes(tus, p.Routes)
	tus = filterTripUpdateHours(tus, p.HourMin, p.HourMax, p.Location)
	tus = DedupTripUpdates(tus)

	JoinRoutes(obs, tus)
	ImputeRoutes(obs)
	obs = DropMissingRoute(obs)
	ExtractRouteNumbers(obs)

	lookup := NewRouteStopLookup(idx.RouteStops(p.Stations))
	obs = JoinStaticSequence(obs, lookup)
	AssignNearestStops(obs, idx.Stops(p.Stations))
	AssignLocationSequence(obs, lookup)
	SegmentTrips(obs, p.JumpThreshold)
	obs = SelectNearestApproach(obs)
	AssignDirections(obs)

	return BuildTimetable(obs, p.Stations, p.Direction, p.Location)
}

func filterTripUpdateHours(tus []gtfsrt.TripUpdate, hourMin, hourMax int, loc *time.Location) []gtfsrt.TripUpdate {
	if loc == nil {
		loc = time.UTC
	}
	out := tus[:0]
	for _, tu := range tus {
		h := time.Unix(tu.SnapshotTS, 0).In(loc).Hour()
		if h >= hourMin && h <= hourMax {
			out = append(out, tu)
		}
	}
	return out
}
