package gtfs

import (
	"fmt"
	"regexp"
	"sort"
)

// StaticIndex stores GTFS static data in memory for fast lookups.
type StaticIndex struct {
	stops      []Stop
	stopsByID  map[string]Stop
	stopTimes  []StopTime
	routeStops []RouteStop
	seqByStop  map[string]map[string]int // route_id -> stop_name -> stop_sequence
	nameBySeq  map[string]map[int]string // route_id -> stop_sequence -> stop_name
}

// NewStaticIndex derives per-trip fields with the given trip_id patterns and
// builds the route-stop mapping. serviceDayPattern and routePattern must each
// contain one capture group.
func NewStaticIndex(s *Static, serviceDayPattern, routePattern string) (*StaticIndex, error) {
	dayRe, err := regexp.Compile(serviceDayPattern)
	if err != nil {
		return nil, fmt.Errorf("serviceDayPattern: %w", err)
	}
	routeRe, err := regexp.Compile(routePattern)
	if err != nil {
		return nil, fmt.Errorf("routePattern: %w", err)
	}

	idx := &StaticIndex{
		stops:     s.Stops,
		stopsByID: make(map[string]Stop, len(s.Stops)),
		seqByStop: map[string]map[string]int{},
		nameBySeq: map[string]map[int]string{},
	}
	for _, st := range s.Stops {
		idx.stopsByID[st.ID] = st
	}

	idx.stopTimes = make([]StopTime, len(s.StopTimes))
	seen := map[RouteStop]struct{}{}
	for i, st := range s.StopTimes {
		if st.StopName == "" {
			st.StopName = idx.stopsByID[st.StopID].Name
		}
		if m := dayRe.FindStringSubmatch(st.TripID); len(m) > 1 {
			st.ServiceDay = m[1]
		}
		if m := routeRe.FindStringSubmatch(st.TripID); len(m) > 1 {
			st.RouteID = m[1]
		}
		idx.stopTimes[i] = st

		rs := RouteStop{RouteID: st.RouteID, StopSequence: st.StopSequence, StopName: st.StopName}
		if rs.RouteID == "" || rs.StopName == "" {
			continue
		}
		if _, dup := seen[rs]; dup {
			continue
		}
		seen[rs] = struct{}{}
		idx.routeStops = append(idx.routeStops, rs)
		if idx.seqByStop[rs.RouteID] == nil {
			idx.seqByStop[rs.RouteID] = map[string]int{}
			idx.nameBySeq[rs.RouteID] = map[int]string{}
		}
		if _, ok := idx.seqByStop[rs.RouteID][rs.StopName]; !ok {
			idx.seqByStop[rs.RouteID][rs.StopName] = rs.StopSequence
		}
		idx.nameBySeq[rs.RouteID][rs.StopSequence] = rs.StopName
	}
	sort.Slice(idx.routeStops, func(i, j int) bool {
		a, b := idx.routeStops[i], idx.routeStops[j]
		if a.RouteID != b.RouteID {
			return a.RouteID < b.RouteID
		}
		return a.StopSequence < b.StopSequence
	})
	return idx, nil
}

// Stops returns all stops, optionally restricted to the given names.
func (idx *StaticIndex) Stops(names []string) []Stop {
	if len(names) == 0 {
		return idx.stops
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []Stop
	for _, s := range idx.stops {
		if _, ok := want[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}

// StopTimes returns all stop_times rows with derived fields filled.
func (idx *StaticIndex) StopTimes() []StopTime {
	return idx.stopTimes
}

// RouteStops returns the unique (route, sequence, stop) mapping, optionally
// restricted to the given stop names.
func (idx *StaticIndex) RouteStops(names []string) []RouteStop {
	if len(names) == 0 {
		return idx.routeStops
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []RouteStop
	for _, rs := range idx.routeStops {
		if _, ok := want[rs.StopName]; ok {
			out = append(out, rs)
		}
	}
	return out
}

// SequenceFor resolves the stop_sequence of a named stop on a route. The
// second return is false when the stop is not on the route.
func (idx *StaticIndex) SequenceFor(routeID, stopName string) (int, bool) {
	m, ok := idx.seqByStop[routeID]
	if !ok {
		return 0, false
	}
	seq, ok := m[stopName]
	return seq, ok
}

// StopNameAt resolves the stop name at a sequence position on a route.
func (idx *StaticIndex) StopNameAt(routeID string, seq int) (string, bool) {
	m, ok := idx.nameBySeq[routeID]
	if !ok {
		return "", false
	}
	name, ok := m[seq]
	return name, ok
}
