// Package headway derives scheduled headway statistics from GTFS static
// stop_times: for every (route, stop) pair, the intervals between
// successive scheduled departures and their spread. The coefficient of
// variation is the figure the analysis cares about; a cv near zero means a
// clockface schedule, a large cv means bunched departures.
package headway

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/utils"
)

// Stats summarizes the headways of one stop on one route.
type Stats struct {
	RouteID       string
	StopID        string
	Headways      int
	MeanSeconds   float64
	MedianSeconds float64
	StdDevSeconds float64
	CV            float64
}

// Compute derives headway statistics from stop_times rows whose derived
// RouteID is set. Rows with unparsable departure times are skipped; pairs
// with fewer than two departures yield no headways and are omitted.
func Compute(stopTimes []gtfs.StopTime) []Stats {
	type key struct {
		route string
		stop  string
	}
	departures := map[key][]int{}
	for _, st := range stopTimes {
		if st.RouteID == "" {
			continue
		}
		sec, err := utils.ParseGTFSTime(st.DepartureTime)
		if err != nil {
			continue
		}
		k := key{st.RouteID, st.StopID}
		departures[k] = append(departures[k], sec)
	}

	var out []Stats
	for k, secs := range departures {
		if len(secs) < 2 {
			continue
		}
		sort.Ints(secs)
		headways := make([]float64, 0, len(secs)-1)
		var w welford
		for i := 1; i < len(secs); i++ {
			h := float64(secs[i] - secs[i-1])
			headways = append(headways, h)
			w.update(h)
		}
		s := Stats{
			RouteID:       k.route,
			StopID:        k.stop,
			Headways:      len(headways),
			MeanSeconds:   w.mean,
			MedianSeconds: median(headways),
			StdDevSeconds: w.stdDev(),
		}
		if s.MeanSeconds != 0 {
			s.CV = s.StdDevSeconds / s.MeanSeconds
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RouteID != out[j].RouteID {
			return out[i].RouteID < out[j].RouteID
		}
		return out[i].StopID < out[j].StopID
	})
	return out
}

// median expects a sorted-order-independent slice; it sorts its own copy.
func median(v []float64) float64 {
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// WriteCSV renders the statistics with one row per (route, stop).
func WriteCSV(w io.Writer, stats []Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"route_id", "stop_id", "headways",
		"mean_headway_s", "median_headway_s", "std_headway_s", "cv_headway",
	}); err != nil {
		return err
	}
	for _, s := range stats {
		rec := []string{
			s.RouteID, s.StopID, fmt.Sprintf("%d", s.Headways),
			fmt.Sprintf("%.1f", s.MeanSeconds),
			fmt.Sprintf("%.1f", s.MedianSeconds),
			fmt.Sprintf("%.1f", s.StdDevSeconds),
			fmt.Sprintf("%.4f", s.CV),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
