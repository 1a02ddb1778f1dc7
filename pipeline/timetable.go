package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/RailOpsData/headway-optimisation-gtfs/utils"
)

// TimetableRow is one observed trip: the first time a vehicle was seen at
// each station during that trip.
type TimetableRow struct {
	VehicleID   string
	TripCount   int
	DirectionID int
	Times       map[string]string // station name -> HH:MM:SS
}

// Timetable is the station pivot of the pipeline output.
type Timetable struct {
	Stations []string
	Rows     []TimetableRow
}

// BuildTimetable pivots observations into a per-trip station timetable for
// one direction. Column order follows the stations argument, which callers
// take from the configured corridor; stations never observed still get a
// column so different days line up. Cells hold the first observation of the
// trip at that station, rendered as a local clock time.
func BuildTimetable(obs []Observation, stations []string, direction int, loc *time.Location) *Timetable {
	type key struct {
		vehicle string
		trip    int
	}
	rowIdx := map[key]int{}
	firstTS := map[key]map[string]int64{}
	tt := &Timetable{Stations: stations}

	for _, o := range obs {
		if o.DirectionID != direction {
			continue
		}
		k := key{o.VehicleID, o.TripCount}
		i, ok := rowIdx[k]
		if !ok {
			i = len(tt.Rows)
			rowIdx[k] = i
			firstTS[k] = map[string]int64{}
			tt.Rows = append(tt.Rows, TimetableRow{
				VehicleID:   o.VehicleID,
				TripCount:   o.TripCount,
				DirectionID: o.DirectionID,
				Times:       map[string]string{},
			})
		}
		if prev, seen := firstTS[k][o.NearestStop]; seen && prev <= o.SnapshotTS {
			continue
		}
		firstTS[k][o.NearestStop] = o.SnapshotTS
		tt.Rows[i].Times[o.NearestStop] = utils.ClockString(o.SnapshotTS, loc)
	}

	sort.SliceStable(tt.Rows, func(i, j int) bool {
		a, b := tt.Rows[i], tt.Rows[j]
		if a.VehicleID != b.VehicleID {
			return a.VehicleID < b.VehicleID
		}
		return a.TripCount < b.TripCount
	})
	return tt
}

// WriteCSV renders the timetable with one header row and one line per trip.
func (tt *Timetable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"vehicle_id", "trip_count", "direction_id"}, tt.Stations...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range tt.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.VehicleID, fmt.Sprintf("%d", row.TripCount), fmt.Sprintf("%d", row.DirectionID))
		for _, st := range tt.Stations {
			rec = append(rec, row.Times[st])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
