package pipeline

import (
	"testing"
	"time"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
)

func buildTestIndex(t *testing.T) *gtfs.StaticIndex {
	t.Helper()
	static := &gtfs.Static{
		Stops: []gtfs.Stop{
			{ID: "S01", Name: "富山駅", Lat: 36.70100, Lon: 137.21300},
			{ID: "S02", Name: "新富町", Lat: 36.69900, Lon: 137.20900},
			{ID: "S03", Name: "県庁前", Lat: 36.69700, Lon: 137.20500},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "平日_0600_系統3001-2-1", StopID: "S01", StopName: "富山駅", StopSequence: 1, DepartureTime: "06:00:00"},
			{TripID: "平日_0600_系統3001-2-1", StopID: "S02", StopName: "新富町", StopSequence: 2, DepartureTime: "06:02:00"},
			{TripID: "平日_0600_系統3001-2-1", StopID: "S03", StopName: "県庁前", StopSequence: 3, DepartureTime: "06:04:00"},
		},
	}
	idx, err := gtfs.NewStaticIndex(static, `^([^_%]+)`, `系統(.*)$`)
	if err != nil {
		t.Fatalf("NewStaticIndex: %v", err)
	}
	return idx
}

func TestBuildStationTimetableEndToEnd(t *testing.T) {
	idx := buildTestIndex(t)

	ping := func(ts int64, lat, lon float64, seq int) gtfsrt.VehiclePosition {
		return gtfsrt.VehiclePosition{
			SnapshotTS: base + ts, VehicleID: "chitetsu_tram_4980",
			Lat: lat, Lon: lon, CurrentStopSequence: seq,
		}
	}
	vps := []gtfsrt.VehiclePosition{
		ping(0, 36.70100, 137.21300, 1),   // at 富山駅
		ping(0, 36.70100, 137.21300, 1),   // archiver duplicate
		ping(120, 36.69900, 137.20900, 2), // at 新富町, route unknown
		ping(240, 36.69700, 137.20500, 3), // at 県庁前
		// Second trip: sequence rolls back to 1.
		ping(1800, 36.70100, 137.21300, 1),
		// Unknown vehicle filtered by the allow-list.
		{SnapshotTS: base, VehicleID: "chitetsu_bus_1", Lat: 36.7, Lon: 137.2, CurrentStopSequence: 1},
	}
	tus := []gtfsrt.TripUpdate{
		{SnapshotTS: base, VehicleID: "chitetsu_tram_4980", RouteID: "市内軌道線(3001-2-1)"},
		{SnapshotTS: base + 240, VehicleID: "chitetsu_tram_4980", RouteID: "市内軌道線(3001-2-1)"},
		{SnapshotTS: base + 1800, VehicleID: "chitetsu_tram_4980", RouteID: "市内軌道線(3001-2-1)"},
	}

	tt2 := BuildStationTimetable(vps, tus, idx, Params{
		HourMin: 6, HourMax: 9,
		Location:      time.UTC,
		Routes:        []string{"市内軌道線(3001-2-1)"},
		Vehicles:      []string{"chitetsu_tram_4980"},
		Stations:      []string{"富山駅", "新富町", "県庁前"},
		JumpThreshold: 5,
		Direction:     1,
	})

	if len(tt2.Rows) != 2 {
		t.Fatalf("expected 2 trips, got %d rows", len(tt2.Rows))
	}
	first := tt2.Rows[0]
	if first.Times["富山駅"] != "06:00:00" {
		t.Errorf("富山駅 time = %q", first.Times["富山駅"])
	}
	if first.Times["新富町"] != "06:02:00" {
		t.Errorf("imputed-route ping should survive: 新富町 = %q", first.Times["新富町"])
	}
	if first.Times["県庁前"] != "06:04:00" {
		t.Errorf("県庁前 time = %q", first.Times["県庁前"])
	}
	second := tt2.Rows[1]
	if second.TripCount != 2 || second.Times["富山駅"] != "06:30:00" {
		t.Errorf("second trip wrong: %+v", second)
	}
}

func TestBuildStationTimetableEmptyInput(t *testing.T) {
	idx := buildTestIndex(t)
	tt2 := BuildStationTimetable(nil, nil, idx, Params{
		HourMin: 6, HourMax: 9, JumpThreshold: 5, Direction: 1,
		Stations: []string{"富山駅"},
	})
	if len(tt2.Rows) != 0 {
		t.Errorf("expected empty timetable, got %d rows", len(tt2.Rows))
	}
	if len(tt2.Stations) != 1 {
		t.Errorf("stations header must survive empty input")
	}
}
