package headway

import (
	"math"
	"strings"
	"testing"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
)

func st(route, stop, departure string) gtfs.StopTime {
	return gtfs.StopTime{RouteID: route, StopID: stop, DepartureTime: departure}
}

func TestComputeClockfaceSchedule(t *testing.T) {
	// Departures every 15 minutes: mean 900s, zero spread.
	rows := []gtfs.StopTime{
		st("3001-2-1", "S01", "06:00:00"),
		st("3001-2-1", "S01", "06:15:00"),
		st("3001-2-1", "S01", "06:30:00"),
		st("3001-2-1", "S01", "06:45:00"),
	}
	got := Compute(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 stats row, got %d", len(got))
	}
	s := got[0]
	if s.Headways != 3 {
		t.Errorf("expected 3 headways, got %d", s.Headways)
	}
	if s.MeanSeconds != 900 || s.MedianSeconds != 900 {
		t.Errorf("mean/median wrong: %f/%f", s.MeanSeconds, s.MedianSeconds)
	}
	if s.StdDevSeconds != 0 || s.CV != 0 {
		t.Errorf("clockface schedule must have zero spread: %f/%f", s.StdDevSeconds, s.CV)
	}
}

func TestComputeUnevenSchedule(t *testing.T) {
	// Headways 600s and 1800s: mean 1200, sample stddev 600*sqrt(2).
	rows := []gtfs.StopTime{
		st("3003-5-1", "S04", "06:00:00"),
		st("3003-5-1", "S04", "06:10:00"),
		st("3003-5-1", "S04", "06:40:00"),
	}
	got := Compute(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 stats row, got %d", len(got))
	}
	s := got[0]
	if s.MeanSeconds != 1200 {
		t.Errorf("mean = %f", s.MeanSeconds)
	}
	if s.MedianSeconds != 1200 {
		t.Errorf("median = %f", s.MedianSeconds)
	}
	wantStd := 600 * math.Sqrt2
	if math.Abs(s.StdDevSeconds-wantStd) > 1e-9 {
		t.Errorf("stddev = %f, want %f", s.StdDevSeconds, wantStd)
	}
	if math.Abs(s.CV-wantStd/1200) > 1e-9 {
		t.Errorf("cv = %f, want %f", s.CV, wantStd/1200)
	}
}

func TestComputeSampleStdDev(t *testing.T) {
	// Headways 300, 600, 900: sample variance sums squared deviations over
	// n-1, so stddev is 300, not the population value sqrt(60000).
	rows := []gtfs.StopTime{
		st("3001-2-1", "S02", "06:00:00"),
		st("3001-2-1", "S02", "06:05:00"),
		st("3001-2-1", "S02", "06:15:00"),
		st("3001-2-1", "S02", "06:30:00"),
	}
	got := Compute(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 stats row, got %d", len(got))
	}
	if math.Abs(got[0].StdDevSeconds-300) > 1e-9 {
		t.Errorf("stddev = %f, want 300", got[0].StdDevSeconds)
	}
}

func TestComputeUnsortedAndPastMidnight(t *testing.T) {
	rows := []gtfs.StopTime{
		st("3001-2-1", "S01", "24:30:00"),
		st("3001-2-1", "S01", "23:50:00"),
		st("3001-2-1", "S01", "24:10:00"),
	}
	got := Compute(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 stats row, got %d", len(got))
	}
	if got[0].MeanSeconds != 1200 {
		t.Errorf("departures must be sorted before diffing, mean = %f", got[0].MeanSeconds)
	}
}

func TestComputeSkipsBadRows(t *testing.T) {
	rows := []gtfs.StopTime{
		st("3001-2-1", "S01", "06:00:00"),
		st("3001-2-1", "S01", "bogus"),
		st("3001-2-1", "S01", "06:20:00"),
		st("", "S01", "06:40:00"),   // no derived route
		st("3001-2-1", "S02", "06:00:00"), // single departure, no headway
	}
	got := Compute(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 stats row, got %d", len(got))
	}
	if got[0].Headways != 1 || got[0].MeanSeconds != 1200 {
		t.Errorf("bad rows must be skipped: %+v", got[0])
	}
}

func TestComputeOrdering(t *testing.T) {
	rows := []gtfs.StopTime{
		st("B", "S01", "06:00:00"), st("B", "S01", "06:10:00"),
		st("A", "S02", "06:00:00"), st("A", "S02", "06:10:00"),
		st("A", "S01", "06:00:00"), st("A", "S01", "06:10:00"),
	}
	got := Compute(rows)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].RouteID != "A" || got[0].StopID != "S01" || got[2].RouteID != "B" {
		t.Errorf("output not ordered: %+v", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	err := WriteCSV(&sb, []Stats{{
		RouteID: "3001-2-1", StopID: "S01", Headways: 3,
		MeanSeconds: 900, MedianSeconds: 900, StdDevSeconds: 0, CV: 0,
	}})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if lines[0] != "route_id,stop_id,headways,mean_headway_s,median_headway_s,std_headway_s,cv_headway" {
		t.Errorf("header wrong: %q", lines[0])
	}
	if lines[1] != "3001-2-1,S01,3,900.0,900.0,0.0,0.0000" {
		t.Errorf("row wrong: %q", lines[1])
	}
}
