package gtfs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

const stopsCSV = `stop_id,stop_name,stop_lat,stop_lon
S01,富山駅,36.70100,137.21300
S02,新富町,36.69900,137.20900
S03,県庁前,36.69700,137.20500
S04,富山大学前,36.69000,137.18700
`

const stopTimesCSV = `trip_id,arrival_time,departure_time,stop_id,stop_name,stop_sequence
平日_0600_系統3001-2-1,06:00:00,06:00:00,S01,富山駅,1
平日_0600_系統3001-2-1,06:02:00,06:02:00,S02,新富町,2
平日_0600_系統3001-2-1,06:04:00,06:04:00,S03,県庁前,3
平日_0615_系統3001-2-1,06:15:00,06:15:00,S01,富山駅,1
平日_0615_系統3001-2-1,06:17:00,06:17:00,S02,新富町,2
平日_0610_系統3003-5-1,06:10:00,06:10:00,S01,富山駅,1
平日_0610_系統3003-5-1,06:20:00,06:20:00,S04,富山大学前,4
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stops.txt"), []byte(stopsCSV), 0o644); err != nil {
		t.Fatalf("write stops.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stop_times.txt"), []byte(stopTimesCSV), 0o644); err != nil {
		t.Fatalf("write stop_times.txt: %v", err)
	}
	return dir
}

func loadFixtureIndex(t *testing.T) *StaticIndex {
	t.Helper()
	s, err := Load(writeFixture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	idx, err := NewStaticIndex(s, `^([^_%]+)`, `系統(.*)$`)
	if err != nil {
		t.Fatalf("NewStaticIndex: %v", err)
	}
	return idx
}

func TestLoadFromDir(t *testing.T) {
	s, err := Load(writeFixture(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Stops) != 4 {
		t.Errorf("expected 4 stops, got %d", len(s.Stops))
	}
	if len(s.StopTimes) != 7 {
		t.Errorf("expected 7 stop_times rows, got %d", len(s.StopTimes))
	}
	if s.Stops[0].Name != "富山駅" || s.Stops[0].Lat == 0 {
		t.Errorf("first stop parsed wrong: %+v", s.Stops[0])
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestIndexDerivedFields(t *testing.T) {
	idx := loadFixtureIndex(t)
	st := idx.StopTimes()[0]
	if st.ServiceDay != "平日" {
		t.Errorf("expected service day 平日, got %q", st.ServiceDay)
	}
	if st.RouteID != "3001-2-1" {
		t.Errorf("expected route 3001-2-1, got %q", st.RouteID)
	}
}

func TestIndexRouteStopsUnique(t *testing.T) {
	idx := loadFixtureIndex(t)
	// 富山駅/新富町 appear on two trips of 3001-2-1 but must map once each.
	var count int
	for _, rs := range idx.RouteStops(nil) {
		if rs.RouteID == "3001-2-1" {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 unique route stops for 3001-2-1, got %d", count)
	}

	filtered := idx.RouteStops([]string{"富山大学前"})
	if len(filtered) != 1 || filtered[0].RouteID != "3003-5-1" {
		t.Errorf("station filter wrong: %+v", filtered)
	}
}

func TestIndexLookups(t *testing.T) {
	idx := loadFixtureIndex(t)
	if seq, ok := idx.SequenceFor("3001-2-1", "県庁前"); !ok || seq != 3 {
		t.Errorf("SequenceFor = %d,%v want 3,true", seq, ok)
	}
	if _, ok := idx.SequenceFor("3001-2-1", "富山大学前"); ok {
		t.Error("expected miss for stop not on route")
	}
	if name, ok := idx.StopNameAt("3003-5-1", 4); !ok || name != "富山大学前" {
		t.Errorf("StopNameAt = %q,%v", name, ok)
	}

	stops := idx.Stops([]string{"富山駅", "富山大学前"})
	if len(stops) != 2 {
		t.Errorf("expected 2 stops, got %d", len(stops))
	}
}

func TestParseStopsBOMHeader(t *testing.T) {
	r := strings.NewReader("\ufeffstop_id,stop_name,stop_lat,stop_lon\nS01,富山駅,36.701,137.213\n")
	stops, err := parseStops(r)
	if err != nil {
		t.Fatalf("parseStops: %v", err)
	}
	if len(stops) != 1 || stops[0].ID != "S01" || stops[0].Name != "富山駅" {
		t.Errorf("BOM header must still index columns: %+v", stops)
	}
}

func TestParseStopsSkipsMalformedRecord(t *testing.T) {
	body := "stop_id,stop_name,stop_lat,stop_lon\n" +
		"S01,富山駅,36.701,137.213\n" +
		"S02,bad\"name,36.699,137.209\n" +
		"S03,県庁前,36.697,137.205\n"
	stops, err := parseStops(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseStops: %v", err)
	}
	if len(stops) != 2 || stops[0].ID != "S01" || stops[1].ID != "S03" {
		t.Errorf("malformed record must be skipped, rest kept: %+v", stops)
	}
}

func TestParseStopsSurfacesReadError(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("stop_id,stop_name,stop_lat,stop_lon\n"),
		iotest.ErrReader(errors.New("corrupt stream")),
	)
	if _, err := parseStops(r); err == nil {
		t.Fatal("expected the read error to surface")
	}
}

func TestParseStopTimesSurfacesReadError(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("trip_id,stop_id,stop_name,stop_sequence,departure_time\n"),
		iotest.ErrReader(errors.New("corrupt stream")),
	)
	if _, err := parseStopTimes(r); err == nil {
		t.Fatal("expected the read error to surface")
	}
}
