package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads stops.txt and stop_times.txt from a GTFS directory or zip
// archive. Files other than those two are ignored; unknown columns are
// ignored.
func Load(path string) (*Static, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadFromDir(path)
	}
	return loadFromZip(path)
}

func loadFromDir(dir string) (*Static, error) {
	s := &Static{}
	stopsFile, err := os.Open(filepath.Join(dir, "stops.txt"))
	if err != nil {
		return nil, err
	}
	defer stopsFile.Close()
	if s.Stops, err = parseStops(stopsFile); err != nil {
		return nil, fmt.Errorf("stops.txt: %w", err)
	}

	timesFile, err := os.Open(filepath.Join(dir, "stop_times.txt"))
	if err != nil {
		return nil, err
	}
	defer timesFile.Close()
	if s.StopTimes, err = parseStopTimes(timesFile); err != nil {
		return nil, fmt.Errorf("stop_times.txt: %w", err)
	}
	return s, nil
}

func loadFromZip(path string) (*Static, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	s := &Static{}
	for _, f := range zr.File {
		name := strings.ToLower(filepath.Base(f.Name))
		if name != "stops.txt" && name != "stop_times.txt" {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		switch name {
		case "stops.txt":
			s.Stops, err = parseStops(r)
		case "stop_times.txt":
			s.StopTimes, err = parseStopTimes(r)
		}
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if s.Stops == nil {
		return nil, fmt.Errorf("%s: no stops.txt in archive", path)
	}
	return s, nil
}

func parseStops(r io.Reader) ([]Stop, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	header, err := csvr.Read()
	if err != nil {
		return nil, err
	}
	idx := makeIndex(header)

	var stops []Stop
	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed records are skipped; an I/O error would repeat
			// on every Read and must end the loop.
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, err
		}
		lat, _ := strconv.ParseFloat(getField(rec, idx, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(getField(rec, idx, "stop_lon"), 64)
		stops = append(stops, Stop{
			ID:   getField(rec, idx, "stop_id"),
			Name: getField(rec, idx, "stop_name"),
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stops, nil
}

func parseStopTimes(r io.Reader) ([]StopTime, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	header, err := csvr.Read()
	if err != nil {
		return nil, err
	}
	idx := makeIndex(header)

	var times []StopTime
	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, err
		}
		seq, _ := strconv.Atoi(getField(rec, idx, "stop_sequence"))
		times = append(times, StopTime{
			TripID:        getField(rec, idx, "trip_id"),
			StopID:        getField(rec, idx, "stop_id"),
			StopName:      getField(rec, idx, "stop_name"),
			StopSequence:  seq,
			ArrivalTime:   getField(rec, idx, "arrival_time"),
			DepartureTime: getField(rec, idx, "departure_time"),
		})
	}
	return times, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
