package gtfsrt

import (
	"fmt"
	"regexp"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
)

var snapshotNameRe = regexp.MustCompile(`(\d{8}_\d{6})`)

func unmarshalFeed(data []byte) (*gtfsproto.FeedMessage, error) {
	fm := &gtfsproto.FeedMessage{}
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, fm); err != nil {
		return nil, fmt.Errorf("decode feed message: %w", err)
	}
	return fm, nil
}

// snapshotTimestamp resolves the capture time of a dump: feed header first,
// then the first entity carrying a timestamp, then a YYYYMMDD_HHMMSS token
// in the file name. Zero (the epoch) when nothing matches, so a bad file is
// visible instead of silently dated now.
func snapshotTimestamp(fm *gtfsproto.FeedMessage, name string) int64 {
	if fm.Header != nil && fm.Header.Timestamp != nil && *fm.Header.Timestamp > 0 {
		return int64(*fm.Header.Timestamp)
	}
	for _, e := range fm.Entity {
		if e.TripUpdate != nil && e.TripUpdate.Timestamp != nil && *e.TripUpdate.Timestamp > 0 {
			return int64(*e.TripUpdate.Timestamp)
		}
		if e.Vehicle != nil && e.Vehicle.Timestamp != nil && *e.Vehicle.Timestamp > 0 {
			return int64(*e.Vehicle.Timestamp)
		}
	}
	if m := snapshotNameRe.FindString(name); m != "" {
		if t, err := time.Parse("20060102_150405", m); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// DecodeVehiclePositions parses a GTFS-RT VehiclePositions dump in protojson
// form. name is the originating file name, used as a timestamp fallback.
// Entities without a position are skipped.
func DecodeVehiclePositions(data []byte, name string) ([]VehiclePosition, error) {
	fm, err := unmarshalFeed(data)
	if err != nil {
		return nil, err
	}
	ts := snapshotTimestamp(fm, name)

	var out []VehiclePosition
	for _, e := range fm.Entity {
		v := e.Vehicle
		if v == nil || v.Position == nil {
			continue
		}
		vp := VehiclePosition{
			SnapshotTS:          ts,
			Lat:                 float64(v.Position.GetLatitude()),
			Lon:                 float64(v.Position.GetLongitude()),
			Bearing:             float64(v.Position.GetBearing()),
			Speed:               float64(v.Position.GetSpeed()),
			CurrentStopSequence: SequenceUnknown,
			StopID:              v.GetStopId(),
		}
		if v.Vehicle != nil {
			vp.VehicleID = v.Vehicle.GetId()
		}
		if v.Trip != nil {
			vp.TripID = v.Trip.GetTripId()
			vp.RouteID = v.Trip.GetRouteId()
		}
		if v.CurrentStopSequence != nil {
			vp.CurrentStopSequence = int(*v.CurrentStopSequence)
		}
		if v.CurrentStatus != nil {
			vp.CurrentStatus = v.CurrentStatus.String()
		}
		out = append(out, vp)
	}
	return out, nil
}

// DecodeTripUpdates parses a GTFS-RT TripUpdates dump in protojson form.
// Entities without a trip descriptor are skipped.
func DecodeTripUpdates(data []byte, name string) ([]TripUpdate, error) {
	fm, err := unmarshalFeed(data)
	if err != nil {
		return nil, err
	}
	ts := snapshotTimestamp(fm, name)

	var out []TripUpdate
	for _, e := range fm.Entity {
		tu := e.TripUpdate
		if tu == nil || tu.Trip == nil {
			continue
		}
		rec := TripUpdate{
			SnapshotTS:  ts,
			TripID:      tu.Trip.GetTripId(),
			RouteID:     tu.Trip.GetRouteId(),
			DirectionID: -1,
			StartTime:   tu.Trip.GetStartTime(),
			StartDate:   tu.Trip.GetStartDate(),
		}
		if tu.Trip.DirectionId != nil {
			rec.DirectionID = int(*tu.Trip.DirectionId)
		}
		if tu.Vehicle != nil {
			rec.VehicleID = tu.Vehicle.GetId()
		}
		out = append(out, rec)
	}
	return out, nil
}
