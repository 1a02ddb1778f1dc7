package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
)

// VehiclePositions returns one day of pings for an agency, ordered by
// (vehicle_id, snapshot_ts) as the pipeline expects.
func (s *Store) VehiclePositions(ctx context.Context, agency, serviceDate string) ([]gtfsrt.VehiclePosition, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT snapshot_ts, vehicle_id, trip_id, route_id, lat, lon,
		       bearing, speed, current_stop_sequence, current_status, stop_id
		FROM vehicle_positions
		WHERE agency = ? AND service_date = ?
		ORDER BY vehicle_id, snapshot_ts`,
		agency, serviceDate)
	if err != nil {
		return nil, errors.Wrap(err, "query vehicle_positions")
	}
	defer rows.Close()

	var out []gtfsrt.VehiclePosition
	for rows.Next() {
		var r gtfsrt.VehiclePosition
		var tripID, routeID, status, stopID sql.NullString
		var bearing, speed sql.NullFloat64
		var seq sql.NullInt64
		if err := rows.Scan(&r.SnapshotTS, &r.VehicleID, &tripID, &routeID,
			&r.Lat, &r.Lon, &bearing, &speed, &seq, &status, &stopID); err != nil {
			return nil, errors.Wrap(err, "scan vehicle position")
		}
		r.TripID = strOrEmpty(tripID)
		r.RouteID = strOrEmpty(routeID)
		r.Bearing = bearing.Float64
		r.Speed = speed.Float64
		r.CurrentStopSequence = intOrSentinel(seq, gtfsrt.SequenceUnknown)
		r.CurrentStatus = strOrEmpty(status)
		r.StopID = strOrEmpty(stopID)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate vehicle_positions")
}

// TripUpdates returns one day of trip-update records for an agency, ordered
// by (vehicle_id, snapshot_ts).
func (s *Store) TripUpdates(ctx context.Context, agency, serviceDate string) ([]gtfsrt.TripUpdate, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT snapshot_ts, vehicle_id, trip_id, route_id, direction_id,
		       start_time, start_date
		FROM trip_updates
		WHERE agency = ? AND service_date = ?
		ORDER BY vehicle_id, snapshot_ts`,
		agency, serviceDate)
	if err != nil {
		return nil, errors.Wrap(err, "query trip_updates")
	}
	defer rows.Close()

	var out []gtfsrt.TripUpdate
	for rows.Next() {
		var r gtfsrt.TripUpdate
		var vehicleID, tripID, routeID, startTime, startDate sql.NullString
		var dir sql.NullInt64
		if err := rows.Scan(&r.SnapshotTS, &vehicleID, &tripID, &routeID,
			&dir, &startTime, &startDate); err != nil {
			return nil, errors.Wrap(err, "scan trip update")
		}
		r.VehicleID = strOrEmpty(vehicleID)
		r.TripID = strOrEmpty(tripID)
		r.RouteID = strOrEmpty(routeID)
		r.DirectionID = intOrSentinel(dir, -1)
		r.StartTime = strOrEmpty(startTime)
		r.StartDate = strOrEmpty(startDate)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate trip_updates")
}

// AgencyCounts summarizes stored rows per agency and feed type.
type AgencyCounts struct {
	Agency           string
	VehiclePositions int
	TripUpdates      int
}

// Agencies reports per-agency row counts across both feed tables.
func (s *Store) Agencies(ctx context.Context) ([]AgencyCounts, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT agency,
		       SUM(vp) AS vehicle_positions,
		       SUM(tu) AS trip_updates
		FROM (
			SELECT agency, COUNT(*) AS vp, 0 AS tu FROM vehicle_positions GROUP BY agency
			UNION ALL
			SELECT agency, 0 AS vp, COUNT(*) AS tu FROM trip_updates GROUP BY agency
		)
		GROUP BY agency
		ORDER BY agency`)
	if err != nil {
		return nil, errors.Wrap(err, "query agencies")
	}
	defer rows.Close()

	var out []AgencyCounts
	for rows.Next() {
		var a AgencyCounts
		if err := rows.Scan(&a.Agency, &a.VehiclePositions, &a.TripUpdates); err != nil {
			return nil, errors.Wrap(err, "scan agency counts")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "iterate agencies")
}
