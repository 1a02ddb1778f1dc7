package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
	"github.com/RailOpsData/headway-optimisation-gtfs/utils"
)

// BeginRun records the start of an archive extraction and returns its id.
func (s *Store) BeginRun(ctx context.Context, archive string) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	runID := uuid.New().String()
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO extraction_runs (run_id, archive, started_at_utc) VALUES (?, ?, ?)",
		runID, archive, utils.Iso8601FromUnixSeconds(time.Now().Unix()),
	)
	if err != nil {
		return "", errors.Wrap(err, "create extraction run")
	}
	return runID, nil
}

// FinishRun closes out an extraction run with its final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, total, parsed, skipped int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.conn.ExecContext(ctx, `
		UPDATE extraction_runs
		SET finished_at_utc = ?, files_total = ?, files_parsed = ?, files_skipped = ?
		WHERE run_id = ?`,
		utils.Iso8601FromUnixSeconds(time.Now().Unix()), total, parsed, skipped, runID,
	)
	return errors.Wrap(err, "finish extraction run")
}

// InsertVehiclePositions writes a batch of pings under one transaction.
func (s *Store) InsertVehiclePositions(ctx context.Context, runID, agency string, rows []gtfsrt.VehiclePosition) error {
	if len(rows) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vehicle_positions (
			agency, service_date, snapshot_ts, vehicle_id, trip_id, route_id,
			lat, lon, bearing, speed, current_stop_sequence, current_status,
			stop_id, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare vehicle_positions insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			agency, ServiceDate(r.SnapshotTS), r.SnapshotTS, r.VehicleID,
			nullStr(r.TripID), nullStr(r.RouteID),
			r.Lat, r.Lon, r.Bearing, r.Speed,
			nullInt(r.CurrentStopSequence, gtfsrt.SequenceUnknown),
			nullStr(r.CurrentStatus), nullStr(r.StopID), runID,
		)
		if err != nil {
			return errors.Wrap(err, "insert vehicle position")
		}
	}
	return errors.Wrap(tx.Commit(), "commit vehicle positions")
}

// InsertTripUpdates writes a batch of trip-update records under one
// transaction.
func (s *Store) InsertTripUpdates(ctx context.Context, runID, agency string, rows []gtfsrt.TripUpdate) error {
	if len(rows) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trip_updates (
			agency, service_date, snapshot_ts, vehicle_id, trip_id, route_id,
			direction_id, start_time, start_date, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare trip_updates insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			agency, ServiceDate(r.SnapshotTS), r.SnapshotTS,
			nullStr(r.VehicleID), nullStr(r.TripID), nullStr(r.RouteID),
			nullInt(r.DirectionID, -1), nullStr(r.StartTime), nullStr(r.StartDate),
			runID,
		)
		if err != nil {
			return errors.Wrap(err, "insert trip update")
		}
	}
	return errors.Wrap(tx.Commit(), "commit trip updates")
}
