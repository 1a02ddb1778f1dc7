package gtfsrt

// SequenceUnknown marks an absent current_stop_sequence.
const SequenceUnknown = -1

// VehiclePosition is one normalized vehicle ping from a GTFS-RT
// VehiclePositions dump. SnapshotTS is the capture time of the whole dump,
// not the per-vehicle timestamp, so pings from one snapshot share it.
type VehiclePosition struct {
	SnapshotTS          int64
	VehicleID           string
	TripID              string
	RouteID             string
	Lat                 float64
	Lon                 float64
	Bearing             float64
	Speed               float64
	CurrentStopSequence int // SequenceUnknown when absent
	CurrentStatus       string
	StopID              string
}

// TripUpdate is one normalized trip-update record. Only the identity fields
// are kept; stop-time predictions are out of scope for the join.
type TripUpdate struct {
	SnapshotTS  int64
	VehicleID   string
	TripID      string
	RouteID     string
	DirectionID int // -1 when absent
	StartTime   string
	StartDate   string
}
