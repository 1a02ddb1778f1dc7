package gtfs

// Stop is one row of stops.txt.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// StopTime is one row of stop_times.txt plus fields derived from trip_id.
// GTFS-JP feeds carry stop_name directly in stop_times.txt; when absent the
// name is resolved through stops.txt while indexing.
type StopTime struct {
	TripID        string
	StopID        string
	StopName      string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string

	// Derived from trip_id by the configured patterns.
	ServiceDay string
	RouteID    string
}

// RouteStop maps a route to one of its stops at a given sequence position.
type RouteStop struct {
	RouteID      string
	StopSequence int
	StopName     string
}

// Static holds the raw parsed feed before indexing.
type Static struct {
	Stops     []Stop
	StopTimes []StopTime
}
