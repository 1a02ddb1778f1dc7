package config

// StaticConfig points at the GTFS static feed.
type StaticConfig struct {
	// Path is a directory containing stops.txt / stop_times.txt, or a .zip.
	Path string `yaml:"path" validate:"required"`
	URL  string `yaml:"url" validate:"omitempty,url"`

	// ServiceDayPattern and RoutePattern extract derived fields from
	// trip_id. Defaults match trip ids of the form
	// <weekday>_<origin>..系統<route>.
	ServiceDayPattern string `yaml:"serviceDayPattern"`
	RoutePattern      string `yaml:"routePattern"`
}

// RealtimeConfig points at the normalized observation database.
type RealtimeConfig struct {
	DatabasePath string `yaml:"databasePath" validate:"required"`
	Agency       string `yaml:"agency" validate:"required"`
	// ServiceDate is the observation day, YYYYMMDD.
	ServiceDate string `yaml:"serviceDate" validate:"required,len=8,numeric"`
}

// WindowConfig restricts observations to a wall-clock hour range.
type WindowConfig struct {
	HourMin  int    `yaml:"hourMin" validate:"gte=0,lte=23"`
	HourMax  int    `yaml:"hourMax" validate:"gte=0,lte=23"`
	Timezone string `yaml:"timezone"`
}

// SelectionConfig narrows the pipeline to the routes, vehicles and stations
// under study. Empty lists mean no filtering on that axis.
type SelectionConfig struct {
	Routes    []string `yaml:"routes"`
	Vehicles  []string `yaml:"vehicles"`
	Stations  []string `yaml:"stations"`
	Direction int      `yaml:"direction" validate:"gte=0,lte=9"`
}

// SegmentationConfig tunes trip boundary detection.
type SegmentationConfig struct {
	// SequenceJumpThreshold starts a new trip when the location-based stop
	// sequence moves by more than this many stops between pings.
	SequenceJumpThreshold int `yaml:"sequenceJumpThreshold" validate:"gte=0"`
}

// OutputConfig names the written artifacts.
type OutputConfig struct {
	TimetableCSV string `yaml:"timetableCSV"`
	HeadwayCSV   string `yaml:"headwayCSV"`
}

// PipelineConfig is the root configuration structure.
type PipelineConfig struct {
	Static       StaticConfig       `yaml:"static" validate:"required"`
	Realtime     RealtimeConfig     `yaml:"realtime" validate:"required"`
	Window       WindowConfig       `yaml:"window"`
	Selection    SelectionConfig    `yaml:"selection"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Output       OutputConfig       `yaml:"output"`
}
