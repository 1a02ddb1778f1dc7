package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseGTFSTime converts a GTFS HH:MM:SS clock value to seconds since
// service midnight. Hours may exceed 24 for trips that run past midnight;
// single-colon values are treated as HH:MM.
func ParseGTFSTime(s string) (int, error) {
	var h, m, sec int
	var err error
	switch strings.Count(s, ":") {
	case 1:
		_, err = fmt.Sscanf(s, "%d:%d", &h, &m)
	case 2:
		_, err = fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	default:
		return 0, fmt.Errorf("invalid GTFS time %q", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid GTFS time %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("GTFS time %q out of range", s)
	}
	return h*3600 + m*60 + sec, nil
}

// ClockString renders a Unix timestamp as a local HH:MM:SS clock value.
func ClockString(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format("15:04:05")
}

// Iso8601FromUnixSeconds converts a Unix timestamp to ISO8601 format.
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
