// Package utils provides internal utility functions for the headway toolkit.
// This package is not intended to be imported by external code.
//
// It contains:
//   - GTFS clock-time parsing and formatting (times past 24:00:00 included)
//   - Ground-distance approximation used by nearest-stop matching
package utils
